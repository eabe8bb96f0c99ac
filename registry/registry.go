// Package registry stores the per-test queues of mock response handlers.
//
// A Registry maps test identifiers to FIFO queues of handlers. All access
// goes through four atomic operations (Register, ClaimNext, Unregister,
// ResetAll) guarded by a single mutex; callers never see or touch the map
// itself. This coarse serialization is deliberate: every operation is
// O(1) amortized and holds no I/O, so one lock over the whole map keeps
// the FIFO and exactly-once guarantees trivially correct while still
// scaling across tests that use distinct identifiers.
package registry

import (
	"net/http"
	"sync"

	"github.com/testmux/testmux/logging"
	"github.com/testmux/testmux/testid"
)

// Handler produces a canned response (or a failure) for one intercepted
// request. Handlers are supplied by test code, close over test-local
// expectations, and are invoked at most once.
type Handler func(*http.Request) (*http.Response, error)

// Registry is a concurrency-safe map of test identifiers to ordered
// handler queues. The zero value is not usable; call New.
type Registry struct {
	queues map[testid.ID][]Handler
	logger logging.Logger
	lock   sync.Mutex
}

// New creates an empty Registry. A nil logger disables logging.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &Registry{
		queues: make(map[testid.ID][]Handler),
		logger: logger,
	}
}

// Register appends handler to the queue for id, creating the queue if this
// is the first registration. Handlers are consumed in registration order.
func (r *Registry) Register(id testid.ID, handler Handler) {
	r.lock.Lock()
	r.queues[id] = append(r.queues[id], handler)
	n := len(r.queues[id])
	r.lock.Unlock()
	r.logger.Printf("registered handler %d for %s", n, id)
}

// ClaimNext atomically removes and returns the head of id's queue. The
// second return value is false when no handler is queued for id; an empty
// queue and an unknown identifier are indistinguishable. A given handler
// is returned to exactly one caller, even under concurrent claims.
func (r *Registry) ClaimNext(id testid.ID) (Handler, bool) {
	r.lock.Lock()
	q := r.queues[id]
	if len(q) == 0 {
		r.lock.Unlock()
		r.logger.Printf("no handler queued for %s", id)
		return nil, false
	}
	h := q[0]
	if len(q) == 1 {
		delete(r.queues, id)
	} else {
		r.queues[id] = q[1:]
	}
	remaining := len(r.queues[id])
	r.lock.Unlock()
	r.logger.Printf("claimed handler for %s (%d left)", id, remaining)
	return h, true
}

// Unregister discards the entire queue for id, including any unclaimed
// handlers. Unknown identifiers are a no-op.
func (r *Registry) Unregister(id testid.ID) {
	r.lock.Lock()
	delete(r.queues, id)
	r.lock.Unlock()
}

// ResetAll discards every queue for every identifier. This affects all
// tests sharing the Registry, so it belongs in process-wide teardown, not
// in the teardown of an individual test while others may be in flight.
func (r *Registry) ResetAll() {
	r.lock.Lock()
	r.queues = make(map[testid.ID][]Handler)
	r.lock.Unlock()
}
