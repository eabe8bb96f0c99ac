package registry

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testmux/testmux/logging"
	"github.com/testmux/testmux/testid"
)

// handlerReturning makes a handler whose identity we can recover from the
// synthesized response status, so tests can check which handler they got.
func handlerReturning(marker int) Handler {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: marker}, nil
	}
}

func markerOf(t *testing.T, h Handler) int {
	t.Helper()
	resp, err := h(nil)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestClaimNextReturnsHandlersInRegistrationOrder(t *testing.T) {
	r := New(nil)
	id := testid.New()
	for i := 1; i <= 5; i++ {
		r.Register(id, handlerReturning(i))
	}
	for i := 1; i <= 5; i++ {
		h, ok := r.ClaimNext(id)
		require.True(t, ok, "claim %d should succeed", i)
		assert.Equal(t, i, markerOf(t, h))
	}
	_, ok := r.ClaimNext(id)
	assert.False(t, ok, "queue should be exhausted after all handlers are claimed")
}

func TestClaimNextForUnknownIdentifier(t *testing.T) {
	r := New(nil)
	_, ok := r.ClaimNext(testid.New())
	assert.False(t, ok)
}

func TestQueuesAreIsolatedBetweenIdentifiers(t *testing.T) {
	r := New(nil)
	a, b := testid.New(), testid.New()
	r.Register(a, handlerReturning(1))
	r.Register(b, handlerReturning(2))

	h, ok := r.ClaimNext(b)
	require.True(t, ok)
	assert.Equal(t, 2, markerOf(t, h))

	h, ok = r.ClaimNext(a)
	require.True(t, ok)
	assert.Equal(t, 1, markerOf(t, h))
}

func TestUnregisterDiscardsUnclaimedHandlers(t *testing.T) {
	r := New(nil)
	id, other := testid.New(), testid.New()
	r.Register(id, handlerReturning(1))
	r.Register(id, handlerReturning(2))
	r.Register(other, handlerReturning(3))

	r.Unregister(id)
	_, ok := r.ClaimNext(id)
	assert.False(t, ok)

	// unrelated queues survive
	h, ok := r.ClaimNext(other)
	require.True(t, ok)
	assert.Equal(t, 3, markerOf(t, h))

	// unknown identifier is a no-op
	r.Unregister(testid.New())
}

func TestResetAllDiscardsEveryQueue(t *testing.T) {
	r := New(nil)
	ids := []testid.ID{testid.New(), testid.New(), testid.New()}
	for _, id := range ids {
		r.Register(id, handlerReturning(1))
	}
	r.ResetAll()
	for _, id := range ids {
		_, ok := r.ClaimNext(id)
		assert.False(t, ok)
	}
}

func TestConcurrentClaimersEachGetADistinctHandler(t *testing.T) {
	const handlers = 100
	r := New(nil)
	id := testid.New()
	for i := 0; i < handlers; i++ {
		r.Register(id, handlerReturning(i))
	}

	var wg sync.WaitGroup
	results := make(chan int, handlers)
	for i := 0; i < handlers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, ok := r.ClaimNext(id)
			if ok {
				results <- markerOf(t, h)
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for m := range results {
		assert.False(t, seen[m], "handler %d was claimed twice", m)
		seen[m] = true
	}
	assert.Len(t, seen, handlers, "every handler should be claimed exactly once")
}

func TestConcurrentUseAcrossManyIdentifiersDoesNotCrossTalk(t *testing.T) {
	const (
		tests           = 20
		handlersPerTest = 50
		markerScale     = 1000 // marker = testIndex*markerScale + handlerIndex
	)
	r := New(nil)

	var wg sync.WaitGroup
	for ti := 0; ti < tests; ti++ {
		wg.Add(1)
		go func(ti int) {
			defer wg.Done()
			id := testid.New()
			for hi := 0; hi < handlersPerTest; hi++ {
				r.Register(id, handlerReturning(ti*markerScale+hi))
			}
			for hi := 0; hi < handlersPerTest; hi++ {
				h, ok := r.ClaimNext(id)
				if !ok {
					t.Errorf("test %d: claim %d found no handler", ti, hi)
					return
				}
				m := markerOf(t, h)
				if m/markerScale != ti {
					t.Errorf("test %d: claimed handler %d belonging to test %d", ti, m, m/markerScale)
					return
				}
				if m%markerScale != hi {
					t.Errorf("test %d: claim %d returned handler %d out of order", ti, hi, m%markerScale)
					return
				}
			}
			if _, ok := r.ClaimNext(id); ok {
				t.Errorf("test %d: queue should be empty after %d claims", ti, handlersPerTest)
			}
		}(ti)
	}
	wg.Wait()
}

func TestRegisterLogsQueueDepth(t *testing.T) {
	logger := &logging.CapturingLogger{}
	r := New(logger)
	id := testid.New()
	r.Register(id, handlerReturning(1))
	r.Register(id, handlerReturning(2))
	out := logger.Output()
	require.Len(t, out, 2)
	assert.Contains(t, out[1].Message, fmt.Sprintf("handler 2 for %s", id))
}
