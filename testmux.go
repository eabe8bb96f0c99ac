// Package testmux lets automated tests intercept outgoing HTTP requests
// and substitute canned responses, with hard isolation between tests that
// run concurrently in one process.
//
// Each test generates a fresh identifier, registers an ordered queue of
// response handlers under it, and establishes the identifier as ambient
// context for the code it drives:
//
//	mux := testmux.New()
//	id := testid.New()
//	mux.RegisterResponse(id, respond.WithBody(200, "text/plain", []byte("ok")))
//
//	ctx := testctx.With(context.Background(), id)
//	httpClient := mux.Client()
//	// code under test issues requests with ctx through httpClient;
//	// each one consumes the next handler registered under id.
//
// Requests issued outside any test scope, or without a marker, flow to
// the real network. Two tests running side by side can mock the same URL
// with different responses and never observe each other's queue.
package testmux

import (
	"net/http"

	"github.com/testmux/testmux/client"
	"github.com/testmux/testmux/intercept"
	"github.com/testmux/testmux/logging"
	"github.com/testmux/testmux/registry"
	"github.com/testmux/testmux/testid"
)

// Mux owns one handler registry and builds the transport chain that
// routes marked requests to it. Construct exactly one per test-harness
// root and share it; isolation between tests comes from identifiers, not
// from separate Mux instances.
type Mux struct {
	registry *registry.Registry
	base     http.RoundTripper
	marker   string
	logger   logging.Logger
}

// Option adjusts a Mux at construction time.
type Option func(*Mux)

// WithLogger directs debug output from the registry and interceptor to
// logger. The default discards it.
func WithLogger(logger logging.Logger) Option {
	return func(m *Mux) { m.logger = logger }
}

// WithBaseTransport sets the transport used for requests that are not
// intercepted. The default is http.DefaultTransport.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(m *Mux) { m.base = base }
}

// WithMarkerHeader overrides the request header carrying the test
// identifier.
func WithMarkerHeader(name string) Option {
	return func(m *Mux) { m.marker = name }
}

// New creates a Mux with an empty registry.
func New(opts ...Option) *Mux {
	m := &Mux{
		base:   http.DefaultTransport,
		marker: intercept.DefaultMarkerHeader,
		logger: logging.NullLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.registry = registry.New(m.logger)
	return m
}

// Register queues handler as the next response for id.
func (m *Mux) Register(id testid.ID, handler registry.Handler) {
	m.registry.Register(id, handler)
}

// RegisterResponse queues a fixed response for id.
func (m *Mux) RegisterResponse(id testid.ID, resp *http.Response) {
	m.registry.Register(id, func(*http.Request) (*http.Response, error) {
		return resp, nil
	})
}

// RegisterError queues a handler that fails with err, delivered to the
// caller verbatim as the request's outcome.
func (m *Mux) RegisterError(id testid.ID, err error) {
	m.registry.Register(id, func(*http.Request) (*http.Response, error) {
		return nil, err
	})
}

// Unregister discards any unclaimed handlers for id. Call it from each
// test's teardown.
func (m *Mux) Unregister(id testid.ID) {
	m.registry.Unregister(id)
}

// Reset discards every identifier's queue. This affects all tests sharing
// the Mux, so reserve it for process-wide teardown.
func (m *Mux) Reset() {
	m.registry.ResetAll()
}

// Registry exposes the underlying registry for harness code that wants to
// drive claims directly.
func (m *Mux) Registry() *registry.Registry {
	return m.registry
}

// Transport returns the full chain: ambient-identifier stamping over
// interception over the base transport. Calling it repeatedly returns an
// equivalent chain over the same registry.
func (m *Mux) Transport() http.RoundTripper {
	interceptor := intercept.Wrap(m.base, m.registry,
		intercept.WithLogger(m.logger),
		intercept.WithMarkerHeader(m.marker))
	return client.Wrap(interceptor, client.WithMarkerHeader(m.marker))
}

// Client returns an *http.Client using Transport. Inject it wherever the
// code under test takes an HTTP client.
func (m *Mux) Client() *http.Client {
	return &http.Client{Transport: m.Transport()}
}
