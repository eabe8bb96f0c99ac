// Package intercept hijacks marked outgoing HTTP requests and answers
// them from a handler registry instead of the network.
//
// The Transport type is an http.RoundTripper. Requests that carry the
// marker header are claimed: the header value is parsed as a test
// identifier, the next handler for that identifier is dequeued from the
// registry, and the handler's result (or failure) becomes the request's
// outcome. Requests without the marker pass through to the wrapped base
// transport untouched. Once a marker is present there is no fallback to
// the network; a missing handler is reported as an error so that broken
// or under-registered tests fail loudly instead of silently hitting real
// services.
package intercept

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/testmux/testmux/logging"
	"github.com/testmux/testmux/registry"
	"github.com/testmux/testmux/testid"
)

// DefaultMarkerHeader is the request header that carries the test
// identifier. Presence of the header, with any value including the empty
// string, makes a request eligible for interception.
const DefaultMarkerHeader = "X-Testmux-Id"

// Transport is the interception point. It must be installed ahead of any
// real network dispatch, i.e. the base transport is only consulted for
// requests the Transport declines to claim.
type Transport struct {
	base     http.RoundTripper
	registry *registry.Registry
	marker   string
	logger   logging.Logger
}

// Option adjusts a Transport at construction time.
type Option func(*Transport)

// WithLogger directs the transport's debug output to logger.
func WithLogger(logger logging.Logger) Option {
	return func(t *Transport) { t.logger = logger }
}

// WithMarkerHeader overrides the header name used to detect and extract
// the test identifier.
func WithMarkerHeader(name string) Option {
	return func(t *Transport) { t.marker = name }
}

// Wrap layers interception over base. A nil base means
// http.DefaultTransport. Wrapping is idempotent: if base is already a
// Transport bound to the same registry and marker header, it is returned
// unchanged rather than layered twice.
func Wrap(base http.RoundTripper, reg *registry.Registry, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:     base,
		registry: reg,
		marker:   DefaultMarkerHeader,
		logger:   logging.NullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if prev, ok := base.(*Transport); ok && prev.registry == reg && prev.marker == t.marker {
		return prev
	}
	return t
}

// MarkerHeader returns the header name this transport watches.
func (t *Transport) MarkerHeader() string { return t.marker }

// CanClaim reports whether req would be intercepted. The marker header
// counts as present even when its value is the empty string.
func (t *Transport) CanClaim(req *http.Request) bool {
	return len(req.Header.Values(t.marker)) > 0
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.CanClaim(req) {
		return t.base.RoundTrip(req)
	}

	// The RoundTripper contract makes the transport responsible for
	// closing the request body, even on error. Deferred so handlers can
	// still read it first.
	defer func() {
		if req.Body != nil {
			req.Body.Close()
		}
	}()

	ctx := req.Context()
	raw := req.Header.Get(t.marker)
	id, err := testid.Parse(raw)
	if err != nil {
		t.logger.Printf("rejecting request to %s: unparseable marker %q", req.URL, raw)
		return nil, &InvalidMarkerError{Value: raw, URL: req.URL.String()}
	}

	handler, ok := t.registry.ClaimNext(id)
	if !ok {
		t.logger.Printf("no handler for %s (request to %s)", id, req.URL)
		return nil, &UnregisteredError{ID: id, URL: req.URL.String()}
	}

	resp, err := handler(req)

	// Once the owning scope is cancelled, nothing may be delivered: the
	// handler's result is discarded, not requeued.
	select {
	case <-ctx.Done():
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		t.logger.Printf("discarding result for %s: %s", id, ctx.Err())
		return nil, ctx.Err()
	default:
	}

	if err != nil {
		t.logger.Printf("handler for %s failed: %s", id, err)
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("handler for %s returned neither a response nor an error", id)
	}

	normalizeResponse(resp, req)
	resp.Body = &contextBody{ctx: ctx, body: resp.Body}
	t.logger.Printf("served mock response %d for %s (request to %s)", resp.StatusCode, id, req.URL)
	return resp, nil
}

// normalizeResponse fills in the response fields that net/http callers
// expect but handlers usually leave zero.
func normalizeResponse(resp *http.Response, req *http.Request) {
	if resp.Body == nil {
		resp.Body = http.NoBody
	}
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	if resp.Status == "" {
		resp.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if resp.ProtoMajor == 0 {
		resp.Proto = "HTTP/1.1"
		resp.ProtoMajor, resp.ProtoMinor = 1, 1
	}
	if resp.Request == nil {
		resp.Request = req
	}
}

// contextBody stops delivering body bytes as soon as the request's
// context is cancelled, so a cancelled caller observes no partial
// delivery after the fact.
type contextBody struct {
	ctx  context.Context
	body io.ReadCloser
}

func (b *contextBody) Read(p []byte) (int, error) {
	select {
	case <-b.ctx.Done():
		return 0, b.ctx.Err()
	default:
		return b.body.Read(p)
	}
}

func (b *contextBody) Close() error { return b.body.Close() }
