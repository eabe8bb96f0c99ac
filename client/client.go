// Package client bridges the ambient test identifier onto outgoing HTTP
// requests, so that code under test needs no awareness of mocking.
//
// The Transport here is the piece that production-shaped code actually
// uses: it reads the test identifier from the request's context and, when
// one is present, stamps it into the marker header before dispatch. When
// no identifier is ambient the request is forwarded completely unmodified,
// which is exactly what happens in a production process where nothing ever
// establishes a test scope. Gating is therefore structural: a build that
// never installs this transport, or installs it without any ambient
// identifiers, behaves identically to a plain http.Client.
package client

import (
	"net/http"

	"github.com/testmux/testmux/intercept"
	"github.com/testmux/testmux/testctx"
)

// Transport stamps the ambient test identifier onto requests and
// delegates to a base round tripper (normally an intercept.Transport).
type Transport struct {
	base   http.RoundTripper
	marker string
}

// Option adjusts a Transport at construction time.
type Option func(*Transport)

// WithMarkerHeader overrides the header used for stamping. It must match
// the header the downstream interceptor watches.
func WithMarkerHeader(name string) Option {
	return func(t *Transport) { t.marker = name }
}

// Wrap layers identifier stamping over base. A nil base means
// http.DefaultTransport. Wrapping is idempotent for the same base and
// marker header.
func Wrap(base http.RoundTripper, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:   base,
		marker: intercept.DefaultMarkerHeader,
	}
	for _, opt := range opts {
		opt(t)
	}
	if prev, ok := base.(*Transport); ok && prev.marker == t.marker {
		return prev
	}
	return t
}

// RoundTrip implements http.RoundTripper. The ambient identifier always
// wins over a pre-existing marker header: a stale or forged marker cannot
// survive dispatch from inside a test scope. Outside any scope the
// request is passed through untouched, pre-existing marker included.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	id, ok := testctx.Current(req.Context())
	if !ok {
		return t.base.RoundTrip(req)
	}
	stamped := req.Clone(req.Context())
	stamped.Header.Set(t.marker, id.String())
	return t.base.RoundTrip(stamped)
}
