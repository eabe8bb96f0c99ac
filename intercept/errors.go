package intercept

import (
	"fmt"

	"github.com/testmux/testmux/testid"
)

// InvalidMarkerError is returned when a request carries the marker header
// but its value does not parse as a test identifier. The empty string is
// the most common offender: an empty marker still claims the request,
// and then fails here rather than leaking to the network.
type InvalidMarkerError struct {
	Value string // the offending marker value
	URL   string // the request URL, for locating the call site
}

func (e *InvalidMarkerError) Error() string {
	return fmt.Sprintf("missing or invalid test identifier %q in request to %s", e.Value, e.URL)
}

// UnregisteredError is returned when a request's test identifier parses
// but no handler is queued for it. This usually means the test forgot to
// register a response, or registered fewer responses than requests issued.
type UnregisteredError struct {
	ID  testid.ID
	URL string
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("no handler registered for test identifier %s (request to %s)", e.ID, e.URL)
}
