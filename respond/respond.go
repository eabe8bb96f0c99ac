// Package respond builds the *http.Response values that tests register as
// canned results. Handlers get the response head (status and headers)
// delivered before the body, which is inherent in how net/http consumers
// read a response.
package respond

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Status returns a response with the given status code and no body.
func Status(code int) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       http.NoBody,
	}
}

// WithBody returns a response with the given status, Content-Type, and
// body bytes.
func WithBody(code int, contentType string, body []byte) *http.Response {
	resp := Status(code)
	resp.Header.Set("Content-Type", contentType)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp
}

// Text returns a text/plain response.
func Text(code int, body string) *http.Response {
	return WithBody(code, "text/plain; charset=utf-8", []byte(body))
}

// JSON marshals value and returns an application/json response. Values
// that cannot be marshalled panic; canned responses are built from
// literals in test code, so a marshalling failure is a bug in the test.
func JSON(code int, value interface{}) *http.Response {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("respond: cannot marshal canned response body: %s", err))
	}
	return WithBody(code, "application/json", data)
}

// Header returns a copy of resp with the given header set, for chaining
// onto the builders above.
func Header(resp *http.Response, key, value string) *http.Response {
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set(key, value)
	return resp
}
