// Package fixtures loads canned responses from YAML documents, for test
// suites that prefer declaring their mock traffic as data instead of
// building handlers in code.
//
// A fixture document is a list of stubs, consumed in document order:
//
//	stubs:
//	  - status: 200
//	    headers:
//	      Content-Type: application/json
//	    body: '{"name": "morgan"}'
//	  - status: 404
//	    json:
//	      error: user not found
//
// "body" supplies the raw body; "json" supplies a value to marshal, with
// the Content-Type defaulted to application/json. A stub may use one or
// the other, not both.
package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/testmux/testmux"
	"github.com/testmux/testmux/registry"
	"github.com/testmux/testmux/respond"
	"github.com/testmux/testmux/testid"
)

// Stub is one declarative canned response.
type Stub struct {
	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`
	JSON    interface{}       `yaml:"json"`
}

type document struct {
	Stubs []Stub `yaml:"stubs"`
}

// Load parses a fixture document. Stubs are returned in document order,
// which is the order they will be consumed in.
func Load(r io.Reader) ([]Stub, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("malformed fixture document: %w", err)
	}
	for i := range doc.Stubs {
		if err := doc.Stubs[i].validate(); err != nil {
			return nil, fmt.Errorf("stub %d: %w", i+1, err)
		}
	}
	return doc.Stubs, nil
}

func (s *Stub) validate() error {
	if s.Status == 0 {
		s.Status = http.StatusOK
	}
	if s.Status < 100 || s.Status > 599 {
		return fmt.Errorf("status %d out of range", s.Status)
	}
	if s.Body != "" && s.JSON != nil {
		return fmt.Errorf(`"body" and "json" are mutually exclusive`)
	}
	return nil
}

// Response builds the *http.Response this stub describes.
func (s Stub) Response() (*http.Response, error) {
	var resp *http.Response
	switch {
	case s.JSON != nil:
		data, err := json.Marshal(s.JSON)
		if err != nil {
			return nil, fmt.Errorf("cannot marshal stub json: %w", err)
		}
		resp = respond.WithBody(s.Status, "application/json", data)
	case s.Body != "":
		resp = respond.WithBody(s.Status, "text/plain; charset=utf-8", []byte(s.Body))
	default:
		resp = respond.Status(s.Status)
	}
	for k, v := range s.Headers {
		resp.Header.Set(k, v)
	}
	return resp, nil
}

// Handler adapts the stub into a registry handler.
func (s Stub) Handler() registry.Handler {
	return func(*http.Request) (*http.Response, error) {
		return s.Response()
	}
}

// RegisterAll queues every stub under id, preserving document order.
func RegisterAll(mux *testmux.Mux, id testid.ID, stubs []Stub) {
	for _, s := range stubs {
		mux.Register(id, s.Handler())
	}
}
