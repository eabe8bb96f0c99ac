// Package testid defines the identifier type that partitions mock state
// between concurrently running tests.
//
// An ID is a 128-bit random value in canonical UUID text form. Every test
// case that wants its own isolated queue of mock responses generates a
// fresh ID with New; reusing an ID across concurrently running tests
// defeats the isolation guarantee.
package testid

import (
	"crypto/rand"
	"fmt"
)

// ID is an opaque 128-bit test identifier.
type ID [16]byte

// New returns a fresh random ID. It panics only if the platform's random
// source is unreadable, which is not a recoverable condition for tests.
func New() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic(fmt.Sprintf("testid: cannot read random source: %s", err))
	}
	// RFC 4122 version 4, variant 10
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// String returns the canonical 8-4-4-4-12 lowercase hex form.
func (id ID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", id[0:4], id[4:6], id[6:8], id[8:10], id[10:16])
}

// Parse converts the canonical text form back into an ID. The input must
// be exactly 36 characters with dashes in the standard positions; any
// other input, including the empty string, is an error.
func Parse(s string) (ID, error) {
	var id ID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return id, fmt.Errorf("malformed test identifier %q", s)
	}
	n := 0
	for i := 0; i < len(s); {
		if s[i] == '-' {
			i++
			continue
		}
		// Extra dashes in unexpected positions can leave an odd number of
		// hex digits; guard the pairwise read.
		if i+1 >= len(s) || n >= len(id) {
			return ID{}, fmt.Errorf("malformed test identifier %q", s)
		}
		hi, ok1 := hexVal(s[i])
		lo, ok2 := hexVal(s[i+1])
		if !ok1 || !ok2 {
			return ID{}, fmt.Errorf("malformed test identifier %q", s)
		}
		id[n] = hi<<4 | lo
		n++
		i += 2
	}
	if n != len(id) {
		return ID{}, fmt.Errorf("malformed test identifier %q", s)
	}
	return id, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
