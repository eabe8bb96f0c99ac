// Package testctx propagates the active test identifier through a call
// tree using context.Context.
//
// A test establishes its identifier once at the top of its scope:
//
//	ctx := testctx.With(context.Background(), id)
//
// Every function and goroutine that receives that context (or a context
// derived from it) can recover the identifier with Current, at any depth,
// without explicit parameter threading. Because context values are
// immutable, nested With calls shadow correctly and the enclosing value is
// restored the moment the inner context goes out of use; two contexts
// built for different tests can never observe each other's identifier.
package testctx

import (
	"context"

	"github.com/testmux/testmux/testid"
)

type idKey struct{}

// With returns a context carrying id as the ambient test identifier.
// The parent context is not modified.
func With(ctx context.Context, id testid.ID) context.Context {
	return context.WithValue(ctx, idKey{}, id)
}

// Current returns the ambient test identifier for ctx, or false if ctx is
// outside any scope established by With.
func Current(ctx context.Context) (testid.ID, bool) {
	id, ok := ctx.Value(idKey{}).(testid.ID)
	return id, ok
}

// Run invokes scope with a context carrying id, returning whatever scope
// returns. It exists as a convenience for test harness code that wants an
// explicit scope boundary; the identifier is visible only inside scope.
func Run(ctx context.Context, id testid.ID, scope func(ctx context.Context) error) error {
	return scope(With(ctx, id))
}
