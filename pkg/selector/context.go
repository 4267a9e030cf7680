package selector

import "context"

type expansionIDKey struct{}

type dispatchingKey struct{}

// WithExpansionID stores the id of the expansion a dispatch belongs to.
func WithExpansionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, expansionIDKey{}, id)
}

// ExpansionID returns the id stored by WithExpansionID, or "".
func ExpansionID(ctx context.Context) string {
	id, _ := ctx.Value(expansionIDKey{}).(string)
	return id
}

// markDispatching flags ctx as carrying commands produced by an expansion.
func markDispatching(ctx context.Context) context.Context {
	return context.WithValue(ctx, dispatchingKey{}, true)
}

// IsDispatching reports whether ctx belongs to a command produced by an
// expansion. Hosts use it to avoid expanding the same command twice.
func IsDispatching(ctx context.Context) bool {
	v, _ := ctx.Value(dispatchingKey{}).(bool)
	return v
}
