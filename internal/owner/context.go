package owner

import "context"

// ctxKey is the private context key for owner bindings.
type ctxKey struct{}

// NewContext returns a copy of ctx carrying o. Entry points that dispatch
// work on behalf of an owner resolve it from the context they were called
// with, so the binding is explicit rather than ambient goroutine state.
func NewContext(ctx context.Context, o *Owner) context.Context {
	return context.WithValue(ctx, ctxKey{}, o)
}

// FromContext returns the Owner bound to ctx, if any.
func FromContext(ctx context.Context) (*Owner, bool) {
	o, ok := ctx.Value(ctxKey{}).(*Owner)
	return o, ok
}
