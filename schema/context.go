package schema

import "context"

type contextKey int

const _ctxKeyFailFast contextKey = iota

// WithFailFast returns a child context that makes Load and Dump stop at the
// first issue instead of collecting all of them.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current conversion should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	b, _ := ctx.Value(_ctxKeyFailFast).(bool)
	return b
}
