package http

import "context"

type contextKey string

const (
	classIDContextKey     contextKey = "class_id"
	targetEmailContextKey contextKey = "target_email"
)

// ContextWithClassID injects the class identifier resolved from the request path.
func ContextWithClassID(ctx context.Context, classID string) context.Context {
	return context.WithValue(ctx, classIDContextKey, classID)
}

// ClassIDFromContext extracts a class identifier previously associated with the context.
func ClassIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(classIDContextKey).(string)
	return id, ok
}

// ContextWithTargetEmail injects the permission subject resolved from the request path.
func ContextWithTargetEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, targetEmailContextKey, email)
}

// TargetEmailFromContext extracts the permission subject previously associated with the
// context.
func TargetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(targetEmailContextKey).(string)
	return email, ok
}
