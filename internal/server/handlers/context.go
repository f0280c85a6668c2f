package handlers

import "context"

// contextKey is the type for context keys set by the auth middleware
type contextKey string

const (
	// SubjectKey holds the authenticated username in the request context
	SubjectKey contextKey = "subject"
)

// SubjectFromContext returns the authenticated username, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}

// WithSubject stores the authenticated username in the context.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}
