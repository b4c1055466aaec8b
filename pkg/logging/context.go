package logging

import "context"

type contextKey int

const (
	requestIDKey contextKey = iota
	adminIDKey
)

// WithRequestID tags ctx with the id of the dashboard request being served
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	return fromContext(ctx, requestIDKey)
}

// WithAdminID records the signed-in admin on ctx
func WithAdminID(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminIDKey, adminID)
}

func AdminIDFromContext(ctx context.Context) string {
	return fromContext(ctx, adminIDKey)
}

// WithRequestAndAdminID sets both ids; an empty adminID is left unset.
func WithRequestAndAdminID(ctx context.Context, requestID, adminID string) context.Context {
	ctx = WithRequestID(ctx, requestID)
	if adminID == "" {
		return ctx
	}
	return WithAdminID(ctx, adminID)
}

func fromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
