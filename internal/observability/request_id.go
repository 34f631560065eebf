package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

const RequestIDHeader = "X-Request-ID"

func NewRequestID() string {
	return uuid.New().String()
}

// requestIDFromHeader keeps a caller supplied id when it is a UUID and mints
// a new one otherwise.
func requestIDFromHeader(v string) string {
	if id, err := uuid.Parse(v); err == nil {
		return id.String()
	}
	return NewRequestID()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
