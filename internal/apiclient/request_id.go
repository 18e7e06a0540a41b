package apiclient

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// HeaderRequestID carries the correlation id shared with the backend logs.
const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID makes every call issued with ctx reuse id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the id stored by WithRequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

func requestID(ctx context.Context) string {
	if rid := RequestIDFrom(ctx); strings.TrimSpace(rid) != "" {
		return rid
	}
	return uuid.NewString()
}
