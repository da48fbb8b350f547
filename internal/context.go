package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextOwnerKey ctxKey = "ownerID"

// OwnerIDFromContext returns the authenticated owner placed in ctx by the
// auth middleware, or "" when the request is anonymous.
func OwnerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ownerID, ok := ctx.Value(ContextOwnerKey).(string); ok {
		return ownerID
	}
	return ""
}

func ContextWithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ContextOwnerKey, ownerID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
