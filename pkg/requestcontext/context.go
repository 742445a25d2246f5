// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// The excluded HTTP and auth layers set these values; the session core only
// reads them. Keeping this package free of net/http lets services import it
// without pulling in transport code.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	actorID, actorName := requestcontext.Actor(ctx)
//	ua := requestcontext.UserAgent(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithUserAgent(ctx, "Mozilla/5.0 (iPad; ...)")
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey     struct{}
	actorNameKey   struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithActor records the authenticated actor performing the request.
func WithActor(ctx context.Context, actorID, actorName string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey{}, actorID)
	return context.WithValue(ctx, actorNameKey{}, actorName)
}

// Actor returns the actor id and display name set by the auth layer.
// Both are empty when no identity context was supplied.
func Actor(ctx context.Context) (actorID, actorName string) {
	actorID, _ = ctx.Value(actorIDKey{}).(string)
	actorName, _ = ctx.Value(actorNameKey{}).(string)
	return actorID, actorName
}

// WithUserAgent records the raw User-Agent header for device capture.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgent returns the raw user-agent string, or "" when absent.
func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}

// WithRequestID records a correlation id for log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id, or "" when absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Now returns the request time if one was injected, falling back to the
// wall clock. Services read the clock exclusively through this accessor so
// tests can pin time.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full middleware chain
//   - The sweeper, which needs one consistent "now" across a batch
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
