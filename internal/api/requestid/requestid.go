// Package requestid contains utilities for handling the request id.
package requestid

import "context"

type requestIDKey struct{}

// InjectRequestID attaches a request id to a context.
func InjectRequestID(ctx context.Context, requestID uint64) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ExtractRequestID returns the request id from a context, or 0 when
// none was attached.
func ExtractRequestID(ctx context.Context) uint64 {
	if v, ok := ctx.Value(requestIDKey{}).(uint64); ok {
		return v
	}
	return 0
}
