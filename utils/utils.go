// Package utils provides utility functions for the application.
package utils

import "context"

func ToPtr[T any](v T) *T {
	return &v
}

// RequestIDFrom returns the request id stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
