package middleware

import "context"

// contextKey is a private type for context keys defined by this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	// loggerCtxKey stores the request-scoped *slog.Logger.
	loggerCtxKey = contextKey("logger")
	// callerCtxKey stores the authenticated caller principal.
	callerCtxKey = contextKey("caller")
)

// GetCallerFromCtx retrieves the authenticated caller principal from the
// context. It returns the principal and a boolean indicating if it was found.
func GetCallerFromCtx(ctx context.Context) (string, bool) {
	val := ctx.Value(callerCtxKey)
	if val == nil {
		return "", false
	}
	caller, ok := val.(string)
	if !ok || caller == "" {
		return "", false
	}
	return caller, true
}
