package auth

import "context"

type contextKey string

const contextKeyUser contextKey = "auth.user_id"

// WithUserID stores the authenticated user in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUser, userID)
}

// UserIDFromContext extracts the user id, or "" when unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(contextKeyUser).(string); ok {
		return userID
	}
	return ""
}
