package auth

import (
	"context"
	"net/http"
)

// User is the authenticated caller.
type User struct {
	ID        string
	SessionID string
}

type userContextKey struct{}

// SetUserToContext stores the authenticated user for the rest of the chain.
func SetUserToContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUserFromContext returns the authenticated user, or nil.
func GetUserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// UserID returns the authenticated user id, or "".
func UserID(ctx context.Context) string {
	if u := GetUserFromContext(ctx); u != nil {
		return u.ID
	}
	return ""
}

// RequestUserID is UserID for a request. It fits ratelimit.UserOrIP.
func RequestUserID(r *http.Request) string {
	return UserID(r.Context())
}
