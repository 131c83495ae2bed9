package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	AdminKey  contextKey = "is_admin"
	TokenKey  contextKey = "token"
	UserKey   contextKey = "user"
)

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// IsAdminFromContext reports the admin flag of the user row loaded for this
// request when the session was resolved.
func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, _ := ctx.Value(AdminKey).(bool)
	return isAdmin
}

func SetUserContext(ctx context.Context, userID uuid.UUID, isAdmin bool) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	ctx = context.WithValue(ctx, AdminKey, isAdmin)
	return ctx
}

// GetTokenFromContext mendapatkan token dari context
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// SetValue and GetValue carry an arbitrary typed value (the page layer stores
// the signed-in user's view model here).
func SetValue[T any](ctx context.Context, key contextKey, v T) context.Context {
	return context.WithValue(ctx, key, v)
}

func GetValue[T any](ctx context.Context, key contextKey) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}
