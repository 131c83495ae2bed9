package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"ski-portal/internal/data/entity"
	"ski-portal/pkg/utils"

	"go.uber.org/zap"
)

// SessionResolver turns a session token into the active user it belongs to,
// returning (nil, nil) for unknown, expired, or revoked tokens.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
}

// TokenFromRequest reads the session token from the cookie, falling back to
// an "Authorization: Bearer <token>" header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CurrentUser returns the user attached by AuthSession or LoadSession.
func CurrentUser(ctx context.Context) (*entity.User, bool) {
	user, ok := utils.GetValue[*entity.User](ctx, utils.UserKey)
	return user, ok && user != nil
}

func withUser(ctx context.Context, user *entity.User, token string) context.Context {
	ctx = utils.SetUserContext(ctx, user.ID, user.IsAdmin)
	ctx = utils.SetTokenContext(ctx, token)
	return utils.SetValue(ctx, utils.UserKey, user)
}

// AuthSession validates the session token and rejects the request with 401
// when there is no valid session.
func AuthSession(resolver SessionResolver, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				utils.ResponseUnauthorized(w, "Missing session token")
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				logger.Error("Failed to validate session", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if user == nil {
				logger.Warn("Invalid or expired session", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user, token)))
		})
	}
}

// LoadSession attaches the signed-in user when there is one and never
// rejects the request. Pages use it to decide what to render.
func LoadSession(resolver SessionResolver, cookieName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				logger.Error("Failed to load session", zap.Error(err))
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user, token)))
		})
	}
}

// Admin must run after AuthSession.
func Admin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			if !utils.IsAdminFromContext(r.Context()) {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePageAuth redirects anonymous visitors to the login page, remembering
// where they were headed.
func RequirePageAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				redirectToLogin(w, r, loginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePageAdmin redirects anonymous visitors to the login page and hands
// signed-in non-admins to forbidden.
func RequirePageAdmin(loginPath string, forbidden http.Handler, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				redirectToLogin(w, r, loginPath)
				return
			}

			if !utils.IsAdminFromContext(r.Context()) {
				logger.Warn("Admin page: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				forbidden.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if r.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
