package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/payflowhq/payflow-backend/internal/auth"
	"github.com/payflowhq/payflow-backend/internal/http/respond"
)

type ctxKey int

const userIDKey ctxKey = iota

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// Authenticate is the single verification gate for protected endpoints. It
// resolves the session token from the "token" cookie or an Authorization
// bearer header, verifies it, and injects the authenticated user id into the
// request context. Requests without a valid token get 401 and never reach the
// wrapped handler.
func Authenticate(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := sessionToken(r)
		if tokenStr == "" {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		userID, err := tokens.Verify(tokenStr)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id placed in the context by
// Authenticate.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// WithUserID returns a context carrying an authenticated user id, bypassing
// token verification. Intended for handler tests.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
