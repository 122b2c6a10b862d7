package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/buymeabook/buymeabook-server/internal/auth"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const sessionKey ctxKey = "session"

// Session is the authenticated caller, taken from the session token.
type Session struct {
	Handle  string
	Subject string
}

// GetSession returns the caller's session, or a 401 error when the request
// carried no valid token.
func GetSession(ctx context.Context) (Session, error) {
	sess, ok := ctx.Value(sessionKey).(Session)
	if !ok || sess.Handle == "" {
		return Session{}, huma.Error401Unauthorized("Authentication required")
	}
	return sess, nil
}

func setSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// authMiddleware attaches the session of a valid Bearer token. Requests
// without one continue anonymously; handlers that need a caller reject them.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAccessToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := setSession(r.Context(), Session{Handle: claims.Handle, Subject: claims.Subject})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
