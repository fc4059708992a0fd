package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/serenelion/Earth-Care-Food-Company/internal/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "page_session"
	requestIDKey      contextKey = "request_id"
)

// SessionHeader carries the opaque page-session token. The middleware also
// accepts and sets a cookie with the same value for plain browser clients.
const (
	SessionHeader = "X-Storefront-Session"
	SessionCookie = "storefront_session"
)

// SessionMiddleware resolves the page session for the request, creating one
// when the client presents no token or an expired one, and echoes the token
// back on both the header and the cookie.
func SessionMiddleware(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionHeader)
			if token == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					token = c.Value
				}
			}

			s := mgr.Get(token)

			w.Header().Set(SessionHeader, s.Token)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    s.Token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) *session.PageSession {
	s, _ := ctx.Value(sessionContextKey).(*session.PageSession)
	return s
}
