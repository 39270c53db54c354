package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	applog "cashflow/internal/log"
)

// SessionCookie names the cookie carrying the browser session ID.
const SessionCookie = "cashflow_session"

type sessionKey struct{}

// withSession makes sure every request carries a session ID, issuing a new
// one when the cookie is missing or not a UUID. The request logger is tagged
// with the session.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		logger := applog.FromContext(r.Context()).With(applog.FieldSession, id)
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session ID set by withSession.
func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
