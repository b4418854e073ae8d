package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/deepgram/parley/internal/services/session"
	"github.com/deepgram/parley/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	sessionIDKey contextKey = "sessionID"
)

// SessionIssuer is the part of the session service the middleware needs
type SessionIssuer interface {
	ValidateSession(r *http.Request) (*session.SessionClaims, error)
	CreateSession(ctx context.Context, w http.ResponseWriter) (string, error)
}

// RequireSession resolves the caller's session, starting a new one when the
// request carries none, and stores its id in the request context
func RequireSession(sessions SessionIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			claims, err := sessions.ValidateSession(r)
			switch {
			case err == nil:
				sessionID = claims.SessionID
			case errors.Is(err, session.ErrNoSession):
				sessionID, err = sessions.CreateSession(r.Context(), w)
				if err != nil {
					log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to create session")
					httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
					return
				}
			default:
				log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to validate session")
				httpext.JsonError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

// WithSessionID returns ctx carrying the session id
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID retrieves the session id from the request context
func GetSessionID(r *http.Request) string {
	if id, ok := r.Context().Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
