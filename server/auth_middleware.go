package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/gitlab-activity-viewer/internal/errors"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAccessToken stores the session's bearer token
const ContextKeyAccessToken ContextKey = "access_token"

// RequireAccessToken sends visitors without a logged in session back to the
// start page. The session's token is placed on the request context.
func (s *Server) RequireAccessToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := s.session(w, r).Values().AccessToken
		if token == "" {
			log.Debug().Err(apperrors.ErrNotLoggedIn).Str("path", r.URL.Path).Msg("Redirecting to the start page")
			redirectSuccess(w, r, RouteIndex, http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), ContextKeyAccessToken, token)
		next(w, r.WithContext(ctx))
	}
}

func accessTokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyAccessToken).(string)
	return token
}
