package server

import (
	"net/http"

	"github.com/jrsteele09/gitlab-activity-viewer/authflow"
	"github.com/rs/zerolog/log"
)

// LoginStartHandler sends the browser to the provider's authorize page
// (POST /login/index).
func (s *Server) LoginStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, err := s.flow.Start(s.session(w, r))
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		redirectSuccess(w, r, redirectURL, http.StatusFound)
	}
}

// OAuthCallbackHandler completes the login when the provider redirects back
// (GET /login/callback).
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := authflow.CallbackQuery{
			State:            q.Get("state"),
			Code:             q.Get("code"),
			Error:            q.Get("error"),
			ErrorDescription: q.Get("error_description"),
		}

		if _, err := s.flow.CompleteCallback(r.Context(), query, s.session(w, r)); err != nil {
			s.handleError(w, r, err)
			return
		}
		log.Info().Msg("User logged in")
		redirectSuccess(w, r, RouteIndex, http.StatusFound)
	}
}

// LogoutHandler ends a logged in session (POST /login/logout). Without a
// token there is nothing to end and the visitor is just sent home.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loggedOut, err := s.flow.Logout(r.Context(), s.session(w, r))
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		if loggedOut {
			log.Info().Msg("User logged out")
		}
		redirectSuccess(w, r, RouteIndex, http.StatusFound)
	}
}
