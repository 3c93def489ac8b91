package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/gitlab-activity-viewer/authflow"
	apperrors "github.com/jrsteele09/gitlab-activity-viewer/internal/errors"
	"github.com/jrsteele09/gitlab-activity-viewer/server/loginsession"
	"github.com/rs/zerolog/log"
)

// requestSession binds the session store to one request's cookie. The
// session is created lazily on the first Save.
type requestSession struct {
	w       http.ResponseWriter
	r       *http.Request
	repo    loginsession.Repo
	name    string
	maxAge  time.Duration
	id      string
	session loginsession.Session
}

var _ authflow.Session = (*requestSession)(nil)

func (s *Server) session(w http.ResponseWriter, r *http.Request) *requestSession {
	rs := &requestSession{
		w:      w,
		r:      r,
		repo:   s.loginSessions,
		name:   s.config.GetSessionName(),
		maxAge: s.config.GetMaxSessionAge(),
	}

	cookie, err := r.Cookie(rs.name)
	if err != nil || cookie.Value == "" {
		return rs
	}

	session, err := s.loginSessions.Get(cookie.Value)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotFound) {
			log.Debug().Err(err).Msg("Discarding login session")
		}
		return rs
	}
	rs.id = cookie.Value
	rs.session = session
	return rs
}

func (rs *requestSession) Values() authflow.SessionValues {
	return authflow.SessionValues{
		State:        rs.session.State,
		CodeVerifier: rs.session.CodeVerifier,
		AccessToken:  rs.session.AccessToken,
		UserLoggedIn: rs.session.UserLoggedIn,
	}
}

func (rs *requestSession) Save(values authflow.SessionValues) error {
	if rs.id == "" {
		now := time.Now()
		rs.id = uuid.New().String()
		rs.session = loginsession.Session{
			CreatedAt: now,
			ExpiresAt: now.Add(rs.maxAge),
		}
		setSessionCookie(rs.w, rs.r, rs.name, rs.id, int(rs.maxAge.Seconds()))
	}

	rs.session.State = values.State
	rs.session.CodeVerifier = values.CodeVerifier
	rs.session.AccessToken = values.AccessToken
	rs.session.UserLoggedIn = values.UserLoggedIn

	if err := rs.repo.Upsert(rs.id, rs.session); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Renew deletes the stored record. The following Save writes the values under
// a fresh id and cookie.
func (rs *requestSession) Renew() error {
	if rs.id == "" {
		return nil
	}
	if err := rs.repo.Delete(rs.id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rs.id = ""
	return nil
}

func (rs *requestSession) Destroy() error {
	if rs.id != "" {
		if err := rs.repo.Delete(rs.id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	rs.id = ""
	rs.session = loginsession.Session{}
	setSessionCookie(rs.w, rs.r, rs.name, "", -1) // Delete cookie
	return nil
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, name, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string, status int) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, status)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
