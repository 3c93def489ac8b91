package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/gitlab-activity-viewer/authflow"
	"github.com/jrsteele09/gitlab-activity-viewer/gateway"
	apperrors "github.com/jrsteele09/gitlab-activity-viewer/internal/errors"
	"github.com/rs/zerolog/log"
)

type errorPage struct {
	page
	Status  int
	Message string
}

// statusFor maps the error kinds raised by the flow and the gateway to HTTP
// statuses. Anything unrecognised is a server error.
func statusFor(err error) int {
	var notFound *apperrors.NotFoundError
	var authErr *authflow.AuthError
	var gatewayErr *gateway.GatewayError

	switch {
	case errors.As(err, &notFound):
		return notFound.Status
	case errors.As(err, &authErr):
		if authErr.Kind == authflow.CsrfMismatch {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// handleError is the single continuation every handler reports failures to.
// Details are logged, the visitor only sees the status.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("Request failed")

	if s.env == "DEV" {
		logError(r.Method, r.URL.Path, err.Error())
	}

	data := errorPage{
		page:    s.page(w, r),
		Status:  status,
		Message: http.StatusText(status),
	}
	if renderErr := s.views.Render(w, status, ViewError, data); renderErr != nil {
		log.Err(renderErr).Msg("Failed to render error view")
		http.Error(w, http.StatusText(status), status)
	}
}

func logError(method, path, message string) {
	paddedMethod := method
	if c, ok := methodColors[method]; ok {
		paddedMethod = c.Sprint(method)
	}
	log.Debug().Msgf("[%s] %s %s", paddedMethod, path, red.Sprint(message))
}
