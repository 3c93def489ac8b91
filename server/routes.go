package server

import (
	"net/http"
	"path"

	apperrors "github.com/jrsteele09/gitlab-activity-viewer/internal/errors"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteLoginIndex, ChainMiddleware(s.LoginStartHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Provider data
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.RequireAccessToken)...))
	s.RegisterRouteHandler("GET "+RouteProject, ChainMiddleware(s.ProjectHandler(), s.HTMLMiddleWare(s.RequireAccessToken)...))
	s.RegisterRouteHandler("GET "+RouteActivities, ChainMiddleware(s.ActivitiesHandler(), s.HTMLMiddleWare(s.RequireAccessToken)...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare()...))

	// Everything else
	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), s.HTMLMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := path.Join("css", r.PathValue("file"))
		if err := StreamFile(w, r, filePath); err != nil {
			s.handleError(w, r, apperrors.Wrapf(apperrors.NewNotFound(r.URL.Path), "%s", err))
		}
	}
}

// NotFoundHandler answers every request no other route matched.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, r, apperrors.NewNotFound(r.URL.Path))
	}
}
