package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/gitlab-activity-viewer/authflow"
	"github.com/jrsteele09/gitlab-activity-viewer/gateway"
	"github.com/jrsteele09/gitlab-activity-viewer/internal/config"
	"github.com/jrsteele09/gitlab-activity-viewer/server/loginsession"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	mux           *http.ServeMux
	routes        []string
	config        config.Config
	flow          *authflow.Flow
	gateway       *gateway.Gateway
	loginSessions loginsession.Repo
	views         *Views
}

func New(config config.Config, loginSessionRepo loginsession.Repo) (*Server, error) {
	views, err := NewViews()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse views: %w", err)
	}

	s := &Server{
		env:           config.GetEnv(),
		mux:           http.NewServeMux(),
		config:        config,
		flow:          authflow.New(config, config),
		gateway:       gateway.New(config, config),
		loginSessions: loginSessionRepo,
		views:         views,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("*", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	c, ok := methodColors[method]
	if !ok {
		c = gray
	}
	log.Info().Msgf("[%s] %s", c.Sprint(paddedMethod), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
