package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/gitlab-activity-viewer/gateway"
)

// page carries what the layout needs on every view.
type page struct {
	AppName  string
	LoggedIn bool
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) page {
	return page{
		AppName:  s.config.GetAppName(),
		LoggedIn: s.session(w, r).Values().UserLoggedIn,
	}
}

type profilePage struct {
	page
	User   gateway.User
	UserID string
}

type projectPage struct {
	page
	Groups []gateway.Group
}

type activitiesPage struct {
	page
	gateway.Activity
}

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.views.Render(w, http.StatusOK, ViewIndex, s.page(w, r)); err != nil {
			s.handleError(w, r, err)
		}
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.gateway.FetchUserProfile(r.Context(), accessTokenFrom(r.Context()))
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		data := profilePage{
			page:   s.page(w, r),
			User:   profile.User,
			UserID: profile.UserID,
		}
		if err := s.views.Render(w, http.StatusOK, ViewProfile, data); err != nil {
			s.handleError(w, r, err)
		}
	}
}

func (s *Server) ProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := s.gateway.FetchUserProjects(r.Context(), accessTokenFrom(r.Context()))
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		data := projectPage{
			page:   s.page(w, r),
			Groups: groups.Nodes,
		}
		if err := s.views.Render(w, http.StatusOK, ViewProject, data); err != nil {
			s.handleError(w, r, err)
		}
	}
}

func (s *Server) ActivitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// absent or malformed means the first page
		requestedPage, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			requestedPage = 1
		}

		activity, err := s.gateway.FetchUserActivity(r.Context(), accessTokenFrom(r.Context()), requestedPage)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		data := activitiesPage{
			page:     s.page(w, r),
			Activity: activity,
		}
		if err := s.views.Render(w, http.StatusOK, ViewActivities, data); err != nil {
			s.handleError(w, r, err)
		}
	}
}
