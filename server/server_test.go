package server_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/gitlab-activity-viewer/internal/config"
	"github.com/jrsteele09/gitlab-activity-viewer/server"
	"github.com/jrsteele09/gitlab-activity-viewer/server/loginsession"
	"github.com/stretchr/testify/require"
)

const (
	testSessionName = "sid"
	testAccessToken = "glpat-server-test"
)

// fakeGitLab implements just enough of GitLab for a full login and browse.
type fakeGitLab struct {
	*httptest.Server
	graphqlFails atomic.Bool
	revoked      atomic.Int32
}

func newFakeGitLab(t *testing.T) *fakeGitLab {
	t.Helper()
	f := &fakeGitLab{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"access_token":%q,"token_type":"Bearer"}`, testAccessToken)
	})
	mux.HandleFunc("POST /oauth/revoke", func(w http.ResponseWriter, r *http.Request) {
		f.revoked.Add(1)
	})
	mux.HandleFunc("POST /api/graphql", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.graphqlFails.Load() || r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			_, _ = w.Write([]byte(`{"errors":[{"message":"unauthorized"}]}`))
			return
		}
		var body struct {
			Query string `json:"query"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Query, "groups") {
			_, _ = w.Write([]byte(`{"data":{"currentUser":{"groups":{"nodes":[
				{"name":"course","fullPath":"course","parent":{"projects":{"nodes":[
					{"name":"assignment","fullPath":"course/assignment",
					 "repository":{"tree":{"lastCommit":{"committedDate":"2024-01-15T14:30:05Z","authorName":"Jane"}}}}]}}}]}}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"currentUser":{"id":"gid://gitlab/User/12345","name":"Jane Doe","username":"jd222","email":"jane@example.com"}}}`))
	})
	mux.HandleFunc("GET /api/v4/events", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		events := []map[string]any{}
		for n := (page-1)*20 + 1; n <= page*20 && n <= 45; n++ {
			events = append(events, map[string]any{
				"target_type":  "MergeRequest",
				"action_name":  "opened",
				"created_at":   "2024-01-15T14:30:05Z",
				"target_title": fmt.Sprintf("event-%d", n),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(events)
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

type testApp struct {
	*httptest.Server
	gitlab *fakeGitLab
	client *http.Client
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gitlab := newFakeGitLab(t)

	settings := config.Settings{
		EnvVars: config.EnvVars{AppName: "Test Viewer", Env: "TEST"},
		OAuth: config.OAuth{
			ClientID:        "app-id",
			ClientSecret:    "app-secret",
			RedirectURI:     "http://localhost/login/callback",
			RequestedScopes: []string{"read_api"},
		},
		Provider: config.Provider{BaseURL: gitlab.URL},
		Session:  config.Session{Name: testSessionName, MaxAge: time.Hour},
		Display:  config.Display{Locale: "en-US", TimeZone: "UTC"},
	}

	srv, err := server.New(settings, loginsession.NewInMemoryLoginSessionRepo())
	require.NoError(t, err)

	app := &testApp{Server: httptest.NewServer(srv), gitlab: gitlab}
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app
}

func (a *testApp) do(t *testing.T, method, path string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, a.URL+path, nil)
	require.NoError(t, err)
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// startLogin posts to the login route and returns the state sent to GitLab.
func (a *testApp) startLogin(t *testing.T) string {
	t.Helper()
	resp, _ := a.do(t, http.MethodPost, server.RouteLoginIndex)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/oauth/authorize", location.Path)
	require.True(t, strings.HasPrefix(a.gitlab.URL, location.Scheme+"://"+location.Host))
	require.Equal(t, "S256", location.Query().Get("code_challenge_method"))
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	state := a.startLogin(t)
	resp, _ := a.do(t, http.MethodGet, server.RouteCallback+"?state="+url.QueryEscape(state)+"&code=good-code")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
}

func TestLoginBrowseLogout(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	resp, body := app.do(t, http.MethodGet, server.RouteIndex)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Log out")

	resp, body = app.do(t, http.MethodGet, server.RouteProfile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Jane Doe")
	require.Contains(t, body, `<span id="user-id">12345</span>`)
	require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))

	resp, body = app.do(t, http.MethodGet, server.RouteProject)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "assignment")
	require.Contains(t, body, "1/15/2024, 2:30:05 PM")

	resp, body = app.do(t, http.MethodGet, server.RouteActivities+"?page=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "event-21<")
	require.Contains(t, body, "event-40<")
	require.NotContains(t, body, "event-20<")
	require.NotContains(t, body, "event-41<")
	require.Contains(t, body, `<span class="current">2</span>`)
	require.Contains(t, body, `href="/login/activities?page=3"`)

	resp, _ = app.do(t, http.MethodPost, server.RouteLogout)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
	require.Contains(t, resp.Header.Get("Set-Cookie"), testSessionName+"=;")
	require.Contains(t, resp.Header.Get("Set-Cookie"), "Max-Age=0")
	require.EqualValues(t, 1, app.gitlab.revoked.Load())

	resp, _ = app.do(t, http.MethodGet, server.RouteProfile)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
}

func (a *testApp) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(a.URL)
	require.NoError(t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == testSessionName {
			return c.Value
		}
	}
	return ""
}

// getWithCookie sends a request carrying only the given session id.
func (a *testApp) getWithCookie(t *testing.T, path, sessionID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.URL+path, nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testSessionName, Value: sessionID})
	client := &http.Client{CheckRedirect: a.client.CheckRedirect}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestCallback_RenewsSessionID(t *testing.T) {
	app := newTestApp(t)
	state := app.startLogin(t)
	preLogin := app.sessionCookie(t)
	require.NotEmpty(t, preLogin)

	resp, _ := app.do(t, http.MethodGet, server.RouteCallback+"?state="+url.QueryEscape(state)+"&code=good-code")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	postLogin := app.sessionCookie(t)
	require.NotEmpty(t, postLogin)
	require.NotEqual(t, preLogin, postLogin)

	resp = app.getWithCookie(t, server.RouteProfile, preLogin)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = app.getWithCookie(t, server.RouteProfile, postLogin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCallback_StateMismatch(t *testing.T) {
	app := newTestApp(t)
	state := app.startLogin(t)

	resp, body := app.do(t, http.MethodGet, server.RouteCallback+"?state=not-"+url.QueryEscape(state)+"&code=good-code")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Contains(t, body, "403")

	resp, _ = app.do(t, http.MethodGet, server.RouteProfile)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestCallback_WithoutSession(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.do(t, http.MethodGet, server.RouteCallback+"?state=forged&code=good-code")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCallback_ProviderRejects(t *testing.T) {
	app := newTestApp(t)

	t.Run("bad code", func(t *testing.T) {
		state := app.startLogin(t)
		resp, _ := app.do(t, http.MethodGet, server.RouteCallback+"?state="+url.QueryEscape(state)+"&code=bad-code")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("user denied access", func(t *testing.T) {
		state := app.startLogin(t)
		resp, _ := app.do(t, http.MethodGet, server.RouteCallback+"?state="+url.QueryEscape(state)+"&error=access_denied")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t)
	for _, route := range []string{server.RouteProfile, server.RouteProject, server.RouteActivities} {
		t.Run(route, func(t *testing.T) {
			resp, _ := app.do(t, http.MethodGet, route)
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
		})
	}
}

func TestLogout_WithoutSession(t *testing.T) {
	app := newTestApp(t)
	resp, _ := app.do(t, http.MethodPost, server.RouteLogout)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RouteIndex, resp.Header.Get("Location"))
	require.Empty(t, resp.Header.Get("Set-Cookie"))
	require.Zero(t, app.gitlab.revoked.Load())
}

func TestGatewayFailure(t *testing.T) {
	app := newTestApp(t)
	app.login(t)
	app.gitlab.graphqlFails.Store(true)

	resp, body := app.do(t, http.MethodGet, server.RouteProfile)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.Contains(t, body, "Bad Gateway")
	require.NotContains(t, body, "unauthorized")
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/does/not/exist"},
		{http.MethodGet, server.RouteLoginIndex},
		{http.MethodDelete, "/login/anything"},
		{http.MethodGet, "/css/missing.css"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, body := app.do(t, tc.method, tc.path)
			require.Equal(t, http.StatusNotFound, resp.StatusCode)
			require.Contains(t, body, "404")
		})
	}
}

func TestIndexAndStatic(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.do(t, http.MethodGet, server.RouteIndex)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Test Viewer")
	require.Contains(t, body, "Log in with GitLab")

	resp, body = app.do(t, http.MethodGet, "/css/style.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	require.Contains(t, body, "pagination")
}

func TestLoginStart_HTMX(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodPost, app.URL+server.RouteLoginIndex, nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err := app.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Contains(t, resp.Header.Get("HX-Redirect"), "/oauth/authorize")
}
