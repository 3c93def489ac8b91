// Package gateway reads the logged in user's data from GitLab with the
// user's bearer token and reshapes it for the views.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/jrsteele09/gitlab-activity-viewer/internal/config"
	"github.com/jrsteele09/gitlab-activity-viewer/internal/locale"
	"github.com/jrsteele09/gitlab-activity-viewer/internal/utils"
	"github.com/machinebox/graphql"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	eventsPageSize = 20
	maxEvents      = 101
)

type Gateway struct {
	graphqlURL string
	eventsURL  string
	formatter  locale.Formatter
	httpClient *http.Client
}

func New(provider config.ProviderConfig, display config.DisplayConfig) *Gateway {
	return &Gateway{
		graphqlURL: provider.GetGraphQLURL(),
		eventsURL:  provider.GetEventsURL(),
		formatter:  locale.New(display.GetLocale(), display.GetLocation()),
	}
}

// WithHTTPClient sets the base client the bearer transport is layered on.
func (g *Gateway) WithHTTPClient(client *http.Client) *Gateway {
	g.httpClient = client
	return g
}

// client returns a short-lived client that adds "Authorization: Bearer token"
// to every request.
func (g *Gateway) client(ctx context.Context, token string) *http.Client {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// runQuery logs only the query name and outcome. Responses carry personal
// data and stay out of the log.
func (g *Gateway) runQuery(ctx context.Context, token, op, query string, resp any) error {
	client := graphql.NewClient(g.graphqlURL, graphql.WithHTTPClient(g.client(ctx, token)))
	err := client.Run(ctx, graphql.NewRequest(query), resp)
	log.Debug().Str("component", "graphql").Str("query", op).Bool("ok", err == nil).Msg("GraphQL query")
	return err
}

func (g *Gateway) FetchUserProfile(ctx context.Context, token string) (Profile, error) {
	var resp struct {
		CurrentUser *User `json:"currentUser"`
	}
	if err := g.runQuery(ctx, token, "user profile", userProfileQuery, &resp); err != nil {
		return Profile{}, queryFailed("user profile", err)
	}
	if resp.CurrentUser == nil {
		return Profile{}, queryFailed("user profile", errors.New("no current user for token"))
	}
	return Profile{
		User:   *resp.CurrentUser,
		UserID: digitsOnly(resp.CurrentUser.ID),
	}, nil
}

// digitsOnly turns a global id such as "gid://gitlab/User/12345" into "12345".
func digitsOnly(id string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, id)
}

// FetchUserProjects returns the user's first groups and their projects with
// each last commit date reformatted for display. Projects missing commit data
// or with an unreadable date are returned as the provider sent them.
func (g *Gateway) FetchUserProjects(ctx context.Context, token string) (Groups, error) {
	var resp struct {
		CurrentUser *struct {
			Groups Groups `json:"groups"`
		} `json:"currentUser"`
	}
	if err := g.runQuery(ctx, token, "user projects", userProjectsQuery, &resp); err != nil {
		return Groups{}, queryFailed("user projects", err)
	}
	if resp.CurrentUser == nil {
		return Groups{}, queryFailed("user projects", errors.New("no current user for token"))
	}

	formatter := locale.FromContext(ctx, g.formatter)
	groups := resp.CurrentUser.Groups
	for _, group := range groups.Nodes {
		if group.Parent == nil {
			log.Warn().Str("group", group.FullPath).Msg("Group has no parent, skipping its projects")
			continue
		}
		for _, project := range group.Parent.Projects.Nodes {
			reformatCommitDate(formatter, project)
		}
	}
	return groups, nil
}

func reformatCommitDate(formatter locale.Formatter, project *Project) {
	if project == nil || project.Repository == nil || project.Repository.Tree == nil || project.Repository.Tree.LastCommit == nil {
		path := ""
		if project != nil {
			path = project.FullPath
		}
		log.Warn().Str("project", path).Msg("Missing repository, tree, or lastCommit")
		return
	}
	commit := project.Repository.Tree.LastCommit
	formatted, ok := formatter.Reformat(commit.CommittedDate)
	if !ok {
		log.Warn().Str("project", project.FullPath).Str("committedDate", commit.CommittedDate).Msg("Invalid committedDate")
		return
	}
	commit.CommittedDate = formatted
}

// FetchUserActivity collects up to maxEvents of the user's most recent events,
// one page at a time, and returns the requested page of eventsPageSize.
// requestedPage is clamped to the available pages.
func (g *Gateway) FetchUserActivity(ctx context.Context, token string, requestedPage int) (Activity, error) {
	client := g.client(ctx, token)

	var buffer []event
	for page := 1; len(buffer) < maxEvents; page++ {
		events, err := g.fetchEventsPage(ctx, client, page)
		if err != nil {
			return Activity{}, queryFailed(fmt.Sprintf("events page %d", page), err)
		}
		if len(events) == 0 {
			break
		}
		buffer = append(buffer, events...)
	}
	if len(buffer) > maxEvents {
		buffer = buffer[:maxEvents]
	}

	total := len(buffer)
	totalPages := (total + eventsPageSize - 1) / eventsPageSize
	currentPage := clampPage(requestedPage, totalPages)
	start := min((currentPage-1)*eventsPageSize, total)
	end := min(start+eventsPageSize, total)

	formatter := locale.FromContext(ctx, g.formatter)
	window := make([]ActivityEvent, 0, end-start)
	for _, e := range buffer[start:end] {
		createdAt, ok := formatter.Reformat(e.CreatedAt)
		if !ok {
			log.Warn().Str("created_at", e.CreatedAt).Msg("Invalid event created_at")
		}
		window = append(window, ActivityEvent{
			TargetType:  utils.Value(e.TargetType),
			ActionName:  e.ActionName,
			CreatedAt:   createdAt,
			TargetTitle: utils.Value(e.TargetTitle),
		})
	}

	return Activity{
		Events:      window,
		TotalPages:  totalPages,
		CurrentPage: currentPage,
	}, nil
}

// clampPage keeps requested within [1, totalPages]. With no pages at all the
// first (empty) page is current.
func clampPage(requested, totalPages int) int {
	page := max(1, requested)
	if totalPages > 0 {
		page = min(page, totalPages)
	}
	return page
}

func (g *Gateway) fetchEventsPage(ctx context.Context, client *http.Client, page int) ([]event, error) {
	u, err := url.Parse(g.eventsURL)
	if err != nil {
		return nil, fmt.Errorf("parse events url: %w", err)
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(eventsPageSize))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("events endpoint returned %s", resp.Status)
	}

	var events []event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}
