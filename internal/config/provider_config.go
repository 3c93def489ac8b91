package config

import "strings"

// ProviderConfig locates the GitLab instance used for login and data.
type ProviderConfig interface {
	GetProviderBaseURL() string
	GetAuthorizeURL() string
	GetTokenURL() string
	GetRevokeURL() string
	GetGraphQLURL() string
	GetEventsURL() string
}

type Provider struct {
	BaseURL    string `env:"PROVIDER_BASE_URL" envDefault:"https://gitlab.lnu.se"`
	GraphQLURL string `env:"GRAPHQL_URL"`
}

var _ ProviderConfig = Provider{}

func (p Provider) GetProviderBaseURL() string {
	return strings.TrimSuffix(p.BaseURL, "/")
}

func (p Provider) GetAuthorizeURL() string {
	return p.GetProviderBaseURL() + "/oauth/authorize"
}

func (p Provider) GetTokenURL() string {
	return p.GetProviderBaseURL() + "/oauth/token"
}

func (p Provider) GetRevokeURL() string {
	return p.GetProviderBaseURL() + "/oauth/revoke"
}

// GetGraphQLURL defaults to the instance's standard GraphQL endpoint.
func (p Provider) GetGraphQLURL() string {
	if p.GraphQLURL != "" {
		return p.GraphQLURL
	}
	return p.GetProviderBaseURL() + "/api/graphql"
}

func (p Provider) GetEventsURL() string {
	return p.GetProviderBaseURL() + "/api/v4/events"
}
