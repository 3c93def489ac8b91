package config

// OAuthConfig holds the client registration at the identity provider.
type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetRequestedScopes() []string
	// GetCodeVerifier returns the fixed PKCE verifier, or "" when a fresh
	// verifier should be generated for every authorization attempt.
	GetCodeVerifier() string
}

type OAuth struct {
	ClientID        string   `env:"CLIENT_ID,required,notEmpty"`
	ClientSecret    string   `env:"CLIENT_SECRET,required,notEmpty"`
	RedirectURI     string   `env:"REDIRECT_URI,required,notEmpty"`
	RequestedScopes []string `env:"REQUESTED_SCOPES" envSeparator:" " envDefault:"read_api read_user"`
	CodeVerifier    string   `env:"CODE_VERIFIER"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetRedirectURI() string {
	return o.RedirectURI
}

func (o OAuth) GetRequestedScopes() []string {
	return o.RequestedScopes
}

func (o OAuth) GetCodeVerifier() string {
	return o.CodeVerifier
}
