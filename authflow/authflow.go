// Package authflow runs the OAuth2 authorization code flow with PKCE against
// the GitLab identity provider and keeps the resulting bearer token on the
// caller's session.
package authflow

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/gitlab-activity-viewer/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const challengeMethodS256 = "S256"

// CallbackQuery holds the parameters the provider appends to the redirect URI.
type CallbackQuery struct {
	State            string
	Code             string
	Error            string
	ErrorDescription string
}

type Flow struct {
	oauth2Config *oauth2.Config
	revokeURL    string
	// fixedVerifier is shared by every attempt when configured. Empty means
	// a fresh verifier per attempt.
	fixedVerifier string
	httpClient    *http.Client
}

func New(oauthConfig config.OAuthConfig, provider config.ProviderConfig) *Flow {
	return &Flow{
		oauth2Config: &oauth2.Config{
			ClientID:     oauthConfig.GetClientID(),
			ClientSecret: oauthConfig.GetClientSecret(),
			RedirectURL:  oauthConfig.GetRedirectURI(),
			Scopes:       oauthConfig.GetRequestedScopes(),
			Endpoint: oauth2.Endpoint{
				AuthURL:   provider.GetAuthorizeURL(),
				TokenURL:  provider.GetTokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		revokeURL:     provider.GetRevokeURL(),
		fixedVerifier: oauthConfig.GetCodeVerifier(),
	}
}

// WithHTTPClient sets the client used for the token exchange.
func (f *Flow) WithHTTPClient(client *http.Client) *Flow {
	f.httpClient = client
	return f
}

// Start records a fresh state (and verifier) on the session and returns the
// provider URL the browser should be sent to.
func (f *Flow) Start(session Session) (string, error) {
	state, err := generateRandomString(stateLength)
	if err != nil {
		return "", fmt.Errorf("[authflow Start] generate state: %w", err)
	}

	verifier := f.fixedVerifier
	if verifier == "" {
		verifier = oauth2.GenerateVerifier()
	}

	values := session.Values()
	values.State = state
	values.CodeVerifier = verifier
	if err := session.Save(values); err != nil {
		return "", fmt.Errorf("[authflow Start] save session: %w", err)
	}

	return f.oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", CodeChallenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", challengeMethodS256),
	), nil
}

// CompleteCallback checks the returned state against the one stored by Start,
// exchanges the code for an access token and stores the token on the session.
func (f *Flow) CompleteCallback(ctx context.Context, query CallbackQuery, session Session) (string, error) {
	if query.Error != "" {
		return "", newAuthError(ProviderRejected, fmt.Errorf("%s: %s", query.Error, query.ErrorDescription))
	}

	values := session.Values()
	if values.State == "" || subtle.ConstantTimeCompare([]byte(query.State), []byte(values.State)) != 1 {
		log.Warn().Msg("OAuth callback state does not match the session")
		return "", newAuthError(CsrfMismatch, nil)
	}

	if query.Code == "" {
		return "", newAuthError(ProviderRejected, errors.New("missing authorization code"))
	}

	verifier := values.CodeVerifier
	if verifier == "" {
		verifier = f.fixedVerifier
	}

	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}
	token, err := f.oauth2Config.Exchange(ctx, query.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", newAuthError(ProviderRejected, fmt.Errorf("token exchange: %w", err))
	}
	if token.AccessToken == "" {
		return "", newAuthError(ProviderRejected, errors.New("token response has no access_token"))
	}

	if err := session.Renew(); err != nil {
		return "", fmt.Errorf("[authflow CompleteCallback] renew session: %w", err)
	}

	// state and verifier are single use
	values.State = ""
	values.CodeVerifier = ""
	values.AccessToken = token.AccessToken
	values.UserLoggedIn = values.AccessToken != ""
	if err := session.Save(values); err != nil {
		return "", fmt.Errorf("[authflow CompleteCallback] save session: %w", err)
	}

	return token.AccessToken, nil
}

// Logout destroys the session when it holds an access token. It reports
// whether anything was destroyed; a session without a token is left alone.
// The token is also revoked at the provider, but a failed revocation only
// gets logged.
func (f *Flow) Logout(ctx context.Context, session Session) (bool, error) {
	token := session.Values().AccessToken
	if token == "" {
		return false, nil
	}
	if err := session.Destroy(); err != nil {
		return false, fmt.Errorf("[authflow Logout] destroy session: %w", err)
	}
	if err := f.revoke(ctx, token); err != nil {
		log.Err(err).Msg("Failed to revoke access token")
	}
	return true, nil
}

func (f *Flow) revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", "access_token")
	form.Set("client_id", f.oauth2Config.ClientID)
	form.Set("client_secret", f.oauth2Config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := f.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke endpoint returned %s", resp.Status)
	}
	return nil
}
