// Package spotify implements the slice of the Spotify Web API this
// application consumes: the authorization-code token flow and the
// playlist, profile, and artist resource endpoints.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	accountsAuthURL  = "https://accounts.spotify.com/authorize"
	accountsTokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes requested during authorization.
var authScopes = []string{
	"user-read-private",
	"playlist-read-private",
	"playlist-read-collaborative",
}

var (
	// ErrRemoteRejected is returned when the token endpoint reports an
	// error or returns an incomplete payload.
	ErrRemoteRejected = errors.New("token endpoint rejected the request")

	// ErrStateMismatch is returned for a callback whose state nonce is
	// not outstanding. The token endpoint is never contacted in that case.
	ErrStateMismatch = errors.New("oauth state mismatch")
)

// Authenticator drives the authorization-code grant and its refresh
// variant against the Spotify accounts service.
type Authenticator struct {
	clientID     string
	clientSecret string
	redirectURI  string

	authURL    string
	tokenURL   string
	states     *StateStore
	httpClient *http.Client
	now        func() time.Time
}

// AuthOption configures an Authenticator.
type AuthOption func(*Authenticator)

// WithTokenURL overrides the token endpoint, used in tests.
func WithTokenURL(u string) AuthOption {
	return func(a *Authenticator) { a.tokenURL = u }
}

// WithAuthURL overrides the authorization endpoint, used in tests.
func WithAuthURL(u string) AuthOption {
	return func(a *Authenticator) { a.authURL = u }
}

// WithStateTTL overrides the state nonce lifetime.
func WithStateTTL(ttl time.Duration) AuthOption {
	return func(a *Authenticator) { a.states = NewStateStore(ttl) }
}

// NewAuthenticator creates an Authenticator for the given application
// credentials. The redirect URI must match the one registered with the
// Spotify application.
func NewAuthenticator(clientID, clientSecret, redirectURI string, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authURL:      accountsAuthURL,
		tokenURL:     accountsTokenURL,
		states:       NewStateStore(DefaultStateTTL),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AuthURL builds the browser authorization URL, issuing and recording a
// fresh state nonce. Returns the URL and the nonce.
func (a *Authenticator) AuthURL() (string, string) {
	state := a.states.Issue()

	params := url.Values{
		"client_id":     {a.clientID},
		"redirect_uri":  {a.redirectURI},
		"response_type": {"code"},
		"state":         {state},
		"scope":         {strings.Join(authScopes, " ")},
	}
	return a.authURL + "?" + params.Encode(), state
}

// ConsumeState validates a callback state nonce, removing it on match.
// A nonce can be consumed at most once; replays report false.
func (a *Authenticator) ConsumeState(state string) bool {
	return state != "" && a.states.Consume(state)
}

// Exchange trades an authorization code for a token pair. The response
// must carry access_token, refresh_token, and expires_in; anything less,
// or an error field, yields ErrRemoteRejected.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	resp, err := a.postToken(ctx, url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {a.redirectURI},
	})
	if err != nil {
		return nil, err
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: incomplete token response", ErrRemoteRejected)
	}

	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       a.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// Refresh trades a refresh token for a new access token. The remote
// does not return a new refresh token; the returned token carries the
// original one, which remains valid.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	resp, err := a.postToken(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	})
	if err != nil {
		return nil, err
	}

	if resp.AccessToken == "" || resp.ExpiresIn <= 0 {
		return nil, fmt.Errorf("%w: incomplete refresh response", ErrRemoteRejected)
	}

	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		Expiry:       a.now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}, nil
}

// postToken sends a form POST to the token endpoint with HTTP Basic
// auth derived from the client credentials.
func (a *Authenticator) postToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("%w: unparseable response (status %d)", ErrRemoteRejected, resp.StatusCode)
	}

	if tr.Error != "" {
		return nil, fmt.Errorf("%w: %s (%s)", ErrRemoteRejected, tr.Error, tr.ErrorDescription)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteRejected, resp.StatusCode)
	}

	return &tr, nil
}
