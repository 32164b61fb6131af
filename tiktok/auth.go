package tiktok

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var errMissingAccessToken = errors.New("no access token in response")

// Credential is an immutable snapshot of an access grant. Refreshing never
// mutates an existing Credential; it produces a new one, so a Credential in
// flight through a publish attempt can be read without synchronization.
type Credential struct {
	AccessToken      string
	RefreshToken     string
	OpenID           string
	Scope            string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
}

// Expired reports whether the access token has passed its expiry, with a
// minute of slack so a token isn't used right at the boundary.
func (c Credential) Expired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt.Add(-time.Minute))
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	OpenID           string `json:"open_id"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	RefreshToken     string `json:"refresh_token"`
	Scope            string `json:"scope"`
	TokenType        string `json:"token_type"`

	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// AuthorizationURL builds the URL a user must visit to grant the app access.
// The state value is echoed back on the redirect and must be checked there.
func AuthorizationURL(clientKey, redirectURI, state string, scopes []string) string {
	params := url.Values{}
	params.Add("client_key", clientKey)
	params.Add("response_type", "code")
	params.Add("scope", strings.Join(scopes, ","))
	params.Add("redirect_uri", redirectURI)
	params.Add("state", state)
	return authorizeEndpoint + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for a Credential. The token
// endpoint takes form-encoded bodies, unlike the rest of the API.
func (c *Client) ExchangeCode(ctx context.Context, clientKey, clientSecret, code, redirectURI string) (Credential, error) {
	form := url.Values{}
	form.Set("client_key", clientKey)
	form.Set("client_secret", clientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURI)
	return c.requestToken(ctx, form)
}

// RefreshCredential exchanges the refresh token in cred for a fresh
// Credential. The input is left untouched.
func (c *Client) RefreshCredential(ctx context.Context, clientKey, clientSecret string, cred Credential) (Credential, error) {
	form := url.Values{}
	form.Set("client_key", clientKey)
	form.Set("client_secret", clientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	return c.requestToken(ctx, form)
}

func (c *Client) requestToken(ctx context.Context, form url.Values) (Credential, error) {
	raw, err := c.send(ctx, Credential{}, http.MethodPost, tokenPath, form, false)
	if err != nil {
		return Credential{}, err
	}

	var resp tokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Credential{}, &ParseError{Stage: "token", Err: err}
	}
	if resp.Error != "" {
		return Credential{}, &SessionError{Stage: "token exchange", Code: resp.Error, Message: resp.ErrorDescription}
	}
	if resp.AccessToken == "" {
		return Credential{}, &ParseError{Stage: "token", Err: errMissingAccessToken}
	}

	now := time.Now()
	return Credential{
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
		OpenID:           resp.OpenID,
		Scope:            resp.Scope,
		ExpiresAt:        now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		RefreshExpiresAt: now.Add(time.Duration(resp.RefreshExpiresIn) * time.Second),
	}, nil
}
