package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	creatorInfoPath   = "/v2/post/publish/creator_info/query/"
	videoInitPath     = "/v2/post/publish/video/init/"
	contentInitPath   = "/v2/post/publish/content/init/"
	statusFetchPath   = "/v2/post/publish/status/fetch/"
	tokenPath         = "/v2/oauth/token/"
	authorizeEndpoint = "https://www.tiktok.com/v2/auth/authorize/"
)

type Client struct {
	baseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL url.URL) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL.String(), "/"),
		HTTPClient: http.DefaultClient,
	}
}

// send performs one authenticated call and returns the raw response body.
// A nil or empty JSON body is sent as an empty payload rather than "{}",
// which is what the API expects for no-body POSTs. Any error returned here
// is a *TransportError; semantic interpretation of the body is left to the
// caller.
func (c *Client) send(ctx context.Context, cred Credential, method, path string, body any, asJSON bool) ([]byte, error) {
	var payload io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
		// GETs and empty-body POSTs
	case url.Values:
		payload = strings.NewReader(b.Encode())
		contentType = "application/x-www-form-urlencoded"
	default:
		if !asJSON {
			return nil, &TransportError{Op: "encoding " + path, Err: fmt.Errorf("form body must be url.Values, got %T", body)}
		}
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: "encoding " + path, Err: err}
		}
		if string(encoded) != "{}" {
			payload = bytes.NewReader(encoded)
			contentType = "application/json; charset=UTF-8"
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, &TransportError{Op: "building request for " + path, Err: err}
	}
	if cred.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "reading response from " + path, Err: err}
	}
	return raw, nil
}
