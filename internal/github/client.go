package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kalambet/devfolio/internal/errors"
	"github.com/kalambet/devfolio/internal/logfields"
)

const (
	defaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
)

// Profile is the user object returned by GET /users/{login}, kept as the
// response body. No schema is imposed and field order is preserved when it
// is re-encoded.
type Profile json.RawMessage

// MarshalJSON returns the body unchanged.
func (p Profile) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return p, nil
}

// Field returns a top-level field, or nil.
func (p Profile) Field(key string) any {
	var fields map[string]any
	if err := json.Unmarshal(p, &fields); err != nil {
		return nil
	}
	return fields[key]
}

// Login returns the "login" field when present.
func (p Profile) Login() string {
	s, _ := p.Field("login").(string)
	return s
}

// HTTPClient is the subset of *http.Client the fetcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads public profiles from the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
}

// NewClient creates a Client against baseURL (the public API when empty).
// token is optional and only raises the rate limit.
func NewClient(baseURL, token string) *Client {
	return NewClientWithHTTP(baseURL, token, &http.Client{})
}

// NewClientWithHTTP is NewClient with an injected HTTP client.
func NewClientWithHTTP(baseURL, token string, httpClient HTTPClient) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// FetchProfile issues a single GET for login. Any non-200 response is a
// fetch error carrying the status code under "status_code".
func (c *Client) FetchProfile(ctx context.Context, login string) (Profile, error) {
	if strings.TrimSpace(login) == "" {
		return nil, errors.New(errors.CategoryValidation, "GitHub username must not be empty")
	}

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(login))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFetch, "creating profile request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFetch, "requesting GitHub profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		slog.Debug("profile fetch rejected",
			logfields.Username(login),
			logfields.StatusCode(resp.StatusCode),
			slog.String("body", string(body)))
		return nil, errors.Newf(errors.CategoryFetch, "fetching GitHub profile: status code %d", resp.StatusCode).
			WithContext("status_code", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.CategoryFetch, "decoding GitHub profile")
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		return nil, errors.New(errors.CategoryFetch, "GitHub returned an empty profile")
	}
	profile := Profile(raw)
	slog.Debug("fetched GitHub profile", logfields.Username(profile.Login()), slog.Int("bytes", len(profile)))
	return profile, nil
}

// StatusCode extracts the HTTP status from a fetch error, or 0.
func StatusCode(err error) int {
	e, ok := errors.As(err)
	if !ok {
		return 0
	}
	code, _ := e.Field("status_code").(int)
	return code
}
