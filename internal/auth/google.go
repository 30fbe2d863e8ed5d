// Package auth proxies the Google OAuth2 code flow for the frontend.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studybuddy/internal/apperr"
	"studybuddy/internal/config"
)

const (
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Tokens is the normalized answer of the provider's token endpoint.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// UserInfo is the provider's profile for the authenticated user.
type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	VerifiedEmail bool   `json:"verified_email"`
}

// Client exchanges authorization codes and fetches profiles. Endpoint
// URLs are fields so tests point them at a local stub.
type Client struct {
	cfg         config.GoogleConfig
	http        *http.Client
	TokenURL    string
	UserInfoURL string
}

func NewClient(cfg config.GoogleConfig) *Client {
	return &Client{
		cfg:         cfg,
		http:        &http.Client{Timeout: 15 * time.Second},
		TokenURL:    defaultTokenURL,
		UserInfoURL: defaultUserInfoURL,
	}
}

// AuthURL builds the browser consent URL the frontend redirects to.
func (c *Client) AuthURL() string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode()
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*Tokens, error) {
	if code == "" {
		return nil, apperr.New(apperr.Validation, "no authorization code provided")
	}
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens Tokens
	if err := c.do(req, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, apperr.New(apperr.UpstreamRejected, "identity provider returned no access token")
	}
	return &tokens, nil
}

// User fetches the profile behind an access token.
func (c *Client) User(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var info UserInfo
	if err := c.do(req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, "identity provider unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Wrap(apperr.UpstreamUnavailable, err, "reading identity provider response")
	}
	if resp.StatusCode != http.StatusOK {
		return apperr.Rejected(resp.StatusCode, fmt.Sprintf("identity provider error: %s", strings.TrimSpace(string(body))))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperr.Wrap(apperr.UpstreamRejected, err, "decoding identity provider response")
	}
	return nil
}

// RedirectSuccess builds the frontend redirect carrying tokens and
// profile; RedirectError carries the failure instead. The browser is
// mid-navigation here, so errors ride the redirect rather than a raw
// error page.
func RedirectSuccess(frontendURL string, tokens *Tokens, user *UserInfo) string {
	q := url.Values{}
	q.Set("access_token", tokens.AccessToken)
	q.Set("refresh_token", tokens.RefreshToken)
	q.Set("user_id", user.ID)
	q.Set("user_email", user.Email)
	q.Set("user_name", user.Name)
	q.Set("user_picture", user.Picture)
	return frontendURL + "?" + q.Encode()
}

func RedirectError(frontendURL, message string) string {
	q := url.Values{}
	q.Set("error", message)
	return frontendURL + "?" + q.Encode()
}
