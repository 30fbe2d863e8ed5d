package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"studybuddy/internal/apperr"
	"studybuddy/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8000/auth/google/callback",
	})
	c.TokenURL = srv.URL + "/token"
	c.UserInfoURL = srv.URL + "/userinfo"
	return c
}

func TestExchange_Success(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("code"); got != "the-code" {
			t.Errorf("code = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3599}`))
	}))

	tokens, err := c.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if tokens.AccessToken != "at" || tokens.RefreshToken != "rt" || tokens.ExpiresIn != 3599 {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
}

func TestExchange_EmptyCode(t *testing.T) {
	c := NewClient(config.GoogleConfig{})
	if _, err := c.Exchange(context.Background(), ""); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExchange_UpstreamRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))

	_, err := c.Exchange(context.Background(), "expired-code")
	if apperr.KindOf(err) != apperr.UpstreamRejected {
		t.Fatalf("expected upstream_rejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("upstream body should be preserved in the error: %v", err)
	}
}

func TestExchange_MissingAccessToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	_, err := c.Exchange(context.Background(), "code")
	if apperr.KindOf(err) != apperr.UpstreamRejected {
		t.Fatalf("expected upstream_rejected, got %v", err)
	}
}

func TestUser_Success(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("authorization header = %q", got)
		}
		w.Write([]byte(`{"id":"42","email":"s@example.com","name":"Student","picture":"p.png","verified_email":true}`))
	}))

	user, err := c.User(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if user.ID != "42" || !user.VerifiedEmail {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRedirect_ErrorsRideTheRedirect(t *testing.T) {
	target := RedirectError("https://frontend.example.com", "Google API error: access denied")
	u, err := url.Parse(target)
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Query().Get("error"); got != "Google API error: access denied" {
		t.Errorf("error not encoded into redirect: %q", got)
	}
}

func TestRedirect_Success(t *testing.T) {
	target := RedirectSuccess("https://frontend.example.com",
		&Tokens{AccessToken: "at", RefreshToken: "rt"},
		&UserInfo{ID: "1", Email: "a@b.c", Name: "N", Picture: "pic"})
	u, err := url.Parse(target)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("access_token") != "at" || q.Get("user_email") != "a@b.c" {
		t.Errorf("redirect query incomplete: %s", target)
	}
}
