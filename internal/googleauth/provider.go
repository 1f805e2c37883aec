package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/letterwriter/letterwriter/internal/config"
)

const issuer = "https://accounts.google.com"

// swapped out in tests
var userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Scopes requested at consent: profile + email for sign-in, drive.file so
// exported letters can be created in the user's Drive.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/drive.file",
}

// ErrNoEmail reports a Google account that did not disclose an email
// address. The service keys users by email, so sign-in cannot proceed.
var ErrNoEmail = errors.New("email not provided by Google")

// Profile is the subset of the Google account the service cares about.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
}

// Provider wraps the Google OAuth2 client configuration. It is constructed
// once at startup from config and injected into handlers; it holds no
// per-user state, so it is safe for concurrent use.
type Provider struct {
	cfg *oauth2.Config

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func NewProvider(g config.GoogleConfig) *Provider {
	return &Provider{
		cfg: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			RedirectURL:  g.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent URL. Offline access plus forced consent so
// Google issues a refresh token on every authorization.
func (p *Provider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens. A missing or rejected
// code fails; callers must not create or mutate a user on failure.
func (p *Provider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("authorization code is required")
	}
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}
	return tok, nil
}

// Profile resolves the authenticated account. The id_token from the exchange
// is verified with the OIDC discovery document when present; otherwise the
// userinfo endpoint is queried with the fresh access token.
func (p *Provider) Profile(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		if prof, err := p.profileFromIDToken(ctx, raw); err == nil {
			return prof, nil
		}
	}
	return p.profileFromUserinfo(ctx, tok)
}

func (p *Provider) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.verifier != nil {
		return p.verifier, nil
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	p.verifier = provider.Verifier(&oidc.Config{ClientID: p.cfg.ClientID})
	return p.verifier, nil
}

func (p *Provider) profileFromIDToken(ctx context.Context, raw string) (*Profile, error) {
	ver, err := p.idTokenVerifier(ctx)
	if err != nil {
		return nil, err
	}
	idt, err := ver.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idt.Claims(&claims); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, ErrNoEmail
	}
	return &Profile{GoogleID: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}

func (p *Provider) profileFromUserinfo(ctx context.Context, tok *oauth2.Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, ErrNoEmail
	}
	return &Profile{GoogleID: info.ID, Email: info.Email, Name: info.Name}, nil
}

// Refresh performs a single refresh-grant round trip with the stored refresh
// token. No retry: a failure means the user must re-authenticate.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("no refresh token stored")
	}
	tok, err := p.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh: %w", err)
	}
	return tok, nil
}

// Client returns an HTTP client authorized with the given access token. The
// token is used as-is; refresh is handled explicitly by the export flow.
func (p *Provider) Client(ctx context.Context, accessToken string) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}

// Revoke invalidates the access token at Google. Best-effort: used by the
// auth reset endpoint only.
func (p *Provider) Revoke(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://oauth2.googleapis.com/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("revoke returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
