package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/letterwriter/letterwriter/internal/config"
)

func testProvider() *Provider {
	return NewProvider(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3001/api/auth/google/callback",
	})
}

func TestAuthURL(t *testing.T) {
	p := testProvider()
	raw := p.AuthURL("xyz")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "client-id", q.Get("client_id"))
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "xyz", q.Get("state"))
	require.Contains(t, q.Get("scope"), "drive.file")
	require.Contains(t, q.Get("scope"), "userinfo.email")
}

func TestExchange_EmptyCode(t *testing.T) {
	p := testProvider()
	_, err := p.Exchange(context.Background(), "")
	require.Error(t, err)
}

func TestRefresh_NoRefreshToken(t *testing.T) {
	p := testProvider()
	_, err := p.Refresh(context.Background(), "")
	require.Error(t, err)
}

func TestProfileFromUserinfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"g-123","email":"letters@example.com","name":"Letter Writer"}`))
	}))
	defer srv.Close()

	p := testProvider()
	// point the profile fetch at the stub server
	orig := userinfoURL
	userinfoURL = srv.URL
	defer func() { userinfoURL = orig }()

	prof, err := p.profileFromUserinfo(context.Background(), &oauth2.Token{AccessToken: "at"})
	require.NoError(t, err)
	require.Equal(t, "g-123", prof.GoogleID)
	require.Equal(t, "letters@example.com", prof.Email)
	require.Equal(t, "Letter Writer", prof.Name)
}

func TestProfileFromUserinfo_MissingEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"g-123","name":"No Email"}`))
	}))
	defer srv.Close()

	p := testProvider()
	orig := userinfoURL
	userinfoURL = srv.URL
	defer func() { userinfoURL = orig }()

	_, err := p.profileFromUserinfo(context.Background(), &oauth2.Token{AccessToken: "at"})
	require.ErrorIs(t, err, ErrNoEmail)
}
