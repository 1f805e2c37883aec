package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/letterwriter/letterwriter/internal/apperr"
	"github.com/letterwriter/letterwriter/internal/letters"
	"github.com/letterwriter/letterwriter/internal/models"
)

// fakeDeps records the order of side effects so tests can assert the refresh
// is persisted before any remote call is made.
type fakeDeps struct {
	user *models.User

	refreshToken *oauth2.Token
	refreshErr   error
	refreshCalls int

	createErr error
	insertErr error

	events []string
	docIDs map[string]string // letter id -> google doc id
}

func (f *fakeDeps) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.user != nil && f.user.ID == id {
		cp := *f.user
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeDeps) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error {
	f.events = append(f.events, "persist-tokens")
	f.user.AccessToken = accessToken
	if refreshToken != "" {
		f.user.RefreshToken = refreshToken
	}
	f.user.TokenExpiry = expiry
	return nil
}

func (f *fakeDeps) SetGoogleDocID(ctx context.Context, id, ownerID, docID string) error {
	f.events = append(f.events, "persist-doc-id")
	if f.docIDs == nil {
		f.docIDs = map[string]string{}
	}
	f.docIDs[id] = docID
	return nil
}

func (f *fakeDeps) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.refreshCalls++
	f.events = append(f.events, "refresh")
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshToken, nil
}

func (f *fakeDeps) CreateDocument(ctx context.Context, title string) (string, error) {
	f.events = append(f.events, "create-document")
	if f.createErr != nil {
		return "", f.createErr
	}
	return "gdoc-1", nil
}

func (f *fakeDeps) InsertText(ctx context.Context, docID, text string) error {
	f.events = append(f.events, "insert-text")
	return f.insertErr
}

func newTestExporter(f *fakeDeps) *Exporter {
	factory := func(ctx context.Context, accessToken string) (DocsClient, error) { return f, nil }
	return NewExporter(f, f, f, factory, "http://localhost:3001/api/auth/google")
}

func testLetter() *letters.Letter {
	return &letters.Letter{ID: "letter-1", Title: "T", Content: "<p>x</p>", UserID: "user-1"}
}

func TestExport_ValidTokenNoRefresh(t *testing.T) {
	f := &fakeDeps{user: &models.User{
		ID:          "user-1",
		AccessToken: "at",
		TokenExpiry: time.Now().Add(time.Hour),
	}}
	e := newTestExporter(f)

	docID, err := e.Export(context.Background(), testLetter())
	require.NoError(t, err)
	require.Equal(t, "gdoc-1", docID)
	require.Zero(t, f.refreshCalls)
	require.Equal(t, "gdoc-1", f.docIDs["letter-1"])
}

func TestExport_ExpiredTokenRefreshedOncePersistedFirst(t *testing.T) {
	f := &fakeDeps{
		user: &models.User{
			ID:           "user-1",
			AccessToken:  "stale",
			RefreshToken: "rt",
			TokenExpiry:  time.Now().Add(-time.Hour),
		},
		refreshToken: &oauth2.Token{AccessToken: "fresh", RefreshToken: "rt2", Expiry: time.Now().Add(time.Hour)},
	}
	e := newTestExporter(f)

	docID, err := e.Export(context.Background(), testLetter())
	require.NoError(t, err)
	require.Equal(t, "gdoc-1", docID)

	require.Equal(t, 1, f.refreshCalls)
	require.Equal(t, "fresh", f.user.AccessToken)
	require.Equal(t, "rt2", f.user.RefreshToken)
	require.True(t, f.user.TokenExpiry.After(time.Now()))

	// the new credential is persisted before the first remote call
	require.Equal(t, []string{"refresh", "persist-tokens", "create-document", "insert-text", "persist-doc-id"}, f.events)
}

func TestExport_RefreshNotRotatedKeepsOldRefreshToken(t *testing.T) {
	f := &fakeDeps{
		user: &models.User{
			ID:           "user-1",
			AccessToken:  "stale",
			RefreshToken: "rt",
			TokenExpiry:  time.Now().Add(-time.Minute),
		},
		refreshToken: &oauth2.Token{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)},
	}
	e := newTestExporter(f)

	_, err := e.Export(context.Background(), testLetter())
	require.NoError(t, err)
	require.Equal(t, "rt", f.user.RefreshToken)
}

func TestExport_FailedRefreshLeavesLetterUntouched(t *testing.T) {
	f := &fakeDeps{
		user: &models.User{
			ID:           "user-1",
			AccessToken:  "stale",
			RefreshToken: "bad",
			TokenExpiry:  time.Now().Add(-time.Hour),
		},
		refreshErr: errors.New("invalid_grant"),
	}
	e := newTestExporter(f)

	_, err := e.Export(context.Background(), testLetter())
	ce, ok := apperr.AsCredential(err)
	require.True(t, ok)
	require.Equal(t, apperr.CodeExpiredToken, ce.Code)
	require.NotEmpty(t, ce.RedirectURL)

	require.Equal(t, 1, f.refreshCalls)
	require.Empty(t, f.docIDs)
	// no remote call was attempted
	require.Equal(t, []string{"refresh"}, f.events)
}

func TestExport_NoStoredToken(t *testing.T) {
	f := &fakeDeps{user: &models.User{ID: "user-1"}}
	e := newTestExporter(f)

	_, err := e.Export(context.Background(), testLetter())
	ce, ok := apperr.AsCredential(err)
	require.True(t, ok)
	require.Equal(t, apperr.CodeMissingToken, ce.Code)
}

func TestExport_RemoteFailureClassification(t *testing.T) {
	cases := []struct {
		name     string
		remote   error
		wantCode string
	}{
		{"api disabled", errors.New("Google Docs API has not been used in project 123 before or it is disabled"), apperr.CodeAPINotEnabled},
		{"invalid grant", errors.New("oauth2: \"invalid_grant\""), apperr.CodeExpiredToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeDeps{
				user:      &models.User{ID: "user-1", AccessToken: "at", TokenExpiry: time.Now().Add(time.Hour)},
				createErr: tc.remote,
			}
			e := newTestExporter(f)

			_, err := e.Export(context.Background(), testLetter())
			ce, ok := apperr.AsCredential(err)
			require.True(t, ok)
			require.Equal(t, tc.wantCode, ce.Code)
			require.Empty(t, f.docIDs)
		})
	}
}

func TestExport_GenericRemoteFailureStaysGeneric(t *testing.T) {
	boom := errors.New("backend error")
	f := &fakeDeps{
		user:      &models.User{ID: "user-1", AccessToken: "at", TokenExpiry: time.Now().Add(time.Hour)},
		insertErr: boom,
	}
	e := newTestExporter(f)

	_, err := e.Export(context.Background(), testLetter())
	require.ErrorIs(t, err, boom)
	_, ok := apperr.AsCredential(err)
	require.False(t, ok)
}
