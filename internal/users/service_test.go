package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpsertFromGoogle_CreatesAndUpdates(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	u, err := svc.UpsertFromGoogle(ctx, "alice@example.com", "Alice", "g-1", "at1", "rt1", expiry)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "Alice", u.Name)
	require.Equal(t, "at1", u.AccessToken)

	// same email again: same user, fresh tokens
	u2, err := svc.UpsertFromGoogle(ctx, "alice@example.com", "Alice B", "g-1", "at2", "rt2", expiry)
	require.NoError(t, err)
	require.Equal(t, u.ID, u2.ID)
	require.Equal(t, "Alice B", u2.Name)
	require.Equal(t, "at2", u2.AccessToken)
	require.Equal(t, "rt2", u2.RefreshToken)
}

func TestUpsertFromGoogle_NameDefaultsToLocalPart(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	u, err := svc.UpsertFromGoogle(context.Background(), "bob@example.com", "", "g-2", "at", "rt", time.Now())
	require.NoError(t, err)
	require.Equal(t, "bob", u.Name)
}

func TestUpsertFromGoogle_EmptyEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	u, err := svc.UpsertFromGoogle(context.Background(), "", "Nobody", "g-3", "at", "rt", time.Now())
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestUpdateTokens_KeepsRefreshTokenWhenNotRotated(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	u, err := svc.UpsertFromGoogle(ctx, "carol@example.com", "Carol", "g-4", "at1", "rt1", time.Now())
	require.NoError(t, err)

	newExpiry := time.Now().Add(time.Hour)
	require.NoError(t, svc.UpdateTokens(ctx, u.ID, "at2", "", newExpiry))

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "at2", got.AccessToken)
	require.Equal(t, "rt1", got.RefreshToken)
	require.WithinDuration(t, newExpiry, got.TokenExpiry, time.Second)
}

func TestGetByID_Unknown(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	u, err := svc.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, u)
}
