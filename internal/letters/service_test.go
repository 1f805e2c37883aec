package letters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/letterwriter/letterwriter/internal/apperr"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository())
}

func TestCreateSanitizesContent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "owner", "T", `<p>hello</p><script>alert(1)</script><b onclick="x()">b</b>`, true)
	require.NoError(t, err)
	require.NotEmpty(t, l.ID)
	require.NotContains(t, l.Content, "script")
	require.NotContains(t, l.Content, "onclick")
	require.Contains(t, l.Content, "<p>hello</p>")
	require.Contains(t, l.Content, "<b>b</b>")
}

func TestCreateKeepsEditorMarkup(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	content := `<p class="ql-align-center">centered</p><ul><li class="ql-indent-1">item</li></ul>`
	l, err := svc.Create(ctx, "alice", "T", content, true)
	require.NoError(t, err)
	require.Equal(t, content, l.Content)

	// the stored copy reads back exactly as written
	got, err := svc.Get(ctx, l.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, content, got.Content)

	updated, err := svc.Update(ctx, l.ID, "alice", "T", content, false)
	require.NoError(t, err)
	require.Equal(t, content, updated.Content)
}

func TestCreateKeepsInlineColor(t *testing.T) {
	svc := newTestService()

	l, err := svc.Create(context.Background(), "alice", "T",
		`<p><span style="color: rgb(230, 0, 0)">red</span></p>`, false)
	require.NoError(t, err)
	require.Contains(t, l.Content, "<span")
	require.Contains(t, l.Content, "color")
	require.Contains(t, l.Content, "rgb(230, 0, 0)")
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "alice", "T", "<p>x</p>", false)
	require.NoError(t, err)

	got, err := svc.Get(ctx, l.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, l.ID, got.ID)

	_, err = svc.Get(ctx, l.ID, "bob")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Get(ctx, "missing", "alice")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateEnforcesOwnershipAndSanitizes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "alice", "v1", "<p>a</p>", true)
	require.NoError(t, err)

	_, err = svc.Update(ctx, l.ID, "bob", "hacked", "<p>b</p>", false)
	require.ErrorIs(t, err, apperr.ErrForbidden)

	updated, err := svc.Update(ctx, l.ID, "alice", "v2", `<p>b</p><iframe src="evil"></iframe>`, false)
	require.NoError(t, err)
	require.Equal(t, "v2", updated.Title)
	require.NotContains(t, updated.Content, "iframe")
	require.False(t, updated.IsDraft)
	require.Equal(t, "alice", updated.UserID)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "alice", "T", "<p>x</p>", false)
	require.NoError(t, err)

	err = svc.Delete(ctx, l.ID, "bob")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	// still present for the owner
	_, err = svc.Get(ctx, l.ID, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, l.ID, "alice"))
	_, err = svc.Get(ctx, l.ID, "alice")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListReturnsOnlyOwned(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "a1", "<p>1</p>", false)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "alice", "a2", "<p>2</p>", true)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "bob", "b1", "<p>3</p>", false)
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, l := range list {
		require.Equal(t, "alice", l.UserID)
	}

	empty, err := svc.List(ctx, "carol")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSetGoogleDocID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	l, err := svc.Create(ctx, "alice", "T", "<p>x</p>", false)
	require.NoError(t, err)

	err = svc.SetGoogleDocID(ctx, l.ID, "bob", "doc-1")
	require.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, svc.SetGoogleDocID(ctx, l.ID, "alice", "doc-1"))
	got, err := svc.Get(ctx, l.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "doc-1", got.GoogleDocID)
}
