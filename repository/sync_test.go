package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

func TestSyncerPush(t *testing.T) {
	ctx := context.Background()
	local := newFakeLocal()
	remote := newFakeRemote()
	syncer := NewSyncer(local, local, remote, remote, zap.NewNop())
	syncer.workers = 2

	local.books["u1"] = []models.Book{
		{ID: "b1", Title: "One", Status: models.StatusReading},
		{ID: "b2", Title: "Two"},
		{ID: "bad", Title: "Fails"},
	}
	local.SaveMood(ctx, "u1", models.Mood{ID: "m1", BookID: "b1"})
	local.SaveMood(ctx, "u1", models.Mood{ID: "m2", BookID: "b2"})
	local.books["u2"] = []models.Book{{ID: "x"}}
	remote.failUpsert = map[string]bool{"bad": true}

	report, err := syncer.Push(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, SyncReport{BooksPushed: 2, MoodsPushed: 2, Failed: 1}, report)

	status, ok := remote.libraryStatus("u1", "b1")
	require.True(t, ok)
	assert.Equal(t, models.StatusReading, status)
	status, _ = remote.libraryStatus("u1", "b2")
	assert.Equal(t, models.StatusAdded, status)

	left, _ := local.BooksByOwner(ctx, "u1")
	require.Len(t, left, 1)
	assert.Equal(t, "bad", left[0].ID)
	assert.Equal(t, 0, local.count("u1"))
	assert.Equal(t, 2, remote.count("u1"))

	other, _ := local.BooksByOwner(ctx, "u2")
	assert.Len(t, other, 1)
}

func TestSyncerPush_ListFailure(t *testing.T) {
	local := newFakeLocal()
	local.bookErr = errBoom
	remote := newFakeRemote()
	syncer := NewSyncer(local, local, remote, remote, zap.NewNop())

	_, err := syncer.Push(context.Background(), "u1")
	assert.ErrorIs(t, err, errBoom)
}

func TestSyncerPush_Nothing(t *testing.T) {
	local := newFakeLocal()
	remote := newFakeRemote()
	report, err := NewSyncer(local, local, remote, remote, zap.NewNop()).Push(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, SyncReport{}, report)
}

func TestSyncerPush_KeepsExistingCatalogEntry(t *testing.T) {
	ctx := context.Background()
	local := newFakeLocal()
	remote := newFakeRemote()
	remote.catalog["c1"] = models.Book{ID: "c1", Title: "Dune", Author: "Frank Herbert"}

	books := NewBookRepository(local, local, remote, remote, nil, zap.NewNop())
	_, err := books.CreateBook(ctx, "mallory", models.Book{ID: "c1", Title: "HACKED", Status: models.StatusReading})
	require.NoError(t, err)

	report, err := NewSyncer(local, local, remote, remote, zap.NewNop()).Push(ctx, "mallory")
	require.NoError(t, err)
	assert.Equal(t, SyncReport{BooksPushed: 1}, report)

	assert.Equal(t, "Dune", remote.catalog["c1"].Title)
	assert.Equal(t, "Frank Herbert", remote.catalog["c1"].Author)
	status, ok := remote.libraryStatus("mallory", "c1")
	require.True(t, ok)
	assert.Equal(t, models.StatusReading, status)
}
