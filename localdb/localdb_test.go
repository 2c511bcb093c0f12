package localdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "local.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBooks_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	book := models.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: models.StatusAdded}
	require.NoError(t, db.InsertBook(ctx, "u1", book))
	require.NoError(t, db.InsertBook(ctx, "u2", models.Book{ID: "b2", Title: "Other"}))

	got, err := db.BookByID(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, models.StatusAdded, got.Status)
	assert.True(t, got.IsLocal)

	missing, err := db.BookByID(ctx, "u2", "b1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	books, err := db.BooksByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "b1", books[0].ID)

	ok, err := db.UpdateBookStatus(ctx, "u1", "b1", models.StatusReading)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = db.BookByID(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReading, got.Status)

	ok, err = db.UpdateBookStatus(ctx, "u2", "b1", models.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	book.Title = "Dune Messiah"
	require.NoError(t, db.InsertBook(ctx, "u1", book))
	got, err = db.BookByID(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)

	ok, err = db.DeleteBook(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.DeleteBook(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBooks_EmptyOwner(t *testing.T) {
	db := openTestDB(t)
	books, err := db.BooksByOwner(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestMoods_CRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	m1 := models.Mood{ID: "m1", BookID: "b1", Tags: []string{"Hopeful", "Calm"}, Note: "lovely", Quotes: []string{"q1"}, CreatedAt: base}
	m2 := models.Mood{ID: "m2", BookID: "b1", CreatedAt: base.Add(time.Minute)}
	m3 := models.Mood{ID: "m3", BookID: "b2", Tags: []string{"Sad"}, CreatedAt: base.Add(2 * time.Minute)}
	for _, m := range []models.Mood{m2, m1, m3} {
		require.NoError(t, db.SaveMood(ctx, "u1", m))
	}

	byBook, err := db.MoodsByBook(ctx, "u1", "b1")
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, "m1", byBook[0].ID)
	assert.Equal(t, []string{"Hopeful", "Calm"}, byBook[0].Tags)
	assert.Equal(t, []string{"q1"}, byBook[0].Quotes)
	assert.True(t, byBook[0].CreatedAt.Equal(base))
	assert.True(t, byBook[0].IsLocal)
	assert.Equal(t, []string{}, byBook[1].Tags)

	all, err := db.MoodsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	other, err := db.MoodsByOwner(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	m1.Note = "edited"
	require.NoError(t, db.SaveMood(ctx, "u1", m1))
	byBook, err = db.MoodsByBook(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, "edited", byBook[0].Note)

	ok, err := db.DeleteMood(ctx, "u1", "m3")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := db.DeleteMoodsByBook(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err = db.MoodsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSharedIDsAcrossOwners(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.InsertBook(ctx, "alice", models.Book{ID: "vol-123", Title: "Dune"}))
	require.NoError(t, db.InsertBook(ctx, "bob", models.Book{ID: "vol-123", Title: "Dune (annotated)"}))

	alice, err := db.BooksByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "Dune", alice[0].Title)

	bob, err := db.BooksByOwner(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "Dune (annotated)", bob[0].Title)

	now := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, db.SaveMood(ctx, "alice", models.Mood{ID: "m1", BookID: "vol-123", Note: "alice", CreatedAt: now}))
	require.NoError(t, db.SaveMood(ctx, "bob", models.Mood{ID: "m1", BookID: "vol-123", Note: "bob", CreatedAt: now}))

	bobMoods, err := db.MoodsByOwner(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobMoods, 1)
	assert.Equal(t, "bob", bobMoods[0].Note)

	ok, err := db.DeleteBook(ctx, "bob", "vol-123")
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := db.BookByID(ctx, "alice", "vol-123")
	require.NoError(t, err)
	require.NotNil(t, got)

	aliceMoods, err := db.MoodsByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, aliceMoods, 1)
	assert.Equal(t, "alice", aliceMoods[0].Note)
}
