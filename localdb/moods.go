package localdb

import (
	"context"
	"fmt"
	"time"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

// SaveMood inserts or replaces the owner's mood.
func (d *DB) SaveMood(ctx context.Context, ownerID string, mood models.Mood) error {
	tags, err := encodeList(mood.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	quotes, err := encodeList(mood.Quotes)
	if err != nil {
		return fmt.Errorf("encode quotes: %w", err)
	}
	_, err = d.db.ExecContext(ctx, `
		INSERT INTO moods (id, owner_id, book_id, tags, note, quotes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, id) DO UPDATE SET
			book_id = excluded.book_id,
			tags = excluded.tags,
			note = excluded.note,
			quotes = excluded.quotes,
			created_at = excluded.created_at`,
		mood.ID, ownerID, mood.BookID, tags, mood.Note, quotes, mood.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save mood: %w", err)
	}
	return nil
}

func (d *DB) queryMoods(ctx context.Context, query string, args ...any) ([]models.Mood, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	defer rows.Close()
	moods := []models.Mood{}
	for rows.Next() {
		var m models.Mood
		var tags, quotes string
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.BookID, &tags, &m.Note, &quotes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mood: %w", err)
		}
		if m.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("decode tags of mood %s: %w", m.ID, err)
		}
		if m.Quotes, err = decodeList(quotes); err != nil {
			return nil, fmt.Errorf("decode quotes of mood %s: %w", m.ID, err)
		}
		m.CreatedAt = time.UnixMilli(createdAt)
		m.IsLocal = true
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// MoodsByBook returns the owner's moods for bookID, oldest first.
func (d *DB) MoodsByBook(ctx context.Context, ownerID, bookID string) ([]models.Mood, error) {
	return d.queryMoods(ctx, `
		SELECT id, book_id, tags, note, quotes, created_at FROM moods
		WHERE owner_id = ? AND book_id = ? ORDER BY created_at, id`, ownerID, bookID)
}

// MoodsByOwner returns all of the owner's moods, oldest first.
func (d *DB) MoodsByOwner(ctx context.Context, ownerID string) ([]models.Mood, error) {
	return d.queryMoods(ctx, `
		SELECT id, book_id, tags, note, quotes, created_at FROM moods
		WHERE owner_id = ? ORDER BY created_at, id`, ownerID)
}

// DeleteMood removes the owner's mood. It reports whether a row was deleted.
func (d *DB) DeleteMood(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM moods WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete mood: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteMoodsByBook removes every mood the owner recorded for bookID.
func (d *DB) DeleteMoodsByBook(ctx context.Context, ownerID, bookID string) (int64, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM moods WHERE owner_id = ? AND book_id = ?", ownerID, bookID)
	if err != nil {
		return 0, fmt.Errorf("delete moods of book: %w", err)
	}
	return res.RowsAffected()
}
