package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

const bookColumns = "id, title, author, description, cover_url, status"

func scanBook(row interface{ Scan(...any) error }) (models.Book, error) {
	var b models.Book
	var status string
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.CoverURL, &status); err != nil {
		return models.Book{}, err
	}
	b.Status = models.ParseBookStatus(status)
	b.IsLocal = true
	return b, nil
}

// InsertBook stores book for owner, replacing the owner's row with the same id.
// Ids are scoped per owner, so two users may keep the same volume id.
func (d *DB) InsertBook(ctx context.Context, ownerID string, book models.Book) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO books (id, owner_id, title, author, description, cover_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			description = excluded.description,
			cover_url = excluded.cover_url,
			status = excluded.status`,
		book.ID, ownerID, book.Title, book.Author, book.Description, book.CoverURL, string(book.Status), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// BooksByOwner returns the owner's books, oldest first.
func (d *DB) BooksByOwner(ctx context.Context, ownerID string) ([]models.Book, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE owner_id = ? ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()
	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BookByID returns the owner's book, or nil if there is none.
func (d *DB) BookByID(ctx context.Context, ownerID, id string) (*models.Book, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE owner_id = ? AND id = ?", ownerID, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

// UpdateBookStatus sets the status of the owner's book. It reports whether a row was updated.
func (d *DB) UpdateBookStatus(ctx context.Context, ownerID, id string, status models.BookStatus) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		"UPDATE books SET status = ? WHERE owner_id = ? AND id = ?", string(status), ownerID, id)
	if err != nil {
		return false, fmt.Errorf("update book status: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteBook removes the owner's book. It reports whether a row was deleted.
func (d *DB) DeleteBook(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := d.db.ExecContext(ctx, "DELETE FROM books WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
