// Package repository reconciles the embedded local store, the remote document store and
// the public search API into the operations the HTTP layer exposes.
package repository

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/service"
)

// LocalBooks is implemented by *localdb.DB.
type LocalBooks interface {
	InsertBook(ctx context.Context, ownerID string, book models.Book) error
	BooksByOwner(ctx context.Context, ownerID string) ([]models.Book, error)
	BookByID(ctx context.Context, ownerID, id string) (*models.Book, error)
	UpdateBookStatus(ctx context.Context, ownerID, id string, status models.BookStatus) (bool, error)
	DeleteBook(ctx context.Context, ownerID, id string) (bool, error)
}

// MoodSource is the part of mood storage both stores share.
type MoodSource interface {
	SaveMood(ctx context.Context, ownerID string, mood models.Mood) error
	MoodsByBook(ctx context.Context, ownerID, bookID string) ([]models.Mood, error)
	DeleteMood(ctx context.Context, ownerID, id string) (bool, error)
	DeleteMoodsByBook(ctx context.Context, ownerID, bookID string) (int64, error)
}

// LocalMoods is implemented by *localdb.DB.
type LocalMoods interface {
	MoodSource
	MoodsByOwner(ctx context.Context, ownerID string) ([]models.Mood, error)
}

// RemoteBooks is implemented by *store.DB.
type RemoteBooks interface {
	UpsertCatalogBook(ctx context.Context, book *models.Book) error
	CatalogBookByID(ctx context.Context, id string) (*models.Book, error)
	CatalogPage(ctx context.Context, after string, limit int) ([]models.Book, error)
	SearchCatalog(ctx context.Context, query string, limit int) ([]models.Book, error)
	AddToLibrary(ctx context.Context, userID, bookID string, status models.BookStatus) error
	UpdateLibraryStatus(ctx context.Context, userID, bookID string, status models.BookStatus) (bool, error)
	RemoveFromLibrary(ctx context.Context, userID, bookID string) (bool, error)
	LibraryBooks(ctx context.Context, userID string) ([]models.Book, error)
}

// BookSearcher is implemented by *service.GoogleBooks.
type BookSearcher interface {
	Search(ctx context.Context, query string, startIndex, maxResults int) ([]service.Volume, error)
}

// MetadataFetcher is implemented by *service.GoogleBooks.
type MetadataFetcher interface {
	FetchMetadataByISBN(ctx context.Context, isbn string) (*service.BookMetadata, error)
}

// UserStore is implemented by *store.DB.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	UpdateUserName(ctx context.Context, id primitive.ObjectID, name string) (bool, error)
	UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) (bool, error)
	UpdateUserAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) (bool, error)
}

// ObjectStorage is implemented by *service.S3Service.
type ObjectStorage interface {
	Upload(ctx context.Context, prefix, originalFilename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ResetMailer is implemented by *service.Mailer and service.LogMailer.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}
