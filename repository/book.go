package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
)

// fallbackGenres seed the random subject query used to fill short catalog pages.
var fallbackGenres = []string{"drama", "fantasy", "fiction", "history", "philosophy", "adventure", "horror"}

// maxFallbackStart is the largest random start index used for fallback queries.
const maxFallbackStart = 100

type BookRepository struct {
	local    LocalBooks
	moods    MoodSource
	remote   RemoteBooks
	rmoods   MoodSource
	searcher BookSearcher
	log      *zap.Logger

	intN func(n int) int
}

func NewBookRepository(local LocalBooks, localMoods MoodSource, remote RemoteBooks, remoteMoods MoodSource, searcher BookSearcher, log *zap.Logger) *BookRepository {
	return &BookRepository{
		local:    local,
		moods:    localMoods,
		remote:   remote,
		rmoods:   remoteMoods,
		searcher: searcher,
		log:      log,
		intN:     rand.IntN,
	}
}

// CreateBook stores book in the user's local store.
func (r *BookRepository) CreateBook(ctx context.Context, userID string, book models.Book) (models.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	book.IsLocal = true
	if err := r.local.InsertBook(ctx, userID, book); err != nil {
		return models.Book{}, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// AddBook puts a catalog or search-result book on the user's cloud shelf with status ADDED.
// Books the catalog does not know yet are written to it first.
func (r *BookRepository) AddBook(ctx context.Context, userID string, book models.Book) (models.Book, error) {
	var known *models.Book
	if book.ID != "" {
		var err error
		known, err = r.remote.CatalogBookByID(ctx, book.ID)
		if err != nil {
			return models.Book{}, fmt.Errorf("look up catalog book: %w", err)
		}
	}
	if known == nil {
		if err := r.remote.UpsertCatalogBook(ctx, &book); err != nil {
			return models.Book{}, fmt.Errorf("add book to catalog: %w", err)
		}
	} else {
		book = *known
	}
	if err := r.remote.AddToLibrary(ctx, userID, book.ID, models.StatusAdded); err != nil {
		return models.Book{}, fmt.Errorf("add book to library: %w", err)
	}
	book.Status = models.StatusAdded
	book.IsLocal = false
	return book, nil
}

// UpdateBookStatus changes the status of a local book (a missing row is a no-op) or of a
// library entry in the document store.
func (r *BookRepository) UpdateBookStatus(ctx context.Context, userID string, book models.Book, status models.BookStatus) error {
	if !slices.Contains(models.ValidStatuses, status) {
		return apperr.Validation("status must be one of ADDED, READING, COMPLETED")
	}
	if book.IsLocal {
		if _, err := r.local.UpdateBookStatus(ctx, userID, book.ID, status); err != nil {
			return fmt.Errorf("update local book status: %w", err)
		}
		return nil
	}
	ok, err := r.remote.UpdateLibraryStatus(ctx, userID, book.ID, status)
	if err != nil {
		return fmt.Errorf("update library status: %w", err)
	}
	if !ok {
		return apperr.NotFoundf("book %s is not in your library", book.ID)
	}
	return nil
}

// GetUserBooks returns the user's local books followed by the cloud library. The library
// is optional: its failure is logged and yields no remote books.
func (r *BookRepository) GetUserBooks(ctx context.Context, userID string) ([]models.Book, error) {
	var local, remote []models.Book
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books, err := r.local.BooksByOwner(gctx, userID)
		if err != nil {
			return fmt.Errorf("list local books: %w", err)
		}
		local = books
		return nil
	})
	g.Go(func() error {
		books, err := r.remote.LibraryBooks(gctx, userID)
		if err != nil {
			r.log.Warn("library fetch failed", zap.String("op", "GetUserBooks"), zap.String("user", userID), zap.Error(err))
			return nil
		}
		remote = books
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	markBooks(local, true)
	markBooks(remote, false)
	return distinctBooks(append(local, remote...)), nil
}

// DeleteBook removes the book from the store isLocal names and returns that error. The
// copy in the other store and the user's moods for the book are removed best-effort.
func (r *BookRepository) DeleteBook(ctx context.Context, userID, bookID string, isLocal bool) error {
	log := r.log.With(zap.String("op", "DeleteBook"), zap.String("user", userID), zap.String("book", bookID))
	if isLocal {
		if _, err := r.local.DeleteBook(ctx, userID, bookID); err != nil {
			return fmt.Errorf("delete local book: %w", err)
		}
		if _, err := r.remote.RemoveFromLibrary(ctx, userID, bookID); err != nil {
			log.Warn("remove from library failed", zap.Error(err))
		}
	} else {
		if _, err := r.remote.RemoveFromLibrary(ctx, userID, bookID); err != nil {
			return fmt.Errorf("remove from library: %w", err)
		}
		if _, err := r.local.DeleteBook(ctx, userID, bookID); err != nil {
			log.Warn("delete local copy failed", zap.Error(err))
		}
	}
	if _, err := r.moods.DeleteMoodsByBook(ctx, userID, bookID); err != nil {
		log.Warn("delete local moods failed", zap.Error(err))
	}
	if _, err := r.rmoods.DeleteMoodsByBook(ctx, userID, bookID); err != nil {
		log.Warn("delete remote moods failed", zap.Error(err))
	}
	return nil
}

func (r *BookRepository) randomSubjectQuery() string {
	return "subject:" + fallbackGenres[r.intN(len(fallbackGenres))]
}

// GetGlobalBooksPaged returns the catalog page after cursor, filled from a random subject
// search when the catalog runs short. Failures of either source are logged and skipped.
func (r *BookRepository) GetGlobalBooksPaged(ctx context.Context, cursor string, pageSize int) (models.BookPage, error) {
	pageSize = ClampPageSize(pageSize)
	catalog, err := r.remote.CatalogPage(ctx, cursor, pageSize)
	if err != nil {
		r.log.Warn("catalog page failed", zap.String("op", "GetGlobalBooksPaged"), zap.String("cursor", cursor), zap.Error(err))
		catalog = nil
	}
	markBooks(catalog, false)

	books := catalog
	if need := pageSize - len(catalog); need > 0 {
		books = append(books, r.searchFallback(ctx, "GetGlobalBooksPaged", r.randomSubjectQuery(), r.intN(maxFallbackStart+1), need)...)
		books = distinctBooks(books)
	}
	if err := ctx.Err(); err != nil {
		return models.BookPage{}, err
	}

	next := cursor
	if len(catalog) > 0 {
		next = catalog[len(catalog)-1].ID
	}
	return models.BookPage{
		Books:      books,
		NextCursor: next,
		EndReached: len(books) < pageSize,
	}, nil
}

// SearchBooks searches the catalog by title and author and fills short results from the
// public search API.
func (r *BookRepository) SearchBooks(ctx context.Context, query string, pageSize int) ([]models.Book, error) {
	if query == "" {
		return nil, apperr.Validation("query is required")
	}
	pageSize = ClampPageSize(pageSize)
	books, err := r.remote.SearchCatalog(ctx, query, pageSize)
	if err != nil {
		r.log.Warn("catalog search failed", zap.String("op", "SearchBooks"), zap.String("query", query), zap.Error(err))
		books = nil
	}
	markBooks(books, false)
	if need := pageSize - len(books); need > 0 {
		books = append(books, r.searchFallback(ctx, "SearchBooks", query, 0, need)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return distinctBooks(books), nil
}

func (r *BookRepository) searchFallback(ctx context.Context, op, query string, start, n int) []models.Book {
	if r.searcher == nil {
		return nil
	}
	vols, err := r.searcher.Search(ctx, query, start, n)
	if err != nil {
		r.log.Warn("book search API failed", zap.String("op", op), zap.String("query", query), zap.Error(err))
		return nil
	}
	return VolumesToBooks(vols)
}
