package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
)

// listMoodsWorkers bounds the per-book fetches ListMoods runs at once.
const listMoodsWorkers = 4

// ShelfReader lists a user's books. *BookRepository implements it.
type ShelfReader interface {
	GetUserBooks(ctx context.Context, userID string) ([]models.Book, error)
}

type MoodRepository struct {
	local  LocalMoods
	remote MoodSource
	shelf  ShelfReader
	log    *zap.Logger
	now    func() time.Time
}

func NewMoodRepository(local LocalMoods, remote MoodSource, shelf ShelfReader, log *zap.Logger) *MoodRepository {
	return &MoodRepository{local: local, remote: remote, shelf: shelf, log: log, now: time.Now}
}

// SaveMood upserts mood in the local store. A blank id gets a new one and a zero
// CreatedAt becomes now.
func (r *MoodRepository) SaveMood(ctx context.Context, userID string, mood models.Mood) (models.Mood, error) {
	if mood.BookID == "" {
		return models.Mood{}, apperr.Validation("bookId is required")
	}
	if mood.ID == "" {
		mood.ID = uuid.NewString()
	}
	if mood.CreatedAt.IsZero() {
		mood.CreatedAt = r.now()
	}
	if mood.Tags == nil {
		mood.Tags = []string{}
	}
	if mood.Quotes == nil {
		mood.Quotes = []string{}
	}
	mood.IsLocal = true
	if err := r.local.SaveMood(ctx, userID, mood); err != nil {
		return models.Mood{}, fmt.Errorf("save mood: %w", err)
	}
	return mood, nil
}

// GetMoodsByBook returns local moods followed by remote ones, distinct by id. A remote
// failure is logged and yields no remote moods.
func (r *MoodRepository) GetMoodsByBook(ctx context.Context, userID, bookID string) ([]models.Mood, error) {
	var local, remote []models.Mood
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		moods, err := r.local.MoodsByBook(gctx, userID, bookID)
		if err != nil {
			return fmt.Errorf("list local moods: %w", err)
		}
		local = moods
		return nil
	})
	g.Go(func() error {
		moods, err := r.remote.MoodsByBook(gctx, userID, bookID)
		if err != nil {
			r.log.Warn("remote moods fetch failed", zap.String("op", "GetMoodsByBook"), zap.String("book", bookID), zap.Error(err))
			return nil
		}
		remote = moods
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	markMoods(local, true)
	markMoods(remote, false)
	return distinctMoods(append(local, remote...)), nil
}

// ListMoods returns the moods of every book on the user's shelf, in shelf order, each
// labelled with its book title. Books whose moods cannot be read are skipped.
func (r *MoodRepository) ListMoods(ctx context.Context, userID string) ([]models.MoodWithBook, error) {
	books, err := r.shelf.GetUserBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	perBook := make([][]models.Mood, len(books))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listMoodsWorkers)
	for i, b := range books {
		g.Go(func() error {
			moods, err := r.GetMoodsByBook(gctx, userID, b.ID)
			if err != nil {
				r.log.Warn("moods of book skipped", zap.String("op", "ListMoods"), zap.String("book", b.ID), zap.Error(err))
				return nil
			}
			perBook[i] = moods
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []models.MoodWithBook{}
	for i, b := range books {
		for _, m := range perBook[i] {
			out = append(out, models.MoodWithBook{Mood: m, BookTitle: b.Title})
		}
	}
	return out, nil
}

// DeleteMood deletes the mood locally, then from the document store best-effort.
func (r *MoodRepository) DeleteMood(ctx context.Context, userID, moodID string) error {
	if _, err := r.local.DeleteMood(ctx, userID, moodID); err != nil {
		return fmt.Errorf("delete local mood: %w", err)
	}
	if _, err := r.remote.DeleteMood(ctx, userID, moodID); err != nil {
		r.log.Warn("remote mood delete failed", zap.String("op", "DeleteMood"), zap.String("mood", moodID), zap.Error(err))
	}
	return nil
}
