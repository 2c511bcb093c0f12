package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinaaaquil/bookreflect/backend/models"
)

const defaultSyncWorkers = 4

// SyncReport counts what a push uploaded.
type SyncReport struct {
	BooksPushed int `json:"booksPushed"`
	MoodsPushed int `json:"moodsPushed"`
	Failed      int `json:"failed"`
}

// Syncer uploads local books and moods to the document store.
type Syncer struct {
	localBooks  LocalBooks
	localMoods  LocalMoods
	remoteBooks RemoteBooks
	remoteMoods MoodSource
	log         *zap.Logger
	workers     int
}

func NewSyncer(localBooks LocalBooks, localMoods LocalMoods, remoteBooks RemoteBooks, remoteMoods MoodSource, log *zap.Logger) *Syncer {
	return &Syncer{
		localBooks:  localBooks,
		localMoods:  localMoods,
		remoteBooks: remoteBooks,
		remoteMoods: remoteMoods,
		log:         log,
		workers:     defaultSyncWorkers,
	}
}

// Push uploads every local book and mood of the user, deleting each local copy once its
// upload succeeded. Per-item failures are logged and counted, they do not stop the run.
func (s *Syncer) Push(ctx context.Context, userID string) (SyncReport, error) {
	books, err := s.localBooks.BooksByOwner(ctx, userID)
	if err != nil {
		return SyncReport{}, fmt.Errorf("list local books: %w", err)
	}
	moods, err := s.localMoods.MoodsByOwner(ctx, userID)
	if err != nil {
		return SyncReport{}, fmt.Errorf("list local moods: %w", err)
	}

	var pushedBooks, pushedMoods, failed atomic.Int64
	log := s.log.With(zap.String("op", "Push"), zap.String("user", userID))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, b := range books {
		g.Go(func() error {
			if err := s.pushBook(gctx, userID, b); err != nil {
				log.Warn("book push failed", zap.String("book", b.ID), zap.Error(err))
				failed.Add(1)
				return nil
			}
			pushedBooks.Add(1)
			return nil
		})
	}
	for _, m := range moods {
		g.Go(func() error {
			if err := s.pushMood(gctx, userID, m); err != nil {
				log.Warn("mood push failed", zap.String("mood", m.ID), zap.Error(err))
				failed.Add(1)
				return nil
			}
			pushedMoods.Add(1)
			return nil
		})
	}
	g.Wait()

	report := SyncReport{
		BooksPushed: int(pushedBooks.Load()),
		MoodsPushed: int(pushedMoods.Load()),
		Failed:      int(failed.Load()),
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	log.Info("push finished", zap.Int("books", report.BooksPushed), zap.Int("moods", report.MoodsPushed), zap.Int("failed", report.Failed))
	return report, nil
}

func (s *Syncer) pushBook(ctx context.Context, userID string, book models.Book) error {
	status := book.Status
	if status == models.StatusNone {
		status = models.StatusAdded
	}
	// The catalog is shared, so an existing entry is linked, never overwritten.
	known, err := s.remoteBooks.CatalogBookByID(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("look up catalog book: %w", err)
	}
	if known == nil {
		if err := s.remoteBooks.UpsertCatalogBook(ctx, &book); err != nil {
			return fmt.Errorf("upsert catalog book: %w", err)
		}
	}
	if err := s.remoteBooks.AddToLibrary(ctx, userID, book.ID, status); err != nil {
		return fmt.Errorf("add to library: %w", err)
	}
	if _, err := s.localBooks.DeleteBook(ctx, userID, book.ID); err != nil {
		return fmt.Errorf("delete local copy: %w", err)
	}
	return nil
}

func (s *Syncer) pushMood(ctx context.Context, userID string, mood models.Mood) error {
	if err := s.remoteMoods.SaveMood(ctx, userID, mood); err != nil {
		return fmt.Errorf("save remote mood: %w", err)
	}
	if _, err := s.localMoods.DeleteMood(ctx, userID, mood.ID); err != nil {
		return fmt.Errorf("delete local copy: %w", err)
	}
	return nil
}
