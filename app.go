package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/config"
	"github.com/kevinaaaquil/bookreflect/backend/handlers"
	"github.com/kevinaaaquil/bookreflect/backend/localdb"
	"github.com/kevinaaaquil/bookreflect/backend/logger"
	"github.com/kevinaaaquil/bookreflect/backend/repository"
	"github.com/kevinaaaquil/bookreflect/backend/service"
	"github.com/kevinaaaquil/bookreflect/backend/store"
)

// app holds the data sources and repositories shared by the commands.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	remote *store.DB
	local  *localdb.DB
	books  *service.GoogleBooks

	// s3 is nil when AWS_S3_BUCKET is unset.
	s3 *service.S3Service

	bookRepo *repository.BookRepository
	moodRepo *repository.MoodRepository
	syncer   *repository.Syncer
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	remote, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, log)
	if err != nil {
		return nil, fmt.Errorf("mongodb: %w", err)
	}
	if err := remote.EnsureIndexes(ctx); err != nil {
		remote.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb indexes: %w", err)
	}
	local, err := localdb.Open(cfg.LocalDBPath, log)
	if err != nil {
		remote.Disconnect(context.Background())
		return nil, fmt.Errorf("local db: %w", err)
	}

	a := &app{
		cfg:    cfg,
		log:    log,
		remote: remote,
		local:  local,
		books:  service.NewGoogleBooks(cfg.GoogleBooksURL, cfg.GoogleBooksAPIKey, cfg.GoogleBooksRPS),
	}
	if cfg.S3Bucket != "" {
		a.s3, err = service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("s3: %w", err)
		}
	} else {
		log.Warn("AWS_S3_BUCKET not set; avatar and cover uploads are disabled")
	}

	a.bookRepo = repository.NewBookRepository(local, local, remote, remote, a.books, log)
	a.moodRepo = repository.NewMoodRepository(local, remote, a.bookRepo, log)
	a.syncer = repository.NewSyncer(local, local, remote, remote, log)
	return a, nil
}

// storage returns the object store as an interface value, nil when S3 is not configured.
func (a *app) storage() repository.ObjectStorage {
	if a.s3 == nil {
		return nil
	}
	return a.s3
}

func (a *app) mediaStore() handlers.MediaStore {
	if a.s3 == nil {
		return nil
	}
	return a.s3
}

func (a *app) mailer() repository.ResetMailer {
	if a.cfg.SMTPHost == "" {
		a.log.Warn("SMTP_HOST not set; password reset links are logged instead of mailed")
		return service.LogMailer{Log: a.log}
	}
	return service.NewMailer(a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPUsername, a.cfg.SMTPPassword, a.cfg.SMTPFrom, a.log)
}

func (a *app) close() {
	if err := a.local.Close(); err != nil {
		a.log.Warn("local db close", zap.Error(err))
	}
	if err := a.remote.Disconnect(context.Background()); err != nil {
		a.log.Warn("mongodb disconnect", zap.Error(err))
	}
}
