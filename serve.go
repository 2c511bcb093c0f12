package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/config"
	"github.com/kevinaaaquil/bookreflect/backend/handlers"
	"github.com/kevinaaaquil/bookreflect/backend/middleware"
	"github.com/kevinaaaquil/bookreflect/backend/repository"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := config.ValidateEnv(log); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	authRepo := repository.NewAuthRepository(a.remote, a.mailer(), a.storage(), cfg.ResetTokenKey, cfg.AppBaseURL, log)
	importer := repository.NewImporter(a.bookRepo, a.books, a.storage(), log)
	v := validation.New()
	maxBytes := cfg.MaxUploadMB * 1024 * 1024

	burst := int(cfg.AuthRateLimit * 5)
	if burst < 1 {
		burst = 1
	}

	router := handlers.NewRouter(handlers.Handlers{
		Auth:        &handlers.AuthHandler{Auth: authRepo, JWTSecret: cfg.JWTSecret, Validator: v, Log: log},
		Profile:     &handlers.ProfileHandler{Profiles: authRepo, Validator: v, MaxBytes: maxBytes, Log: log},
		Books:       &handlers.BooksHandler{Books: a.bookRepo, Importer: importer, Validator: v, MaxBytes: maxBytes, Log: log},
		Catalog:     &handlers.CatalogHandler{Books: a.bookRepo, Log: log},
		Moods:       &handlers.MoodsHandler{Moods: a.moodRepo, Validator: v, Log: log},
		Sync:        &handlers.SyncHandler{Syncer: a.syncer, Log: log},
		Media:       &handlers.MediaHandler{Store: a.mediaStore(), Log: log},
		JWTSecret:   cfg.JWTSecret,
		AuthLimiter: middleware.NewKeyedLimiter(cfg.AuthRateLimit, burst),
		TrustProxy:  cfg.TrustProxy,
		Log:         log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	return nil
}
