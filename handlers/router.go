package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/middleware"
)

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Books   *BooksHandler
	Catalog *CatalogHandler
	Moods   *MoodsHandler
	Sync    *SyncHandler
	Media   *MediaHandler

	JWTSecret   string
	AuthLimiter *middleware.KeyedLimiter
	// TrustProxy enables chi's RealIP, which rewrites RemoteAddr from forwarding headers.
	// Off, the auth limiter keys on the connection's peer address.
	TrustProxy bool
	Log        *zap.Logger
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if h.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.AllowAll())
	r.Use(middleware.RequestLogger(h.Log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if h.AuthLimiter != nil {
				r.Use(middleware.RateLimit(h.AuthLimiter, h.Log))
			}
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
			r.Post("/logout", h.Auth.Logout)
		})
		r.Get("/media/*", h.Media.Serve)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.JWTSecret))

			r.Get("/profile", h.Profile.Get)
			r.Patch("/profile", h.Profile.Update)
			r.Post("/profile/avatar", h.Profile.UploadAvatar)

			r.Get("/books", h.Books.List)
			r.Post("/books", h.Books.Create)
			r.Post("/books/library", h.Books.AddToLibrary)
			r.Post("/books/import", h.Books.Import)
			r.Patch("/books/{id}/status", h.Books.UpdateStatus)
			r.Delete("/books/{id}", h.Books.Delete)
			r.Get("/books/{id}/moods", h.Moods.ByBook)

			r.Get("/catalog", h.Catalog.Page)
			r.Get("/catalog/search", h.Catalog.Search)

			r.Get("/moods", h.Moods.List)
			r.Post("/moods", h.Moods.Save)
			r.Delete("/moods/{id}", h.Moods.Delete)

			r.Post("/sync/push", h.Sync.Push)
		})
	})
	return r
}
