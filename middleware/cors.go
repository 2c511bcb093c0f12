package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// AllowAll allows any origin. Auth travels in the Authorization header, not cookies.
func AllowAll() func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	})
}
