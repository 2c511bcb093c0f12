package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/middleware"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its apperr status. Internal errors are logged and their cause
// stays out of the response.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		fields := []zap.Field{zap.String("path", r.URL.Path), zap.Error(err)}
		if id, ok := middleware.UserIDFromContext(r.Context()); ok {
			fields = append(fields, zap.String("user_id", id))
		}
		if email := middleware.EmailFromContext(r.Context()); email != "" {
			fields = append(fields, zap.String("email", email))
		}
		log.Error("request failed", fields...)
	}
	writeJSON(w, e.HTTPStatus(), e)
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, v *validation.Validator, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid json")
	}
	return v.Validate(dst)
}

// requireUser returns the authenticated user id or writes 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, apperr.Unauthorized("unauthorized"))
	}
	return id, ok
}
