package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/service"
)

// MediaStore is implemented by *service.S3Service.
type MediaStore interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// MediaHandler streams stored covers and avatars. It is public so <img src> works.
type MediaHandler struct {
	Store MediaStore // nil when object storage is not configured
	Log   *zap.Logger
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if h.Store == nil || !(strings.HasPrefix(key, service.PrefixAvatars) || strings.HasPrefix(key, service.PrefixCovers)) ||
		strings.Contains(key, "..") {
		writeError(w, r, h.Log, apperr.NotFound("media not found"))
		return
	}
	body, contentType, err := h.Store.GetObject(r.Context(), key)
	if err != nil {
		h.Log.Warn("media fetch failed", zap.String("key", key), zap.Error(err))
		writeError(w, r, h.Log, apperr.NotFound("media not found"))
		return
	}
	defer body.Close()
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, body)
}
