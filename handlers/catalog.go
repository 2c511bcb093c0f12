package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/repository"
)

type CatalogHandler struct {
	Books BookService
	Log   *zap.Logger
}

// pageSize parses ?limit=, clamped to the search API's page ceiling.
func pageSize(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return repository.DefaultPageSize, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("limit must be a number")
	}
	return repository.ClampPageSize(n), nil
}

// Page serves GET /api/catalog?cursor=&limit=.
func (h *CatalogHandler) Page(w http.ResponseWriter, r *http.Request) {
	limit, err := pageSize(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	page, err := h.Books.GetGlobalBooksPaged(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Search serves GET /api/catalog/search?q=&limit=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := pageSize(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, h.Log, apperr.Validation("q is required"))
		return
	}
	books, err := h.Books.SearchBooks(r.Context(), query, limit)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}
