package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/apperr"
	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/repository"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

// BookService is implemented by *repository.BookRepository.
type BookService interface {
	CreateBook(ctx context.Context, userID string, book models.Book) (models.Book, error)
	AddBook(ctx context.Context, userID string, book models.Book) (models.Book, error)
	UpdateBookStatus(ctx context.Context, userID string, book models.Book, status models.BookStatus) error
	GetUserBooks(ctx context.Context, userID string) ([]models.Book, error)
	DeleteBook(ctx context.Context, userID, bookID string, isLocal bool) error
	GetGlobalBooksPaged(ctx context.Context, cursor string, pageSize int) (models.BookPage, error)
	SearchBooks(ctx context.Context, query string, pageSize int) ([]models.Book, error)
}

// BookImporter is implemented by *repository.Importer.
type BookImporter interface {
	Import(ctx context.Context, userID, filename string, data []byte) (repository.ImportResult, error)
}

type BooksHandler struct {
	Books     BookService
	Importer  BookImporter
	Validator *validation.Validator
	MaxBytes  int64
	Log       *zap.Logger
}

type BookRequest struct {
	ID          string `json:"id" validate:"max=128"`
	Title       string `json:"title" validate:"required,max=500"`
	Author      string `json:"author" validate:"max=500"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl" validate:"omitempty,max=2048"`
	Status      string `json:"status" validate:"omitempty,oneof=ADDED READING COMPLETED"`
}

func (req BookRequest) book() models.Book {
	return models.Book{
		ID:          req.ID,
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		Status:      models.ParseBookStatus(req.Status),
	}
}

type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=ADDED READING COMPLETED"`
	IsLocal bool   `json:"isLocal"`
}

func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	books, err := h.Books.GetUserBooks(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// Create stores a book the user typed in on their device-local shelf.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req BookRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	book, err := h.Books.CreateBook(r.Context(), userID, req.book())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

// AddToLibrary puts a catalog or search result on the user's cloud shelf.
func (h *BooksHandler) AddToLibrary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req BookRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	book, err := h.Books.AddBook(r.Context(), userID, req.book())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *BooksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	book := models.Book{ID: chi.URLParam(r, "id"), IsLocal: req.IsLocal}
	if err := h.Books.UpdateBookStatus(r.Context(), userID, book, models.ParseBookStatus(req.Status)); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a book; ?local=true targets the local store.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	local := false
	if v := r.URL.Query().Get("local"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, h.Log, apperr.Validation("local must be true or false"))
			return
		}
		local = parsed
	}
	if err := h.Books.DeleteBook(r.Context(), userID, chi.URLParam(r, "id"), local); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import creates a local book from an EPUB in multipart field "file".
func (h *BooksHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	up, err := readUpload(w, r, h.MaxBytes)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if !up.isEPUB() {
		writeError(w, r, h.Log, apperr.Validation("only epub files can be imported"))
		return
	}
	res, err := h.Importer.Import(r.Context(), userID, up.Filename, up.Data)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
