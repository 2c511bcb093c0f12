package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

// MoodService is implemented by *repository.MoodRepository.
type MoodService interface {
	SaveMood(ctx context.Context, userID string, mood models.Mood) (models.Mood, error)
	GetMoodsByBook(ctx context.Context, userID, bookID string) ([]models.Mood, error)
	ListMoods(ctx context.Context, userID string) ([]models.MoodWithBook, error)
	DeleteMood(ctx context.Context, userID, moodID string) error
}

type MoodsHandler struct {
	Moods     MoodService
	Validator *validation.Validator
	Log       *zap.Logger
}

type MoodRequest struct {
	ID        string    `json:"id" validate:"max=128"`
	BookID    string    `json:"bookId" validate:"required,max=128"`
	Tags      []string  `json:"tags" validate:"max=20,dive,required,max=50"`
	Note      string    `json:"note" validate:"max=10000"`
	Quotes    []string  `json:"quotes" validate:"max=50,dive,max=2000"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *MoodsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	moods, err := h.Moods.ListMoods(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, moods)
}

// ByBook serves GET /api/books/{id}/moods.
func (h *MoodsHandler) ByBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	moods, err := h.Moods.GetMoodsByBook(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, moods)
}

func (h *MoodsHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req MoodRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	mood, err := h.Moods.SaveMood(r.Context(), userID, models.Mood{
		ID:        req.ID,
		BookID:    req.BookID,
		Tags:      req.Tags,
		Note:      req.Note,
		Quotes:    req.Quotes,
		CreatedAt: req.CreatedAt,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, mood)
}

func (h *MoodsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.Moods.DeleteMood(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
