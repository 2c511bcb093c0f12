package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/models"
	"github.com/kevinaaaquil/bookreflect/backend/validation"
)

// ProfileService is implemented by *repository.AuthRepository.
type ProfileService interface {
	GetUserProfile(ctx context.Context, userID string) (models.Profile, error)
	UpdateUserName(ctx context.Context, userID, name string) (models.Profile, error)
	UpdateAvatar(ctx context.Context, userID, filename string, body io.Reader, contentType string) (models.Profile, error)
}

type ProfileHandler struct {
	Profiles  ProfileService
	Validator *validation.Validator
	MaxBytes  int64
	Log       *zap.Logger
}

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	profile, err := h.Profiles.GetUserProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := decode(r, h.Validator, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	profile, err := h.Profiles.UpdateUserName(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UploadAvatar takes a multipart image in field "file".
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	up, err := readUpload(w, r, h.MaxBytes)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	profile, err := h.Profiles.UpdateAvatar(r.Context(), userID, up.Filename, bytes.NewReader(up.Data), up.ContentType)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
