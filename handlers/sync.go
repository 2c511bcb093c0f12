package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/kevinaaaquil/bookreflect/backend/repository"
)

// SyncService is implemented by *repository.Syncer.
type SyncService interface {
	Push(ctx context.Context, userID string) (repository.SyncReport, error)
}

type SyncHandler struct {
	Syncer SyncService
	Log    *zap.Logger
}

func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	report, err := h.Syncer.Push(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
