package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
)

// HandlePing обрабатывает запрос на проверку соединения с хранилищем
func (h *Handler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CheckConnection(r.Context()); err != nil {
		h.logger.Error("Storage connection check failed", zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "Storage connection error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
