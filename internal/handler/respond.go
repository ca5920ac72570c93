package handler

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/service"
	"github.com/InQaaaaGit/graph_batch.git/internal/storage"
)

// writeJSON сериализует v и пишет ответ с заданным статусом
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.writeRaw(w, status, contentTypeJSON, data)
}

func (h *Handler) writeRaw(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}

// writeServiceError переводит ошибки сервиса и хранилища в HTTP статусы
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownCollection),
		errors.Is(err, storage.ErrResourceNotFound),
		errors.Is(err, service.ErrNoContent):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrResourceConflict):
		middleware.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidResourceID):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Error handling resource request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// isJSONContentType допускает application/json и типы с суффиксом +json
func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == contentTypeJSON ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
