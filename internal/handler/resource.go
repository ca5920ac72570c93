package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// максимальный размер тела запроса к ресурсу
const maxResourceBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// HandleMe возвращает профиль текущего пользователя
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.service.Profile(userID))
}

// HandleList возвращает коллекцию в виде {"value":[...]}
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	resources, err := h.service.List(r.Context(), userID, chi.URLParam(r, "collection"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	list := models.ResourceList{Value: make([]map[string]any, 0, len(resources))}
	for _, resource := range resources {
		list.Value = append(list.Value, resource.Document())
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleCreate создает ресурс и возвращает 201 с документом
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	resource, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "collection"), fields)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	h.logger.Info("Resource created",
		zap.String("collection", resource.Collection),
		zap.String("id", resource.ID))
	w.Header().Set("Location", fmt.Sprintf("%s/me/%s/%s", h.cfg.APIPrefix, resource.Collection, resource.ID))
	h.writeJSON(w, http.StatusCreated, resource.Document())
}

// HandleGet возвращает ресурс
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	resource, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resource.Document())
}

// HandleUpdate обрабатывает PATCH (слияние) и PUT (замена)
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	collection, id := chi.URLParam(r, "collection"), chi.URLParam(r, "id")
	update := h.service.Merge
	if r.Method == http.MethodPut {
		update = h.service.Replace
	}

	resource, err := update(r.Context(), userID, collection, id, fields)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resource.Document())
}

// HandleDelete удаляет ресурс и отвечает 204
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValue отдает поле content ресурса как text/plain
func (h *Handler) HandleValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	content, err := h.service.Content(r.Context(), userID, chi.URLParam(r, "collection"), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeRaw(w, http.StatusOK, contentTypePlain, []byte(content))
}

// userID достает пользователя из контекста; без него запрос не дошел бы сюда через Auth
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Access token is missing or invalid")
		return "", false
	}
	return userID, true
}

// decodeFields читает тело запроса как JSON-объект
func (h *Handler) decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return nil, false
	}

	fields, err := readObject(http.MaxBytesReader(w, r.Body, maxResourceBodyBytes))
	if err != nil {
		h.logger.Debug("Invalid resource body", zap.Error(err))
		middleware.WriteError(w, http.StatusBadRequest, "Invalid JSON body: "+err.Error())
		return nil, false
	}
	return fields, true
}

func readObject(body io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("error reading request body: %w", err)
	}
	if len(data) == 0 {
		return nil, errEmptyBody
	}

	// числа сохраняются без потери точности
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	if fields == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return fields, nil
}
