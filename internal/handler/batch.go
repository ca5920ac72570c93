package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/batch"
	"github.com/InQaaaaGit/graph_batch.git/internal/metrics"
	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
	"github.com/InQaaaaGit/graph_batch.git/internal/validation"
)

// максимальный размер тела $batch
const maxBatchBodyBytes = 4 << 20

// HandleBatch принимает пакет подзапросов, выполняет их в порядке
// зависимостей и возвращает JSON-массив результатов.
// 400 возвращается только для структурно неверного пакета или цикла.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		metrics.RecordBatch(metrics.OutcomeRejected, 0)
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	req, err := decodeBatch(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	if err != nil {
		h.rejectBatch(w, 0, "Invalid batch payload: "+err.Error(), err)
		return
	}

	size := len(req.Requests)
	if err := validation.ValidateBatch(req, h.cfg.APIPrefix, h.cfg.BatchMaxRequests); err != nil {
		h.rejectBatch(w, size, err.Error(), err)
		return
	}

	plan, err := batch.NewPlan(req.Requests)
	if err != nil {
		h.rejectBatch(w, size, batch.UserMessage(err), err)
		return
	}

	items, err := h.executor.Execute(r.Context(), plan, r.Header)
	if err != nil {
		if batch.IsClientError(err) {
			h.logger.Info("Batch rejected: cyclic dependencies", zap.Int("size", size), zap.Error(err))
			metrics.RecordBatch(metrics.OutcomeCyclic, size)
			middleware.WriteError(w, http.StatusBadRequest, batch.UserMessage(err))
			return
		}
		h.failBatch(w, size, err)
		return
	}

	body, err := batch.Assemble(items)
	if err != nil {
		h.failBatch(w, size, err)
		return
	}

	h.logger.Info("Batch executed", zap.Int("size", size), zap.Int("items", len(items)))
	metrics.RecordBatch(metrics.OutcomeCompleted, size)
	h.writeRaw(w, http.StatusOK, contentTypeJSON, body)
}

func (h *Handler) rejectBatch(w http.ResponseWriter, size int, message string, err error) {
	h.logger.Info("Batch rejected", zap.Int("size", size), zap.Error(err))
	metrics.RecordBatch(metrics.OutcomeRejected, size)

	status := http.StatusBadRequest
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}
	middleware.WriteError(w, status, message)
}

func (h *Handler) failBatch(w http.ResponseWriter, size int, err error) {
	h.logger.Error("Batch execution failed", zap.Int("size", size), zap.Error(err))
	metrics.RecordBatch(metrics.OutcomeFailed, size)
	middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeBatch строго декодирует тело: неизвестные поля и данные после объекта запрещены
func decodeBatch(body io.Reader) (*models.BatchRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var req models.BatchRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after JSON object")
	}
	return &req, nil
}
