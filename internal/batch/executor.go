package batch

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/dispatch"
	"github.com/InQaaaaGit/graph_batch.git/internal/metrics"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

const (
	contentTypeJSON       = "application/json"
	executionErrorMessage = "An error occurred executing the request"
)

// заголовки внешнего запроса, которые не передаются в подзапросы
var skippedHeaders = []string{"Content-Length", "Content-Encoding", "Accept-Encoding", "Transfer-Encoding", "Connection"}

// Dispatcher выполняет подзапрос так же, как отдельный вызов API
type Dispatcher interface {
	Dispatch(ctx context.Context, method, url string, header http.Header, body []byte) (*dispatch.Result, error)
}

// Executor выполняет подзапросы плана последовательно в топологическом порядке
type Executor struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewExecutor создает исполнителя пакетов
func NewExecutor(dispatcher Dispatcher, logger *zap.Logger) *Executor {
	return &Executor{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Execute выполняет план и возвращает элементы ответа в порядке выполнения.
// Ошибка возвращается только если граф содержит цикл: в этом случае
// ни один подзапрос не выполняется.
func (e *Executor) Execute(ctx context.Context, plan *Plan, outer http.Header) ([]models.BatchResponseItem, error) {
	order, err := plan.Graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	items := make([]models.BatchResponseItem, 0, len(plan.Requests))
	for _, v := range order {
		req := plan.Requests[v]
		if req.Processed {
			continue
		}
		req.Processed = true

		item, failed, err := e.execute(ctx, req.Entry, outer)
		if err != nil {
			e.logger.Error("Error formatting batch item, item omitted",
				zap.String("id", req.Entry.ID), zap.Error(err))
		} else {
			items = append(items, item)
			metrics.RecordBatchItem(item.Status)
		}

		if failed {
			items = append(items, e.failDependents(plan, v)...)
		}
	}

	return items, nil
}

// execute выполняет один подзапрос. failed означает, что зависимые
// подзапросы должны быть отклонены со статусом 424.
func (e *Executor) execute(ctx context.Context, entry models.BatchRequestEntry, outer http.Header) (models.BatchResponseItem, bool, error) {
	header := mergeHeaders(outer, entry.Headers, len(entry.Body) > 0)

	res, err := e.dispatcher.Dispatch(ctx, entry.Method, entry.URL, header, entry.Body)
	if err != nil {
		e.logger.Warn("Batch sub-request failed",
			zap.String("id", entry.ID),
			zap.String("method", entry.Method),
			zap.String("url", entry.URL),
			zap.Error(err))
		item, err := errorItem(entry.ID, http.StatusInternalServerError, executionErrorMessage)
		return item, true, err
	}

	e.logger.Debug("Batch sub-request executed",
		zap.String("id", entry.ID),
		zap.String("method", entry.Method),
		zap.String("url", entry.URL),
		zap.Int("status", res.Status))

	switch res.Status {
	case http.StatusOK:
		contentType := res.Header.Get("Content-Type")
		if !isJSON(contentType) {
			if contentType == "" {
				contentType = "(none)"
			}
			item, err := errorItem(entry.ID, http.StatusBadRequest, fmt.Sprintf("content-type %s is unsupported", contentType))
			return item, true, err
		}
		if !json.Valid(res.Body) {
			return models.BatchResponseItem{}, false, fmt.Errorf("response of request %s is not valid JSON", entry.ID)
		}
		return newItem(entry.ID, http.StatusOK, res.Body), false, nil
	case http.StatusCreated, http.StatusNoContent:
		body, err := passthroughBody(res.Body)
		if err != nil {
			return models.BatchResponseItem{}, false, err
		}
		return newItem(entry.ID, res.Status, body), false, nil
	default:
		// не-2xx статус остаётся в своём элементе и не отклоняет зависимые
		item, err := errorItem(entry.ID, res.Status, http.StatusText(res.Status))
		return item, false, err
	}
}

// failDependents помечает все подзапросы, транзитивно зависящие от v,
// как завершённые и возвращает для них ответы 424
func (e *Executor) failDependents(plan *Plan, v int) []models.BatchResponseItem {
	groups, err := plan.Graph.DependentsOf(v)
	if err != nil {
		e.logger.Error("Error collecting dependents", zap.Int("vertex", v), zap.Error(err))
		return nil
	}

	var items []models.BatchResponseItem
	for _, group := range groups {
		parentID := plan.Requests[group.Parent].Entry.ID
		for _, child := range group.Children {
			dep := plan.Requests[child]
			if dep.Processed {
				continue
			}
			dep.Processed = true

			item, err := errorItem(dep.Entry.ID, http.StatusFailedDependency,
				fmt.Sprintf("failed dependency: request %s did not succeed", parentID))
			if err != nil {
				e.logger.Error("Error formatting batch item, item omitted",
					zap.String("id", dep.Entry.ID), zap.Error(err))
				continue
			}
			e.logger.Info("Batch sub-request skipped due to failed dependency",
				zap.String("id", dep.Entry.ID), zap.String("dependency", parentID))
			items = append(items, item)
			metrics.RecordBatchItem(item.Status)
		}
	}
	return items
}

// mergeHeaders накладывает заголовки подзапроса поверх заголовков
// внешнего запроса: при совпадении ключей побеждает подзапрос
func mergeHeaders(outer http.Header, own map[string]string, hasBody bool) http.Header {
	header := outer.Clone()
	if header == nil {
		header = make(http.Header)
	}
	for _, key := range skippedHeaders {
		header.Del(key)
	}
	for key, value := range own {
		header.Set(key, value)
	}
	if hasBody && header.Get("Content-Type") == "" {
		header.Set("Content-Type", contentTypeJSON)
	}
	return header
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == contentTypeJSON
}

func passthroughBody(body []byte) (json.RawMessage, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if json.Valid(body) {
		return json.RawMessage(body), nil
	}
	encoded, err := json.Marshal(string(body))
	if err != nil {
		return nil, fmt.Errorf("error encoding response body: %w", err)
	}
	return encoded, nil
}

func newItem(id string, status int, body json.RawMessage) models.BatchResponseItem {
	return models.BatchResponseItem{
		ID:      id,
		Status:  status,
		Body:    body,
		Headers: map[string]string{"content-type": contentTypeJSON},
	}
}

func errorItem(id string, status int, message string) (models.BatchResponseItem, error) {
	body, err := json.Marshal(models.NewErrorBody(status, message))
	if err != nil {
		return models.BatchResponseItem{}, fmt.Errorf("error encoding error body: %w", err)
	}
	return newItem(id, status, body), nil
}
