// Package handler содержит HTTP обработчики API ресурсов и конечной точки $batch.
package handler

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/batch"
	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/dispatch"
	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/service"
)

const (
	contentTypePlain = "text/plain; charset=utf-8"
	contentTypeJSON  = "application/json"
)

// Handler обрабатывает запросы к ресурсам и пакетные запросы
type Handler struct {
	service  service.ResourceService
	cfg      *config.Config
	logger   *zap.Logger
	executor *batch.Executor
}

// NewHandler создает обработчик. Подзапросы $batch выполняются
// в процессе через отдельный роутер, в котором нет маршрута $batch.
func NewHandler(svc service.ResourceService, cfg *config.Config, logger *zap.Logger) *Handler {
	h := &Handler{
		service: svc,
		cfg:     cfg,
		logger:  logger,
	}

	dispatcher := dispatch.NewRouterDispatcher(h.DispatchRouter(), cfg.BatchItemTimeout, logger)
	h.executor = batch.NewExecutor(dispatcher, logger)
	return h
}

// RegisterResourceRoutes регистрирует маршруты ресурсов относительно префикса API
func (h *Handler) RegisterResourceRoutes(r chi.Router) {
	r.Get("/me", h.HandleMe)
	r.Route("/me/{collection}", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/$value", h.HandleValue)
	})
}

// DispatchRouter строит роутер для подзапросов: те же ресурсы и та же
// аутентификация, но без $batch, поэтому вложенный пакет получает 404
func (h *Handler) DispatchRouter() chi.Router {
	r := chi.NewRouter()
	r.Route(h.cfg.APIPrefix, func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.SecretKey, h.logger))
		h.RegisterResourceRoutes(r)
	})
	return r
}
