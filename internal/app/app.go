// Package app содержит основную структуру приложения и логику инициализации.
// Собирает хранилище, сервис ресурсов, обработчики и middleware в один HTTP роутер.
package app

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/handler"
	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/server"
	"github.com/InQaaaaGit/graph_batch.git/internal/service"
)

// App представляет шлюз пакетных запросов.
// Инкапсулирует конфигурацию, HTTP роутер, логгер и обработчики запросов.
type App struct {
	config  *config.Config               // Конфигурация приложения
	router  *chi.Mux                     // HTTP роутер для обработки запросов
	logger  *zap.Logger                  // Логгер для записи событий приложения
	handler *handler.Handler             // Обработчики HTTP запросов
	service *service.ResourceServiceImpl // Сервис ресурсов, владеет хранилищем
}

// NewApp создает приложение: выбирает хранилище по конфигурации
// и регистрирует все маршруты.
func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	svc, err := service.NewResourceService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating service: %w", err)
	}

	a := &App{
		config:  cfg,
		router:  chi.NewRouter(),
		logger:  logger,
		handler: handler.NewHandler(svc, cfg, logger),
		service: svc,
	}
	a.setupRoutes()
	return a, nil
}

// setupRoutes настраивает HTTP маршруты и middleware.
// $batch регистрируется только здесь: роутер подзапросов его не содержит.
func (a *App) setupRoutes() {
	a.router.Use(chimiddleware.RequestID)
	a.router.Use(middleware.LoggerMiddleware(a.logger))
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.Metrics)
	if len(a.config.CORSOrigins) > 0 {
		a.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.config.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "Content-Encoding", "Accept-Encoding", "Prefer"},
			ExposedHeaders: []string{"Location"},
			MaxAge:         300,
		}))
	}
	a.router.Use(middleware.GzipMiddleware)

	a.router.Get("/ping", a.handler.HandlePing)
	a.router.Handle("/metrics", promhttp.Handler())

	a.router.Route(a.config.APIPrefix, func(r chi.Router) {
		r.Use(middleware.Auth(a.config.SecretKey, a.logger))

		batchRoute := r.With()
		if a.config.RateLimitRequests > 0 {
			batchRoute = r.With(httprate.Limit(
				a.config.RateLimitRequests,
				a.config.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					middleware.WriteError(w, http.StatusTooManyRequests, "Too many requests")
				}),
			))
		}
		batchRoute.Post("/$batch", a.handler.HandleBatch)

		a.handler.RegisterResourceRoutes(r)
	})

	// Профилирование доступно только в debug режиме
	if a.config.LogLevel == "debug" {
		a.router.Mount("/debug/pprof", http.DefaultServeMux)
	}
}

// Router возвращает корневой HTTP обработчик
func (a *App) Router() http.Handler {
	return a.router
}

// GetServer создает и возвращает настроенный HTTP сервер.
// WriteTimeout учитывает, что $batch выполняет подзапросы последовательно.
func (a *App) GetServer() *http.Server {
	writeTimeout := 30 * time.Second
	if batchBudget := a.config.BatchItemTimeout*time.Duration(a.config.BatchMaxRequests) + 5*time.Second; batchBudget > writeTimeout {
		writeTimeout = batchBudget
	}

	return &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

// Run запускает HTTP или HTTPS сервер и останавливает его при отмене ctx
func (a *App) Run(ctx context.Context) error {
	return server.NewHTTPServer(a.GetServer(), a.config, a.logger).Run(ctx)
}

// Close освобождает хранилище
func (a *App) Close() error {
	return a.service.Close()
}
