package handler_test

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/config"
	"github.com/InQaaaaGit/graph_batch.git/internal/handler"
	"github.com/InQaaaaGit/graph_batch.git/internal/middleware"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
	"github.com/InQaaaaGit/graph_batch.git/internal/service"
)

// ExampleHandler_HandleBatch демонстрирует пакет из двух зависимых подзапросов.
func ExampleHandler_HandleBatch() {
	cfg := config.Default()
	logger := zap.NewNop()

	// Создаем сервис с in-memory хранилищем
	svc, err := service.NewResourceService(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	h := handler.NewHandler(svc, cfg, logger)

	r := chi.NewRouter()
	r.Route(cfg.APIPrefix, func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SecretKey, logger))
		r.Post("/$batch", h.HandleBatch)
		h.RegisterResourceRoutes(r)
	})

	token, err := middleware.CreateToken("example-user", cfg.SecretKey, time.Hour)
	if err != nil {
		log.Fatal(err)
	}

	// Второй подзапрос выполняется только после первого
	body := `{"requests":[
		{"id":"2","method":"GET","url":"/v1.0/me/contacts/c1","dependsOn":["1"]},
		{"id":"1","method":"POST","url":"/v1.0/me/contacts","body":{"id":"c1","displayName":"Carol"}}
	]}`
	req := httptest.NewRequest(http.MethodPost, "/v1.0/$batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var items []models.BatchResponseItem
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Status: %d\n", rr.Code)
	for _, item := range items {
		fmt.Printf("Item %s: %d\n", item.ID, item.Status)
	}

	// Output:
	// Status: 200
	// Item 1: 201
	// Item 2: 200
}

// ExampleHandler_HandleMe демонстрирует вызов обработчика без роутера.
func ExampleHandler_HandleMe() {
	cfg := config.Default()
	svc, err := service.NewResourceService(cfg, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	h := handler.NewHandler(svc, cfg, zap.NewNop())

	// Добавляем userID в контекст так же, как это делает middleware.Auth
	req := httptest.NewRequest(http.MethodGet, "/v1.0/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUserID, "example-user"))

	rr := httptest.NewRecorder()
	h.HandleMe(rr, req)

	fmt.Println(rr.Code, rr.Body.String())

	// Output:
	// 200 {"id":"example-user","userPrincipalName":"example-user"}
}
