// Package middleware содержит HTTP middleware сервиса: аутентификацию,
// сжатие, логирование и сбор метрик.
package middleware

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// GenerateUserID генерирует уникальный ID пользователя
func GenerateUserID() string {
	return uuid.New().String()
}

// WriteError пишет ошибку в формате Microsoft Graph
func WriteError(w http.ResponseWriter, status int, message string) {
	body, err := json.Marshal(models.NewErrorBody(status, message))
	if err != nil {
		http.Error(w, message, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
