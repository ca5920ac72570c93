package models

import "github.com/goccy/go-json"

// BatchRequest представляет тело запроса к эндпоинту $batch
type BatchRequest struct {
	Requests []BatchRequestEntry `json:"requests" validate:"required,min=1,dive"`
}

// BatchRequestEntry представляет один подзапрос пакета
type BatchRequestEntry struct {
	ID        string            `json:"id" validate:"required,batchid"`
	Method    string            `json:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	URL       string            `json:"url" validate:"required"`
	Body      json.RawMessage   `json:"body,omitempty" validate:"omitempty,jsonobject"`
	Headers   map[string]string `json:"headers,omitempty"`
	DependsOn []string          `json:"dependsOn,omitempty" validate:"omitempty,unique,dive,batchid"`
}

// BatchResponseItem представляет ответ на один подзапрос пакета
type BatchResponseItem struct {
	ID      string            `json:"id"`
	Status  int               `json:"status"`
	Body    json.RawMessage   `json:"body"`
	Headers map[string]string `json:"headers"`
}
