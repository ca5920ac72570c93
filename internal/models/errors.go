package models

// ErrorBody повторяет формат ошибки Microsoft Graph
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail содержит код и текст ошибки
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewErrorBody создает тело ошибки с заданным кодом
func NewErrorBody(code int, message string) ErrorBody {
	return ErrorBody{Error: ErrorDetail{Code: code, Message: message}}
}
