package dispatch

import (
	"bytes"
	"net/http"
)

// recorder собирает ответ обработчика в памяти
type recorder struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

// Header возвращает HTTP заголовки ответа
func (r *recorder) Header() http.Header {
	return r.header
}

// WriteHeader записывает код состояния, повторные вызовы игнорируются
func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

// Write дописывает данные в тело ответа
func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(b)
}

func (r *recorder) result() *Result {
	status := r.status
	if !r.wroteHeader {
		status = http.StatusOK
	}
	return &Result{
		Status: status,
		Header: r.header.Clone(),
		Body:   bytes.Clone(r.body.Bytes()),
	}
}
