// Package dispatch выполняет подзапросы пакета внутри процесса, передавая
// их в тот же http.Handler, что обслуживает обычные вызовы API.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/graph_batch.git/internal/metrics"
)

// handlerGrace ограничивает ожидание обработчика после истечения таймаута.
// Пока обработчик не завершился, следующий подзапрос пакета не запускается.
const handlerGrace = 5 * time.Second

// ErrDispatchTimeout возвращается, если подзапрос не уложился в отведённое время
var ErrDispatchTimeout = errors.New("dispatch deadline exceeded")

// ErrHandlerPanic возвращается, если обработчик подзапроса завершился паникой
var ErrHandlerPanic = errors.New("handler panicked")

// Result содержит ответ, полученный от обработчика подзапроса
type Result struct {
	Status int
	Header http.Header
	Body   []byte
}

// RouterDispatcher передает подзапросы во внутренний роутер API
type RouterDispatcher struct {
	handler http.Handler
	timeout time.Duration
	grace   time.Duration
	logger  *zap.Logger
}

// NewRouterDispatcher создает диспетчер поверх handler.
// timeout ограничивает время одного подзапроса; 0 отключает ограничение.
func NewRouterDispatcher(handler http.Handler, timeout time.Duration, logger *zap.Logger) *RouterDispatcher {
	return &RouterDispatcher{
		handler: handler,
		timeout: timeout,
		grace:   handlerGrace,
		logger:  logger,
	}
}

// Dispatch выполняет method+url с заголовками header и телом body так,
// как если бы это был отдельный HTTP-вызов. Ошибка означает, что ответ
// не был получен: паника обработчика, превышение времени или отмена ctx.
func (d *RouterDispatcher) Dispatch(ctx context.Context, method, url string, header http.Header, body []byte) (*Result, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	// контекст маршрутизации внешнего запроса не должен попасть во внутренний роутер
	ctx = context.WithValue(ctx, chi.RouteCtxKey, nil)

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building sub-request: %w", err)
	}
	req.Header = header
	req.RequestURI = url

	rec := newRecorder()
	done := make(chan error, 1)
	start := time.Now()

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("%w: %v", ErrHandlerPanic, p)
			}
		}()
		d.handler.ServeHTTP(rec, req)
		done <- nil
	}()

	select {
	case err := <-done:
		metrics.ObserveDispatch(method, time.Since(start))
		if err != nil {
			d.logger.Error("Sub-request handler panicked",
				zap.String("method", method), zap.String("url", url), zap.Error(err))
			return nil, err
		}
		return rec.result(), nil
	case <-ctx.Done():
		d.logger.Warn("Sub-request did not complete in time",
			zap.String("method", method), zap.String("url", url), zap.Error(ctx.Err()))
		d.awaitHandler(done, method, url)
		metrics.ObserveDispatch(method, time.Since(start))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDispatchTimeout, method, url, ctx.Err())
	}
}

// awaitHandler ждет завершения обработчика, получившего отмененный контекст.
// Его ответ отбрасывается, а запись в хранилище с отмененным ctx не выполняется.
func (d *RouterDispatcher) awaitHandler(done <-chan error, method, url string) {
	timer := time.NewTimer(d.grace)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		d.logger.Error("Sub-request handler still running after grace period",
			zap.String("method", method), zap.String("url", url), zap.Duration("grace", d.grace))
	}
}
