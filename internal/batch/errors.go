package batch

import (
	"errors"
	"strings"

	"github.com/InQaaaaGit/graph_batch.git/internal/depgraph"
)

// ErrDuplicateRequestID возвращается, если id подзапроса повторяется в пакете
var ErrDuplicateRequestID = errors.New("duplicate request id")

// ErrRequestIDOutOfRange возвращается, если id подзапроса больше размера пакета
var ErrRequestIDOutOfRange = errors.New("request id is out of range")

// IsClientError сообщает, что ошибка вызвана структурой пакета
// и должна возвращаться клиенту как 400
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateRequestID) ||
		errors.Is(err, ErrRequestIDOutOfRange) ||
		errors.Is(err, depgraph.ErrInvalidGraphSize) ||
		errors.Is(err, depgraph.ErrVertexOutOfRange) ||
		errors.Is(err, depgraph.ErrDuplicateEdge) ||
		errors.Is(err, depgraph.ErrCyclicGraph)
}

// UserMessage формулирует ошибку в терминах запросов, а не графа
func UserMessage(err error) string {
	return strings.ReplaceAll(err.Error(), "graph", "request")
}
