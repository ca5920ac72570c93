// Package batch исполняет запросы $batch: строит граф зависимостей между
// подзапросами, выполняет их в топологическом порядке и собирает ответ.
package batch

import (
	"fmt"
	"strconv"

	"github.com/InQaaaaGit/graph_batch.git/internal/depgraph"
	"github.com/InQaaaaGit/graph_batch.git/internal/models"
)

// Request представляет подзапрос пакета и признак того, что его
// результат уже сформирован (выполнен или отклонён из-за зависимости)
type Request struct {
	Entry     models.BatchRequestEntry
	Processed bool
}

// Plan содержит граф зависимостей и таблицу подзапросов по индексу вершины
type Plan struct {
	Graph    *depgraph.Graph
	Requests []*Request
}

// NewPlan строит таблицу подзапросов и граф зависимостей.
// Индекс вершины равен внешнему id минус один.
func NewPlan(entries []models.BatchRequestEntry) (*Plan, error) {
	n := len(entries)
	requests := make([]*Request, n)

	for _, entry := range entries {
		idx, ok := vertexIndex(entry.ID, n)
		if !ok {
			return nil, fmt.Errorf("%w: id %q in a batch of %d requests", ErrRequestIDOutOfRange, entry.ID, n)
		}
		if requests[idx] != nil {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRequestID, entry.ID)
		}
		requests[idx] = &Request{Entry: entry}
	}

	graph, err := depgraph.New(n)
	if err != nil {
		return nil, err
	}

	for v, req := range requests {
		for _, dep := range req.Entry.DependsOn {
			from, ok := vertexIndex(dep, n)
			if !ok {
				return nil, fmt.Errorf("request %s depends on %s: %w", req.Entry.ID, dep, depgraph.ErrVertexOutOfRange)
			}
			if err := graph.AddEdge(from, v); err != nil {
				return nil, fmt.Errorf("request %s depends on %s: %w", req.Entry.ID, dep, err)
			}
		}
	}

	return &Plan{Graph: graph, Requests: requests}, nil
}

func vertexIndex(id string, n int) (int, bool) {
	v, err := strconv.Atoi(id)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}
