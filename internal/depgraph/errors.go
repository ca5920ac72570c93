package depgraph

import "errors"

// ErrInvalidGraphSize возвращается при попытке создать граф без вершин
var ErrInvalidGraphSize = errors.New("graph size must be positive")

// ErrVertexOutOfRange возвращается, когда индекс вершины вне [0, n)
var ErrVertexOutOfRange = errors.New("vertex is out of graph range")

// ErrDuplicateEdge возвращается при повторном добавлении ребра
var ErrDuplicateEdge = errors.New("duplicate graph edge")

// ErrCyclicGraph возвращается, если граф не удаётся упорядочить
var ErrCyclicGraph = errors.New("graph has cycle")
