// Package depgraph реализует ориентированный граф зависимостей между
// подзапросами пакета: вставку рёбер, подсчёт входящих степеней,
// топологическую сортировку и обход зависимых вершин.
package depgraph

import (
	"fmt"
	"sort"
)

// Graph хранит граф фиксированного размера над вершинами [0, n).
// Ребро u→v означает, что v зависит от u и выполняется после неё.
type Graph struct {
	n        int
	adj      [][]int // исходящие рёбра, отсортированы по возрастанию
	inDegree []int
}

// Dependents группирует прямых зависимых одной вершины.
type Dependents struct {
	Parent   int
	Children []int
}

// New создает граф из n вершин без рёбер.
func New(n int) (*Graph, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGraphSize, n)
	}
	return &Graph{
		n:        n,
		adj:      make([][]int, n),
		inDegree: make([]int, n),
	}, nil
}

// Len возвращает количество вершин.
func (g *Graph) Len() int {
	return g.n
}

func (g *Graph) checkVertex(v int) error {
	if v < 0 || v >= g.n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrVertexOutOfRange, v, g.n)
	}
	return nil
}

// AddEdge добавляет ребро from→to: to зависит от from.
// Повторное добавление того же ребра считается ошибкой.
func (g *Graph) AddEdge(from, to int) error {
	if err := g.checkVertex(from); err != nil {
		return err
	}
	if err := g.checkVertex(to); err != nil {
		return err
	}

	out := g.adj[from]
	i := sort.SearchInts(out, to)
	if i < len(out) && out[i] == to {
		return fmt.Errorf("%w: %d -> %d", ErrDuplicateEdge, from, to)
	}

	out = append(out, 0)
	copy(out[i+1:], out[i:])
	out[i] = to
	g.adj[from] = out
	g.inDegree[to]++
	return nil
}

// InDegree возвращает число рёбер, входящих в v.
func (g *Graph) InDegree(v int) (int, error) {
	if err := g.checkVertex(v); err != nil {
		return 0, err
	}
	return g.inDegree[v], nil
}

// Adjacent возвращает вершины, напрямую зависящие от v, по возрастанию.
func (g *Graph) Adjacent(v int) ([]int, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}
	out := make([]int, len(g.adj[v]))
	copy(out, g.adj[v])
	return out, nil
}

// TopologicalOrder возвращает порядок выполнения по алгоритму Кана.
// Вершины с нулевой входящей степенью обрабатываются по возрастанию
// индекса: от этого зависит порядок элементов в ответе пакета.
// Сохранённые степени не изменяются, граф можно сортировать повторно.
func (g *Graph) TopologicalOrder() ([]int, error) {
	inDegree := make([]int, g.n)
	copy(inDegree, g.inDegree)

	queue := make([]int, 0, g.n)
	for v, d := range inDegree {
		if d == 0 {
			queue = append(queue, v)
		}
	}
	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no vertex without dependencies", ErrCyclicGraph)
	}

	order := make([]int, 0, g.n)
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)

		for _, u := range g.adj[v] {
			inDegree[u]--
			if inDegree[u] == 0 {
				queue = append(queue, u)
			}
		}
	}

	if len(order) != g.n {
		return nil, fmt.Errorf("%w: ordered %d of %d vertices", ErrCyclicGraph, len(order), g.n)
	}
	return order, nil
}

// DependentsOf обходит все вершины, достижимые из v, и для каждой вершины
// с непустым списком зависимых возвращает группу {Parent, Children}.
// Порядок групп совпадает с прямым обходом в глубину. Каждая вершина
// посещается один раз, поэтому обход конечен и на графе с циклом,
// но вызывать его следует только после успешной TopologicalOrder.
func (g *Graph) DependentsOf(v int) ([]Dependents, error) {
	if err := g.checkVertex(v); err != nil {
		return nil, err
	}

	var groups []Dependents
	visited := make([]bool, g.n)
	stack := []int{v}

	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[u] {
			continue
		}
		visited[u] = true

		children := g.adj[u]
		if len(children) == 0 {
			continue
		}
		group := Dependents{Parent: u, Children: make([]int, len(children))}
		copy(group.Children, children)
		groups = append(groups, group)

		for i := len(children) - 1; i >= 0; i-- {
			if !visited[children[i]] {
				stack = append(stack, children[i])
			}
		}
	}

	return groups, nil
}
