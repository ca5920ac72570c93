package depgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr error
	}{
		{name: "Single vertex", n: 1},
		{name: "Several vertices", n: 20},
		{name: "Zero vertices", n: 0, wantErr: ErrInvalidGraphSize},
		{name: "Negative size", n: -3, wantErr: ErrInvalidGraphSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.n, g.Len())
		})
	}
}

func TestAddEdge(t *testing.T) {
	g, err := New(3)
	require.NoError(t, err)

	require.NoError(t, g.AddEdge(0, 1))
	assert.ErrorIs(t, g.AddEdge(0, 1), ErrDuplicateEdge)

	assert.ErrorIs(t, g.AddEdge(3, 1), ErrVertexOutOfRange)
	assert.ErrorIs(t, g.AddEdge(0, 3), ErrVertexOutOfRange)
	assert.ErrorIs(t, g.AddEdge(-1, 0), ErrVertexOutOfRange)
	assert.ErrorIs(t, g.AddEdge(0, -1), ErrVertexOutOfRange)

	// неудачные вставки не меняют степени
	d, err := g.InDegree(1)
	require.NoError(t, err)
	assert.Equal(t, 1, d)
}

func TestInDegreeAndAdjacent(t *testing.T) {
	g, err := New(4)
	require.NoError(t, err)

	require.NoError(t, g.AddEdge(0, 3))
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(2, 1))
	require.NoError(t, g.AddEdge(0, 2))

	adj, err := g.Adjacent(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, adj)

	adj, err = g.Adjacent(3)
	require.NoError(t, err)
	assert.Empty(t, adj)

	d, err := g.InDegree(1)
	require.NoError(t, err)
	assert.Equal(t, 2, d)

	d, err = g.InDegree(0)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = g.InDegree(4)
	assert.ErrorIs(t, err, ErrVertexOutOfRange)
	_, err = g.Adjacent(-1)
	assert.ErrorIs(t, err, ErrVertexOutOfRange)
}

func TestAdjacentReturnsCopy(t *testing.T) {
	g, err := New(3)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(0, 1))

	adj, err := g.Adjacent(0)
	require.NoError(t, err)
	adj[0] = 2

	adj, err = g.Adjacent(0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, adj)
}

func TestTopologicalOrder(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  []int
	}{
		{
			name: "No edges keeps index order",
			n:    4,
			want: []int{0, 1, 2, 3},
		},
		{
			name:  "Chain",
			n:     3,
			edges: [][2]int{{2, 1}, {1, 0}},
			want:  []int{2, 1, 0},
		},
		{
			name:  "Dependent moves after independent siblings",
			n:     3,
			edges: [][2]int{{0, 1}},
			want:  []int{0, 2, 1},
		},
		{
			name:  "Diamond",
			n:     4,
			edges: [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}},
			want:  []int{0, 1, 2, 3},
		},
		{
			name:  "Later root before earlier dependent",
			n:     3,
			edges: [][2]int{{2, 0}},
			want:  []int{1, 2, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.n)
			require.NoError(t, err)
			for _, e := range tt.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}

			order, err := g.TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, tt.want, order)

			// повторная сортировка даёт тот же результат
			again, err := g.TopologicalOrder()
			require.NoError(t, err)
			assert.Equal(t, order, again)
		})
	}
}

func TestTopologicalOrderCycles(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
	}{
		{name: "Every vertex has a dependency", n: 3, edges: [][2]int{{0, 1}, {1, 2}, {2, 0}}},
		{name: "Residual cycle behind a root", n: 3, edges: [][2]int{{0, 1}, {1, 2}, {2, 1}}},
		{name: "Single self dependency", n: 1, edges: [][2]int{{0, 0}}},
		{name: "Self dependency among others", n: 3, edges: [][2]int{{0, 1}, {2, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.n)
			require.NoError(t, err)
			for _, e := range tt.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}

			order, err := g.TopologicalOrder()
			assert.ErrorIs(t, err, ErrCyclicGraph)
			assert.Nil(t, order)
		})
	}
}

func TestSelfDependencyCountsAsIncomingEdge(t *testing.T) {
	g, err := New(2)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(1, 1))

	d, err := g.InDegree(1)
	require.NoError(t, err)
	assert.Equal(t, 1, d)

	groups, err := g.DependentsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []Dependents{{Parent: 1, Children: []int{1}}}, groups)
}

func TestTopologicalOrderRandomDAG(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		n := 1 + rnd.Intn(25)
		g, err := New(n)
		require.NoError(t, err)

		// рёбра только от меньшего индекса перестановки к большему — граф ацикличен
		perm := rnd.Perm(n)
		var edges [][2]int
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if rnd.Intn(4) == 0 {
					require.NoError(t, g.AddEdge(perm[i], perm[j]))
					edges = append(edges, [2]int{perm[i], perm[j]})
				}
			}
		}

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		require.Len(t, order, n)

		position := make(map[int]int, n)
		for i, v := range order {
			_, seen := position[v]
			require.False(t, seen, "vertex %d repeated", v)
			position[v] = i
		}
		for _, e := range edges {
			assert.Less(t, position[e[0]], position[e[1]], "edge %d->%d violated", e[0], e[1])
		}
	}
}

func TestTopologicalOrderRandomCycle(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for iter := 0; iter < 100; iter++ {
		n := 2 + rnd.Intn(20)
		g, err := New(n)
		require.NoError(t, err)

		// замыкаем случайный путь в кольцо
		perm := rnd.Perm(n)
		length := 2 + rnd.Intn(n-1)
		for i := 0; i < length; i++ {
			require.NoError(t, g.AddEdge(perm[i], perm[(i+1)%length]))
		}

		_, err = g.TopologicalOrder()
		assert.ErrorIs(t, err, ErrCyclicGraph)
	}
}

func TestDependentsOf(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		edges  [][2]int
		vertex int
		want   []Dependents
	}{
		{
			name:   "No dependents",
			n:      2,
			edges:  [][2]int{{1, 0}},
			vertex: 0,
			want:   nil,
		},
		{
			name:   "Chain",
			n:      3,
			edges:  [][2]int{{0, 1}, {1, 2}},
			vertex: 0,
			want: []Dependents{
				{Parent: 0, Children: []int{1}},
				{Parent: 1, Children: []int{2}},
			},
		},
		{
			name:   "Shared descendant visited once",
			n:      4,
			edges:  [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}},
			vertex: 0,
			want: []Dependents{
				{Parent: 0, Children: []int{1, 2}},
				{Parent: 1, Children: []int{3}},
				{Parent: 2, Children: []int{3}},
			},
		},
		{
			name:   "Depth first order",
			n:      5,
			edges:  [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 4}},
			vertex: 0,
			want: []Dependents{
				{Parent: 0, Children: []int{1, 2}},
				{Parent: 1, Children: []int{3}},
				{Parent: 2, Children: []int{4}},
			},
		},
		{
			name:   "Unrelated vertices are not reached",
			n:      4,
			edges:  [][2]int{{0, 1}, {2, 3}},
			vertex: 0,
			want:   []Dependents{{Parent: 0, Children: []int{1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.n)
			require.NoError(t, err)
			for _, e := range tt.edges {
				require.NoError(t, g.AddEdge(e[0], e[1]))
			}

			groups, err := g.DependentsOf(tt.vertex)
			require.NoError(t, err)
			assert.Equal(t, tt.want, groups)
		})
	}
}

func TestDependentsOfTerminatesOnCycle(t *testing.T) {
	g, err := New(3)
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(2, 0))

	groups, err := g.DependentsOf(0)
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestDependentsOfOutOfRange(t *testing.T) {
	g, err := New(2)
	require.NoError(t, err)

	_, err = g.DependentsOf(2)
	assert.ErrorIs(t, err, ErrVertexOutOfRange)
}

func BenchmarkTopologicalOrder(b *testing.B) {
	const n = 1000
	g, err := New(n)
	if err != nil {
		b.Fatal(err)
	}
	for v := 1; v < n; v++ {
		if err := g.AddEdge(v-1, v); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.TopologicalOrder(); err != nil {
			b.Fatal(err)
		}
	}
}
