package triangles

import (
	"context"
	goerrors "errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/go-sif/sif-jobs/errors"
	siftest "github.com/go-sif/sif-jobs/internal/test"
	"github.com/stretchr/testify/require"
)

// bruteForce counts the triangles of a simple graph by checking every triple of nodes
func bruteForce(numNodes int, edges []Edge) int64 {
	adj := make([][]bool, numNodes)
	for i := range adj {
		adj[i] = make([]bool, numNodes)
	}
	for _, e := range edges {
		adj[e.V1][e.V2] = true
		adj[e.V2][e.V1] = true
	}
	var count int64
	for a := 0; a < numNodes; a++ {
		for b := a + 1; b < numNodes; b++ {
			for c := b + 1; c < numNodes; c++ {
				if adj[a][b] && adj[b][c] && adj[a][c] {
					count++
				}
			}
		}
	}
	return count
}

// randomGraph produces a simple graph (no duplicate edges, no self-loops) with random edge directions
func randomGraph(r *rand.Rand, numNodes int, density float64) []Edge {
	var edges []Edge
	for a := 0; a < numNodes; a++ {
		for b := a + 1; b < numNodes; b++ {
			if r.Float64() < density {
				if r.Intn(2) == 0 {
					edges = append(edges, Edge{V1: int64(a), V2: int64(b)})
				} else {
					edges = append(edges, Edge{V1: int64(b), V2: int64(a)})
				}
			}
		}
	}
	r.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	return edges
}

func TestDefaultEdges(t *testing.T) {
	rt := siftest.LocalRuntime(t, 2)
	triangles, err := Enumerate(context.Background(), rt, DefaultEdges(), nil)
	require.Nil(t, err)
	require.Equal(t, []Triad{{1, 2, 3}, {1, 2, 5}, {1, 3, 4}, {3, 7, 8}}, triangles)
	count, err := Count(context.Background(), rt, DefaultEdges(), nil)
	require.Nil(t, err)
	require.EqualValues(t, 4, count)
}

func TestMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	rt := siftest.LocalRuntime(t, 4)
	for trial := 0; trial < 20; trial++ {
		numNodes := 5 + r.Intn(46)
		edges := randomGraph(r, numNodes, 0.05+r.Float64()*0.4)
		count, err := Count(context.Background(), rt, edges, nil)
		require.Nil(t, err)
		require.Equal(t, bruteForce(numNodes, edges), count, "trial %d with %d nodes", trial, numNodes)
	}
}

func TestInvariantUnderPermutationAndSwap(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	rt := siftest.LocalRuntime(t, 3)
	edges := randomGraph(r, 30, 0.3)
	expected, err := Count(context.Background(), rt, edges, nil)
	require.Nil(t, err)
	require.True(t, expected > 0)

	for trial := 0; trial < 5; trial++ {
		permuted := make([]Edge, len(edges))
		copy(permuted, edges)
		r.Shuffle(len(permuted), func(i, j int) { permuted[i], permuted[j] = permuted[j], permuted[i] })
		for i := range permuted {
			if r.Intn(2) == 0 {
				permuted[i] = Edge{V1: permuted[i].V2, V2: permuted[i].V1}
			}
		}
		count, err := Count(context.Background(), rt, permuted, nil)
		require.Nil(t, err)
		require.Equal(t, expected, count)
	}
}

func TestIndependentOfPartitionCount(t *testing.T) {
	edges := randomGraph(rand.New(rand.NewSource(3)), 40, 0.25)
	var expected []Triad
	for _, numPartitions := range []int{1, 2, 5, 16} {
		t.Run(fmt.Sprintf("partitions=%d", numPartitions), func(t *testing.T) {
			rt := siftest.LocalRuntime(t, numPartitions)
			triangles, err := Enumerate(context.Background(), rt, edges, nil)
			require.Nil(t, err)
			if expected == nil {
				expected = triangles
			}
			require.Equal(t, expected, triangles)
		})
	}
}

func TestIdempotent(t *testing.T) {
	rt := siftest.LocalRuntime(t, 4)
	edges := randomGraph(rand.New(rand.NewSource(11)), 25, 0.3)
	first, err := Enumerate(context.Background(), rt, edges, nil)
	require.Nil(t, err)
	second, err := Enumerate(context.Background(), rt, edges, nil)
	require.Nil(t, err)
	require.Equal(t, fmt.Sprint(first), fmt.Sprint(second))
}

func TestDuplicateEdges(t *testing.T) {
	rt := siftest.LocalRuntime(t, 2)
	// one triangle, with (1,2) given twice (once reversed) and (2,3) given twice
	edges := []Edge{{1, 2}, {2, 1}, {1, 3}, {2, 3}, {2, 3}}

	raw, err := Count(context.Background(), rt, edges, &Options{})
	require.Nil(t, err)
	// adjacency of 1 is [2 2 3]: triad (1,2,3) is built twice, and each joins both copies of (2,3)
	require.EqualValues(t, 4, raw)

	dedupEdges, err := Count(context.Background(), rt, edges, &Options{DedupEdges: true})
	require.Nil(t, err)
	require.EqualValues(t, 1, dedupEdges)

	dedupMatches, err := Count(context.Background(), rt, edges, &Options{DedupMatches: true})
	require.Nil(t, err)
	require.EqualValues(t, 1, dedupMatches)
}

func TestSelfLoops(t *testing.T) {
	rt := siftest.LocalRuntime(t, 2)
	edges := []Edge{{1, 1}, {1, 2}, {2, 2}, {2, 3}, {1, 3}, {3, 3}}
	triangles, err := Enumerate(context.Background(), rt, edges, nil)
	require.Nil(t, err)
	require.Equal(t, []Triad{{1, 2, 3}}, triangles)

	count, err := Count(context.Background(), rt, []Edge{{4, 4}}, nil)
	require.Nil(t, err)
	require.EqualValues(t, 0, count)
}

func TestEmitTriads(t *testing.T) {
	var triads []Triad
	err := EmitTriads(AdjacencyList{Node: 1, Neighbors: []int64{4, 2, 3}}, func(t Triad) {
		triads = append(triads, t)
	})
	require.Nil(t, err)
	// m*(m-1)/2 pairs, each ordered by min/max
	require.Equal(t, []Triad{{1, 2, 4}, {1, 3, 4}, {1, 2, 3}}, triads)
}

func TestNegativeNodes(t *testing.T) {
	rt := siftest.LocalRuntime(t, 1)
	_, err := Count(context.Background(), rt, []Edge{{1, 2}, {-1, 3}}, nil)
	var merr errors.MalformedInputError
	require.True(t, goerrors.As(err, &merr))
	require.ErrorIs(t, err, errNegativeNode)
}

func TestNewEdge(t *testing.T) {
	e, err := NewEdge(5, 2)
	require.Nil(t, err)
	require.Equal(t, Edge{V1: 2, V2: 5}, e)
	require.False(t, e.IsSelfLoop())
	require.Equal(t, "(2,5)", e.String())
}
