package triangles

import (
	"context"
	goerrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sif/sif-jobs/runtime"
	"go.uber.org/zap"
)

var errNegativeNode = goerrors.New("node ids must not be negative")

func formatIDs(ids ...int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Canonicalize returns a canonical copy of every edge, validating node ids
func Canonicalize(edges []Edge) ([]Edge, error) {
	res := make([]Edge, len(edges))
	for i, e := range edges {
		c, err := NewEdge(e.V1, e.V2)
		if err != nil {
			return nil, err
		}
		res[i] = c
	}
	return res, nil
}

func keyEdge(e Edge) ([]byte, error) {
	return keyIDs(e.V1, e.V2), nil
}

func keySource(e Edge) ([]byte, error) {
	return keyIDs(e.V1), nil
}

func keyClosingEdge(t Triad) ([]byte, error) {
	return keyIDs(t.V2, t.V3), nil
}

func keyTriad(t Triad) ([]byte, error) {
	return keyIDs(t.V1, t.V2, t.V3), nil
}

// buildAdjacencyList collects the neighbors of a group of edges sharing V1
func buildAdjacencyList(_ []byte, group []Edge) (AdjacencyList, error) {
	adj := AdjacencyList{Node: group[0].V1, Neighbors: make([]int64, 0, len(group))}
	for _, e := range group {
		adj.Neighbors = append(adj.Neighbors, e.V2)
	}
	sort.Slice(adj.Neighbors, func(i, j int) bool { return adj.Neighbors[i] < adj.Neighbors[j] })
	return adj, nil
}

// EmitTriads emits a Triad for every pair of neighbor positions in an AdjacencyList.
// Pairs which cannot form a triangle (a self-loop neighbor, or the same neighbor
// listed twice) are skipped.
func EmitTriads(adj AdjacencyList, emit func(Triad)) error {
	for i := 0; i < len(adj.Neighbors); i++ {
		for j := i + 1; j < len(adj.Neighbors); j++ {
			v2, v3 := adj.Neighbors[i], adj.Neighbors[j]
			if v2 > v3 {
				v2, v3 = v3, v2
			}
			if adj.Node >= v2 || v2 == v3 {
				continue
			}
			emit(Triad{V1: adj.Node, V2: v2, V3: v3})
		}
	}
	return nil
}

// Enumerate returns every triangle of the graph, sorted. Unless opts.DedupMatches
// is set, a triangle appears once per join match confirming it.
func Enumerate(ctx context.Context, rt *runtime.Runtime, edges []Edge, opts *Options) ([]Triad, error) {
	if opts == nil {
		opts = &Options{}
	}
	canonical, err := Canonicalize(edges)
	if err != nil {
		return nil, err
	}
	if opts.DedupEdges {
		canonical, err = runtime.Distinct(ctx, rt, canonical, keyEdge)
		if err != nil {
			return nil, fmt.Errorf("unable to deduplicate edges: %w", err)
		}
	}
	adjacencies, err := runtime.GroupReduce(ctx, rt, canonical, keySource, buildAdjacencyList)
	if err != nil {
		return nil, fmt.Errorf("unable to build adjacency lists: %w", err)
	}
	triads, err := runtime.FlatMap(ctx, rt, adjacencies, EmitTriads)
	if err != nil {
		return nil, fmt.Errorf("unable to build triads: %w", err)
	}
	triangles, err := runtime.Join(ctx, rt, triads, canonical, keyClosingEdge, keyEdge, func(t Triad, _ Edge) (Triad, error) {
		return t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to close triads: %w", err)
	}
	if opts.DedupMatches {
		triangles, err = runtime.Distinct(ctx, rt, triangles, keyTriad)
		if err != nil {
			return nil, fmt.Errorf("unable to deduplicate triangles: %w", err)
		}
	}
	sort.Slice(triangles, func(i, j int) bool {
		a, b := triangles[i], triangles[j]
		if a.V1 != b.V1 {
			return a.V1 < b.V1
		}
		if a.V2 != b.V2 {
			return a.V2 < b.V2
		}
		return a.V3 < b.V3
	})
	rt.Logger().Debug("Enumerated triangles",
		zap.Int("edges", len(canonical)),
		zap.Int("adjacencyLists", len(adjacencies)),
		zap.Int("triads", len(triads)),
		zap.Int("triangles", len(triangles)),
	)
	return triangles, nil
}

// Count returns the number of triangles in the graph
func Count(ctx context.Context, rt *runtime.Runtime, edges []Edge, opts *Options) (int64, error) {
	triangles, err := Enumerate(ctx, rt, edges, opts)
	if err != nil {
		return 0, err
	}
	return runtime.Count(ctx, rt, triangles)
}

// DefaultEdges returns a small example graph containing 4 triangles
func DefaultEdges() []Edge {
	return []Edge{
		{1, 2}, {1, 3}, {1, 4}, {1, 5}, {2, 3}, {2, 5},
		{3, 4}, {3, 7}, {3, 8}, {5, 6}, {7, 8},
	}
}
