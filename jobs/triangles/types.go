package triangles

import (
	"encoding/binary"

	"github.com/go-sif/sif-jobs/errors"
)

// Edge is an undirected edge in canonical form: V1 < V2
type Edge struct {
	V1 int64
	V2 int64
}

// NewEdge creates a canonical Edge between two nodes, whatever their order.
// Node ids must not be negative.
func NewEdge(a, b int64) (Edge, error) {
	if a < 0 || b < 0 {
		return Edge{}, errors.MalformedInputError{
			Source: "edge",
			Record: Edge{V1: a, V2: b}.String(),
			Err:    errNegativeNode,
		}
	}
	if a > b {
		a, b = b, a
	}
	return Edge{V1: a, V2: b}, nil
}

// IsSelfLoop returns true iff the Edge connects a node to itself
func (e Edge) IsSelfLoop() bool {
	return e.V1 == e.V2
}

// String returns a textual representation of this Edge
func (e Edge) String() string {
	return formatIDs(e.V1, e.V2)
}

// AdjacencyList is a node together with every neighbor greater than it
type AdjacencyList struct {
	Node      int64
	Neighbors []int64
}

// Triad is a candidate triangle with V1 < V2 < V3. It is a triangle iff the edge (V2, V3) exists.
type Triad struct {
	V1 int64
	V2 int64
	V3 int64
}

// String returns a textual representation of this Triad
func (t Triad) String() string {
	return formatIDs(t.V1, t.V2, t.V3)
}

// Options configure triangle enumeration. Both default to false, counting every
// join match including those caused by duplicate input edges.
type Options struct {
	DedupEdges   bool // remove duplicate edges before building adjacency lists
	DedupMatches bool // count each distinct triangle once, regardless of how many join matches confirmed it
}

// keyIDs encodes node ids as fixed-width key bytes
func keyIDs(ids ...int64) []byte {
	buf := make([]byte, 8*len(ids))
	for i, id := range ids {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(id))
	}
	return buf
}
