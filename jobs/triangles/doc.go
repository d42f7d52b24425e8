// Package triangles enumerates the triangles of an undirected graph. Edges are
// grouped into adjacency lists keyed by their smaller endpoint, every pair of
// neighbors becomes a candidate triad, and a join against the edge set keeps
// the triads whose closing edge exists.
package triangles
