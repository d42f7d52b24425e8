// Package kmeans implements Lloyd's k-means clustering of two-dimensional points.
//
// Each iteration broadcasts the current centroids to every point, assigns
// points to their nearest centroid, and recomputes centroids from the
// per-cluster sums. A fixed number of iterations is always run.
package kmeans
