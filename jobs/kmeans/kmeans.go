package kmeans

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/go-sif/sif-jobs/errors"
	"github.com/go-sif/sif-jobs/runtime"
	"go.uber.org/zap"
)

func validateOptions(points []Point, opts *Options) error {
	if opts == nil {
		return errors.ConfigurationError{Parameter: "Options", Value: nil, Reason: "must not be nil"}
	}
	if opts.K <= 0 {
		return errors.ConfigurationError{Parameter: "K", Value: opts.K, Reason: "must be greater than 0"}
	}
	if opts.Iterations <= 0 {
		return errors.ConfigurationError{Parameter: "Iterations", Value: opts.Iterations, Reason: "must be greater than 0"}
	}
	if len(points) < opts.K {
		return errors.ConfigurationError{Parameter: "K", Value: opts.K, Reason: fmt.Sprintf("cannot exceed the number of points (%d)", len(points))}
	}
	if opts.EmptyCluster != RetainPrevious && opts.EmptyCluster != FailOnEmpty {
		return errors.ConfigurationError{Parameter: "EmptyCluster", Value: opts.EmptyCluster, Reason: "unknown policy"}
	}
	return nil
}

// Seed returns the initial centroids: the first k points, in input order
func Seed(points []Point, k int) []Centroid {
	centroids := make([]Centroid, k)
	for i := 0; i < k; i++ {
		centroids[i] = Centroid{ID: i, X: points[i].X, Y: points[i].Y}
	}
	return centroids
}

// Nearest returns the id of the centroid closest to p by squared Euclidean
// distance. Ties go to the lowest id.
func Nearest(p Point, centroids []Centroid) int {
	best := -1
	bestDist := 0.0
	for _, c := range centroids {
		dx, dy := p.X-c.X, p.Y-c.Y
		d := dx*dx + dy*dy
		if best == -1 || d < bestDist || (d == bestDist && c.ID < best) {
			best, bestDist = c.ID, d
		}
	}
	return best
}

func keyAssignment(a assignment) ([]byte, error) {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(a.ID))
	return buf, nil
}

func sumAssignments(l, r assignment) (assignment, error) {
	return assignment{ID: l.ID, X: l.X + r.X, Y: l.Y + r.Y, N: l.N + r.N}, nil
}

// assign tags every point with its nearest centroid and sums each cluster
func assign(ctx context.Context, rt *runtime.Runtime, points []Point, centroids []Centroid) ([]assignment, error) {
	assigned, err := runtime.Map(ctx, rt, points, func(p Point) (assignment, error) {
		return assignment{ID: Nearest(p, centroids), X: p.X, Y: p.Y, N: 1}, nil
	})
	if err != nil {
		return nil, err
	}
	return runtime.GroupByReduce(ctx, rt, assigned, keyAssignment, sumAssignments)
}

// step computes the next centroids from the current ones. It always returns one
// centroid per id, sorted by id.
func step(rt *runtime.Runtime, points []Point, policy EmptyClusterPolicy) func(ctx context.Context, iteration int, centroids []Centroid) ([]Centroid, error) {
	return func(ctx context.Context, iteration int, centroids []Centroid) ([]Centroid, error) {
		sums, err := assign(ctx, rt, points, centroids)
		if err != nil {
			return nil, err
		}
		byID := make(map[int]assignment, len(sums))
		for _, s := range sums {
			byID[s.ID] = s
		}
		next := make([]Centroid, len(centroids))
		for i, c := range centroids {
			s, ok := byID[c.ID]
			if !ok || s.N == 0 {
				if policy == FailOnEmpty {
					return nil, errors.EmptyClusterError{CentroidID: c.ID, Iteration: iteration}
				}
				rt.Logger().Debug("Retaining empty centroid", zap.Int("centroid", c.ID), zap.Int("iteration", iteration))
				next[i] = Centroid{ID: c.ID, X: c.X, Y: c.Y}
				continue
			}
			next[i] = Centroid{ID: c.ID, X: s.X / float64(s.N), Y: s.Y / float64(s.N)}
		}
		sort.Slice(next, func(i, j int) bool { return next[i].ID < next[j].ID })
		return next, nil
	}
}

// Cluster partitions points into opts.K clusters, running exactly opts.Iterations iterations
func Cluster(ctx context.Context, rt *runtime.Runtime, points []Point, opts *Options) (*Result, error) {
	if err := validateOptions(points, opts); err != nil {
		return nil, err
	}
	centroids, err := runtime.Iterate(ctx, rt, Seed(points, opts.K), step(rt, points, opts.EmptyCluster), opts.Iterations)
	if err != nil {
		return nil, err
	}
	sums, err := assign(ctx, rt, points, centroids)
	if err != nil {
		return nil, fmt.Errorf("unable to assign points to final centroids: %w", err)
	}
	res := &Result{Centroids: centroids, Sizes: make([]int64, opts.K)}
	for _, s := range sums {
		res.Sizes[s.ID] = s.N
		res.Assigned += s.N
	}
	rt.Logger().Info("Finished clustering",
		zap.Int("points", len(points)),
		zap.Int("k", opts.K),
		zap.Int("iterations", opts.Iterations),
		zap.Int64("assigned", res.Assigned),
	)
	return res, nil
}

// DefaultPoints returns a small example data set of four groups of points
func DefaultPoints() []Point {
	return []Point{
		{-14.22, -48.01}, {-22.78, 37.10}, {56.18, -42.99}, {35.04, 50.29},
		{-9.53, -46.26}, {-34.35, 48.25}, {55.82, -57.49}, {21.03, 54.64},
		{-13.63, -42.26}, {-36.57, 32.63}, {50.65, -52.40}, {24.48, 34.04},
		{-2.69, -36.02}, {-38.80, 36.58}, {24.00, -53.74}, {32.41, 24.96},
		{-4.32, -56.92}, {-22.68, 29.42}, {59.02, -39.56}, {24.47, 45.07},
	}
}
