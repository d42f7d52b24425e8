package kmeans

import (
	"fmt"
)

// Point is a two-dimensional input point
type Point struct {
	X float64
	Y float64
}

// String returns a textual representation of this Point
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Centroid is the center of a cluster. ID is assigned once, at initialization.
// N counts the points assigned to the cluster while a new position is being computed.
type Centroid struct {
	ID int
	X  float64
	Y  float64
	N  int64
}

// String returns a textual representation of this Centroid
func (c Centroid) String() string {
	return fmt.Sprintf("%d:(%g,%g)", c.ID, c.X, c.Y)
}

// EmptyClusterPolicy determines what happens to a centroid which receives no points
type EmptyClusterPolicy int

const (
	// RetainPrevious keeps an empty centroid at its previous position
	RetainPrevious EmptyClusterPolicy = iota
	// FailOnEmpty fails clustering with an EmptyClusterError
	FailOnEmpty
)

// String returns the name of this EmptyClusterPolicy
func (p EmptyClusterPolicy) String() string {
	switch p {
	case RetainPrevious:
		return "retain"
	case FailOnEmpty:
		return "fail"
	default:
		return fmt.Sprintf("EmptyClusterPolicy(%d)", int(p))
	}
}

// ParseEmptyClusterPolicy converts the name of an EmptyClusterPolicy into its value
func ParseEmptyClusterPolicy(name string) (EmptyClusterPolicy, error) {
	switch name {
	case "", "retain":
		return RetainPrevious, nil
	case "fail":
		return FailOnEmpty, nil
	default:
		return RetainPrevious, fmt.Errorf("Unknown empty cluster policy %q", name)
	}
}

// Options configure clustering
type Options struct {
	K            int                // number of clusters
	Iterations   int                // number of iterations, always run in full
	EmptyCluster EmptyClusterPolicy // defaults to RetainPrevious
}

// Result is the outcome of clustering
type Result struct {
	Centroids []Centroid // final centroids, sorted by ID
	Assigned  int64      // number of points assigned in the final pass
	Sizes     []int64    // number of points assigned to each centroid, indexed by ID
}

// assignment is a point tagged with the id of its nearest centroid. Reduction
// sums coordinates into X and Y and counts points in N.
type assignment struct {
	ID int
	X  float64
	Y  float64
	N  int64
}
