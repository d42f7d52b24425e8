// Package sif contains the shared vocabulary of the sif-jobs analytics examples.
// This root package defines the operation types handed to the dataflow runtime
// (keying, reduction, grouping, flat-mapping, joining and iteration steps) and
// the Aggregator contract used by keyed windows. The runtime package executes
// these operations, and the jobs packages compose them into complete analytics
// jobs: triangle enumeration, k-means clustering, rolling top words and
// windowed word counting.
package sif
