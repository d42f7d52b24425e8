package sif

import "context"

// KeyingOperation - A generic function for generating a key from a record. Records with identical key bytes are grouped together.
type KeyingOperation[T any] func(rec T) ([]byte, error)

// ReductionOperation - A generic function for reducing two records with the same key. The result replaces both.
type ReductionOperation[T any] func(lrec T, rrec T) (T, error)

// GroupOperation - A generic function for turning every record sharing a key into a single output record
type GroupOperation[T any, U any] func(key []byte, group []T) (U, error)

// MapOperation - A generic function for transforming one record into another
type MapOperation[T any, U any] func(rec T) (U, error)

// FlatMapOperation - A generic function for turning a record into zero or more records, each passed to emit
type FlatMapOperation[T any, U any] func(rec T, emit func(U)) error

// JoinOperation - A generic function for combining a matching pair of records from the two sides of a join
type JoinOperation[L any, R any, O any] func(lrec L, rrec R) (O, error)

// StepOperation - A generic function advancing iteration state by one step. iteration is zero-based.
type StepOperation[S any] func(ctx context.Context, iteration int, state S) (S, error)
