package util

import (
	"fmt"

	sif "github.com/go-sif/sif-jobs"
)

// recovered converts a recovered panic value into an error
func recovered(kind string, r interface{}, rec string) error {
	if anErr, ok := r.(error); ok {
		return fmt.Errorf("%s Panic: %w\nRecord: %s\n%s", kind, anErr, rec, GetTrace())
	}
	return fmt.Errorf("%s Panic: %v\nRecord: %s\n%s", kind, r, rec, GetTrace())
}

// SafeMapOperation wraps a MapOperation such that panics are recovered and nice error messages are constructed
func SafeMapOperation[T any, U any](mapOp sif.MapOperation[T, U]) (safeMapOp sif.MapOperation[T, U]) {
	return func(rec T) (result U, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Map", r, fmt.Sprintf("%+v", rec))
			} else if err != nil {
				err = fmt.Errorf("Map Error: %w\nRecord: %+v", err, rec)
			}
		}()
		result, err = mapOp(rec)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are recovered and nice error messages are constructed
func SafeFlatMapOperation[T any, U any](flatMapOp sif.FlatMapOperation[T, U]) (safeFlatMapOp sif.FlatMapOperation[T, U]) {
	return func(rec T, emit func(U)) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("FlatMap", r, fmt.Sprintf("%+v", rec))
			} else if err != nil {
				err = fmt.Errorf("FlatMap Error: %w\nRecord: %+v", err, rec)
			}
		}()
		err = flatMapOp(rec, emit)
		return
	}
}

// SafeKeyingOperation wraps a KeyingOperation such that panics are recovered and nice error messages are constructed
func SafeKeyingOperation[T any](keyingOp sif.KeyingOperation[T]) (safeKeyingOp sif.KeyingOperation[T]) {
	return func(rec T) (key []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Keying", r, fmt.Sprintf("%+v", rec))
			} else if err != nil {
				err = fmt.Errorf("Keying Error: %w\nRecord: %+v", err, rec)
			}
		}()
		key, err = keyingOp(rec)
		return
	}
}

// SafeReductionOperation wraps a ReductionOperation such that panics are recovered and nice error messages are constructed
func SafeReductionOperation[T any](reductionOp sif.ReductionOperation[T]) (safeReductionOp sif.ReductionOperation[T]) {
	return func(lrec, rrec T) (result T, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Reduction", r, fmt.Sprintf("%+v / %+v", lrec, rrec))
			} else if err != nil {
				err = fmt.Errorf("Reduction Error: %w\nLRecord: %+v\nRRecord: %+v", err, lrec, rrec)
			}
		}()
		result, err = reductionOp(lrec, rrec)
		return
	}
}

// SafeGroupOperation wraps a GroupOperation such that panics are recovered and nice error messages are constructed
func SafeGroupOperation[T any, U any](groupOp sif.GroupOperation[T, U]) (safeGroupOp sif.GroupOperation[T, U]) {
	return func(key []byte, group []T) (result U, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Group", r, fmt.Sprintf("key %x (%d records)", key, len(group)))
			} else if err != nil {
				err = fmt.Errorf("Group Error: %w\nKey: %x", err, key)
			}
		}()
		result, err = groupOp(key, group)
		return
	}
}

// SafeJoinOperation wraps a JoinOperation such that panics are recovered and nice error messages are constructed
func SafeJoinOperation[L any, R any, O any](joinOp sif.JoinOperation[L, R, O]) (safeJoinOp sif.JoinOperation[L, R, O]) {
	return func(lrec L, rrec R) (result O, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Join", r, fmt.Sprintf("%+v / %+v", lrec, rrec))
			} else if err != nil {
				err = fmt.Errorf("Join Error: %w\nLRecord: %+v\nRRecord: %+v", err, lrec, rrec)
			}
		}()
		result, err = joinOp(lrec, rrec)
		return
	}
}
