package accumulators

import (
	"fmt"

	sif "github.com/go-sif/sif-jobs"
)

// Counter returns an Aggregator which counts records of any type. Retraction
// removes one record, and fails rather than producing a negative count.
func Counter[T any]() sif.Aggregator[T, int64, int64] {
	return sif.Aggregator[T, int64, int64]{
		Create: func() int64 { return 0 },
		Accumulate: func(acc int64, _ T) (int64, error) {
			return acc + 1, nil
		},
		Retract: func(acc int64, _ T) (int64, error) {
			if acc == 0 {
				return acc, fmt.Errorf("Cannot retract from an empty count")
			}
			return acc - 1, nil
		},
		Merge: func(acc int64, o int64) (int64, error) {
			return acc + o, nil
		},
		Emit: func(acc int64) int64 { return acc },
	}
}
