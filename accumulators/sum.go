package accumulators

import (
	sif "github.com/go-sif/sif-jobs"
)

// Sum returns an Aggregator which sums int64 values. Retraction subtracts.
func Sum() sif.Aggregator[int64, int64, int64] {
	return sif.Aggregator[int64, int64, int64]{
		Create: func() int64 { return 0 },
		Accumulate: func(acc int64, v int64) (int64, error) {
			return acc + v, nil
		},
		Retract: func(acc int64, v int64) (int64, error) {
			return acc - v, nil
		},
		Merge: func(acc int64, o int64) (int64, error) {
			return acc + o, nil
		},
		Emit: func(acc int64) int64 { return acc },
	}
}
