package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeMapOperationRecoversPanics(t *testing.T) {
	op := SafeMapOperation(func(rec int) (int, error) {
		if rec == 0 {
			panic("zero")
		}
		return 10 / rec, nil
	})
	res, err := op(5)
	require.Nil(t, err)
	require.Equal(t, 2, res)

	_, err = op(0)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "Map Panic: zero")
}

func TestSafeReductionOperationWrapsErrors(t *testing.T) {
	cause := fmt.Errorf("boom")
	op := SafeReductionOperation(func(l, r string) (string, error) {
		return "", cause
	})
	_, err := op("a", "b")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "LRecord: a")
}

func TestSafeFlatMapOperationRecoversErrorPanics(t *testing.T) {
	cause := fmt.Errorf("bad record")
	op := SafeFlatMapOperation(func(rec int, emit func(int)) error {
		emit(rec)
		panic(cause)
	})
	var emitted []int
	err := op(3, func(v int) { emitted = append(emitted, v) })
	require.ErrorIs(t, err, cause)
	require.Equal(t, []int{3}, emitted)
}

func TestFormatMultiError(t *testing.T) {
	msg := FormatMultiError([]error{fmt.Errorf("a"), fmt.Errorf("b")})
	require.Equal(t, "a\nb\n", msg)
}
