package accumulators

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	agg := Sum()
	acc := agg.Create()
	var err error
	for _, v := range []int64{1, 2, 3} {
		acc, err = agg.Accumulate(acc, v)
		require.Nil(t, err)
	}
	require.EqualValues(t, 6, agg.Emit(acc))
	acc, err = agg.Retract(acc, 2)
	require.Nil(t, err)
	require.EqualValues(t, 4, agg.Emit(acc))
	merged, err := agg.Merge(acc, 10)
	require.Nil(t, err)
	require.EqualValues(t, 14, merged)
	require.True(t, agg.CanRetract())
}

func TestCounter(t *testing.T) {
	agg := Counter[string]()
	acc := agg.Create()
	acc, err := agg.Accumulate(acc, "a")
	require.Nil(t, err)
	acc, err = agg.Accumulate(acc, "b")
	require.Nil(t, err)
	require.EqualValues(t, 2, agg.Emit(acc))

	acc, err = agg.Retract(acc, "a")
	require.Nil(t, err)
	acc, err = agg.Retract(acc, "b")
	require.Nil(t, err)
	_, err = agg.Retract(acc, "c")
	require.NotNil(t, err)
}
