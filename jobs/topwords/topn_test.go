package topwords

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomCounts(r *rand.Rand, n int) []WordCount {
	res := make([]WordCount, n)
	for i := range res {
		res[i] = WordCount{Word: fmt.Sprintf("w%d", r.Intn(40)), Count: int64(r.Intn(10))}
	}
	return res
}

func accumulateAll(n int, counts ...[]WordCount) TopN {
	t := NewTopN(n)
	for _, cs := range counts {
		for _, c := range cs {
			t = t.Accumulate(c.Count, c.Word)
		}
	}
	return t
}

func TestTopNOrdering(t *testing.T) {
	top := NewTopN(3).
		Accumulate(2, "b").
		Accumulate(5, "e").
		Accumulate(2, "a").
		Accumulate(1, "z")
	require.Equal(t, []RankedWord{
		{Word: "e", Count: 5, Rank: 1},
		{Word: "a", Count: 2, Rank: 2},
		{Word: "b", Count: 2, Rank: 3},
	}, top.Emit())
}

func TestTopNIsImmutable(t *testing.T) {
	base := NewTopN(2).Accumulate(1, "a")
	_ = base.Accumulate(3, "b")
	_ = base.Merge(NewTopN(2).Accumulate(4, "c"))
	_ = base.Retract(1, "a")
	require.Equal(t, []RankedWord{{Word: "a", Count: 1, Rank: 1}}, base.Emit())
}

func TestTopNMergeLaw(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for trial := 0; trial < 100; trial++ {
		n := 1 + r.Intn(6)
		as, bs, cs := randomCounts(r, r.Intn(10)), randomCounts(r, r.Intn(10)), randomCounts(r, r.Intn(10))
		a, b, c := accumulateAll(n, as), accumulateAll(n, bs), accumulateAll(n, cs)

		require.Equal(t, a.Merge(b).Emit(), b.Merge(a).Emit(), "commutative")
		require.Equal(t, a.Merge(b).Merge(c).Emit(), a.Merge(b.Merge(c)).Emit(), "associative")
		require.Equal(t, accumulateAll(n, as, bs).Emit(), a.Merge(b).Emit(), "equals direct accumulation")
		require.LessOrEqual(t, a.Merge(b).Len(), n)
	}
}

func TestTopNRetraction(t *testing.T) {
	top := NewTopN(5).Accumulate(1, "a").Retract(1, "a").Accumulate(3, "a")
	require.Equal(t, []RankedWord{{Word: "a", Count: 3, Rank: 1}}, top.Emit())
}

func TestTopNRetractMissing(t *testing.T) {
	top := NewTopN(1).Accumulate(5, "a").Accumulate(2, "b")
	require.Equal(t, top, top.Retract(2, "b"))
	require.Equal(t, top, top.Retract(4, "a"))
	require.Equal(t, 0, top.Retract(5, "a").Len())
}

func TestTopNAggregator(t *testing.T) {
	agg := TopNAggregator(2)
	require.True(t, agg.CanRetract())
	acc := agg.Create()
	acc, err := agg.Accumulate(acc, WordCount{Word: "x", Count: 1})
	require.Nil(t, err)
	acc, err = agg.Accumulate(acc, WordCount{Word: "y", Count: 2})
	require.Nil(t, err)
	acc, err = agg.Retract(acc, WordCount{Word: "x", Count: 1})
	require.Nil(t, err)
	require.Equal(t, []RankedWord{{Word: "y", Count: 2, Rank: 1}}, agg.Emit(acc))
}
