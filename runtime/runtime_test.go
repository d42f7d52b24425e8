package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	"sort"
	"strconv"
	"testing"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/accumulators"
	"github.com/go-sif/sif-jobs/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type kv struct {
	Key   string
	Value int
}

func keyKV(rec kv) ([]byte, error) {
	return []byte(rec.Key), nil
}

func createTestRuntime(t *testing.T, numPartitions int) *Runtime {
	rt, err := New(&Options{NumPartitions: numPartitions})
	require.Nil(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func testRecords(n int) []kv {
	records := make([]kv, n)
	for i := range records {
		records[i] = kv{Key: strconv.Itoa(i % 10), Value: i}
	}
	return records
}

func TestGroupByReduce(t *testing.T) {
	for _, numPartitions := range []int{1, 2, 7} {
		t.Run(fmt.Sprintf("partitions=%d", numPartitions), func(t *testing.T) {
			rt := createTestRuntime(t, numPartitions)
			res, err := GroupByReduce(context.Background(), rt, testRecords(100), keyKV, func(l, r kv) (kv, error) {
				return kv{Key: l.Key, Value: l.Value + r.Value}, nil
			})
			require.Nil(t, err)
			require.Len(t, res, 10)
			sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
			for i, r := range res {
				// 10 values per key: i, i+10, ..., i+90
				require.Equal(t, strconv.Itoa(i), r.Key)
				require.Equal(t, 10*i+450, r.Value)
			}
		})
	}
}

func TestGroupByReduceFoldsInInputOrder(t *testing.T) {
	rt := createTestRuntime(t, 3)
	records := []kv{{"a", 1}, {"b", 2}, {"a", 3}, {"a", 4}}
	res, err := GroupByReduce(context.Background(), rt, records, keyKV, func(l, r kv) (kv, error) {
		// not commutative, so the fold order is observable
		return kv{Key: l.Key, Value: l.Value*10 + r.Value}, nil
	})
	require.Nil(t, err)
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	require.Equal(t, []kv{{"a", 134}, {"b", 2}}, res)
}

func TestGroupReduceAndDistinct(t *testing.T) {
	rt := createTestRuntime(t, 4)
	sizes, err := GroupReduce(context.Background(), rt, testRecords(35), keyKV, func(key []byte, group []kv) (kv, error) {
		return kv{Key: string(key), Value: len(group)}, nil
	})
	require.Nil(t, err)
	require.Len(t, sizes, 10)
	total := 0
	for _, s := range sizes {
		total += s.Value
	}
	require.Equal(t, 35, total)

	distinct, err := Distinct(context.Background(), rt, testRecords(35), keyKV)
	require.Nil(t, err)
	require.Len(t, distinct, 10)
	for _, d := range distinct {
		// the first record of every key is kept
		require.Less(t, d.Value, 10)
	}
}

func TestMapAndFlatMap(t *testing.T) {
	rt := createTestRuntime(t, 3)
	doubled, err := Map(context.Background(), rt, []int{1, 2, 3, 4, 5}, func(v int) (int, error) {
		return v * 2, nil
	})
	require.Nil(t, err)
	require.Equal(t, []int{2, 4, 6, 8, 10}, doubled)

	repeated, err := FlatMap(context.Background(), rt, []int{0, 1, 2, 3}, func(v int, emit func(int)) error {
		for i := 0; i < v; i++ {
			emit(v)
		}
		return nil
	})
	require.Nil(t, err)
	require.Equal(t, []int{1, 2, 2, 3, 3, 3}, repeated)
}

func TestMapCollectsErrors(t *testing.T) {
	rt := createTestRuntime(t, 1)
	_, err := Map(context.Background(), rt, []int{1, 2, 3}, func(v int) (int, error) {
		if v != 2 {
			return 0, fmt.Errorf("bad %d", v)
		}
		return v, nil
	})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "bad 1")
	require.Contains(t, err.Error(), "bad 3")
}

func TestMapRecoversPanics(t *testing.T) {
	rt := createTestRuntime(t, 2)
	_, err := Map(context.Background(), rt, []int{1, 0}, func(v int) (int, error) {
		return 1 / v, nil
	})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "Map Panic")
}

func TestJoin(t *testing.T) {
	rt := createTestRuntime(t, 4)
	left := []kv{{"a", 1}, {"b", 2}, {"c", 3}, {"a", 4}}
	right := []kv{{"a", 10}, {"a", 20}, {"c", 30}, {"d", 40}}
	res, err := Join(context.Background(), rt, left, right, keyKV, keyKV, func(l, r kv) (int, error) {
		return l.Value + r.Value, nil
	})
	require.Nil(t, err)
	sort.Ints(res)
	// a matches twice on both sides, c once, b and d never
	require.Equal(t, []int{11, 14, 21, 24, 33}, res)
}

func TestCount(t *testing.T) {
	rt := createTestRuntime(t, 3)
	n, err := Count(context.Background(), rt, testRecords(17))
	require.Nil(t, err)
	require.EqualValues(t, 17, n)
	n, err = Count(context.Background(), rt, []kv{})
	require.Nil(t, err)
	require.EqualValues(t, 0, n)
}

func TestIterate(t *testing.T) {
	rt := createTestRuntime(t, 1)
	var seen []int
	res, err := Iterate(context.Background(), rt, 1, func(ctx context.Context, i int, state int) (int, error) {
		seen = append(seen, i)
		return state * 2, nil
	}, 5)
	require.Nil(t, err)
	require.Equal(t, 32, res)
	require.Equal(t, []int{0, 1, 2, 3, 4}, seen)

	_, err = Iterate(context.Background(), rt, 1, func(ctx context.Context, i int, state int) (int, error) {
		return state, nil
	}, 0)
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
}

func TestIterateStopsOnCancellation(t *testing.T) {
	rt := createTestRuntime(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	steps := 0
	_, err := Iterate(ctx, rt, 0, func(ctx context.Context, i int, state int) (int, error) {
		steps++
		if i == 2 {
			cancel()
		}
		return state + 1, nil
	}, 10)
	require.Equal(t, 3, steps)
	var uerr errors.RuntimeUnavailableError
	require.True(t, goerrors.As(err, &uerr))
	require.ErrorIs(t, err, context.Canceled)
}

func TestClosedRuntime(t *testing.T) {
	rt := createTestRuntime(t, 2)
	require.Nil(t, rt.Close())
	_, err := Count(context.Background(), rt, []int{1})
	require.ErrorIs(t, err, ErrClosed)
	var uerr errors.RuntimeUnavailableError
	require.True(t, goerrors.As(err, &uerr))
	require.Equal(t, string(sif.CountTaskType), uerr.Primitive)
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(&Options{NumPartitions: -1})
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
}

func TestStatsAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt, err := New(&Options{NumPartitions: 2, Registerer: reg})
	require.Nil(t, err)
	defer rt.Close()

	_, err = Map(context.Background(), rt, []int{1, 2, 3}, func(v int) (int, error) { return v, nil })
	require.Nil(t, err)
	_, err = Count(context.Background(), rt, []int{1, 2})
	require.Nil(t, err)

	stages := rt.Stats()
	require.Len(t, stages, 2)
	require.Equal(t, string(sif.MapTaskType), stages[0].Name)
	require.EqualValues(t, 3, stages[0].RowsProcessed)
	require.EqualValues(t, 1, stages[0].Runs)
	require.Equal(t, float64(3), testutil.ToFloat64(rt.metrics.records.WithLabelValues(string(sif.MapTaskType))))

	// a second Runtime on the same registry shares the collectors
	rt2, err := New(&Options{NumPartitions: 1, Registerer: reg})
	require.Nil(t, err)
	defer rt2.Close()
	_, err = Map(context.Background(), rt2, []int{1}, func(v int) (int, error) { return v, nil })
	require.Nil(t, err)
	require.Equal(t, float64(4), testutil.ToFloat64(rt.metrics.records.WithLabelValues(string(sif.MapTaskType))))
}

func TestKeyedWindow(t *testing.T) {
	rt := createTestRuntime(t, 1)
	w, err := NewKeyedWindow[string](rt, "test", accumulators.Sum())
	require.Nil(t, err)

	out, err := w.Apply("a", sif.Add[int64](3))
	require.Nil(t, err)
	require.EqualValues(t, 3, out)
	out, err = w.Apply("b", sif.Add[int64](1))
	require.Nil(t, err)
	require.EqualValues(t, 1, out)
	out, err = w.Apply("a", sif.Remove[int64](1))
	require.Nil(t, err)
	require.EqualValues(t, 2, out)
	out, err = w.MergeInto("a", 5)
	require.Nil(t, err)
	require.EqualValues(t, 7, out)
	require.Equal(t, []string{"a", "b"}, w.Keys())

	final, ok := w.Evict("a")
	require.True(t, ok)
	require.EqualValues(t, 7, final)
	_, ok = w.Snapshot("a")
	require.False(t, ok)
	require.Equal(t, []string{"b"}, w.Keys())
	require.Equal(t, 1, w.Len())
	require.Equal(t, float64(1), testutil.ToFloat64(rt.metrics.windowKeys.WithLabelValues("test")))
}

func TestKeyedWindowRejectsUnsupportedRetraction(t *testing.T) {
	rt := createTestRuntime(t, 1)
	agg := accumulators.Counter[string]()
	agg.Retract = nil
	w, err := NewKeyedWindow[string](rt, "count", agg)
	require.Nil(t, err)
	_, err = w.Apply("a", sif.Remove("x"))
	require.NotNil(t, err)
	_, ok := w.Snapshot("a")
	require.False(t, ok, "failed transitions leave no state behind")
}

func TestKeyedWindowRequiresAggregatorFunctions(t *testing.T) {
	rt := createTestRuntime(t, 1)
	_, err := NewKeyedWindow[string](rt, "broken", sif.Aggregator[int64, int64, int64]{})
	var cerr errors.ConfigurationError
	require.True(t, goerrors.As(err, &cerr))
}
