package runtime

import (
	"context"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/internal/partition"
	iutil "github.com/go-sif/sif-jobs/internal/util"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// runPartitions applies fn to every partition concurrently, at most NumPartitions at a
// time, and concatenates the results in partition order
func runPartitions[T any, U any](ctx context.Context, rt *Runtime, task sif.TaskType, parts []*partition.Partition[T], fn func(part *partition.Partition[T]) ([]U, error)) ([]U, error) {
	results := make([][]U, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rt.opts.NumPartitions)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(part)
			if err != nil {
				return err
			}
			results[i] = res
			rt.stats.EndPartition(string(task), part.GetNumRows())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, unavailable(task, ctx.Err())
		}
		return nil, err
	}
	total := 0
	for _, r := range results {
		total += len(r)
	}
	out := make([]U, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// Map transforms every record. Errors from individual records are collected and returned together.
func Map[T any, U any](ctx context.Context, rt *Runtime, records []T, fn sif.MapOperation[T, U]) (result []U, err error) {
	start, err := rt.begin(ctx, sif.MapTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.MapTaskType, start, len(records), err) }()
	safeFn := iutil.SafeMapOperation(fn)
	return runPartitions(ctx, rt, sif.MapTaskType, partition.Split(records, rt.opts.NumPartitions), func(part *partition.Partition[T]) ([]U, error) {
		var multierr *multierror.Error
		out := make([]U, 0, part.GetNumRows())
		for _, rec := range part.Records() {
			res, err := safeFn(rec)
			if err != nil {
				multierr = multierror.Append(multierr, err)
				continue
			}
			out = append(out, res)
		}
		return out, multierr.ErrorOrNil()
	})
}

// FlatMap transforms every record into zero or more records
func FlatMap[T any, U any](ctx context.Context, rt *Runtime, records []T, fn sif.FlatMapOperation[T, U]) (result []U, err error) {
	start, err := rt.begin(ctx, sif.FlatMapTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.FlatMapTaskType, start, len(records), err) }()
	safeFn := iutil.SafeFlatMapOperation(fn)
	return runPartitions(ctx, rt, sif.FlatMapTaskType, partition.Split(records, rt.opts.NumPartitions), func(part *partition.Partition[T]) ([]U, error) {
		var multierr *multierror.Error
		out := make([]U, 0, part.GetNumRows())
		emit := func(u U) {
			out = append(out, u)
		}
		for _, rec := range part.Records() {
			if err := safeFn(rec, emit); err != nil {
				multierr = multierror.Append(multierr, err)
			}
		}
		return out, multierr.ErrorOrNil()
	})
}

// GroupByReduce groups records by key and folds each group pairwise with fn, producing one
// record per key. Records of a key are folded in input order.
func GroupByReduce[T any](ctx context.Context, rt *Runtime, records []T, kfn sif.KeyingOperation[T], fn sif.ReductionOperation[T]) (result []T, err error) {
	start, err := rt.begin(ctx, sif.GroupByReduceTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.GroupByReduceTaskType, start, len(records), err) }()
	parts, err := partition.Shuffle(records, iutil.SafeKeyingOperation(kfn), rt.opts.NumPartitions)
	if err != nil {
		return nil, err
	}
	safeFn := iutil.SafeReductionOperation(fn)
	return runPartitions(ctx, rt, sif.GroupByReduceTaskType, parts, func(part *partition.Partition[T]) ([]T, error) {
		groups := part.Groups()
		out := make([]T, 0, len(groups))
		for _, g := range groups {
			acc := g.Records[0]
			for _, rec := range g.Records[1:] {
				next, err := safeFn(acc, rec)
				if err != nil {
					return nil, err
				}
				acc = next
			}
			out = append(out, acc)
		}
		return out, nil
	})
}

// GroupReduce groups records by key and hands every group to fn, producing one record per key
func GroupReduce[T any, U any](ctx context.Context, rt *Runtime, records []T, kfn sif.KeyingOperation[T], fn sif.GroupOperation[T, U]) (result []U, err error) {
	start, err := rt.begin(ctx, sif.GroupReduceTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.GroupReduceTaskType, start, len(records), err) }()
	parts, err := partition.Shuffle(records, iutil.SafeKeyingOperation(kfn), rt.opts.NumPartitions)
	if err != nil {
		return nil, err
	}
	safeFn := iutil.SafeGroupOperation(fn)
	return runPartitions(ctx, rt, sif.GroupReduceTaskType, parts, func(part *partition.Partition[T]) ([]U, error) {
		var multierr *multierror.Error
		groups := part.Groups()
		out := make([]U, 0, len(groups))
		for _, g := range groups {
			res, err := safeFn(g.Key, g.Records)
			if err != nil {
				multierr = multierror.Append(multierr, err)
				continue
			}
			out = append(out, res)
		}
		return out, multierr.ErrorOrNil()
	})
}

// Distinct keeps the first record of every key
func Distinct[T any](ctx context.Context, rt *Runtime, records []T, kfn sif.KeyingOperation[T]) (result []T, err error) {
	start, err := rt.begin(ctx, sif.DistinctTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.DistinctTaskType, start, len(records), err) }()
	parts, err := partition.Shuffle(records, iutil.SafeKeyingOperation(kfn), rt.opts.NumPartitions)
	if err != nil {
		return nil, err
	}
	return runPartitions(ctx, rt, sif.DistinctTaskType, parts, func(part *partition.Partition[T]) ([]T, error) {
		groups := part.Groups()
		out := make([]T, 0, len(groups))
		for _, g := range groups {
			out = append(out, g.Records[0])
		}
		return out, nil
	})
}

// Join performs an inner equi-join, calling fn once for every pair of left and right
// records with identical keys. The cardinality of the result is the number of matching pairs.
func Join[L any, R any, O any](ctx context.Context, rt *Runtime, left []L, right []R, lkfn sif.KeyingOperation[L], rkfn sif.KeyingOperation[R], fn sif.JoinOperation[L, R, O]) (result []O, err error) {
	start, err := rt.begin(ctx, sif.JoinTaskType)
	if err != nil {
		return nil, err
	}
	defer func() { rt.end(sif.JoinTaskType, start, len(left)+len(right), err) }()
	lparts, err := partition.Shuffle(left, iutil.SafeKeyingOperation(lkfn), rt.opts.NumPartitions)
	if err != nil {
		return nil, err
	}
	rparts, err := partition.Shuffle(right, iutil.SafeKeyingOperation(rkfn), rt.opts.NumPartitions)
	if err != nil {
		return nil, err
	}
	safeFn := iutil.SafeJoinOperation(fn)
	// both sides were shuffled into the same number of partitions, so partition i
	// of the left side can only match partition i of the right side
	buildSides := make(map[string]map[string][]R, len(lparts))
	for i, lpart := range lparts {
		build := make(map[string][]R)
		for _, g := range rparts[i].Groups() {
			build[string(g.Key)] = g.Records
		}
		buildSides[lpart.ID()] = build
	}
	return runPartitions(ctx, rt, sif.JoinTaskType, lparts, func(lpart *partition.Partition[L]) ([]O, error) {
		build := buildSides[lpart.ID()]
		out := make([]O, 0)
		for i, lrec := range lpart.Records() {
			for _, rrec := range build[string(lpart.GetKeyBytes(i))] {
				res, err := safeFn(lrec, rrec)
				if err != nil {
					return nil, err
				}
				out = append(out, res)
			}
		}
		return out, nil
	})
}

// Count counts records
func Count[T any](ctx context.Context, rt *Runtime, records []T) (result int64, err error) {
	start, err := rt.begin(ctx, sif.CountTaskType)
	if err != nil {
		return 0, err
	}
	defer func() { rt.end(sif.CountTaskType, start, len(records), err) }()
	counts, err := runPartitions(ctx, rt, sif.CountTaskType, partition.Split(records, rt.opts.NumPartitions), func(part *partition.Partition[T]) ([]int64, error) {
		return []int64{int64(part.GetNumRows())}, nil
	})
	if err != nil {
		return 0, err
	}
	for _, c := range counts {
		result += c
	}
	return result, nil
}
