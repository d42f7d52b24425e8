package runtime

import (
	"context"
	"fmt"
	"time"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/errors"
	iutil "github.com/go-sif/sif-jobs/internal/util"
	"go.uber.org/zap"
)

// safeStepOperation wraps a StepOperation such that panics are recovered and nice error messages are constructed
func safeStepOperation[S any](step sif.StepOperation[S]) sif.StepOperation[S] {
	return func(ctx context.Context, iteration int, state S) (next S, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("Step Panic in iteration %d: %v\n%s", iteration, r, iutil.GetTrace())
			} else if err != nil {
				err = fmt.Errorf("Step Error in iteration %d: %w", iteration, err)
			}
		}()
		next, err = step(ctx, iteration, state)
		return
	}
}

// Iterate applies step exactly iterations times, threading state from one step to the next.
// Each step is a barrier: step i+1 only ever observes the complete result of step i.
// There is no convergence check.
func Iterate[S any](ctx context.Context, rt *Runtime, initial S, step sif.StepOperation[S], iterations int) (result S, err error) {
	if iterations <= 0 {
		return result, errors.ConfigurationError{Parameter: "iterations", Value: iterations, Reason: "must be greater than 0"}
	}
	start, err := rt.begin(ctx, sif.IterateTaskType)
	if err != nil {
		return result, err
	}
	defer func() { rt.end(sif.IterateTaskType, start, iterations, err) }()
	safeStep := safeStepOperation(step)
	state := initial
	for i := 0; i < iterations; i++ {
		if rt.closed.Load() {
			return result, unavailable(sif.IterateTaskType, ErrClosed)
		}
		if ctx.Err() != nil {
			return result, unavailable(sif.IterateTaskType, ctx.Err())
		}
		stepStart := time.Now()
		next, err := safeStep(ctx, i, state)
		if err != nil {
			return result, err
		}
		state = next
		rt.logger.Debug("Finished iteration", zap.Int("iteration", i+1), zap.Int("of", iterations), zap.Duration("elapsed", time.Since(stepStart)))
	}
	return state, nil
}
