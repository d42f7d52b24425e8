// Package runtime is an in-process dataflow runtime. It executes the
// primitives the analytics jobs are written against: partitioned
// group-by-reduce, equi-join, fixed-length iteration and keyed windows with
// retraction. Records are hash-partitioned by key and partitions are
// processed concurrently; results never depend on the number of partitions.
package runtime

import (
	"context"
	goerrors "errors"
	"fmt"
	goruntime "runtime"
	"sync/atomic"
	"time"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/errors"
	"github.com/go-sif/sif-jobs/internal/stats"
	uuid "github.com/gofrs/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ErrClosed is the cause of a RuntimeUnavailableError raised by a closed Runtime
var ErrClosed = goerrors.New("runtime is closed")

// StageStatistics summarizes every run of a single primitive
type StageStatistics = stats.StageStatistics

// Options configure a Runtime
type Options struct {
	NumPartitions int                   // the number of partitions records are shuffled into, and the maximum parallelism (defaults to GOMAXPROCS)
	Logger        *zap.Logger           // defaults to a no-op logger
	Registerer    prometheus.Registerer // where runtime metrics are registered (defaults to a private registry)
}

func ensureDefaultOptionsValues(opts *Options) error {
	if opts.NumPartitions < 0 {
		return errors.ConfigurationError{Parameter: "NumPartitions", Value: opts.NumPartitions, Reason: "must not be negative"}
	}
	if opts.NumPartitions == 0 {
		opts.NumPartitions = goruntime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.NewRegistry()
	}
	return nil
}

// Runtime executes dataflow primitives. A Runtime is safe for concurrent use.
type Runtime struct {
	id      string
	opts    *Options
	logger  *zap.Logger
	stats   *stats.RunStatistics
	metrics *metrics
	closed  atomic.Bool
}

// New creates a Runtime. A nil Options uses defaults for everything.
func New(opts *Options) (*Runtime, error) {
	if opts == nil {
		opts = &Options{}
	}
	if err := ensureDefaultOptionsValues(opts); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for Runtime: %w", err)
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("unable to register runtime metrics: %w", err)
	}
	rt := &Runtime{
		id:      id.String(),
		opts:    opts,
		logger:  opts.Logger.With(zap.String("runtime", id.String())),
		stats:   &stats.RunStatistics{},
		metrics: m,
	}
	rt.stats.Start()
	rt.logger.Debug("Runtime started", zap.Int("partitions", opts.NumPartitions))
	return rt, nil
}

// ID returns the unique identifier of this Runtime
func (rt *Runtime) ID() string {
	return rt.id
}

// NumPartitions returns the number of partitions records are shuffled into
func (rt *Runtime) NumPartitions() int {
	return rt.opts.NumPartitions
}

// Logger returns the Runtime's logger
func (rt *Runtime) Logger() *zap.Logger {
	return rt.logger
}

// Stats returns statistics for every primitive run so far, in the order they first ran
func (rt *Runtime) Stats() []StageStatistics {
	return rt.stats.GetStages()
}

// Elapsed returns the time since the Runtime started, or its total lifetime once closed
func (rt *Runtime) Elapsed() time.Duration {
	return rt.stats.GetRuntime()
}

// Close stops the Runtime. Subsequent primitives fail with a RuntimeUnavailableError.
func (rt *Runtime) Close() error {
	if rt.closed.CompareAndSwap(false, true) {
		rt.stats.Finish()
		rt.logger.Debug("Runtime closed", zap.Duration("elapsed", rt.stats.GetRuntime()))
	}
	return nil
}

// unavailable wraps the cause of a primitive failing to run
func unavailable(task sif.TaskType, err error) error {
	return errors.RuntimeUnavailableError{Primitive: string(task), Err: err}
}

// begin checks that a primitive may run and starts tracking it
func (rt *Runtime) begin(ctx context.Context, task sif.TaskType) (time.Time, error) {
	if rt == nil {
		return time.Time{}, unavailable(task, goerrors.New("runtime is nil"))
	}
	if rt.closed.Load() {
		return time.Time{}, unavailable(task, ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return time.Time{}, unavailable(task, err)
	}
	rt.logger.Debug("Starting stage", zap.String("task", string(task)))
	return time.Now(), nil
}

// end finishes tracking a primitive
func (rt *Runtime) end(task sif.TaskType, start time.Time, numRecords int, err error) {
	rt.stats.EndStage(string(task), start)
	rt.metrics.stageDuration.WithLabelValues(string(task)).Observe(time.Since(start).Seconds())
	rt.metrics.records.WithLabelValues(string(task)).Add(float64(numRecords))
	if err != nil {
		rt.logger.Debug("Stage failed", zap.String("task", string(task)), zap.Error(err))
		return
	}
	rt.logger.Debug("Finished stage", zap.String("task", string(task)), zap.Int("records", numRecords), zap.Duration("elapsed", time.Since(start)))
}
