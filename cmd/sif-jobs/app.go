package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/go-sif/sif-jobs/config"
	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/datasource/file"
	sifErrors "github.com/go-sif/sif-jobs/errors"
	"github.com/go-sif/sif-jobs/logging"
	"github.com/go-sif/sif-jobs/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds everything a job needs, built from the configuration before the job runs
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
	registry   *prometheus.Registry
	rt         *runtime.Runtime
	server     *http.Server
}

// setup loads the configuration, applies flag overrides and starts the runtime
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("partitions") {
		cfg.Runtime.Partitions, _ = flags.GetInt("partitions")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("skip-malformed") {
		cfg.Input.SkipMalformed, _ = flags.GetBool("skip-malformed")
	}
	if flags.Changed("delimiter") {
		cfg.Input.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Changed("header-lines") {
		cfg.Input.HeaderLines, _ = flags.GetInt("header-lines")
	}
	for _, section := range []interface{}{cfg.Runtime, cfg.Log, cfg.Metrics, cfg.Input} {
		if err := config.Validate(section); err != nil {
			return err
		}
	}
	a.cfg = cfg

	level, err := logging.LevelFromString(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.logger, err = logging.NewLogger(level); err != nil {
		return fmt.Errorf("unable to build logger: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if a.rt, err = runtime.New(&runtime.Options{
		NumPartitions: cfg.Runtime.Partitions,
		Logger:        a.logger,
		Registerer:    a.registry,
	}); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		a.serveMetrics(cfg.Metrics.Addr)
	}
	return nil
}

// serveMetrics exposes the registry for scraping while the job runs
func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("Serving metrics", zap.String("addr", addr))
}

// teardown stops everything setup started
func (a *app) teardown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("Unable to stop metrics server", zap.Error(err))
		}
	}
	if a.rt != nil {
		a.rt.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newReader creates a datasource.Reader following the configured malformed record policy
func (a *app) newReader(source string) *datasource.Reader {
	reader := datasource.NewReader(source)
	if a.cfg.Input.SkipMalformed {
		reader.ErrorSink = func(err sifErrors.MalformedInputError) {
			a.logger.Warn("Skipping malformed record", zap.String("source", err.Source), zap.Int("line", err.Line), zap.Error(err.Err))
		}
	}
	return reader
}

// readInputs hands every file matching glob to fn, with a Reader for each
func (a *app) readInputs(glob string, fn func(r io.Reader, reader *datasource.Reader) error) error {
	return file.ReadAll(glob, a.logger, func(path string, r io.Reader) error {
		reader := a.newReader(path)
		if err := fn(r, reader); err != nil {
			return err
		}
		if err := reader.Errors(); err != nil {
			a.logger.Warn("Skipped malformed records", zap.String("source", path), zap.Error(err))
		}
		return nil
	})
}

// printSummary writes the per-stage statistics of the runtime and its total runtime
func (a *app) printSummary(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tRUNS\tROWS\tPARTITIONS\tRUNTIME")
	for _, s := range a.rt.Stats() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.Name, s.Runs, s.RowsProcessed, s.PartitionsProcessed, s.Runtime)
	}
	tw.Flush()
	fmt.Fprintf(w, "total:%d\n", a.rt.Elapsed().Nanoseconds())
}
