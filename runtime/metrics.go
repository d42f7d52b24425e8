package runtime

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "sif_jobs"

// metrics are the Prometheus collectors maintained by a Runtime
type metrics struct {
	records       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	windowUpdates *prometheus.CounterVec
	windowKeys    *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_processed_total",
			Help:      "Records processed by runtime primitives.",
		}, []string{"task"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of runtime primitive invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"task"}),
		windowUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "window_updates_total",
			Help:      "Accumulator transitions applied to keyed windows.",
		}, []string{"window", "kind"}),
		windowKeys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "window_keys",
			Help:      "Live keys held by keyed windows.",
		}, []string{"window"}),
	}
	var err error
	if m.records, err = register(reg, m.records); err != nil {
		return nil, err
	}
	if m.stageDuration, err = register(reg, m.stageDuration); err != nil {
		return nil, err
	}
	if m.windowUpdates, err = register(reg, m.windowUpdates); err != nil {
		return nil, err
	}
	if m.windowKeys, err = register(reg, m.windowKeys); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c, reusing an identical collector if one is already registered
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}
