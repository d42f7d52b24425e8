package runtime

import (
	"fmt"
	"sync"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/errors"
)

// A KeyedWindow maintains one accumulator per key, advanced by an Aggregator.
// The KeyedWindow serializes all transitions; Aggregator functions never run
// concurrently for the same KeyedWindow. A key's state exists from its first
// Change until it is evicted.
type KeyedWindow[K comparable, In any, Acc any, Out any] struct {
	rt    *Runtime
	name  string
	agg   sif.Aggregator[In, Acc, Out]
	lock  sync.Mutex
	state map[K]Acc
	keys  []K // insertion order
}

// NewKeyedWindow creates a KeyedWindow. name labels the window in metrics and errors.
func NewKeyedWindow[K comparable, In any, Acc any, Out any](rt *Runtime, name string, agg sif.Aggregator[In, Acc, Out]) (*KeyedWindow[K, In, Acc, Out], error) {
	if rt == nil {
		return nil, fmt.Errorf("Runtime cannot be nil")
	}
	if agg.Create == nil || agg.Accumulate == nil || agg.Merge == nil || agg.Emit == nil {
		return nil, errors.ConfigurationError{Parameter: "Aggregator", Value: name, Reason: "Create, Accumulate, Merge and Emit are required"}
	}
	return &KeyedWindow[K, In, Acc, Out]{
		rt:    rt,
		name:  name,
		agg:   agg,
		state: make(map[K]Acc),
	}, nil
}

// Apply applies a Change to the accumulator of key and emits the result. A failed
// transition leaves the accumulator unchanged.
func (w *KeyedWindow[K, In, Acc, Out]) Apply(key K, change sif.Change[In]) (out Out, err error) {
	if w.rt.closed.Load() {
		return out, unavailable(sif.WindowTaskType, ErrClosed)
	}
	kind := "accumulate"
	if change.Retract {
		kind = "retract"
		if !w.agg.CanRetract() {
			return out, fmt.Errorf("Window %s received a retraction, but its Aggregator cannot retract", w.name)
		}
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	acc := w.current(key)
	var next Acc
	if change.Retract {
		next, err = w.agg.Retract(acc, change.Value)
	} else {
		next, err = w.agg.Accumulate(acc, change.Value)
	}
	if err != nil {
		return out, fmt.Errorf("Window %s: %s failed: %w", w.name, kind, err)
	}
	w.store(key, next)
	w.rt.metrics.windowUpdates.WithLabelValues(w.name, kind).Inc()
	return w.agg.Emit(next), nil
}

// MergeInto merges a partial accumulator into the accumulator of key and emits the result
func (w *KeyedWindow[K, In, Acc, Out]) MergeInto(key K, partial Acc) (out Out, err error) {
	if w.rt.closed.Load() {
		return out, unavailable(sif.WindowTaskType, ErrClosed)
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	next, err := w.agg.Merge(w.current(key), partial)
	if err != nil {
		return out, fmt.Errorf("Window %s: merge failed: %w", w.name, err)
	}
	w.store(key, next)
	w.rt.metrics.windowUpdates.WithLabelValues(w.name, "merge").Inc()
	return w.agg.Emit(next), nil
}

// Snapshot emits the current result for key, if key has state
func (w *KeyedWindow[K, In, Acc, Out]) Snapshot(key K) (out Out, ok bool) {
	w.lock.Lock()
	defer w.lock.Unlock()
	acc, ok := w.state[key]
	if !ok {
		return out, false
	}
	return w.agg.Emit(acc), true
}

// Evict discards the state of key, returning its final result if it had state
func (w *KeyedWindow[K, In, Acc, Out]) Evict(key K) (out Out, ok bool) {
	w.lock.Lock()
	defer w.lock.Unlock()
	acc, ok := w.state[key]
	if !ok {
		return out, false
	}
	delete(w.state, key)
	for i, k := range w.keys {
		if k == key {
			w.keys = append(w.keys[:i], w.keys[i+1:]...)
			break
		}
	}
	w.rt.metrics.windowKeys.WithLabelValues(w.name).Set(float64(len(w.state)))
	return w.agg.Emit(acc), true
}

// Keys returns every key with state, in the order the keys were first seen
func (w *KeyedWindow[K, In, Acc, Out]) Keys() []K {
	w.lock.Lock()
	defer w.lock.Unlock()
	res := make([]K, len(w.keys))
	copy(res, w.keys)
	return res
}

// Len returns the number of keys with state
func (w *KeyedWindow[K, In, Acc, Out]) Len() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return len(w.state)
}

// current returns the accumulator of key, or a fresh one. Caller holds the lock.
func (w *KeyedWindow[K, In, Acc, Out]) current(key K) Acc {
	if acc, ok := w.state[key]; ok {
		return acc
	}
	return w.agg.Create()
}

// store replaces the accumulator of key. Caller holds the lock.
func (w *KeyedWindow[K, In, Acc, Out]) store(key K, acc Acc) {
	if _, ok := w.state[key]; !ok {
		w.keys = append(w.keys, key)
		w.rt.metrics.windowKeys.WithLabelValues(w.name).Set(float64(len(w.state) + 1))
	}
	w.state[key] = acc
}
