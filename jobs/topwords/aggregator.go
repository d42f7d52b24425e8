package topwords

import (
	"context"
	"fmt"
	"sort"
	"sync"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/accumulators"
	"github.com/go-sif/sif-jobs/runtime"
	"go.uber.org/zap"
)

// countKey identifies the count of a word within a window
type countKey struct {
	word  string
	start int64
}

// An Aggregator ranks the words of an event stream within sliding windows.
// Counts live in a KeyedWindow keyed by word and window, and rankings in a
// KeyedWindow keyed by window. A window closes once an event at or beyond its
// end has been seen, and its state is then evicted.
type Aggregator struct {
	opts      *Options
	size      int64 // milliseconds
	slide     int64 // milliseconds
	logger    *zap.Logger
	counts    *runtime.KeyedWindow[countKey, Event, int64, int64]
	ranks     *runtime.KeyedWindow[int64, WordCount, TopN, []RankedWord]
	lock      sync.Mutex
	watermark int64
	seen      bool
	windows   map[int64][]string // open windows and the words counted in them
	emitted   map[int64][]RankedWord
	stats     Stats
	closed    bool
}

// NewAggregator creates an Aggregator. A nil opts uses the default Options.
func NewAggregator(rt *runtime.Runtime, opts *Options) (*Aggregator, error) {
	if opts == nil {
		opts = &Options{}
	}
	o := *opts
	if err := ensureDefaultOptionsValues(&o); err != nil {
		return nil, err
	}
	counts, err := runtime.NewKeyedWindow[countKey](rt, "topwords_counts", accumulators.Counter[Event]())
	if err != nil {
		return nil, err
	}
	ranks, err := runtime.NewKeyedWindow[int64](rt, "topwords_ranks", TopNAggregator(o.N))
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		opts:    &o,
		size:    o.Size.Milliseconds(),
		slide:   o.Slide.Milliseconds(),
		logger:  rt.Logger().With(zap.String("job", "topwords")),
		counts:  counts,
		ranks:   ranks,
		windows: make(map[int64][]string),
		emitted: make(map[int64][]RankedWord),
	}, nil
}

// floorDiv divides, rounding towards negative infinity
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// WindowsOf returns the starts of every window containing ts, in ascending order
func (a *Aggregator) WindowsOf(ts int64) []int64 {
	last := floorDiv(ts, a.slide) * a.slide
	n := a.size / a.slide
	res := make([]int64, 0, n)
	for s := last - (n-1)*a.slide; s <= last; s += a.slide {
		res = append(res, s)
	}
	return res
}

// isClosed returns true iff the window starting at start has closed. Caller holds the lock.
func (a *Aggregator) isClosed(start int64) bool {
	return a.seen && start+a.size <= a.watermark
}

// Process counts an event and returns the resulting Updates
func (a *Aggregator) Process(e Event) ([]Update, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.closed {
		return nil, fmt.Errorf("Aggregator has been closed")
	}
	var updates []Update
	counted := false
	for _, start := range a.WindowsOf(e.Timestamp) {
		if a.isClosed(start) {
			continue
		}
		counted = true
		u, err := a.count(e, start)
		if err != nil {
			return updates, err
		}
		if u != nil {
			updates = append(updates, *u)
		}
	}
	if !counted {
		a.stats.LateEvents++
		a.logger.Debug("Dropping late event",
			zap.String("word", e.Word),
			zap.Int64("timestamp", e.Timestamp),
			zap.Int64("watermark", a.watermark),
		)
		return nil, nil
	}
	a.stats.Events++
	if !a.seen || e.Timestamp > a.watermark {
		a.watermark = e.Timestamp
		a.seen = true
		closing, err := a.closeWindows(func(start int64) bool { return a.isClosed(start) })
		updates = append(updates, closing...)
		if err != nil {
			return updates, err
		}
	}
	a.stats.Updates += int64(len(updates))
	return updates, nil
}

// count adds an event to the window starting at start. Caller holds the lock.
func (a *Aggregator) count(e Event, start int64) (*Update, error) {
	key := countKey{word: e.Word, start: start}
	previous, existed := a.counts.Snapshot(key)
	if _, ok := a.windows[start]; !ok {
		a.windows[start] = nil
	}
	if !existed {
		a.windows[start] = append(a.windows[start], e.Word)
	}
	current, err := a.counts.Apply(key, sif.Add(e))
	if err != nil {
		return nil, err
	}
	if a.opts.Trigger != OnUpdate {
		return nil, nil
	}
	if existed {
		if _, err := a.ranks.Apply(start, sif.Remove(WordCount{Word: e.Word, Count: previous})); err != nil {
			return nil, err
		}
	}
	ranking, err := a.ranks.Apply(start, sif.Add(WordCount{Word: e.Word, Count: current}))
	if err != nil {
		return nil, err
	}
	u := &Update{Window: start, Retracted: a.emitted[start], Ranking: ranking}
	a.emitted[start] = ranking
	return u, nil
}

// closeWindows closes every open window selected by shouldClose, in ascending
// order of start, and evicts its state. Caller holds the lock.
func (a *Aggregator) closeWindows(shouldClose func(start int64) bool) ([]Update, error) {
	var starts []int64
	for start := range a.windows {
		if shouldClose(start) {
			starts = append(starts, start)
		}
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })
	var updates []Update
	for _, start := range starts {
		for _, word := range a.windows[start] {
			count, _ := a.counts.Evict(countKey{word: word, start: start})
			if a.opts.Trigger == OnClose {
				if _, err := a.ranks.Apply(start, sif.Add(WordCount{Word: word, Count: count})); err != nil {
					return updates, err
				}
			}
		}
		ranking, _ := a.ranks.Evict(start)
		if a.opts.Trigger == OnClose {
			updates = append(updates, Update{Window: start, Ranking: ranking})
		}
		delete(a.windows, start)
		delete(a.emitted, start)
		a.stats.ClosedWindows++
		a.logger.Debug("Closed window", zap.Int64("start", start), zap.Int("words", len(ranking)))
	}
	return updates, nil
}

// Close closes every remaining window, returning any final Updates. The
// Aggregator cannot process events afterwards.
func (a *Aggregator) Close() ([]Update, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.closed {
		return nil, nil
	}
	a.closed = true
	updates, err := a.closeWindows(func(int64) bool { return true })
	a.stats.Updates += int64(len(updates))
	return updates, err
}

// Stats returns statistics about the events processed so far
func (a *Aggregator) Stats() Stats {
	a.lock.Lock()
	defer a.lock.Unlock()
	s := a.stats
	s.OpenWindows = len(a.windows)
	return s
}

// Run processes events from in until in is closed or ctx is cancelled, sending
// Updates to out. When in is closed, every remaining window is closed and Run
// returns nil. On cancellation, open window state is discarded.
func (a *Aggregator) Run(ctx context.Context, in <-chan Event, out chan<- Update) error {
	send := func(updates []Update) error {
		for _, u := range updates {
			select {
			case out <- u:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-in:
			if !ok {
				updates, err := a.Close()
				if err != nil {
					return err
				}
				if err := send(updates); err != nil {
					return err
				}
				s := a.Stats()
				a.logger.Info("Finished ranking",
					zap.Int64("events", s.Events),
					zap.Int64("lateEvents", s.LateEvents),
					zap.Int64("updates", s.Updates),
					zap.Int64("windows", s.ClosedWindows),
				)
				return nil
			}
			updates, err := a.Process(e)
			if err != nil {
				return err
			}
			if err := send(updates); err != nil {
				return err
			}
		}
	}
}
