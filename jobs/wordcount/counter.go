package wordcount

import (
	"context"
	"fmt"
	"sort"

	sif "github.com/go-sif/sif-jobs"
	"github.com/go-sif/sif-jobs/accumulators"
	"github.com/go-sif/sif-jobs/errors"
	"github.com/go-sif/sif-jobs/runtime"
	"go.uber.org/zap"
)

// WindowCount is the number of occurrences of a word within its window when the window fired
type WindowCount struct {
	Word  string
	Count int64
}

// String returns a textual representation of this WindowCount
func (w WindowCount) String() string {
	return fmt.Sprintf("%s: %d", w.Word, w.Count)
}

// Options configure a Counter
type Options struct {
	Size  int // occurrences held by a word's window
	Steps int // firings per Size occurrences; the window slides by Size/Steps
}

func validateOptions(opts *Options) error {
	if opts == nil {
		return errors.ConfigurationError{Parameter: "Options", Value: nil, Reason: "must not be nil"}
	}
	if opts.Size <= 0 {
		return errors.ConfigurationError{Parameter: "Size", Value: opts.Size, Reason: "must be greater than 0"}
	}
	if opts.Steps <= 0 {
		return errors.ConfigurationError{Parameter: "Steps", Value: opts.Steps, Reason: "must be greater than 0"}
	}
	if opts.Steps > opts.Size {
		return errors.ConfigurationError{Parameter: "Steps", Value: opts.Steps, Reason: fmt.Sprintf("cannot exceed Size (%d)", opts.Size)}
	}
	return nil
}

// wordWindow holds the occurrences of a word which are still within its window
type wordWindow struct {
	ring    []int64
	head    int // index of the oldest occurrence
	length  int
	pending int // occurrences since the window last fired
}

// push adds an occurrence, returning the occurrence it displaced, if any
func (w *wordWindow) push(v int64) (evicted int64, ok bool) {
	if w.length == len(w.ring) {
		evicted = w.ring[w.head]
		w.ring[w.head] = v
		w.head = (w.head + 1) % len(w.ring)
		return evicted, true
	}
	w.ring[(w.head+w.length)%len(w.ring)] = v
	w.length++
	return 0, false
}

// A Counter maintains a sliding count window for every word it sees. Sums live
// in a KeyedWindow, and an occurrence leaving a word's window is retracted from it.
// A Counter is not safe for concurrent use.
type Counter struct {
	opts    Options
	slide   int
	logger  *zap.Logger
	sums    *runtime.KeyedWindow[string, int64, int64, int64]
	windows map[string]*wordWindow
	words   int64
	fired   int64
}

// NewCounter creates a Counter
func NewCounter(rt *runtime.Runtime, opts *Options) (*Counter, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	sums, err := runtime.NewKeyedWindow[string](rt, "wordcount", accumulators.Sum())
	if err != nil {
		return nil, err
	}
	return &Counter{
		opts:    *opts,
		slide:   opts.Size / opts.Steps,
		logger:  rt.Logger().With(zap.String("job", "wordcount")),
		sums:    sums,
		windows: make(map[string]*wordWindow),
	}, nil
}

// ProcessWord adds an occurrence of word, returning the window's count if it fired
func (c *Counter) ProcessWord(word string) (*WindowCount, error) {
	w, ok := c.windows[word]
	if !ok {
		w = &wordWindow{ring: make([]int64, c.opts.Size)}
		c.windows[word] = w
	}
	if evicted, ok := w.push(1); ok {
		if _, err := c.sums.Apply(word, sif.Remove(evicted)); err != nil {
			return nil, err
		}
	}
	sum, err := c.sums.Apply(word, sif.Add[int64](1))
	if err != nil {
		return nil, err
	}
	c.words++
	w.pending++
	if w.pending < c.slide {
		return nil, nil
	}
	w.pending = 0
	c.fired++
	return &WindowCount{Word: word, Count: sum}, nil
}

// ProcessLine tokenizes a line and processes its words, returning every window which fired
func (c *Counter) ProcessLine(line string) ([]WindowCount, error) {
	var res []WindowCount
	for _, word := range Tokenize(line) {
		wc, err := c.ProcessWord(word)
		if err != nil {
			return res, err
		}
		if wc != nil {
			res = append(res, *wc)
		}
	}
	return res, nil
}

// Flush fires every window which has received occurrences since it last fired,
// sorted by word. It is called at the end of input, so that partial windows
// are not lost.
func (c *Counter) Flush() []WindowCount {
	var res []WindowCount
	for word, w := range c.windows {
		if w.pending == 0 {
			continue
		}
		sum, ok := c.sums.Snapshot(word)
		if !ok {
			continue
		}
		w.pending = 0
		res = append(res, WindowCount{Word: word, Count: sum})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Word < res[j].Word })
	c.fired += int64(len(res))
	c.logger.Debug("Flushed partial windows", zap.Int("windows", len(res)))
	return res
}

// Run counts the words of lines until lines is closed or ctx is cancelled, sending
// every firing to out. When lines is closed, partial windows are flushed and Run
// returns nil.
func (c *Counter) Run(ctx context.Context, lines <-chan string, out chan<- WindowCount) error {
	send := func(counts []WindowCount) error {
		for _, wc := range counts {
			select {
			case out <- wc:
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
		case line, ok := <-lines:
			if !ok {
				if err := send(c.Flush()); err != nil {
					return err
				}
				c.logger.Info("Finished counting",
					zap.Int64("words", c.words),
					zap.Int("distinct", len(c.windows)),
					zap.Int64("firings", c.fired),
				)
				return nil
			}
			counts, err := c.ProcessLine(line)
			if err != nil {
				return err
			}
			if err := send(counts); err != nil {
				return err
			}
		}
	}
}

// CountLines counts the words of a batch of lines, returning every firing in
// order followed by the flushed partial windows
func CountLines(ctx context.Context, rt *runtime.Runtime, lines []string, opts *Options) ([]WindowCount, error) {
	c, err := NewCounter(rt, opts)
	if err != nil {
		return nil, err
	}
	words, err := runtime.FlatMap(ctx, rt, lines, func(line string, emit func(string)) error {
		for _, w := range Tokenize(line) {
			emit(w)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to tokenize lines: %w", err)
	}
	var res []WindowCount
	for _, word := range words {
		wc, err := c.ProcessWord(word)
		if err != nil {
			return nil, err
		}
		if wc != nil {
			res = append(res, *wc)
		}
	}
	return append(res, c.Flush()...), nil
}
