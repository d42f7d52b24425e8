package topwords

import (
	"fmt"
	"time"

	"github.com/go-sif/sif-jobs/errors"
)

// Event is an occurrence of a word at an event time, in milliseconds
type Event struct {
	Word      string
	Timestamp int64
}

// RankedWord is a word's position within a window's ranking
type RankedWord struct {
	Word  string
	Count int64
	Rank  int
}

// String returns a textual representation of this RankedWord
func (r RankedWord) String() string {
	return fmt.Sprintf("%d. %s (%d)", r.Rank, r.Word, r.Count)
}

// Update replaces the ranking previously emitted for a window. Retracted holds the
// ranking being replaced, which is empty the first time a window is emitted.
type Update struct {
	Window    int64 // window start, in milliseconds
	Retracted []RankedWord
	Ranking   []RankedWord
}

// Leader returns the rank-1 word of an Update's new and retracted rankings
func Leader(u Update) (current *RankedWord, previous *RankedWord) {
	if len(u.Ranking) > 0 {
		current = &u.Ranking[0]
	}
	if len(u.Retracted) > 0 {
		previous = &u.Retracted[0]
	}
	return current, previous
}

// Trigger determines when rankings are emitted
type Trigger int

const (
	// OnUpdate emits a window's ranking every time one of its counts changes
	OnUpdate Trigger = iota
	// OnClose emits a window's ranking once, when the window closes
	OnClose
)

// String returns the name of this Trigger
func (t Trigger) String() string {
	switch t {
	case OnUpdate:
		return "update"
	case OnClose:
		return "close"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// ParseTrigger converts the name of a Trigger into its value
func ParseTrigger(name string) (Trigger, error) {
	switch name {
	case "", "update":
		return OnUpdate, nil
	case "close":
		return OnClose, nil
	default:
		return OnUpdate, fmt.Errorf("Unknown trigger %q", name)
	}
}

// Options configure an Aggregator
type Options struct {
	Size    time.Duration // window length. Defaults to 1s.
	Slide   time.Duration // distance between window starts. Defaults to 500ms.
	N       int           // length of each ranking. Defaults to 5.
	Trigger Trigger
}

func ensureDefaultOptionsValues(opts *Options) error {
	if opts.Size == 0 {
		opts.Size = time.Second
	}
	if opts.Slide == 0 {
		opts.Slide = 500 * time.Millisecond
	}
	if opts.N == 0 {
		opts.N = 5
	}
	if opts.Size < time.Millisecond {
		return errors.ConfigurationError{Parameter: "Size", Value: opts.Size, Reason: "must be at least 1ms"}
	}
	if opts.Slide < time.Millisecond {
		return errors.ConfigurationError{Parameter: "Slide", Value: opts.Slide, Reason: "must be at least 1ms"}
	}
	if opts.Size%time.Millisecond != 0 || opts.Slide%time.Millisecond != 0 {
		return errors.ConfigurationError{Parameter: "Slide", Value: opts.Slide, Reason: "Size and Slide must be whole milliseconds"}
	}
	if opts.Size%opts.Slide != 0 {
		return errors.ConfigurationError{Parameter: "Slide", Value: opts.Slide, Reason: fmt.Sprintf("must divide Size (%s)", opts.Size)}
	}
	if opts.N < 0 {
		return errors.ConfigurationError{Parameter: "N", Value: opts.N, Reason: "must be greater than 0"}
	}
	if opts.Trigger != OnUpdate && opts.Trigger != OnClose {
		return errors.ConfigurationError{Parameter: "Trigger", Value: opts.Trigger, Reason: "unknown trigger"}
	}
	return nil
}

// Stats describe the events an Aggregator has processed
type Stats struct {
	Events        int64 // events counted in at least one window
	LateEvents    int64 // events which only fell into closed windows
	Updates       int64 // Updates emitted
	OpenWindows   int   // windows currently holding state
	ClosedWindows int64 // windows closed and evicted
}
