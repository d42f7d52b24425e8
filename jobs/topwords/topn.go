package topwords

import (
	"sort"

	sif "github.com/go-sif/sif-jobs"
)

// WordCount is the count of a word within a window
type WordCount struct {
	Word  string
	Count int64
}

// TopN is an immutable ranking of at most N WordCounts, ordered by count
// descending and then by word ascending. Every operation returns a new TopN.
type TopN struct {
	n       int
	entries []WordCount
}

// NewTopN returns an empty TopN holding at most n entries
func NewTopN(n int) TopN {
	return TopN{n: n}
}

func less(a, b WordCount) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.Word < b.Word
}

// rank sorts entries and truncates them to n. entries must not be shared.
func (t TopN) rank(entries []WordCount) TopN {
	sort.Slice(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	if len(entries) > t.n {
		entries = entries[:t.n]
	}
	return TopN{n: t.n, entries: entries}
}

// Accumulate inserts a word with its count
func (t TopN) Accumulate(count int64, word string) TopN {
	entries := make([]WordCount, len(t.entries), len(t.entries)+1)
	copy(entries, t.entries)
	return t.rank(append(entries, WordCount{Word: word, Count: count}))
}

// Merge combines two rankings, keeping the best N entries of both
func (t TopN) Merge(o TopN) TopN {
	entries := make([]WordCount, 0, len(t.entries)+len(o.entries))
	entries = append(entries, t.entries...)
	entries = append(entries, o.entries...)
	return t.rank(entries)
}

// Retract removes the entry for word with exactly count, if present. Retracting an
// entry which has already been truncated away is a no-op.
func (t TopN) Retract(count int64, word string) TopN {
	for i, e := range t.entries {
		if e.Word == word && e.Count == count {
			entries := make([]WordCount, 0, len(t.entries)-1)
			entries = append(entries, t.entries[:i]...)
			entries = append(entries, t.entries[i+1:]...)
			return TopN{n: t.n, entries: entries}
		}
	}
	return t
}

// Len returns the number of entries in this TopN
func (t TopN) Len() int {
	return len(t.entries)
}

// Emit returns the ranking, with 1-based ranks
func (t TopN) Emit() []RankedWord {
	res := make([]RankedWord, len(t.entries))
	for i, e := range t.entries {
		res[i] = RankedWord{Word: e.Word, Count: e.Count, Rank: i + 1}
	}
	return res
}

// TopNAggregator returns an Aggregator which ranks WordCounts, keeping the best n
func TopNAggregator(n int) sif.Aggregator[WordCount, TopN, []RankedWord] {
	return sif.Aggregator[WordCount, TopN, []RankedWord]{
		Create: func() TopN { return NewTopN(n) },
		Accumulate: func(acc TopN, in WordCount) (TopN, error) {
			return acc.Accumulate(in.Count, in.Word), nil
		},
		Retract: func(acc TopN, in WordCount) (TopN, error) {
			return acc.Retract(in.Count, in.Word), nil
		},
		Merge: func(acc TopN, o TopN) (TopN, error) {
			return acc.Merge(o), nil
		},
		Emit: func(acc TopN) []RankedWord { return acc.Emit() },
	}
}
