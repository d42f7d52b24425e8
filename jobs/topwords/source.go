package topwords

import (
	"context"
	"math/rand"
)

// Topics are the hashtags produced by a HashtagSource, most popular first.
// "#follow" is listed twice.
var Topics = []string{
	"#love", "#instagood", "#fashion", "#photooftheday", "#beautiful",
	"#art", "#photography", "#happy", "#picoftheday", "#cute",
	"#follow", "#tbt", "#followme", "#nature", "#like",
	"#travel", "#instagram", "#style", "#repost", "#summer",
	"#instadaily", "#selfie", "#me", "#friends", "#fitness",
	"#girl", "#food", "#fun", "#beauty", "#instalike",
	"#smile", "#family", "#photo", "#life", "#likeforlike",
	"#music", "#ootd", "#follow", "#makeup", "#amazing",
	"#igers", "#nofilter", "#dog", "#model", "#sunset",
	"#beach", "#instamood", "#foodporn", "#motivation", "#followforfollow",
}

const topicEpsilon = 0.1

// A HashtagSource deterministically generates hashtag Events. Each topic is
// chosen with probability 0.1 in turn, so popularity decays geometrically.
// Sources with the same Index and Parallelism interleave their timestamps:
// the i-th event of source Index has timestamp i*Parallelism+Index.
type HashtagSource struct {
	Index       int
	Parallelism int
	Limit       int64 // number of events to generate; 0 means unlimited
	random      *rand.Rand
	count       int64
}

// NewHashtagSource creates a HashtagSource, seeded for reproducibility
func NewHashtagSource(seed int64, index int, parallelism int, limit int64) *HashtagSource {
	if parallelism < 1 {
		parallelism = 1
	}
	return &HashtagSource{
		Index:       index,
		Parallelism: parallelism,
		Limit:       limit,
		random:      rand.New(rand.NewSource(seed)),
	}
}

func (s *HashtagSource) topic() string {
	for _, t := range Topics {
		if s.random.Float64() < topicEpsilon {
			return t
		}
	}
	return Topics[0]
}

// Next returns the next Event, or false once Limit events have been generated
func (s *HashtagSource) Next() (Event, bool) {
	if s.Limit > 0 && s.count >= s.Limit {
		return Event{}, false
	}
	e := Event{Word: s.topic(), Timestamp: s.count*int64(s.Parallelism) + int64(s.Index)}
	s.count++
	return e, true
}

// Generate sends Events to out until Limit is reached or ctx is cancelled. out is
// not closed.
func (s *HashtagSource) Generate(ctx context.Context, out chan<- Event) error {
	for {
		e, ok := s.Next()
		if !ok {
			return nil
		}
		select {
		case out <- e:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
