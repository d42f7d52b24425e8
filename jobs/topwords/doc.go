// Package topwords maintains a rolling ranking of the most frequent words in a
// stream of timestamped events.
//
// Words are counted in sliding event-time windows. Every window keeps a TopN
// ranking of its counts, which is updated by retracting a word's previous
// count and accumulating its new one, so downstream consumers observe a
// retract stream of rankings.
package topwords
