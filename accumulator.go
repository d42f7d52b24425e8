package sif

// An Aggregator describes the accumulator maintained by a keyed window: one
// accumulator value per key, advanced by pure state transitions. Every
// function receives the current accumulator and returns its replacement,
// so the runtime can serialize updates to a key without the Aggregator
// managing locks itself.
//
// Merge must be associative and commutative so that partial accumulators
// built on different partitions combine to the same result as a single
// accumulation. Retract is optional; windows fed with retractions require it.
type Aggregator[In any, Acc any, Out any] struct {
	Create     func() Acc                       // Create produces an empty accumulator
	Accumulate func(acc Acc, in In) (Acc, error) // Accumulate adds a record to an accumulator
	Retract    func(acc Acc, in In) (Acc, error) // Retract removes a previously accumulated record
	Merge      func(acc Acc, o Acc) (Acc, error) // Merge combines two accumulators
	Emit       func(acc Acc) Out                // Emit produces the current result of an accumulator
}

// CanRetract returns true iff this Aggregator supports retraction
func (a Aggregator[In, Acc, Out]) CanRetract() bool {
	return a.Retract != nil
}

// A Change is an element of an update stream: either an addition of Value,
// or (when Retract is true) the removal of a previously added Value.
type Change[T any] struct {
	Retract bool
	Value   T
}

// Add wraps a value as an addition
func Add[T any](v T) Change[T] {
	return Change[T]{Value: v}
}

// Remove wraps a value as a retraction
func Remove[T any](v T) Change[T] {
	return Change[T]{Retract: true, Value: v}
}
