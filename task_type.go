package sif

// TaskType describes the type of a runtime primitive, used to label statistics, metrics and errors
type TaskType string

const (
	// MapTaskType indicates a Map
	MapTaskType TaskType = "map"
	// FlatMapTaskType indicates a FlatMap
	FlatMapTaskType TaskType = "flatmap"
	// GroupByReduceTaskType indicates a keyed pairwise reduction
	GroupByReduceTaskType TaskType = "group_by_reduce"
	// GroupReduceTaskType indicates a keyed group reduction
	GroupReduceTaskType TaskType = "group_reduce"
	// DistinctTaskType indicates a deduplication
	DistinctTaskType TaskType = "distinct"
	// JoinTaskType indicates an inner equi-join
	JoinTaskType TaskType = "join"
	// CountTaskType indicates a count
	CountTaskType TaskType = "count"
	// IterateTaskType indicates a fixed-length iteration
	IterateTaskType TaskType = "iterate"
	// WindowTaskType indicates an update to a keyed window
	WindowTaskType TaskType = "window"
)
