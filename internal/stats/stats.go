package stats

import (
	"sync"
	"time"
)

// RunStatistics contains statistics about a running job, tracked per stage.
// Stages are identified by name (e.g. "group_by_reduce").
type RunStatistics struct {
	lock                sync.Mutex
	started             bool
	finished            bool
	startTime           time.Time
	totalRuntime        int64
	stageOrder          []string
	stageRuntimes       map[string]int64 // cumulative runtime of all runs of a stage
	stageRuns           map[string]int64
	rowsProcessed       map[string]int64
	partitionsProcessed map[string]int64
}

// StageStatistics summarizes every run of a single stage
type StageStatistics struct {
	Name                string
	Runs                int64
	Runtime             time.Duration
	RowsProcessed       int64
	PartitionsProcessed int64
}

// Start triggers statistics tracking, if it hasn't been started already
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		rs.started = true
		rs.startTime = time.Now()
		rs.stageRuntimes = make(map[string]int64)
		rs.stageRuns = make(map[string]int64)
		rs.rowsProcessed = make(map[string]int64)
		rs.partitionsProcessed = make(map[string]int64)
	}
}

// Finish completes statistics tracking
func (rs *RunStatistics) Finish() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.started && !rs.finished {
		rs.finished = true
		rs.totalRuntime = time.Since(rs.startTime).Nanoseconds()
	}
}

// EndStage records a completed run of a stage which began at start
func (rs *RunStatistics) EndStage(name string, start time.Time) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.touch(name)
	rs.stageRuntimes[name] += time.Since(start).Nanoseconds()
	rs.stageRuns[name]++
}

// EndPartition tracks the end of the processing of a partition within a stage
func (rs *RunStatistics) EndPartition(name string, numRows int) {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.touch(name)
	rs.rowsProcessed[name] += int64(numRows)
	rs.partitionsProcessed[name]++
}

// touch registers a stage name the first time it is seen. Caller holds the lock.
func (rs *RunStatistics) touch(name string) {
	if _, ok := rs.stageRuns[name]; !ok {
		rs.stageOrder = append(rs.stageOrder, name)
		rs.stageRuns[name] = 0
	}
}

// GetStartTime returns the start time of the job
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the job
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.finished {
		return time.Duration(rs.totalRuntime)
	}
	if !rs.started {
		return 0
	}
	return time.Since(rs.startTime)
}

// GetStages returns statistics for every stage, in the order stages first ran
func (rs *RunStatistics) GetStages() []StageStatistics {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	res := make([]StageStatistics, 0, len(rs.stageOrder))
	for _, name := range rs.stageOrder {
		res = append(res, StageStatistics{
			Name:                name,
			Runs:                rs.stageRuns[name],
			Runtime:             time.Duration(rs.stageRuntimes[name]),
			RowsProcessed:       rs.rowsProcessed[name],
			PartitionsProcessed: rs.partitionsProcessed[name],
		})
	}
	return res
}
