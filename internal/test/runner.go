package test

import (
	"testing"

	"github.com/go-sif/sif-jobs/runtime"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// LocalRuntime creates a Runtime with a certain number of partitions, logging
// through the test, which is closed when the test finishes
func LocalRuntime(t testing.TB, numPartitions int) *runtime.Runtime {
	rt, err := runtime.New(&runtime.Options{
		NumPartitions: numPartitions,
		Logger:        zaptest.NewLogger(t),
	})
	require.Nil(t, err)
	t.Cleanup(func() {
		rt.Close()
	})
	return rt
}
