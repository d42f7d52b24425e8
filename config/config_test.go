package config

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sif/sif-jobs/errors"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Nil(t, Validate(cfg.Runtime))
	require.Nil(t, Validate(cfg.Log))
	require.Nil(t, Validate(cfg.KMeans))
	require.Nil(t, Validate(cfg.TopWords))
	require.Nil(t, Validate(cfg.Triangles))
	// word counting has no default input
	require.NotNil(t, Validate(cfg.WordCount))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.Nil(t, os.WriteFile(path, []byte(`
runtime:
  partitions: 8
log:
  level: debug
kmeans:
  k: 3
topwords:
  size: 2s
  slide: 250ms
  trigger: close
wordcount:
  input: "*.txt"
  steps: 2
`), 0644))
	cfg, err := Load(path)
	require.Nil(t, err)
	require.Equal(t, 8, cfg.Runtime.Partitions)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 3, cfg.KMeans.K)
	require.Equal(t, 10, cfg.KMeans.Iterations)
	require.Equal(t, 2*time.Second, cfg.TopWords.Size)
	require.Equal(t, 250*time.Millisecond, cfg.TopWords.Slide)
	require.Equal(t, "close", cfg.TopWords.Trigger)
	require.Equal(t, 5, cfg.TopWords.N)
	require.Equal(t, WordCountConfig{Input: "*.txt", Size: 6, Steps: 2}, cfg.WordCount)
	require.Nil(t, Validate(cfg))
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.Nil(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.Nil(t, os.WriteFile(path, []byte("runtime: [1, 2"), 0644))
	_, err = Load(path)
	require.NotNil(t, err)
}

func TestValidationErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		section   interface{}
		parameter string
	}{
		"partitions":    {RuntimeConfig{Partitions: 0}, "runtimeconfig.partitions"},
		"level":         {LogConfig{Level: "loud"}, "logconfig.level"},
		"empty cluster": {KMeansConfig{K: 1, Iterations: 1, EmptyCluster: "split"}, "kmeansconfig.emptycluster"},
		"steps":         {WordCountConfig{Input: "x", Size: 2, Steps: 3}, "wordcountconfig.steps"},
		"slide":         {TopWordsConfig{Size: time.Second, Slide: 2 * time.Second, N: 1, Trigger: "update"}, "topwordsconfig.slide"},
		"metrics addr":  {MetricsConfig{Addr: "nope"}, "metricsconfig.addr"},
	} {
		t.Run(name, func(t *testing.T) {
			err := Validate(tc.section)
			var cfgErr errors.ConfigurationError
			require.True(t, goerrors.As(err, &cfgErr))
			require.Equal(t, tc.parameter, cfgErr.Parameter)
		})
	}
}
