// Package config loads job configuration from YAML files.
package config

import (
	goerrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sif/sif-jobs/errors"
	"gopkg.in/yaml.v3"
)

// RuntimeConfig configures the dataflow runtime
type RuntimeConfig struct {
	Partitions int `yaml:"partitions" validate:"gte=1"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=trace debug info warn error fatal"`
}

// MetricsConfig configures the Prometheus metrics endpoint
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"` // metrics are not served when empty
}

// InputConfig configures how inputs are parsed
type InputConfig struct {
	Delimiter     string `yaml:"delimiter" validate:"len=1"`
	HeaderLines   int    `yaml:"headerLines" validate:"gte=0"`
	SkipMalformed bool   `yaml:"skipMalformed"` // log and skip malformed records instead of failing
}

// TrianglesConfig configures triangle enumeration
type TrianglesConfig struct {
	Input        string `yaml:"input"` // glob of edge lists. The built-in example graph is used when empty.
	DedupEdges   bool   `yaml:"dedupEdges"`
	DedupMatches bool   `yaml:"dedupMatches"`
}

// KMeansConfig configures k-means clustering
type KMeansConfig struct {
	Input        string `yaml:"input"` // glob of point files. The built-in example points are used when empty.
	K            int    `yaml:"k" validate:"gte=1"`
	Iterations   int    `yaml:"iterations" validate:"gte=1"`
	EmptyCluster string `yaml:"emptyCluster" validate:"oneof=retain fail"`
}

// TopWordsConfig configures rolling top words
type TopWordsConfig struct {
	Input    string        `yaml:"input"` // glob of JSONL event files. Hashtag events are generated when empty.
	Size     time.Duration `yaml:"size" validate:"gt=0"`
	Slide    time.Duration `yaml:"slide" validate:"gt=0,ltefield=Size"`
	N        int           `yaml:"n" validate:"gte=1"`
	Trigger  string        `yaml:"trigger" validate:"oneof=update close"`
	Generate int64         `yaml:"generate" validate:"gte=0"` // number of events to generate without input
	Seed     int64         `yaml:"seed"`
}

// WordCountConfig configures windowed word counting
type WordCountConfig struct {
	Input string `yaml:"input" validate:"required"` // glob of text files
	Size  int    `yaml:"size" validate:"gte=1"`
	Steps int    `yaml:"steps" validate:"gte=1,ltefield=Size"`
}

// Config is the configuration of every job
type Config struct {
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Input     InputConfig     `yaml:"input"`
	Triangles TrianglesConfig `yaml:"triangles"`
	KMeans    KMeansConfig    `yaml:"kmeans"`
	TopWords  TopWordsConfig  `yaml:"topwords"`
	WordCount WordCountConfig `yaml:"wordcount"`
}

// Default returns the default configuration. Word counting has no default input.
func Default() *Config {
	return &Config{
		Runtime: RuntimeConfig{Partitions: 4},
		Log:     LogConfig{Level: "info"},
		Input:   InputConfig{Delimiter: ","},
		KMeans: KMeansConfig{
			K:            2,
			Iterations:   10,
			EmptyCluster: "retain",
		},
		TopWords: TopWordsConfig{
			Size:     time.Second,
			Slide:    500 * time.Millisecond,
			N:        5,
			Trigger:  "update",
			Generate: 100000,
			Seed:     1,
		},
		WordCount: WordCountConfig{Size: 6, Steps: 1},
	}
}

// Load reads a configuration file over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks a section of the configuration, such as the Config itself or
// one job's section. The first violated constraint is returned as a
// ConfigurationError.
func Validate(section interface{}) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !goerrors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return errors.ConfigurationError{
		Parameter: strings.ToLower(fe.Namespace()),
		Value:     fe.Value(),
		Reason:    reason(fe),
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "ltefield":
		return fmt.Sprintf("cannot exceed %s", strings.ToLower(fe.Param()))
	case "hostname_port":
		return "must be a host:port address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
