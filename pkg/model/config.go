// Package model implements the word2vec / paragraph-vector training
// engine: vocabulary-backed weight matrices, the multi-threaded
// streaming trainer (CBOW and skip-gram, hierarchical softmax and
// negative sampling), and the sentence-vector extension.
package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the immutable set of training hyperparameters. It is fixed
// before training starts and never mutated mid-run.
type Config struct {
	// Dimension is the embedding size.
	Dimension int `yaml:"dimension"`
	// Window is the maximum context distance on each side of the
	// target word. The effective window is sampled per position.
	Window int `yaml:"window"`
	// MinCount prunes words seen fewer times from the vocabulary.
	MinCount int `yaml:"min_count"`
	// Alpha is the starting learning rate, decayed linearly over the
	// run down to a floor of Alpha*1e-4.
	Alpha float32 `yaml:"alpha"`
	// Epochs is the number of full passes over the training file.
	Epochs int `yaml:"epochs"`
	// Threads is the number of training workers; the file is split
	// into that many line-aligned chunks.
	Threads int `yaml:"threads"`
	// Subsample is the frequency threshold above which words are
	// probabilistically dropped during training. 0 disables it.
	Subsample float32 `yaml:"subsample"`
	// HierarchicalSoftmax enables the Huffman-tree output layer.
	HierarchicalSoftmax bool `yaml:"hierarchical_softmax"`
	// SkipGram selects skip-gram; the default is CBOW.
	SkipGram bool `yaml:"skip_gram"`
	// Negative is the number of noise samples per positive example.
	// 0 disables negative sampling.
	Negative int `yaml:"negative"`
	// SentVector jointly trains one vector per corpus line
	// (paragraph-vector style).
	SentVector bool `yaml:"sent_vector"`
	// Freeze suppresses gradient flow into word and output matrices
	// during online sentence-vector inference.
	Freeze bool `yaml:"freeze"`
	// Seed initializes the random generators. With a single thread the
	// same seed reproduces a training run bit for bit.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the conventional word2vec hyperparameters.
func DefaultConfig() Config {
	return Config{
		Dimension: 100,
		Window:    5,
		MinCount:  5,
		Alpha:     0.05,
		Epochs:    5,
		Threads:   4,
		Subsample: 1e-3,
		Negative:  5,
		Seed:      1,
	}
}

// Validate checks the configuration for values the trainer cannot run
// with. It does not apply defaults; use DefaultConfig as the base.
func (c Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("config: dimension must be positive, got %d", c.Dimension)
	}
	if c.Window <= 0 {
		return fmt.Errorf("config: window must be positive, got %d", c.Window)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("config: epochs must be positive, got %d", c.Epochs)
	}
	if c.Threads <= 0 {
		return fmt.Errorf("config: threads must be positive, got %d", c.Threads)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("config: alpha must be positive, got %g", c.Alpha)
	}
	if c.Negative < 0 {
		return fmt.Errorf("config: negative must be >= 0, got %d", c.Negative)
	}
	if !c.HierarchicalSoftmax && c.Negative == 0 {
		return fmt.Errorf("config: either hierarchical_softmax or negative sampling must be enabled")
	}
	return nil
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// Unknown fields are rejected to surface typos early.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read configuration file '%s': %w", path, err)
	}

	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in '%s': %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
