// Package config provides configuration loading for curioqa.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Supported model backends
const (
	BackendHuggingFace = "huggingface"
	BackendOllama      = "ollama"
)

// Config is the complete runtime configuration
type Config struct {
	Documents DocumentsConfig `koanf:"documents"`
	Chunking  ChunkingConfig  `koanf:"chunking"`
	Model     ModelConfig     `koanf:"model"`
	Ranking   RankingConfig   `koanf:"ranking"`
	Pipeline  PipelineConfig  `koanf:"pipeline"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DocumentsConfig selects which files in the directory are read
type DocumentsConfig struct {
	Extensions []string `koanf:"extensions"`
}

// ChunkingConfig sizes the sliding window, in characters
type ChunkingConfig struct {
	Size    int `koanf:"size"`
	Overlap int `koanf:"overlap"`
}

// ModelConfig configures the QA model backend. An empty Name selects the
// backend's default model.
type ModelConfig struct {
	Backend         string        `koanf:"backend"`
	Name            string        `koanf:"name"`
	Endpoint        string        `koanf:"endpoint"`
	Token           string        `koanf:"token"`
	MaxAnswerLength int           `koanf:"max_answer_length"`
	TopK            int           `koanf:"top_k"`
	Timeout         time.Duration `koanf:"timeout"`
	MaxRetries      int           `koanf:"max_retries"`
}

// RankingConfig controls how many answers are shown
type RankingConfig struct {
	TopN int `koanf:"top_n"`
}

// PipelineConfig sizes the scoring pool. Zero workers means one per CPU.
type PipelineConfig struct {
	Workers int `koanf:"workers"`
}

// LoggingConfig controls log output on stderr
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig enables writing run metrics in Prometheus text format
type MetricsConfig struct {
	Textfile string `koanf:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Documents: DocumentsConfig{
			Extensions: []string{".docx", ".pdf", ".txt"},
		},
		Chunking: ChunkingConfig{
			Size:    1024,
			Overlap: 200,
		},
		Model: ModelConfig{
			Backend:         BackendHuggingFace,
			MaxAnswerLength: 300,
			TopK:            3,
			Timeout:         2 * time.Minute,
			MaxRetries:      2,
		},
		Ranking: RankingConfig{
			TopN: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Workers returns the effective pool size
func (c *Config) Workers() int {
	if c.Pipeline.Workers > 0 {
		return c.Pipeline.Workers
	}
	return runtime.NumCPU()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Chunking.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunking.size must be > 0, got %d", c.Chunking.Size))
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		errs = append(errs, fmt.Errorf("chunking.overlap must be >= 0 and < chunking.size, got %d", c.Chunking.Overlap))
	}
	if len(c.Documents.Extensions) == 0 {
		errs = append(errs, errors.New("documents.extensions must not be empty"))
	}

	switch c.Model.Backend {
	case BackendHuggingFace, BackendOllama:
	default:
		errs = append(errs, fmt.Errorf("model.backend must be %q or %q, got %q",
			BackendHuggingFace, BackendOllama, c.Model.Backend))
	}
	if c.Model.Name != "" && strings.TrimSpace(c.Model.Name) == "" {
		errs = append(errs, errors.New("model.name must not be blank"))
	}
	if c.Model.TopK <= 0 {
		errs = append(errs, fmt.Errorf("model.top_k must be > 0, got %d", c.Model.TopK))
	}
	if c.Model.MaxAnswerLength <= 0 {
		errs = append(errs, fmt.Errorf("model.max_answer_length must be > 0, got %d", c.Model.MaxAnswerLength))
	}
	if c.Model.Timeout < 0 {
		errs = append(errs, fmt.Errorf("model.timeout must not be negative, got %s", c.Model.Timeout))
	}
	if c.Model.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("model.max_retries must not be negative, got %d", c.Model.MaxRetries))
	}

	if c.Ranking.TopN <= 0 {
		errs = append(errs, fmt.Errorf("ranking.top_n must be > 0, got %d", c.Ranking.TopN))
	}
	if c.Pipeline.Workers < 0 {
		errs = append(errs, fmt.Errorf("pipeline.workers must not be negative, got %d", c.Pipeline.Workers))
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}
