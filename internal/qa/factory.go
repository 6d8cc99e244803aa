package qa

import (
	"fmt"
	"strings"

	"curio-queries/internal/config"
)

// NewModel constructs the configured backend. It does not contact the model; call Load for that.
func NewModel(cfg config.ModelConfig) (Model, error) {
	switch cfg.Backend {
	case config.BackendHuggingFace:
		m, err := NewHuggingFaceModel(cfg.Endpoint, ModelName(cfg), cfg.Token)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.BackendOllama:
		m, err := NewOllamaModel(cfg.Endpoint, ModelName(cfg))
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
	}
}

// ModelName returns the configured model name or the backend's default.
// A Hugging Face endpoint without a name is treated as a full inference URL.
func ModelName(cfg config.ModelConfig) string {
	if name := strings.TrimSpace(cfg.Name); name != "" {
		return name
	}
	switch cfg.Backend {
	case config.BackendHuggingFace:
		if cfg.Endpoint == "" {
			return DefaultHuggingFaceModel
		}
	case config.BackendOllama:
		return DefaultOllamaModel
	}
	return ""
}

// NewConfiguredScorer wraps model with the limits from cfg
func NewConfiguredScorer(model Model, cfg config.ModelConfig) *Scorer {
	s := NewScorer(model)
	s.Options = Options{
		MaxAnswerLength: cfg.MaxAnswerLength,
		TopK:            cfg.TopK,
	}
	s.MaxRetries = cfg.MaxRetries
	s.Timeout = cfg.Timeout
	return s
}
