package qa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curio-queries/internal/config"
)

func TestNewModel(t *testing.T) {
	cfg := config.Default().Model

	m, err := NewModel(cfg)
	require.NoError(t, err)
	assert.IsType(t, &HuggingFaceModel{}, m)

	cfg.Backend = config.BackendOllama
	cfg.Name = "llama3"
	cfg.Endpoint = "http://localhost:11434"
	m, err = NewModel(cfg)
	require.NoError(t, err)
	require.IsType(t, &OllamaModel{}, m)
	assert.Equal(t, "llama3", m.(*OllamaModel).Model)

	cfg.Backend = "tensorflow"
	_, err = NewModel(cfg)
	assert.Error(t, err)
}

func TestNewModelDefaultNames(t *testing.T) {
	cfg := config.Default().Model

	m, err := NewModel(cfg)
	require.NoError(t, err)
	require.IsType(t, &HuggingFaceModel{}, m)
	assert.Equal(t, DefaultHuggingFaceEndpoint+"/"+DefaultHuggingFaceModel, m.(*HuggingFaceModel).URL())

	// switching backend without naming a model picks the backend's own default
	cfg.Backend = config.BackendOllama
	m, err = NewModel(cfg)
	require.NoError(t, err)
	require.IsType(t, &OllamaModel{}, m)
	assert.Equal(t, DefaultOllamaModel, m.(*OllamaModel).Model)
}

func TestModelName(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ModelConfig
		want string
	}{
		{"explicit name", config.ModelConfig{Backend: config.BackendOllama, Name: " llama3 "}, "llama3"},
		{"huggingface default", config.ModelConfig{Backend: config.BackendHuggingFace}, DefaultHuggingFaceModel},
		{"huggingface full url", config.ModelConfig{Backend: config.BackendHuggingFace, Endpoint: "http://localhost:8080/qa"}, ""},
		{"ollama default", config.ModelConfig{Backend: config.BackendOllama, Endpoint: "http://localhost:11434"}, DefaultOllamaModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelName(tt.cfg))
		})
	}
}

func TestNewConfiguredScorer(t *testing.T) {
	cfg := config.Default().Model
	cfg.TopK = 5
	cfg.MaxAnswerLength = 40
	cfg.MaxRetries = 0
	cfg.Timeout = time.Second

	s := NewConfiguredScorer(&stubModel{}, cfg)
	assert.Equal(t, Options{MaxAnswerLength: 40, TopK: 5}, s.Options)
	assert.Zero(t, s.MaxRetries)
	assert.Equal(t, time.Second, s.Timeout)
}
