// Package qa scores document chunks against a question using an extractive
// question-answering model.
package qa

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"curio-queries/internal/models"
)

const (
	// DefaultMaxAnswerLength bounds the length of a returned answer span
	DefaultMaxAnswerLength = 300
	// DefaultTopK is the number of spans kept per chunk
	DefaultTopK = 3
)

var (
	// ErrEmptyChunk is returned when a chunk has no text to answer from
	ErrEmptyChunk = errors.New("chunk is empty")
	// ErrModelUnavailable is returned when a model cannot be loaded or reached
	ErrModelUnavailable = errors.New("model unavailable")
)

// Options are passed to the model on every inference call
type Options struct {
	MaxAnswerLength int
	TopK            int
}

// Span is one answer returned by a model
type Span struct {
	Answer string
	Score  float64
}

// Model is an extractive QA runtime. Implementations must be safe for
// concurrent use by multiple goroutines.
type Model interface {
	// Load verifies the model can serve requests. It is called once before any scoring.
	Load(ctx context.Context) error
	// Answer extracts answer spans for question from passage.
	Answer(ctx context.Context, question, passage string, opts Options) ([]Span, error)
	// Close releases resources held by the model.
	Close() error
}

// ScoringError reports a failed scoring call for one chunk
type ScoringError struct {
	Document string
	Position int
	Err      error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("failed to score chunk %d of %s: %v", e.Position, e.Document, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// Scorer turns model spans into candidate answers for a chunk
type Scorer struct {
	Model      Model
	Options    Options
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// NewScorer creates a scorer with default options for the given model
func NewScorer(model Model) *Scorer {
	return &Scorer{
		Model: model,
		Options: Options{
			MaxAnswerLength: DefaultMaxAnswerLength,
			TopK:            DefaultTopK,
		},
		MaxRetries: 2,
		RetryDelay: time.Second,
	}
}

// Score returns at most Options.TopK answers for chunk, best first, each
// tagged with the chunk's document and position.
func (s *Scorer) Score(ctx context.Context, question string, chunk models.Chunk) ([]models.Answer, error) {
	if strings.TrimSpace(chunk.Content) == "" {
		return nil, &ScoringError{Document: chunk.Document, Position: chunk.Position, Err: ErrEmptyChunk}
	}

	spans, err := s.answer(ctx, question, chunk.Content)
	if err != nil {
		return nil, &ScoringError{Document: chunk.Document, Position: chunk.Position, Err: err}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Score > spans[j].Score
	})
	if s.Options.TopK > 0 && len(spans) > s.Options.TopK {
		spans = spans[:s.Options.TopK]
	}

	answers := make([]models.Answer, 0, len(spans))
	for _, span := range spans {
		answers = append(answers, models.Answer{
			Text:     span.Answer,
			Score:    span.Score,
			Position: chunk.Position,
			Document: chunk.Document,
		})
	}
	return answers, nil
}

// answer calls the model, retrying failed attempts with a linearly growing delay
func (s *Scorer) answer(ctx context.Context, question, content string) ([]Span, error) {
	var (
		spans []Span
		err   error
	)

	for retries := 0; retries <= s.MaxRetries; retries++ {
		if retries > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(retries) * s.RetryDelay):
			}
		}

		spans, err = s.call(ctx, question, content)
		if err == nil {
			return spans, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", s.MaxRetries, err)
}

func (s *Scorer) call(ctx context.Context, question, content string) ([]Span, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.Model.Answer(ctx, question, content, s.Options)
}
