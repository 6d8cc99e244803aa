package qa

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curio-queries/internal/models"
)

type stubModel struct {
	spans []Span
	errs  []error
	calls atomic.Int32
	opts  Options
}

func (m *stubModel) Load(ctx context.Context) error { return nil }
func (m *stubModel) Close() error                   { return nil }

func (m *stubModel) Answer(ctx context.Context, question, passage string, opts Options) ([]Span, error) {
	n := int(m.calls.Add(1)) - 1
	m.opts = opts
	if n < len(m.errs) && m.errs[n] != nil {
		return nil, m.errs[n]
	}
	out := make([]Span, len(m.spans))
	copy(out, m.spans)
	return out, nil
}

func newTestScorer(m Model) *Scorer {
	s := NewScorer(m)
	s.RetryDelay = 0
	return s
}

func TestScoreTagsAndTruncates(t *testing.T) {
	model := &stubModel{spans: []Span{
		{Answer: "c", Score: 0.2},
		{Answer: "a", Score: 0.9},
		{Answer: "d", Score: 0.1},
		{Answer: "b", Score: 0.5},
	}}
	s := newTestScorer(model)

	chunk := models.Chunk{Document: "ops.docx", Position: 4, Content: "some text"}
	answers, err := s.Score(context.Background(), "q?", chunk)
	require.NoError(t, err)
	require.Len(t, answers, DefaultTopK)

	assert.Equal(t, []string{"a", "b", "c"}, []string{answers[0].Text, answers[1].Text, answers[2].Text})
	for _, a := range answers {
		assert.Equal(t, 4, a.Position)
		assert.Equal(t, "ops.docx", a.Document)
	}
	assert.Equal(t, Options{MaxAnswerLength: 300, TopK: 3}, model.opts)
}

func TestScoreEmptyChunk(t *testing.T) {
	model := &stubModel{}
	s := newTestScorer(model)

	_, err := s.Score(context.Background(), "q?", models.Chunk{Document: "x.txt", Position: 2, Content: "  \n"})
	require.ErrorIs(t, err, ErrEmptyChunk)

	var se *ScoringError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "x.txt", se.Document)
	assert.Equal(t, 2, se.Position)
	assert.Zero(t, model.calls.Load())
}

func TestScoreRetriesTransientFailures(t *testing.T) {
	model := &stubModel{
		spans: []Span{{Answer: "ok", Score: 1}},
		errs:  []error{errors.New("busy"), errors.New("still busy")},
	}
	s := newTestScorer(model)

	answers, err := s.Score(context.Background(), "q?", models.Chunk{Document: "d", Position: 1, Content: "text"})
	require.NoError(t, err)
	assert.Len(t, answers, 1)
	assert.EqualValues(t, 3, model.calls.Load())
}

func TestScoreGivesUpAfterRetries(t *testing.T) {
	boom := errors.New("model crashed")
	model := &stubModel{errs: []error{boom, boom, boom, boom}}
	s := newTestScorer(model)
	s.MaxRetries = 1

	_, err := s.Score(context.Background(), "q?", models.Chunk{Document: "d", Position: 7, Content: "text"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunk 7 of d")
	assert.EqualValues(t, 2, model.calls.Load())
}

func TestScoreTimeout(t *testing.T) {
	s := newTestScorer(slowModel{})
	s.Timeout = 10 * time.Millisecond
	s.MaxRetries = 0

	_, err := s.Score(context.Background(), "q?", models.Chunk{Document: "d", Position: 1, Content: "text"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type slowModel struct{}

func (slowModel) Load(ctx context.Context) error { return nil }
func (slowModel) Close() error                   { return nil }
func (slowModel) Answer(ctx context.Context, question, passage string, opts Options) ([]Span, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
