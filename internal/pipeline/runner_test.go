package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curio-queries/internal/processor"
	"curio-queries/internal/qa"
)

// phraseModel answers with every known phrase found in the passage
type phraseModel struct {
	phrases map[string]float64
}

func (m *phraseModel) Load(ctx context.Context) error { return nil }
func (m *phraseModel) Close() error                   { return nil }

func (m *phraseModel) Answer(ctx context.Context, question, passage string, opts qa.Options) ([]qa.Span, error) {
	var spans []qa.Span
	for phrase, score := range m.phrases {
		if strings.Contains(passage, phrase) {
			spans = append(spans, qa.Span{Answer: phrase, Score: score})
		}
	}
	return spans, nil
}

func newTestRunner(t *testing.T, model qa.Model) *Runner {
	t.Helper()

	proc, err := processor.NewProcessor(processor.DefaultChunkSize, processor.DefaultChunkOverlap, nil)
	require.NoError(t, err)

	scorer := qa.NewScorer(model)
	scorer.RetryDelay = 0
	exec := NewExecutor(scorer, 4, nil, nil)
	return NewRunner(proc, exec, 3, nil)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestAnswerGuidance(t *testing.T) {
	dir := t.TempDir()
	empty := t.TempDir()
	writeFile(t, empty, "notes.md", "not a document")
	file := filepath.Join(dir, "plain.txt")
	writeFile(t, dir, "plain.txt", "text")

	tests := []struct {
		name     string
		dir      string
		question string
		want     Guidance
	}{
		{name: "both missing", dir: "", question: "  ", want: GuidanceMissingBoth},
		{name: "directory missing", dir: "", question: "why?", want: GuidanceMissingDirectory},
		{name: "question missing", dir: dir, question: "\t", want: GuidanceMissingQuestion},
		{name: "directory not found", dir: filepath.Join(dir, "nope"), question: "why?", want: GuidanceDirectoryNotFound},
		{name: "path is a file", dir: file, question: "why?", want: GuidanceDirectoryNotFound},
		{name: "no documents", dir: empty, question: "why?", want: GuidanceNoDocuments},
	}

	r := newTestRunner(t, &phraseModel{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, g, err := r.Answer(context.Background(), tt.dir, tt.question)
			require.NoError(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, tt.want, g)
			assert.NotEmpty(t, g.String())
		})
	}
}

func TestAnswerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "architecture.txt", "The load balancer distributes requests across workers.")

	r := newTestRunner(t, &phraseModel{phrases: map[string]float64{"load balancer": 0.92}})
	resp, g, err := r.Answer(context.Background(), dir, "What distributes requests?")
	require.NoError(t, err)
	require.Equal(t, GuidanceNone, g)

	assert.Equal(t, 1, resp.Documents)
	assert.Equal(t, 1, resp.Chunks)
	assert.Zero(t, resp.Failed)
	require.Len(t, resp.Answers, 1)
	top := resp.Answers[0]
	assert.Contains(t, top.Text, "load balancer")
	assert.Equal(t, "architecture.txt", top.Document)
	assert.Equal(t, 1, top.Position)
}

func TestAnswerNoCandidates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Nothing relevant lives here.")

	r := newTestRunner(t, &phraseModel{phrases: map[string]float64{"load balancer": 0.9}})
	resp, g, err := r.Answer(context.Background(), dir, "What distributes requests?")
	require.NoError(t, err)
	require.Equal(t, GuidanceNone, g)
	assert.NotNil(t, resp.Answers)
	assert.Empty(t, resp.Answers)
}

func TestAnswerMultiDocumentTieBreak(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "alpha.txt", "The scheduler assigns jobs.")
	writeFile(t, dir, "beta.txt", "The scheduler assigns jobs too.")

	r := newTestRunner(t, &phraseModel{phrases: map[string]float64{"scheduler": 0.8}})
	r.TopN = 1

	resp, _, err := r.Answer(context.Background(), dir, "Who assigns jobs?")
	require.NoError(t, err)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "alpha.txt", resp.Answers[0].Document)
}

func TestAnswerSkipsBrokenDocuments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.docx", "this is not a zip archive")
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, "good.txt", "The load balancer distributes requests across workers.")

	r := newTestRunner(t, &phraseModel{phrases: map[string]float64{"load balancer": 0.7}})
	resp, _, err := r.Answer(context.Background(), dir, "What distributes requests?")
	require.NoError(t, err)

	require.Len(t, resp.Skipped, 2)
	assert.Equal(t, "broken.docx", resp.Skipped[0].Name)
	assert.Equal(t, "empty.txt", resp.Skipped[1].Name)
	assert.Equal(t, "no text extracted", resp.Skipped[1].Reason)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "good.txt", resp.Answers[0].Document)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.Documents.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.Documents.WithLabelValues("processed")))
}

func TestAnswerTopNAcrossChunks(t *testing.T) {
	dir := t.TempDir()
	text := strings.Repeat("alpha beta gamma delta ", 200)
	writeFile(t, dir, "long.txt", text)

	model := &phraseModel{phrases: map[string]float64{"alpha": 0.9, "beta": 0.6, "gamma": 0.3, "delta": 0.1}}
	r := newTestRunner(t, model)

	resp, _, err := r.Answer(context.Background(), dir, "Which letters?")
	require.NoError(t, err)
	assert.Greater(t, resp.Chunks, 1)
	require.Len(t, resp.Answers, 3)
	for i := 1; i < len(resp.Answers); i++ {
		assert.GreaterOrEqual(t, resp.Answers[i-1].Score, resp.Answers[i].Score)
	}
	// ties across chunks resolve to the earliest chunk
	assert.Equal(t, 1, resp.Answers[0].Position)
	assert.Equal(t, 2, resp.Answers[1].Position)
}

func TestAnswerWritesMetricsTextfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "The load balancer distributes requests across workers.")
	out := filepath.Join(t.TempDir(), "curioqa.prom")

	r := newTestRunner(t, &phraseModel{phrases: map[string]float64{"load balancer": 0.9}})
	r.MetricsTextfile = out

	_, _, err := r.Answer(context.Background(), dir, "What distributes requests?")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "curioqa_scoring_calls_total")
	assert.Contains(t, string(data), "curioqa_chunks_total 1")
}

func TestAnswerCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "The load balancer distributes requests across workers.")

	r := newTestRunner(t, &phraseModel{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Answer(ctx, dir, "What distributes requests?")
	assert.ErrorIs(t, err, context.Canceled)
}
