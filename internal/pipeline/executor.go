package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"curio-queries/internal/logging"
	"curio-queries/internal/models"
	"curio-queries/internal/qa"
)

// Scorer produces candidate answers for one chunk
type Scorer interface {
	Score(ctx context.Context, question string, chunk models.Chunk) ([]models.Answer, error)
}

// Executor runs scoring calls on a bounded pool shared by every document
// and every run for the lifetime of the process.
type Executor struct {
	scorer  Scorer
	sem     *semaphore.Weighted
	workers int
	logger  *logging.Logger
	metrics *Metrics
}

// NewExecutor creates the shared pool. workers must be > 0.
func NewExecutor(scorer Scorer, workers int, logger *logging.Logger, metrics *Metrics) *Executor {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	logger = logger.With(zap.Int("workers", workers))

	return &Executor{
		scorer:  scorer,
		sem:     semaphore.NewWeighted(int64(workers)),
		workers: workers,
		logger:  logger,
		metrics: metrics,
	}
}

// Workers returns the pool size
func (e *Executor) Workers() int {
	return e.workers
}

// slot holds the output of one task; only that task writes it
type slot struct {
	answers []models.Answer
}

// Batch collects the results of chunks submitted for one question.
// Submit must be called from a single goroutine; Wait once, after the last Submit.
type Batch struct {
	exec     *Executor
	question string

	wg     sync.WaitGroup
	slots  []*slot
	failed atomic.Int64
}

// NewBatch starts collecting scoring results for a question
func (e *Executor) NewBatch(question string) *Batch {
	return &Batch{exec: e, question: question}
}

// Submit schedules every chunk for scoring and returns without waiting.
func (b *Batch) Submit(ctx context.Context, chunks []models.Chunk) {
	for _, chunk := range chunks {
		s := &slot{}
		b.slots = append(b.slots, s)
		b.exec.metrics.Chunks.Inc()

		b.wg.Add(1)
		go func(chunk models.Chunk, s *slot) {
			defer b.wg.Done()

			if ctx.Err() != nil {
				b.failed.Add(1)
				return
			}
			if err := b.exec.sem.Acquire(ctx, 1); err != nil {
				b.failed.Add(1)
				return
			}
			defer b.exec.sem.Release(1)

			s.answers = b.exec.score(ctx, b.question, chunk, &b.failed)
		}(chunk, s)
	}
}

// Wait blocks until every submitted chunk is scored. Answers are returned in
// submission order, chunk by chunk, together with the number of failed chunks.
func (b *Batch) Wait() ([]models.Answer, int) {
	b.wg.Wait()

	var answers []models.Answer
	for _, s := range b.slots {
		answers = append(answers, s.answers...)
	}
	return answers, int(b.failed.Load())
}

// ScoreDocument scores all chunks of one document and waits for them.
func (e *Executor) ScoreDocument(ctx context.Context, question string, chunks []models.Chunk) ([]models.Answer, int) {
	batch := e.NewBatch(question)
	batch.Submit(ctx, chunks)
	return batch.Wait()
}

func (e *Executor) score(ctx context.Context, question string, chunk models.Chunk, failed *atomic.Int64) []models.Answer {
	start := time.Now()
	answers, err := e.scorer.Score(ctx, question, chunk)
	e.metrics.ScoringDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		failed.Add(1)
		e.metrics.ScoringCalls.WithLabelValues("error").Inc()
		if errors.Is(err, context.Canceled) {
			return nil
		}

		fields := []zap.Field{
			zap.String("document", chunk.Document),
			zap.Int("chunk", chunk.Position),
			zap.Error(err),
		}
		var se *qa.ScoringError
		if errors.As(err, &se) && errors.Is(se.Err, qa.ErrEmptyChunk) {
			e.logger.Warn(ctx, "skipping empty chunk", fields...)
			return nil
		}
		e.logger.Error(ctx, "failed to score chunk", fields...)
		return nil
	}

	e.metrics.ScoringCalls.WithLabelValues("success").Inc()
	e.logger.Debug(ctx, "scored chunk",
		zap.String("document", chunk.Document),
		zap.Int("chunk", chunk.Position),
		zap.Int("answers", len(answers)),
		zap.Duration("elapsed", time.Since(start)))
	return answers
}
