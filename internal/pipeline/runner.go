package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"curio-queries/internal/logging"
	"curio-queries/internal/models"
	"curio-queries/internal/processor"
	"curio-queries/internal/ranker"
)

// Runner answers one question over one directory of documents
type Runner struct {
	Processor       *processor.Processor
	Executor        *Executor
	TopN            int
	MetricsTextfile string

	logger  *logging.Logger
	metrics *Metrics
}

// NewRunner wires a processor and a shared executor together
func NewRunner(proc *processor.Processor, exec *Executor, topN int, logger *logging.Logger) *Runner {
	if topN <= 0 {
		topN = ranker.DefaultTopN
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Runner{
		Processor: proc,
		Executor:  exec,
		TopN:      topN,
		logger:    logger,
		metrics:   exec.metrics,
	}
}

// Answer runs the full pipeline. A non-None Guidance means nothing was processed
// and the returned response is nil. Documents that fail extraction are skipped and
// listed in the response; only listing failures and cancellation return an error.
func (r *Runner) Answer(ctx context.Context, dir, question string) (*models.Response, Guidance, error) {
	files, g, err := r.Preflight(dir, question)
	if err != nil || g != GuidanceNone {
		return nil, g, err
	}
	dir = strings.TrimSpace(dir)
	question = strings.TrimSpace(question)

	ctx = logging.WithRunID(ctx, uuid.NewString())
	startTime := time.Now()
	r.logger.Info(ctx, "processing files",
		zap.String("directory", dir),
		zap.Int("files", len(files)),
		zap.Int("workers", r.Executor.Workers()))

	response := &models.Response{Question: question}

	// chunks of each document are submitted as soon as it is extracted, so
	// extraction of the next document overlaps with scoring
	batch := r.Executor.NewBatch(question)
	for _, name := range files {
		if ctx.Err() != nil {
			break
		}

		docCtx := logging.WithDocument(ctx, name)
		doc, chunks, err := r.Processor.ProcessDocument(filepath.Join(dir, name))
		if err != nil {
			r.skip(docCtx, response, name, err.Error())
			continue
		}
		if len(chunks) == 0 {
			r.skip(docCtx, response, name, "no text extracted")
			continue
		}

		r.metrics.Documents.WithLabelValues("processed").Inc()
		r.logger.Debug(docCtx, "submitting chunks",
			zap.Int("chunks", len(chunks)),
			zap.Int("characters", len([]rune(doc.Text))))

		response.Documents++
		response.Chunks += len(chunks)
		batch.Submit(ctx, chunks)
	}

	answers, failed := batch.Wait()
	if err := ctx.Err(); err != nil {
		return nil, GuidanceNone, fmt.Errorf("run cancelled: %w", err)
	}

	r.logger.Info(ctx, "sorting answers", zap.Int("candidates", len(answers)))
	response.Answers = ranker.Rank(answers, r.TopN)
	response.Failed = failed
	response.Elapsed = time.Since(startTime)
	response.Timestamp = time.Now().Format(time.RFC3339)

	r.logger.Info(ctx, "question answered",
		zap.Int("documents", response.Documents),
		zap.Int("skipped", len(response.Skipped)),
		zap.Int("chunks", response.Chunks),
		zap.Int("failed_chunks", failed),
		zap.Duration("elapsed", response.Elapsed))

	if r.MetricsTextfile != "" {
		if err := r.metrics.WriteTextfile(r.MetricsTextfile); err != nil {
			r.logger.Warn(ctx, "failed to write metrics textfile",
				zap.String("path", r.MetricsTextfile), zap.Error(err))
		}
	}

	return response, GuidanceNone, nil
}

// Preflight validates the inputs and lists the matching documents without
// extracting or scoring anything.
func (r *Runner) Preflight(dir, question string) ([]string, Guidance, error) {
	if g := CheckInput(dir, question); g != GuidanceNone {
		return nil, g, nil
	}

	files, err := r.Processor.ListDocuments(strings.TrimSpace(dir))
	if err != nil {
		return nil, GuidanceNone, fmt.Errorf("failed to list documents: %w", err)
	}
	if len(files) == 0 {
		return nil, GuidanceNoDocuments, nil
	}
	return files, GuidanceNone, nil
}

func (r *Runner) skip(ctx context.Context, response *models.Response, name, reason string) {
	r.metrics.Documents.WithLabelValues("skipped").Inc()
	r.logger.Warn(ctx, "skipping document", zap.String("reason", reason))
	response.Skipped = append(response.Skipped, models.SkippedDocument{Name: name, Reason: reason})
}
