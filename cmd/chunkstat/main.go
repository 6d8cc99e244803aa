// Package main implements chunkstat, which reports how a directory of documents
// is split into chunks under the current chunking settings.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curio-queries/internal/config"
	"curio-queries/internal/logging"
	"curio-queries/internal/models"
	"curio-queries/internal/processor"
)

var (
	configPath   string
	dirFlag      string
	chunkSize    int
	chunkOverlap int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "chunkstat",
	Short:        "Print chunk statistics for a directory of documents",
	SilenceUsage: true,
	RunE:         runStats,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "Config file (default ~/.config/curioqa/config.yaml)")
	f.StringVarP(&dirFlag, "dir", "d", "", "Directory containing the documents (required)")
	f.IntVar(&chunkSize, "chunk-size", 0, "Characters per chunk")
	f.IntVar(&chunkOverlap, "chunk-overlap", 0, "Characters shared by consecutive chunks")
	_ = rootCmd.MarkFlagRequired("dir")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.Chunking.Size = chunkSize
	}
	if cmd.Flags().Changed("chunk-overlap") {
		cfg.Chunking.Overlap = chunkOverlap
	}

	logger, err := logging.NewLogger(cfg.Logging, map[string]string{"service": "chunkstat"})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	proc, err := processor.NewProcessor(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Documents.Extensions)
	if err != nil {
		return fmt.Errorf("failed to create processor: %w", err)
	}

	stats, err := collectStats(cmd.Context(), proc, dirFlag, logger)
	if err != nil {
		return err
	}

	printChunkStatistics(cmd.OutOrStdout(), cfg.Chunking, stats)
	return nil
}

// documentStats summarises the chunks of one document, lengths in characters
type documentStats struct {
	Name       string
	Characters int
	Chunks     int
	MinLength  int
	MaxLength  int
	AvgLength  float64
	Err        error
}

func collectStats(ctx context.Context, proc *processor.Processor, dir string, logger *logging.Logger) ([]documentStats, error) {
	files, err := proc.ListDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	stats := make([]documentStats, 0, len(files))
	for _, name := range files {
		doc, chunks, err := proc.ProcessDocument(filepath.Join(dir, name))
		if err != nil {
			logger.Warn(logging.WithDocument(ctx, name), "skipping document", zap.Error(err))
			stats = append(stats, documentStats{Name: name, Err: err})
			continue
		}
		stats = append(stats, summarize(doc, chunks))
	}
	return stats, nil
}

func summarize(doc models.Document, chunks []models.Chunk) documentStats {
	s := documentStats{
		Name:       doc.Name,
		Characters: len([]rune(doc.Text)),
		Chunks:     len(chunks),
	}

	var total int
	for i, chunk := range chunks {
		n := len([]rune(chunk.Content))
		total += n
		if i == 0 || n < s.MinLength {
			s.MinLength = n
		}
		if n > s.MaxLength {
			s.MaxLength = n
		}
	}
	if len(chunks) > 0 {
		s.AvgLength = float64(total) / float64(len(chunks))
	}
	return s
}

func printChunkStatistics(w io.Writer, chunking config.ChunkingConfig, stats []documentStats) {
	var totalChunks, totalChars, skipped int

	fmt.Fprintf(w, "Chunk Statistics (size %d, overlap %d):\n", chunking.Size, chunking.Overlap)
	for _, s := range stats {
		if s.Err != nil {
			skipped++
			fmt.Fprintf(w, "  %s: skipped: %v\n", s.Name, s.Err)
			continue
		}
		totalChunks += s.Chunks
		totalChars += s.Characters
		fmt.Fprintf(w, "  %s: %d characters, %d chunks (min %d, max %d, avg %.1f)\n",
			s.Name, s.Characters, s.Chunks, s.MinLength, s.MaxLength, s.AvgLength)
	}

	fmt.Fprintf(w, "  Total: %d documents, %d skipped, %d chunks, %d characters\n",
		len(stats)-skipped, skipped, totalChunks, totalChars)
}
