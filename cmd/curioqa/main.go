// Package main implements the curioqa CLI, which answers questions from a folder of documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"curio-queries/internal/config"
	"curio-queries/internal/logging"
	"curio-queries/internal/pipeline"
	"curio-queries/internal/processor"
	"curio-queries/internal/qa"
)

var version = "dev"

// flag values
var (
	configPath   string
	dirFlag      string
	questionFlag string
	interactive  bool
	backendFlag  string
	modelFlag    string
	endpointFlag string
	workersFlag  int
	topFlag      int
	chunkSize    int
	chunkOverlap int
	logLevel     string
	metricsFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "curioqa",
	Short: "Answer questions from a folder of documents",
	Long: `curioqa runs an extractive question-answering model over every document in a
directory (.docx, .pdf, .txt) and prints the highest-confidence answers.

Examples:
  # Ask one question
  curioqa --dir ./handbooks -q "What distributes requests?"

  # Ask several questions against the same model
  curioqa -i --dir ./handbooks

  # Use a local Ollama model instead of the Hugging Face inference API
  curioqa --backend ollama --model phi3-mini --dir ./handbooks -q "Who owns billing?"`,
	Version:      version,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "Config file (default ~/.config/curioqa/config.yaml)")
	f.StringVarP(&dirFlag, "dir", "d", "", "Directory containing the documents")
	f.StringVarP(&questionFlag, "question", "q", "", "Question to answer (non-interactive mode)")
	f.BoolVarP(&interactive, "interactive", "i", false, "Run in interactive mode")
	f.StringVar(&backendFlag, "backend", "", "Model backend: huggingface or ollama")
	f.StringVar(&modelFlag, "model", "", "Model name")
	f.StringVar(&endpointFlag, "endpoint", "", "Inference endpoint (Hugging Face base URL or Ollama host)")
	f.IntVar(&workersFlag, "workers", 0, "Concurrent scoring calls (default one per CPU)")
	f.IntVar(&topFlag, "top", 0, "Number of answers to show")
	f.IntVar(&chunkSize, "chunk-size", 0, "Characters per chunk")
	f.IntVar(&chunkOverlap, "chunk-overlap", 0, "Characters shared by consecutive chunks")
	f.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file after each run")
}

// applyFlags overrides configuration with flags the user set explicitly
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Model.Backend = backendFlag
	}
	if flags.Changed("model") {
		cfg.Model.Name = modelFlag
	}
	if flags.Changed("endpoint") {
		cfg.Model.Endpoint = endpointFlag
	}
	if flags.Changed("workers") {
		cfg.Pipeline.Workers = workersFlag
	}
	if flags.Changed("top") {
		cfg.Ranking.TopN = topFlag
	}
	if flags.Changed("chunk-size") {
		cfg.Chunking.Size = chunkSize
	}
	if flags.Changed("chunk-overlap") {
		cfg.Chunking.Overlap = chunkOverlap
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = metricsFile
	}
}

// app holds everything constructed once per process
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	model  qa.Model
	runner *pipeline.Runner
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.NewLogger(cfg.Logging, map[string]string{"service": "curioqa"})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	proc, err := processor.NewProcessor(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Documents.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor: %w", err)
	}

	model, err := qa.NewModel(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	scorer := qa.NewConfiguredScorer(model, cfg.Model)
	exec := pipeline.NewExecutor(scorer, cfg.Workers(), logger.Named("executor"), pipeline.NewMetrics())
	runner := pipeline.NewRunner(proc, exec, cfg.Ranking.TopN, logger.Named("runner"))
	runner.MetricsTextfile = cfg.Metrics.Textfile

	return &app{cfg: cfg, logger: logger, model: model, runner: runner}, nil
}

// loadModel must succeed before any document is processed
func (a *app) loadModel(ctx context.Context) error {
	a.logger.Info(ctx, "loading model",
		zap.String("backend", a.cfg.Model.Backend),
		zap.String("model", qa.ModelName(a.cfg.Model)))
	if err := a.model.Load(ctx); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	return nil
}

func (a *app) close() {
	if err := a.model.Close(); err != nil {
		a.logger.Warn(context.Background(), "failed to close model", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	if interactive {
		if err := a.loadModel(ctx); err != nil {
			return err
		}
		return runInteractiveMode(ctx, a.runner, cmd.InOrStdin(), out, dirFlag)
	}

	// guidance is reported without touching the model
	_, g, err := a.runner.Preflight(dirFlag, questionFlag)
	if err != nil {
		return err
	}
	if g != pipeline.GuidanceNone {
		fmt.Fprintln(out, formatGuidance(g))
		return nil
	}

	if err := a.loadModel(ctx); err != nil {
		return err
	}

	resp, g, err := a.runner.Answer(ctx, dirFlag, questionFlag)
	if err != nil {
		return fmt.Errorf("failed to process question: %w", err)
	}
	if g != pipeline.GuidanceNone {
		fmt.Fprintln(out, formatGuidance(g))
		return nil
	}

	fmt.Fprint(out, formatResponse(resp))
	return nil
}
