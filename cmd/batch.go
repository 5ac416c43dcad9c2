package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/batch"
	"github.com/sells-group/underwrite-cli/internal/ingest"
	"github.com/sells-group/underwrite-cli/internal/report"
	"github.com/sells-group/underwrite-cli/internal/rules"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Evaluate every JSON document under a directory",
	Example: `  # Summarize a folder of statements
  underwrite batch ./statements --format table

  # Export flags to a spreadsheet
  underwrite batch ./statements --format xlsx --output flags.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.String("format", "", "output format: json, yaml, table, csv or xlsx (default: output.format)")
	f.String("output", "", "output file path (default: stdout)")
	f.Int("concurrency", 0, "documents evaluated in parallel (overrides batch.max_concurrency)")
	f.Bool("fail-fast", false, "exit non-zero when any document fails")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Batch.MaxConcurrency = v
	}
	if err := cfg.Validate("batch"); err != nil {
		return err
	}

	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	log := zap.L().With(zap.String("command", "batch"))

	paths, err := batch.Discover(args[0])
	if err != nil {
		return err
	}
	log.Info("starting batch evaluation",
		zap.String("root", args[0]),
		zap.Int("documents", len(paths)),
		zap.Int("concurrency", cfg.Batch.MaxConcurrency),
	)

	outcomes := batch.Run(ctx, paths, cfg.Batch.MaxConcurrency, evaluateFile)

	summary := batch.Summarize(outcomes)
	log.Info("batch evaluation complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)

	if err := writeBatchOutput(cmd.OutOrStdout(), outputPath, format, outcomes); err != nil {
		return err
	}

	if failFast && summary.Failed > 0 {
		return eris.Errorf("batch: %d of %d documents failed", summary.Failed, summary.Total)
	}
	return nil
}

func evaluateFile(_ context.Context, path string) (*rules.Assessment, error) {
	doc, err := ingest.LoadFile(path)
	if err != nil {
		return nil, err
	}
	obs := rules.NewLogObserver(zap.L().With(zap.String("path", path)))
	return rules.NewEngine(rules.WithObserver(obs)).Assess(doc)
}

// writeBatchOutput writes the report to outputPath, or to stdout when empty.
func writeBatchOutput(stdout io.Writer, outputPath string, format report.Format, outcomes []batch.Outcome) error {
	if outputPath == "" {
		return report.WriteBatch(stdout, format, outcomes)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrapf(err, "batch: create %s", outputPath)
	}
	if err := report.WriteBatch(f, format, outcomes); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "batch: close %s", outputPath)
	}
	zap.L().Info("batch report written", zap.String("path", outputPath))
	return nil
}
