package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/underwrite-cli/internal/ingest"
	"github.com/sells-group/underwrite-cli/internal/report"
	"github.com/sells-group/underwrite-cli/internal/rules"
)

const defaultInput = "data.json"

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file...]",
	Short: "Evaluate underwriting flags for one or more documents",
	Example: `  # Evaluate ./data.json
  underwrite evaluate

  # Show the selected period and metric values
  underwrite evaluate --detail --format table q3.json`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("format", "", "output format: json, yaml or table (default: output.format)")
	f.Bool("detail", false, "include the selected period and metric values")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("evaluate"); err != nil {
		return err
	}

	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}
	if err := report.CheckSingle(format); err != nil {
		return err
	}
	detail, _ := cmd.Flags().GetBool("detail")

	paths := args
	if len(paths) == 0 {
		paths = []string{defaultInput}
	}

	log := zap.L().With(zap.String("command", "evaluate"))
	engine := rules.NewEngine(rules.WithObserver(rules.NewLogObserver(log)))

	for _, path := range paths {
		doc, err := ingest.LoadFile(path)
		if err != nil {
			return err
		}

		a, err := engine.Assess(doc)
		if err != nil {
			return eris.Wrapf(err, "evaluate: %s", path)
		}

		if err := report.WriteResult(cmd.OutOrStdout(), format, a, detail); err != nil {
			return err
		}
	}

	return nil
}

// resolveFormat returns the --format flag, falling back to output.format.
func resolveFormat(cmd *cobra.Command) (report.Format, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	return report.ParseFormat(format)
}
