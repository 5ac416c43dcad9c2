package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/underwrite-cli/internal/batch"
	"github.com/sells-group/underwrite-cli/internal/report"
)

const sampleDoc = `{"data":{"financials":[{"nature":"STANDALONE","pnl":{"lineItems":{"net_revenue":60000000,"profit_before_interest_and_tax":5000000,"depreciation":1000000,"interest":2000000}},"bs":{"lineItems":{"longTermBorrowings":1000000,"shortTermBorrowings":500000}}}]}}`

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"evaluate", "batch", "serve"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "underwrite", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestEvaluateCommand_Flags(t *testing.T) {
	flag := evaluateCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "evaluate command should have --format flag")
	assert.Equal(t, "", flag.DefValue)

	detail := evaluateCmd.Flags().Lookup("detail")
	require.NotNil(t, detail, "evaluate command should have --detail flag")
	assert.Equal(t, "false", detail.DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"format", "output", "concurrency", "fail-fast"} {
		assert.NotNil(t, batchCmd.Flags().Lookup(name), "batch should have --%s flag", name)
	}
	assert.Equal(t, "0", batchCmd.Flags().Lookup("concurrency").DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestEvaluateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0644))

	a, err := evaluateFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, a.Flags, 3)
}

func TestEvaluateFile_Missing(t *testing.T) {
	_, err := evaluateFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestWriteBatchOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.csv")
	outcomes := []batch.Outcome{{Path: "a.json", Err: assert.AnError}}

	var stdout bytes.Buffer
	require.NoError(t, writeBatchOutput(&stdout, path, report.CSV, outcomes))
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.json,error")
}

func TestWriteBatchOutput_Stdout(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, writeBatchOutput(&stdout, "", report.Table, nil))
	assert.Contains(t, stdout.String(), "0 documents")
}

func TestResolveFormat(t *testing.T) {
	useConfig(t, "yaml")

	f, err := resolveFormat(evaluateCmd)
	require.NoError(t, err)
	assert.Equal(t, report.YAML, f)
}
