package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "a.json", sampleDoc)
	writeDoc(t, dir, "b.json", missingBSDoc)
	return dir
}

func TestRunBatch_FailFastWritesReportThenErrors(t *testing.T) {
	useConfig(t, "json")
	batchCmd.SetContext(context.Background())
	dir := batchDir(t)
	outPath := filepath.Join(t.TempDir(), "flags.csv")
	setFlag(t, batchCmd, "format", "csv")
	setFlag(t, batchCmd, "output", outPath)
	setFlag(t, batchCmd, "fail-fast", "true")

	err := runBatch(batchCmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents failed")

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), "ok", "1", "1", "1", ""}, records[1])
	assert.Equal(t, "error", records[2][1])
	assert.Contains(t, records[2][5], "financials[0].bs")
}

func TestRunBatch_FailuresDoNotFailWithoutFailFast(t *testing.T) {
	useConfig(t, "json")
	batchCmd.SetContext(context.Background())
	out := captureOutput(t, batchCmd)
	setFlag(t, batchCmd, "format", "table")

	require.NoError(t, runBatch(batchCmd, []string{batchDir(t)}))
	assert.Contains(t, out.String(), "2 documents: 1 ok, 1 failed")
}

func TestRunBatch_ConcurrencyFlagIsValidated(t *testing.T) {
	useConfig(t, "json")
	batchCmd.SetContext(context.Background())
	setFlag(t, batchCmd, "concurrency", "100")

	err := runBatch(batchCmd, []string{batchDir(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrency")
}

func TestRunBatch_MissingDirectory(t *testing.T) {
	useConfig(t, "json")
	batchCmd.SetContext(context.Background())

	err := runBatch(batchCmd, []string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch: stat")
}
