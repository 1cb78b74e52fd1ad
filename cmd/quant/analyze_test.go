package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romarin-hsieh/investment-dashboard/internal/kinetic"
)

func writeRowSeries(t *testing.T, dir, symbol string, n int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("[")
	start := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		c := 100 + 0.1*float64(i)
		fmt.Fprintf(&b, `{"time":%q,"open":%.2f,"high":%.2f,"low":%.2f,"close":%.2f,"volume":1000}`,
			start.AddDate(0, 0, i).Format("2006-01-02"), c, c+1, c-1, c)
	}
	b.WriteString("]")
	require.NoError(t, os.WriteFile(filepath.Join(dir, strings.ToLower(symbol)+".json"), []byte(b.String()), 0644))
}

func TestRunAnalyzeWritesStateArtifact(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeRowSeries(t, dataDir, "AAPL", 60)

	prevData, prevOut := flagData, flagOut
	flagData, flagOut = dataDir, outDir
	t.Cleanup(func() { flagData, flagOut = prevData, prevOut })

	require.NoError(t, runAnalyze(analyzeCmd, []string{"aapl"}))

	runs, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	raw, err := os.ReadFile(filepath.Join(outDir, runs[0].Name(), "analyze_aapl.json"))
	require.NoError(t, err)

	var rows []kinetic.StateRow
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.Len(t, rows, 60)
	assert.Equal(t, 100.0, rows[0].Close)
}

func TestRunAnalyzeMissingSeries(t *testing.T) {
	prevData, prevOut := flagData, flagOut
	flagData, flagOut = t.TempDir(), t.TempDir()
	t.Cleanup(func() { flagData, flagOut = prevData, prevOut })

	assert.Error(t, runAnalyze(analyzeCmd, []string{"NOPE"}))
}
