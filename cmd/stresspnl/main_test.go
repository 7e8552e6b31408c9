package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/giuliam-97/Stress-Test/internal/exporter"
	"github.com/giuliam-97/Stress-Test/internal/shared/testutil"
	"github.com/giuliam-97/Stress-Test/pkg/contracts"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stress.xlsx")
	require.NoError(t, os.WriteFile(path, testutil.StressWorkbook(t), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := run(t, "summary", "--file", writeWorkbook(t), "--mode", "totals", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "# stress.xlsx")
	assert.Contains(t, out, "Sheets: 3 parsed of 3")
	assert.Contains(t, out, "| Portfolios | FUND1, FUND2 |")
	assert.Contains(t, out, "| Dates | 2024-01-31 |")
}

func TestSummaryCommand_Styled(t *testing.T) {
	out, err := run(t, "summary", "--file", writeWorkbook(t), "--mode", "totals")
	require.NoError(t, err)
	assert.Contains(t, out, "FUND1")
}

func TestAggregateCommand(t *testing.T) {
	path := writeWorkbook(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "everything",
			args: nil,
			want: []string{"| 2024-01-31 | FUND1 | BASE |", "-200.00", "| 2024-01-31 | FUND2 | BASE |"},
		},
		{
			name:    "one portfolio",
			args:    []string{"--portfolio", "FUND2"},
			want:    []string{"FUND2"},
			notWant: []string{"FUND1"},
		},
		{
			name: "date outside the workbook",
			args: []string{"--date", "2023-12-29"},
			want: []string{"No data for the current selection."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"aggregate", "--file", path, "--mode", "totals", "--plain"}, tt.args...)
			out, err := run(t, args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestAggregateCommand_CSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")
	out, err := run(t, "aggregate", "--file", writeWorkbook(t), "--mode", "totals", "--csv", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+csvPath)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Portfolio")
}

func TestAggregateCommand_BadDate(t *testing.T) {
	_, err := run(t, "aggregate", "--file", writeWorkbook(t), "--date", "31/01/2024")
	assert.Error(t, err)
}

func TestPeersCommand(t *testing.T) {
	path := writeWorkbook(t)

	t.Run("std", func(t *testing.T) {
		out, err := run(t, "peers", "--file", path, "--mode", "totals", "--plain", "--analysis", "FUND1", "--peers", "FUND2")
		require.NoError(t, err)
		assert.Contains(t, out, "# FUND1 vs peers")
		assert.Contains(t, out, "| BASE | -50.00 | 1 | -30.00 | - | - |")
	})

	t.Run("nothing to show", func(t *testing.T) {
		out, err := run(t, "peers", "--file", path, "--mode", "totals", "--plain", "--analysis", "FUND1")
		require.NoError(t, err)
		assert.Contains(t, out, "Nothing to show")
	})

	t.Run("xlsx", func(t *testing.T) {
		xlsxPath := filepath.Join(t.TempDir(), "peers.xlsx")
		_, err := run(t, "peers", "--file", path, "--mode", "totals", "--analysis", "FUND1", "--peers", "FUND2", "--dispersion", "quartile", "--xlsx", xlsxPath)
		require.NoError(t, err)

		f, err := excelize.OpenFile(xlsxPath)
		require.NoError(t, err)
		defer f.Close()
		assert.NotEmpty(t, f.GetSheetList())
	})

	t.Run("bad dispersion", func(t *testing.T) {
		_, err := run(t, "peers", "--file", path, "--analysis", "FUND1", "--dispersion", "mad")
		assert.Error(t, err)
	})
}

func TestExportCommand(t *testing.T) {
	path := writeWorkbook(t)

	t.Run("all portfolios", func(t *testing.T) {
		outDir := t.TempDir()
		_, err := run(t, "export", "--file", path, "--mode", "totals", "--out", outDir)
		require.NoError(t, err)

		for _, name := range []string{"FUND1.xlsx", "FUND2.xlsx", "combined_portfolios.xlsx"} {
			assert.FileExists(t, filepath.Join(outDir, name))
		}
	})

	t.Run("single portfolio has no combined workbook", func(t *testing.T) {
		outDir := t.TempDir()
		_, err := run(t, "export", "--file", path, "--mode", "totals", "--out", outDir, "--portfolio", "FUND2")
		require.NoError(t, err)

		assert.FileExists(t, filepath.Join(outDir, "FUND2.xlsx"))
		assert.NoFileExists(t, filepath.Join(outDir, "combined_portfolios.xlsx"))
	})

	t.Run("nothing selected", func(t *testing.T) {
		_, err := run(t, "export", "--file", path, "--mode", "totals", "--out", t.TempDir(), "--scenario", "NONE")
		assert.ErrorIs(t, err, exporter.ErrNothingToExport)
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file flag", []string{"summary"}},
		{"unknown mode", []string{"summary", "--file", "x.xlsx", "--mode", "weekly"}},
		{"file does not exist", []string{"summary", "--file", filepath.Join(t.TempDir(), "missing.xlsx")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, contracts.Version+"\n", out)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())
}
