package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/giuliam-97/Stress-Test/internal/config"
	"github.com/giuliam-97/Stress-Test/pkg/contracts/domain"
)

// utf8BOM helps Excel recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteAggregatesCSV writes aggregate rows as CSV with columns Date,
// Portfolio, Scenario, Group and Stress PnL, preceded by a UTF-8 BOM
func WriteAggregatesCSV(w io.Writer, rows []domain.AggregateRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	if rows == nil {
		rows = []domain.AggregateRecord{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("failed to write aggregates: %w", err)
	}
	return nil
}

// FileWriter stores exports on disk. Relative names resolve against the
// exports directory.
type FileWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewFileWriter creates a file writer. A nil paths resolves relative names
// against the working directory.
func NewFileWriter(paths *config.Paths, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{paths: paths, logger: logger.With(slog.String("component", "exporter"))}
}

// WriteFile writes data to name and returns the full path
func (w *FileWriter) WriteFile(name string, data []byte) (string, error) {
	fullPath, err := w.prepare(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	w.logger.Info("Export written",
		slog.String("file_path", fullPath),
		slog.Int("bytes", len(data)))
	return fullPath, nil
}

// WriteAggregates writes rows as CSV to name and returns the full path
func (w *FileWriter) WriteAggregates(name string, rows []domain.AggregateRecord) (string, error) {
	fullPath, err := w.prepare(name)
	if err != nil {
		return "", err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteAggregatesCSV(file, rows); err != nil {
		return "", err
	}

	w.logger.Info("Aggregates CSV written",
		slog.String("file_path", fullPath),
		slog.Int("record_count", len(rows)))
	return fullPath, file.Close()
}

// prepare resolves name and makes sure its directory exists
func (w *FileWriter) prepare(name string) (string, error) {
	fullPath := w.resolvePath(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return fullPath, nil
}

// resolvePath resolves a path to the exports directory
func (w *FileWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) || w.paths == nil {
		return name
	}
	return w.paths.GetExportPath(name)
}

// ExportFileName builds a file name for a portfolio export that is safe on
// every platform
func ExportFileName(portfolio, ext string) string {
	return SheetName(portfolio) + ext
}
