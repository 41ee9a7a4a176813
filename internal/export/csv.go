package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/issuetrail/issuetrail/internal/timeline"
)

// CSVExporter writes a timeline to a CSV file, one row per record in
// merged newest-first order.
type CSVExporter struct {
	OutputDir string
}

func NewCSVExporter(outputDir string) *CSVExporter {
	return &CSVExporter{OutputDir: outputDir}
}

// Export writes the envelope and returns the path of the created file.
func (e *CSVExporter) Export(env timeline.Envelope, issueKey string) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(e.OutputDir, exportFilename(issueKey, "csv"))
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(timelineHeader); err != nil {
		return "", err
	}

	for i, record := range env.Merged() {
		if err := writer.Write(recordRow(i+1, record)); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}

	return filename, nil
}
