package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"apbdcli/internal/config"
	"apbdcli/pkg/contracts/domain"
)

// AggregateFileName is the default filename for the per-category export.
const AggregateFileName = "apbd_aggregated.csv"

// AggregateExporter handles the per-category aggregate report
type AggregateExporter struct {
	csvWriter *CSVWriter
}

// NewAggregateExporter creates a new aggregate report exporter
func NewAggregateExporter(paths *config.Paths) *AggregateExporter {
	return &AggregateExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// Export writes the aggregate table to a CSV file. An empty filePath
// falls back to AggregateFileName in the reports directory. Rows are
// written in the order given, which callers build in canonical
// category order.
func (a *AggregateExporter) Export(rows []domain.AggregateRow, filePath string) error {
	if filePath == "" {
		filePath = AggregateFileName
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, aggregateRecord(row))
	}

	if err := a.csvWriter.WriteSimpleCSV(filePath, aggregateHeaders(), records); err != nil {
		return fmt.Errorf("failed to write aggregate report: %w", err)
	}
	return nil
}

// RenderAggregate renders the aggregate table to an in-memory CSV
// payload for HTTP downloads. Layout matches Export, BOM included.
func RenderAggregate(rows []domain.AggregateRow) ([]byte, error) {
	return RenderAggregateSep(rows, ',')
}

// RenderAggregateSep renders the aggregate table with the given field
// separator. Excel under Indonesian regional settings reads semicolon
// separated CSV, comma being the decimal mark there.
func RenderAggregateSep(rows []domain.AggregateRow, comma rune) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(&buf)
	writer.Comma = comma
	if err := writer.Write(aggregateHeaders()); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(aggregateRecord(row)); err != nil {
			return nil, fmt.Errorf("failed to write record for %s: %w", row.Category, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("csv writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// aggregateHeaders returns the CSV headers for the aggregate table.
// The _sum suffixes are part of the download contract.
func aggregateHeaders() []string {
	return []string{"Kategori", "Anggaran_sum", "Realisasi_sum"}
}

// aggregateRecord converts an aggregate row to a CSV row
func aggregateRecord(row domain.AggregateRow) []string {
	return []string{
		string(row.Category),
		formatAmount(row.Budget),
		formatAmount(row.Actual),
	}
}
