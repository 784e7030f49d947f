package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"apbdcli/internal/config"
	"apbdcli/pkg/contracts/domain"
)

// RatioExporter handles ratio and interpretation exports
type RatioExporter struct {
	csvWriter *CSVWriter
}

// NewRatioExporter creates a new ratio report exporter
func NewRatioExporter(paths *config.Paths) *RatioExporter {
	return &RatioExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportRatios writes the full ratio set in canonical order, one row per
// ratio. Unavailable values are written as "N/A", never as 0.
func (r *RatioExporter) ExportRatios(ratios domain.RatioSet, filePath string) error {
	records := make([][]string, 0, len(domain.RatioOrder))
	for _, name := range domain.RatioOrder {
		records = append(records, []string{string(name), ratios.Get(name).String()})
	}

	if err := r.csvWriter.WriteSimpleCSV(filePath, r.getRatioHeaders(), records); err != nil {
		return fmt.Errorf("failed to write ratio report: %w", err)
	}
	return nil
}

// ExportInsights writes the plain-text analysis summary. Analysts attach
// this file to budget review memos as-is, so it is formatted Indonesian
// text rather than CSV.
func (r *RatioExporter) ExportInsights(report *domain.AnalysisReport, filePath string) error {
	if report == nil {
		return fmt.Errorf("no report to save")
	}

	fullPath := r.csvWriter.resolvePath(filePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create insight file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "APBD Insight - Ringkasan Analisis\n")
	fmt.Fprintf(file, "=================================\n\n")
	fmt.Fprintf(file, "Sumber: %s\n", report.Source)
	fmt.Fprintf(file, "Sheet: %s\n", report.Sheet)
	fmt.Fprintf(file, "Dibuat: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Baris data: %d (terklasifikasi: %d)\n\n", report.RowCount, report.ClassifiedCount)

	fmt.Fprintf(file, "RASIO KEUANGAN\n")
	fmt.Fprintf(file, "--------------\n")
	for _, name := range domain.RatioOrder {
		fmt.Fprintf(file, "%-48s %s\n", string(name), report.Ratios.Get(name).String())
	}
	fmt.Fprintf(file, "\n")

	fmt.Fprintf(file, "INTERPRETASI\n")
	fmt.Fprintf(file, "------------\n")
	if len(report.Insights) == 0 {
		fmt.Fprintf(file, "Tidak ada interpretasi yang dapat dihasilkan dari data ini.\n")
	}
	for i, ins := range report.Insights {
		fmt.Fprintf(file, "%2d. [%s] %s\n", i+1, ins.Severity, ins.Text)
	}

	if report.Narrative != "" {
		fmt.Fprintf(file, "\nNARASI\n")
		fmt.Fprintf(file, "------\n")
		fmt.Fprintf(file, "%s\n", report.Narrative)
	}

	return nil
}

// getRatioHeaders returns the CSV headers for ratio rows
func (r *RatioExporter) getRatioHeaders() []string {
	return []string{"Rasio", "Nilai"}
}

// BatchWriter streams one wide ratio row per analyzed workbook into a
// single combined CSV, for directory runs where the workbook count is
// not known up front.
type BatchWriter struct {
	stream *StreamWriter
}

// CreateBatchWriter opens a streaming combined-ratio CSV. The header row
// is "Sumber" followed by every ratio name in canonical order.
func (r *RatioExporter) CreateBatchWriter(filePath string) (*BatchWriter, error) {
	headers := make([]string, 0, 1+len(domain.RatioOrder))
	headers = append(headers, "Sumber")
	for _, name := range domain.RatioOrder {
		headers = append(headers, string(name))
	}

	stream, err := r.csvWriter.CreateStreamWriter(filePath, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch writer: %w", err)
	}
	return &BatchWriter{stream: stream}, nil
}

// WriteRun appends one workbook's ratio values as a single row.
func (b *BatchWriter) WriteRun(source string, ratios domain.RatioSet) error {
	record := make([]string, 0, 1+len(domain.RatioOrder))
	record = append(record, source)
	for _, name := range domain.RatioOrder {
		record = append(record, ratios.Get(name).String())
	}

	if err := b.stream.WriteRecord(record); err != nil {
		return fmt.Errorf("failed to write run for %s: %w", source, err)
	}
	return nil
}

// Close flushes and closes the underlying stream.
func (b *BatchWriter) Close() error {
	return b.stream.Close()
}
