// Package exporter provides CSV and workbook export functionality for APBD Insight.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// AggregateExporter: Writes the per-category aggregate table
// (apbd_aggregated.csv) for a single analysis run, on disk or rendered
// in memory for HTTP downloads.
//
// RatioExporter: Writes ratio sets and interpretation sentences, plus a
// streaming batch mode that collects one row per workbook on directory runs.
//
// Template builders: BuildTemplate, TemplateBytes and WriteTemplate produce
// the downloadable example workbook with the canonical
// Akun | Anggaran | Realisasi | Persentase | Tahun layout.
//
// Example usage:
//
//	// Export the aggregate table for one run
//	aggExporter := exporter.NewAggregateExporter(paths)
//	err := aggExporter.Export(report.Aggregates, "")
//
//	// Stream combined ratios across a directory run
//	ratioExporter := exporter.NewRatioExporter(paths)
//	batch, err := ratioExporter.CreateBatchWriter("apbd_ratios.csv")
//	for _, run := range runs {
//		err = batch.WriteRun(run.Source, run.Ratios)
//	}
//	err = batch.Close()
package exporter
