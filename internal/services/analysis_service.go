package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"apbdcli/internal/config"
	"apbdcli/internal/dataprocessing"
	"apbdcli/internal/exporter"
	"apbdcli/internal/infrastructure"
	"apbdcli/internal/narrative"
	"apbdcli/internal/ratio"
	"apbdcli/pkg/contracts/domain"
)

// AnalyzeOptions carries per-run settings from the caller.
type AnalyzeOptions struct {
	// Source is the display name of the workbook, usually the upload
	// filename. AnalyzeFile fills it from the path when empty.
	Source string
	// Narrative requests the optional plain-language summary.
	Narrative bool
	// TopN bounds the narrative to the N largest categories; zero falls
	// back to the configured default.
	TopN int
}

// AnalysisService runs the full analysis pipeline over one workbook and
// caches the resulting report. The pipeline itself is a pure pass over the
// sheet; this service owns the I/O edges, the run cache, and the optional
// narrative call.
type AnalysisService struct {
	cfg      *config.Config
	runs     *RunStore
	narrator narrative.Narrator
	metrics  *infrastructure.AnalysisMetrics
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service. The narrator may be nil
// when narrative generation is disabled or no API key is available; metrics
// may be nil outside the server.
func NewAnalysisService(cfg *config.Config, runs *RunStore, narrator narrative.Narrator, metrics *infrastructure.AnalysisMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("AnalysisService initialized",
		slog.Int("preview_rows", cfg.Analysis.PreviewRows),
		slog.Bool("narrative_enabled", narrator != nil))

	return &AnalysisService{
		cfg:      cfg,
		runs:     runs,
		narrator: narrator,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}
}

// AnalyzeUpload runs the pipeline over workbook bytes received over HTTP
// and caches the report for later retrieval by ID.
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, opts AnalyzeOptions) (*domain.AnalysisReport, error) {
	start := time.Now()

	sheet, err := dataprocessing.ReadWorkbook(r)
	if err != nil {
		infrastructure.RecordAnalysisRunMetrics(ctx, s.metrics, opts.Source, time.Since(start), false, err)
		if errors.Is(err, dataprocessing.ErrEmptyWorkbook) {
			return nil, fmt.Errorf("read upload %q: %w", opts.Source, ErrWorkbookEmpty)
		}
		// The magic-byte screen upstream admits only ZIP containers, so a
		// failure here means a corrupt or non-Excel archive.
		s.logger.WarnContext(ctx, "upload unreadable",
			slog.String("source", opts.Source),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("read upload %q: %w", opts.Source, ErrUploadNotXLSX)
	}

	return s.analyze(ctx, sheet, opts, start)
}

// AnalyzeFile runs the pipeline over a workbook on disk. This is the CLI
// entry point; read errors keep their original text for terminal output.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, path string, opts AnalyzeOptions) (*domain.AnalysisReport, error) {
	start := time.Now()
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}

	sheet, err := dataprocessing.ReadWorkbookFile(path)
	if err != nil {
		infrastructure.RecordAnalysisRunMetrics(ctx, s.metrics, opts.Source, time.Since(start), false, err)
		if errors.Is(err, dataprocessing.ErrEmptyWorkbook) {
			return nil, fmt.Errorf("read workbook %q: %w", opts.Source, ErrWorkbookEmpty)
		}
		return nil, err
	}

	return s.analyze(ctx, sheet, opts, start)
}

// GetRun returns a cached report by run ID.
func (s *AnalysisService) GetRun(ctx context.Context, id string) (*domain.AnalysisReport, error) {
	report, ok := s.runs.Get(ctx, id)
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	return report, nil
}

// ExportAggregateCSV renders a cached run's per-category table as a
// BOM-prefixed CSV payload plus its download filename. sep selects the
// field separator; zero means comma.
func (s *AnalysisService) ExportAggregateCSV(ctx context.Context, id string, sep rune) ([]byte, string, error) {
	report, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if sep == 0 {
		sep = ','
	}
	payload, err := exporter.RenderAggregateSep(report.Aggregates, sep)
	if err != nil {
		return nil, "", fmt.Errorf("render aggregate for run %q: %w", id, err)
	}
	return payload, exporter.AggregateFileName, nil
}

// analyze is the shared pipeline pass: resolve columns, materialize and
// classify rows, aggregate, compute ratios, interpret, and assemble the
// report. The narrative step runs last and can only widen the report,
// never fail it.
func (s *AnalysisService) analyze(ctx context.Context, sheet *dataprocessing.Sheet, opts AnalyzeOptions, start time.Time) (*domain.AnalysisReport, error) {
	roles, err := dataprocessing.ResolveRoles(sheet.Headers, sheet.Rows)
	if err != nil {
		infrastructure.RecordAnalysisRunMetrics(ctx, s.metrics, opts.Source, time.Since(start), false, err)
		return nil, fmt.Errorf("resolve columns in %q: %w", opts.Source, err)
	}

	items, stats := dataprocessing.BuildItemsWithStats(sheet, roles)
	infrastructure.RecordRowMetrics(ctx, s.metrics, stats.TotalRows, stats.EmptyRows, stats.Classified)
	if stats.Items == 0 {
		err := fmt.Errorf("no data rows in %q: %w", opts.Source, ErrWorkbookEmpty)
		infrastructure.RecordAnalysisRunMetrics(ctx, s.metrics, opts.Source, time.Since(start), false, err)
		return nil, err
	}

	totals := dataprocessing.Aggregate(items)
	operating := dataprocessing.AggregateOperating(items)
	periods := dataprocessing.PeriodPartition(items)

	ratios := ratio.Compute(totals, operating, periods)
	insights := ratio.Interpret(ratios)

	report := &domain.AnalysisReport{
		ID:          uuid.New().String(),
		Source:      opts.Source,
		Sheet:       sheet.Name,
		GeneratedAt: time.Now().UTC(),

		RowCount:        stats.Items,
		ClassifiedCount: stats.Classified,

		Columns: roles.Detected(),
		Preview: dataprocessing.Preview(items, s.cfg.Analysis.PreviewRows),

		Totals:    totals,
		Operating: operating,
		Periods:   periods,

		Ratios:   ratios,
		Insights: insights,

		Aggregates:  dataprocessing.AggregateRows(totals),
		Composition: dataprocessing.BuildComposition(totals),
		Trend:       dataprocessing.TrendPoints(items),
	}

	if opts.Narrative {
		report.Narrative = s.narrate(ctx, report.Aggregates, opts.TopN)
	}

	s.runs.Put(ctx, report)
	infrastructure.RecordAnalysisRunMetrics(ctx, s.metrics, opts.Source, time.Since(start), true, nil)

	s.logger.InfoContext(ctx, "analysis run completed",
		slog.String("run_id", report.ID),
		slog.String("source", report.Source),
		slog.String("sheet", report.Sheet),
		slog.Int("rows", stats.Items),
		slog.Int("classified", stats.Classified),
		slog.Duration("duration", time.Since(start)))

	return report, nil
}

// narrate generates the optional summary under its own timeout. Any
// failure, including a missing narrator, degrades to an empty narrative.
func (s *AnalysisService) narrate(ctx context.Context, rows []domain.AggregateRow, topN int) string {
	if s.narrator == nil {
		s.logger.WarnContext(ctx, "narrative requested but no narrator is configured")
		return ""
	}
	if topN <= 0 {
		topN = s.cfg.Narrative.TopN
	}
	timeout := s.cfg.Narrative.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	nctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := s.narrator.Narrate(nctx, rows, topN)
	infrastructure.RecordNarrativeMetrics(ctx, s.metrics, s.cfg.Narrative.Model, time.Since(start), err == nil)
	if err != nil {
		s.logger.WarnContext(ctx, "narrative generation failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return ""
	}
	return text
}
