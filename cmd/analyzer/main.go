package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"apbdcli/internal/config"
	"apbdcli/internal/exporter"
	"apbdcli/internal/files"
	"apbdcli/internal/infrastructure"
	"apbdcli/internal/narrative"
	"apbdcli/internal/security"
	"apbdcli/internal/services"
	"apbdcli/pkg/contracts"
	"apbdcli/pkg/contracts/domain"
)

// batchConcurrency bounds the worker count in directory mode. Workbook
// parsing is CPU and allocation heavy, so more workers than this just
// thrash the garbage collector.
const batchConcurrency = 4

// combinedRatioFile collects one wide ratio row per workbook in batch mode.
const combinedRatioFile = "apbd_ratios_combined.csv"

func main() {
	inFile := flag.String("in", "", "one APBD workbook (.xlsx) to analyze")
	inDir := flag.String("dir", "", "directory of workbooks to analyze in batch")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	withNarrative := flag.Bool("narrative", false, "generate the plain-language narrative (requires a Gemini API key)")
	topN := flag.Int("top", 0, "largest categories fed to the narrative (0 uses the configured default)")
	templatePath := flag.String("template", "", "write the blank upload template to this path and exit")
	strict := flag.Bool("strict", false, "batch mode: stop at the first workbook that fails")
	saveKey := flag.String("save-key", "", "encrypt and store a Gemini API key for narrative generation, then exit")
	deleteKey := flag.Bool("delete-key", false, "remove the stored Gemini API key and exit")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	if *templatePath != "" {
		if err := exporter.WriteTemplate(*templatePath); err != nil {
			slog.Error("Failed to write template", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Template tersimpan: %s\n", *templatePath)
		return
	}

	if *saveKey != "" || *deleteKey {
		os.Exit(runKeyCommand(*saveKey, *deleteKey))
	}

	if (*inFile == "") == (*inDir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -in or -dir is required")
		flag.Usage()
		os.Exit(2)
	}

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if *outDir == "" {
		*outDir = paths.ReportsDir
	}
	// The exporter resolves bare relative paths into the reports
	// directory, so a user-supplied -out must be made absolute before it
	// reaches the writers.
	*outDir, err = filepath.Abs(*outDir)
	if err != nil {
		slog.Error("Failed to resolve output directory", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		slog.Error("Failed to create output directory", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting APBD analysis",
		slog.String("input_file", *inFile),
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.Bool("narrative", *withNarrative))

	ctx := context.Background()

	narrator := buildNarrator(ctx, cfg, paths, *withNarrative, logger)
	if closer, ok := narrator.(*narrative.GeminiNarrator); ok {
		defer closer.Close()
	}

	runs := services.NewRunStore(cfg.Analysis.RunTTL, cfg.Analysis.RunCapacity, nil, logger)
	service := services.NewAnalysisService(cfg, runs, narrator, nil, logger)

	opts := services.AnalyzeOptions{
		Narrative: *withNarrative && narrator != nil,
		TopN:      *topN,
	}

	ratioExp := exporter.NewRatioExporter(paths)
	aggExp := exporter.NewAggregateExporter(paths)

	if *inFile != "" {
		report, err := analyzeOne(ctx, service, ratioExp, aggExp, *inFile, *outDir, opts)
		if err != nil {
			logger.Error("Analysis failed",
				slog.String("file", *inFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		printSummary(report)
		fmt.Printf("Laporan tersimpan di %s\n", *outDir)
		return
	}

	if err := runBatch(ctx, service, ratioExp, aggExp, *inDir, *outDir, opts, *strict, logger); err != nil {
		slog.Error("Batch analysis failed", "error", err)
		os.Exit(1)
	}
}

// runKeyCommand stores or removes the encrypted Gemini API key and
// returns the process exit code.
func runKeyCommand(saveKey string, deleteKey bool) int {
	ctx := context.Background()

	paths, err := config.GetPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize paths: %v\n", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create required directories: %v\n", err)
		return 1
	}

	keys := security.NewKeyStore(paths.CredentialsFile, slog.Default())

	if deleteKey {
		if err := keys.Delete(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete API key: %v\n", err)
			return 1
		}
		fmt.Println("Kunci API dihapus.")
		return 0
	}

	if err := keys.Save(ctx, saveKey); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store API key: %v\n", err)
		return 1
	}
	fmt.Printf("Kunci API tersimpan terenkripsi di %s\n", paths.CredentialsFile)
	return 0
}

// buildNarrator wires the Gemini backend when -narrative is set. Any
// failure degrades to a nil narrator with a warning so the ratio and
// category outputs are still produced.
func buildNarrator(ctx context.Context, cfg *config.Config, paths *config.Paths, requested bool, logger *slog.Logger) narrative.Narrator {
	if !requested {
		return nil
	}

	key := cfg.Narrative.APIKey
	if key == "" {
		keys := security.NewKeyStore(paths.CredentialsFile, logger)
		resolved, err := keys.ResolveAPIKey(ctx)
		if err != nil {
			logger.Warn("Narrative requested but no API key is available, continuing without it",
				slog.String("error", err.Error()))
			return nil
		}
		key = resolved
	}

	narrator, err := narrative.NewGeminiNarrator(ctx, key, cfg.Narrative.Model, logger)
	if err != nil {
		logger.Warn("Narrative backend unavailable, continuing without it",
			slog.String("error", err.Error()))
		return nil
	}
	return narrator
}

// analyzeOne runs the full pipeline for one workbook and writes its
// three reports into outDir: <name>_ratios.csv, <name>_categories.csv
// and <name>_insights.txt.
func analyzeOne(ctx context.Context, service *services.AnalysisService, ratioExp *exporter.RatioExporter, aggExp *exporter.AggregateExporter, path, outDir string, opts services.AnalyzeOptions) (*domain.AnalysisReport, error) {
	report, err := service.AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if err := ratioExp.ExportRatios(report.Ratios, filepath.Join(outDir, base+"_ratios.csv")); err != nil {
		return nil, err
	}
	if err := aggExp.Export(report.Aggregates, filepath.Join(outDir, base+"_categories.csv")); err != nil {
		return nil, err
	}
	if err := ratioExp.ExportInsights(report, filepath.Join(outDir, base+"_insights.txt")); err != nil {
		return nil, err
	}

	return report, nil
}

// runBatch analyzes every workbook in inDir with a bounded worker pool
// and writes one combined wide-ratio CSV on top of the per-file reports.
// Failed workbooks are logged and skipped unless strict is set.
func runBatch(ctx context.Context, service *services.AnalysisService, ratioExp *exporter.RatioExporter, aggExp *exporter.AggregateExporter, inDir, outDir string, opts services.AnalyzeOptions, strict bool, logger *slog.Logger) error {
	books, err := files.DiscoverWorkbooks(inDir)
	if err != nil {
		return fmt.Errorf("scan input directory: %w", err)
	}

	logger.Info("Workbooks discovered", slog.Int("count", len(books)))
	fmt.Printf("Ditemukan %d berkas .xlsx\n", len(books))

	if len(books) == 0 {
		logger.Warn("No workbooks found in input directory",
			slog.String("input_dir", inDir),
			slog.String("pattern", "*.xlsx"))
		return nil
	}

	var (
		mu      sync.Mutex
		reports []*domain.AnalysisReport
		failed  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, book := range books {
		g.Go(func() error {
			fmt.Printf("Memproses berkas %d dari %d: %s\n", i+1, len(books), book.Name)

			report, err := analyzeOne(gctx, service, ratioExp, aggExp, book.Path, outDir, opts)
			if err != nil {
				logger.Error("Workbook failed",
					slog.String("file", book.Path),
					slog.String("error", err.Error()))
				if strict {
					return fmt.Errorf("analyze %s: %w", book.Name, err)
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Deterministic combined output regardless of worker completion order
	sort.Slice(reports, func(i, j int) bool { return reports[i].Source < reports[j].Source })

	if len(reports) > 0 {
		batch, err := ratioExp.CreateBatchWriter(filepath.Join(outDir, combinedRatioFile))
		if err != nil {
			return err
		}
		for _, report := range reports {
			if err := batch.WriteRun(report.Source, report.Ratios); err != nil {
				batch.Close()
				return err
			}
		}
		if err := batch.Close(); err != nil {
			return err
		}
		logger.Info("Combined ratio CSV written",
			slog.String("file", filepath.Join(outDir, combinedRatioFile)),
			slog.Int("runs", len(reports)))
	}

	fmt.Printf("Selesai: %d berhasil, %d gagal\n", len(reports), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d workbooks failed", failed, len(books))
	}
	return nil
}

// printSummary prints the single-file result table to stdout.
func printSummary(report *domain.AnalysisReport) {
	fmt.Printf("\n%s\n", report.Source)
	fmt.Println(strings.Repeat("=", len(report.Source)))
	fmt.Printf("Baris data: %d (terklasifikasi: %d)\n\n", report.RowCount, report.ClassifiedCount)

	fmt.Println("RASIO KEUANGAN")
	fmt.Println("--------------")
	for _, name := range domain.RatioOrder {
		fmt.Printf("%-48s %s\n", string(name), report.Ratios.Get(name).String())
	}

	if len(report.Insights) > 0 {
		fmt.Println("\nINTERPRETASI")
		fmt.Println("------------")
		for i, ins := range report.Insights {
			fmt.Printf("%2d. [%s] %s\n", i+1, ins.Severity, ins.Text)
		}
	}

	if report.Narrative != "" {
		fmt.Println("\nNARASI")
		fmt.Println("------")
		fmt.Println(report.Narrative)
	}
	fmt.Println()
}
