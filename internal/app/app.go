package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"apbdcli/internal/config"
	apierrors "apbdcli/internal/errors"
	"apbdcli/internal/infrastructure"
	customMiddleware "apbdcli/internal/middleware"
	"apbdcli/internal/narrative"
	"apbdcli/internal/security"
	"apbdcli/internal/services"
	handlers "apbdcli/internal/transport/http"
	"apbdcli/pkg/contracts"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Deterministic within a day for a given version
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Paths           *config.Paths
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	RunStore        *services.RunStore
	KeyStore        *security.KeyStore
	Narrator        narrative.Narrator
	Metrics         *infrastructure.AnalysisMetrics
	SystemCollector *infrastructure.SystemMetricsCollector
	OTelProviders   *infrastructure.OTelProviders
	Logger          *slog.Logger

	// DisableBrowser suppresses the automatic dashboard launch for
	// headless deployments.
	DisableBrowser bool

	workerCancel context.CancelFunc
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Single infrastructure logger shared by every component
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	// Resolve and prepare all filesystem paths before anything touches disk
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	paths.LogPathResolution()

	// Initialize OpenTelemetry
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	// Initialize services in order
	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Setup router
	app.setupRouter()

	// Create HTTP server
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	metrics, err := infrastructure.CreateAnalysisMetrics(a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create analysis metrics: %w", err)
	}
	a.Metrics = metrics

	collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 15*time.Second)
	if err != nil {
		return fmt.Errorf("failed to create system metrics collector: %w", err)
	}
	a.SystemCollector = collector

	// In-memory cache of finished analysis runs, keyed by run ID
	a.RunStore = services.NewRunStore(
		a.Config.Analysis.RunTTL,
		a.Config.Analysis.RunCapacity,
		metrics,
		a.Logger,
	)

	// Encrypted on-disk fallback for the narrative API key
	a.KeyStore = security.NewKeyStore(a.Paths.CredentialsFile, a.Logger)

	narrator, err := a.buildNarrator(context.Background())
	if err != nil {
		// Narrative is optional. A bad key or unreachable backend must
		// not keep the analyzer from serving uploads.
		a.Logger.Warn("Narrative backend unavailable, continuing without it",
			slog.String("error", err.Error()))
	}
	a.Narrator = narrator

	a.AnalysisService = services.NewAnalysisService(a.Config, a.RunStore, a.Narrator, metrics, a.Logger)

	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		BuildTime,
		BuildID,
		a.Paths,
		a.Config.Narrative,
		a.KeyStore,
		a.RunStore,
		collector,
		a.Logger,
	)

	return nil
}

// buildNarrator wires the Gemini client when the feature is enabled and a
// key can be resolved. A nil narrator means the feature stays dark.
func (a *Application) buildNarrator(ctx context.Context) (narrative.Narrator, error) {
	if !a.Config.Narrative.Enabled {
		a.Logger.Info("Narrative generation disabled by configuration")
		return nil, nil
	}

	apiKey := a.Config.Narrative.APIKey
	if apiKey == "" {
		resolved, err := a.KeyStore.ResolveAPIKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve narrative API key: %w", err)
		}
		apiKey = resolved
	}

	narrator, err := narrative.NewGeminiNarrator(ctx, apiKey, a.Config.Narrative.Model, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("create narrator: %w", err)
	}

	a.Logger.Info("Narrative generation enabled",
		slog.String("model", a.Config.Narrative.Model))
	return narrator, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Request identity first so every log line can carry it. CORS sits
	// at the root because preflight OPTIONS requests never match a
	// registered route and would bypass group middleware entirely.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	// The bare liveness probe and the Prometheus scrape endpoint stay
	// outside the middleware group. Probes and scrapers need cheap
	// answers that no rate limiter or timeout can interfere with.
	r.Get(config.LivenessEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"alive"}`))
	})
	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	// Everything else gets the full chain:
	// OTel, structured logging, recovery, headers, rate limiting
	r.Group(func(r chi.Router) {
		otelMw, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Warn("OpenTelemetry middleware unavailable",
				slog.String("error", err.Error()))
		} else {
			r.Use(otelMw.Handler)
			r.Use(customMiddleware.MetricsInjector(otelMw.Metrics()))
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(apierrors.RecoveryMiddleware(errorHandler))

		secureHeaders := customMiddleware.DefaultSecureHeaders()
		secureHeaders.DevMode = a.Config.Logging.Development
		r.Use(secureHeaders.Handler)

		if a.Config.Security.RateLimit.Enabled {
			limiter := customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			)
			r.Use(limiter.Handler)
		}

		a.setupAPIRoutes(r, errorHandler)
		a.setupWebRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes mounts the versioned JSON API.
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
	uploads := security.NewUploadValidator(a.Config.Analysis.MaxUploadBytes, a.Logger)

	analysisHandler := handlers.NewAnalysisHandler(
		a.AnalysisService,
		uploads,
		validation,
		a.Config.Analysis.MaxUploadBytes,
		a.Logger,
		errorHandler,
	)
	templateHandler := handlers.NewTemplateHandler(a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	clientLogHandler := handlers.NewClientLogHandler(validation, a.Logger)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		// Upload parsing and spreadsheet analysis get the long budget
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			r.With(
				customMiddleware.TraceMiddleware("analysis"),
				customMiddleware.ContentTypeValidator("multipart/form-data"),
			).Mount("/analysis", analysisHandler.Routes())
			r.Mount("/template", templateHandler.Routes())
		})

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Get("/narrative/status", healthHandler.NarrativeStatus)
		r.Post("/logs", clientLogHandler.Handle)
	})
}

// setupWebRoutes serves the dashboard and its static assets.
func (a *Application) setupWebRoutes(r chi.Router) {
	r.Route("/static", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		fileServer := http.StripPrefix("/static", http.FileServer(http.Dir(a.Paths.StaticDir)))
		r.Get("/*", fileServer.ServeHTTP)
	})

	r.Get("/", handlers.ServeDashboard(a.Paths.WebDir))
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}

	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		origins = append(origins, a.Config.Security.AllowedOrigins...)
	}
	if a.Config.Logging.Development {
		// Frontend dev servers run on their own port
		origins = append(origins, "http://localhost:3000", "http://127.0.0.1:3000")
	}
	cfg.AllowedOrigins = origins

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins),
		slog.Bool("development", a.Config.Logging.Development))

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", a.Paths.ExecutableDir),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("web_dir", a.Paths.WebDir),
		slog.String("logs_dir", a.Paths.LogsDir))

	// Background workers live on their own context so request contexts
	// never own them.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	a.workerCancel = workerCancel

	go a.runSweeper(workerCtx)
	go a.SystemCollector.Start(workerCtx)

	// Start server
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	// Perform health check on critical paths
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	if !a.DisableBrowser {
		go a.openBrowserWhenReady(ctx)
	}

	return nil
}

// runSweeper evicts expired analysis runs on a fixed cadence so memory
// held by abandoned uploads is reclaimed even when nobody asks again.
func (a *Application) runSweeper(ctx context.Context) {
	interval := a.Config.Analysis.RunTTL / 3
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.RunStore.Sweep(ctx); n > 0 {
				a.Logger.Debug("Expired analysis runs evicted", slog.Int("count", n))
			}
		}
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Stop server
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Stop background workers
	if a.workerCancel != nil {
		a.workerCancel()
	}

	// The Gemini client holds a connection worth closing
	if closer, ok := a.Narrator.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing narrative backend", slog.String("error", err.Error()))
		}
	}

	// Shutdown OpenTelemetry providers
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start application
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	// Wait for interrupt or a fatal server error
	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Shutdown requested")
	}

	// Graceful shutdown on a fresh context; the run context may
	// already be cancelled.
	return a.Stop(context.Background())
}

// performStartupHealthCheck performs health checks on critical paths and resources
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	// Check critical directories are writable
	directories := map[string]string{
		"Data":    a.Paths.DataDir,
		"Uploads": a.Paths.UploadsDir,
		"Reports": a.Paths.ReportsDir,
		"Logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		// Try to create a test file to verify write access
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	// Check web directory exists and has content
	if !config.FileExists(a.Paths.WebDir) {
		warnings = append(warnings, fmt.Sprintf("Web directory not found: %s", a.Paths.WebDir))
	}

	// Missing credentials only matter when the narrative feature is on
	if !config.FileExists(a.Paths.CredentialsFile) {
		a.Logger.InfoContext(ctx, "Credentials file not found, narrative key must come from the environment",
			slog.String("path", a.Paths.CredentialsFile))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}

// openBrowserWhenReady waits for the health endpoint to answer and then
// opens the local dashboard, the way analysts usually launch the tool.
func (a *Application) openBrowserWhenReady(ctx context.Context) {
	url := fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
	healthURL := url + config.HealthEndpoint

	for attempt := 0; attempt < 10; attempt++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := http.Get(healthURL)
		if err == nil {
			ready := resp.StatusCode == http.StatusOK
			resp.Body.Close()
			if ready {
				if err := openBrowser(url); err != nil {
					a.Logger.Warn("Could not open browser",
						slog.String("error", err.Error()),
						slog.String("url", url))
					fmt.Printf("\n%s berjalan di %s\n\n", config.AppName, url)
				}
				return
			}
		}

		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.Warn("Server did not become ready for browser opening", slog.String("url", url))
}

// openBrowser opens the default browser to the specified URL
func openBrowser(url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(url) {
		cmd := exec.Command(method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		// Reap in the background
		go cmd.Wait()
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	cmd  string
	args []string
}

// getBrowserOpenMethods returns platform-specific browser opening methods
func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{cmd: "cmd", args: []string{"/c", "start", "", url}},
			{cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
		}
	case "darwin":
		return []browserMethod{
			{cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{cmd: "xdg-open", args: []string{url}},
			{cmd: "sensible-browser", args: []string{url}},
		}
	}
}
