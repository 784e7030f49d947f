package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"apbdcli/internal/config"
	"apbdcli/internal/infrastructure"
	"apbdcli/internal/security"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	buildID   string
	paths     *config.Paths
	narrative config.NarrativeConfig
	keys      *security.KeyStore
	runs      *RunStore
	collector *infrastructure.SystemMetricsCollector
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NarrativeStatus reports the state of the optional AI summary add-on.
type NarrativeStatus struct {
	Enabled    bool   `json:"enabled"`
	Model      string `json:"model"`
	KeyPresent bool   `json:"key_present"`
	Status     string `json:"status"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TotalFiles     int     `json:"total_files"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	CachedRuns     int     `json:"cached_runs"`
	GoVersion      string  `json:"go_version"`
	OS             string  `json:"os"`
	Arch           string  `json:"arch"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, paths *config.Paths, narrativeCfg config.NarrativeConfig, keys *security.KeyStore, runs *RunStore, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, narrativeCfg, keys, runs, collector, logger)
}

// NewHealthServiceWithBuildInfo creates a new health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, buildID string, paths *config.Paths, narrativeCfg config.NarrativeConfig, keys *security.KeyStore, runs *RunStore, collector *infrastructure.SystemMetricsCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID),
		slog.Bool("narrative_enabled", narrativeCfg.Enabled))

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		buildID:   buildID,
		paths:     paths,
		narrative: narrativeCfg,
		keys:      keys,
		runs:      runs,
		collector: collector,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth()
	status.Services["run_cache"] = hs.checkRunCacheHealth()
	status.Services["narrative"] = hs.checkNarrativeHealth()

	allReady := true
	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			allReady = false
			break
		}
	}

	if !allReady {
		status.Status = "not_ready"
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// NarrativeStatus returns the narrative add-on state
func (hs *HealthService) NarrativeStatus(ctx context.Context) NarrativeStatus {
	status := NarrativeStatus{
		Enabled:    hs.narrative.Enabled,
		Model:      hs.narrative.Model,
		KeyPresent: hs.narrativeKeyPresent(),
	}

	switch {
	case !status.Enabled:
		status.Status = "disabled"
	case status.KeyPresent:
		status.Status = "ready"
	default:
		status.Status = "missing_key"
	}

	return status
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	var totalFiles int
	var totalSize int64

	filepath.Walk(hs.paths.DataDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalFiles++
			totalSize += info.Size()
		}
		return nil
	})

	stats := SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		TotalFiles:     totalFiles,
		TotalSizeBytes: totalSize,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
	if hs.runs != nil {
		stats.CachedRuns = hs.runs.Len()
	}

	return stats, nil
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	stats, _ := hs.SystemStats(ctx)

	detail := map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"narrative": hs.NarrativeStatus(ctx),
		"stats":     stats,
	}

	if hs.collector != nil {
		if sys := hs.collector.GetCurrentStats(ctx); sys != nil {
			detail["system"] = sys.FormatStats()
		}
	}

	return detail
}

// checkDataHealth checks that the data directories exist and are writable
func (hs *HealthService) checkDataHealth() ServiceHealth {
	dataDir := hs.paths.DataDir
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("data directory not found: %s", dataDir),
		}
	}

	probe := filepath.Join(dataDir, ".writecheck")
	if err := os.MkdirAll(probe, 0755); err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("cannot write to data directory: %v", err),
		}
	}
	os.Remove(probe)

	return ServiceHealth{
		Status:  "ready",
		Message: "data directories are healthy",
	}
}

// checkRunCacheHealth checks the run cache
func (hs *HealthService) checkRunCacheHealth() ServiceHealth {
	if hs.runs == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "run cache not initialized",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d cached runs", hs.runs.Len()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkNarrativeHealth reports the narrative add-on state. The add-on
// degrades to an absent narrative, so it never blocks readiness.
func (hs *HealthService) checkNarrativeHealth() ServiceHealth {
	switch {
	case !hs.narrative.Enabled:
		return ServiceHealth{Status: "ready", Message: "narrative generation disabled"}
	case hs.narrativeKeyPresent():
		return ServiceHealth{Status: "ready", Message: "narrative key available"}
	default:
		return ServiceHealth{Status: "ready", Message: "narrative enabled but no API key found"}
	}
}

// narrativeKeyPresent checks the environment-backed config first, then the
// encrypted store.
func (hs *HealthService) narrativeKeyPresent() bool {
	if hs.narrative.APIKey != "" {
		return true
	}
	if hs.keys == nil {
		return false
	}
	present, _ := hs.keys.Stats()["key_present"].(bool)
	return present
}
