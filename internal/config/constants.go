package config

import "time"

// Application constants - all hardcoded values for the APBD Insight system
const (
	// Application Info
	AppName    = "APBD Insight"
	AppVersion = "1.0.0"

	// Upload Constraints
	UploadFieldName    = "file"
	UploadExtension    = ".xlsx"
	DefaultUploadLimit = 20 * 1024 * 1024 // 20MB

	// Analysis Defaults
	DefaultPreviewRows   = 20
	DefaultNarrativeTopN = 5
	DefaultRunTTL        = 15 * time.Minute
	DefaultRunCapacity   = 128

	// Rate Limiting
	DefaultRateLimit = 10 // requests per second
	DefaultBurstSize = 20

	// Network Timeouts
	DefaultHTTPTimeout      = 30 * time.Second
	NarrativeTimeout        = 20 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultOperationTimeout = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"
	DefaultUploadsDir = "data/uploads"
	DefaultReportsDir = "data/reports"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	MaxLogFileSize   = 100 * 1024 * 1024 // 100MB

	// API Endpoints (internal)
	APIBasePath      = "/api/v1"
	AnalysisEndpoint = "/api/v1/analysis"
	TemplateEndpoint = "/api/v1/template"
	HealthEndpoint   = "/api/v1/health"
	LivenessEndpoint = "/healthz"
	MetricsEndpoint  = "/metrics"

	// Error Messages
	ErrUploadTooLarge   = "File melebihi batas unggah. Maksimum 20MB."
	ErrUploadNotXLSX    = "Format file tidak didukung. Gunakan file Excel (.xlsx) atau download template."
	ErrMissingColumns   = "Tidak menemukan kolom Anggaran / Realisasi secara otomatis. Pastikan file memiliki kolom angka atau gunakan template."
	ErrRunNotFound      = "Hasil analisis tidak ditemukan atau sudah kedaluwarsa."
	ErrWorkbookEmpty    = "File Excel tidak memiliki data yang dapat dibaca."
	ErrNarrativeOffline = "Narasi AI tidak tersedia saat ini."

	// Success Messages
	MsgUploadTemplate = "Silakan upload file Excel dahulu atau download template."
	MsgAnalysisDone   = "Analisis selesai."
)
