package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	WebDir        string
	StaticDir     string
	DataDir       string
	UploadsDir    string
	ReportsDir    string
	LogsDir       string

	// Config files
	CredentialsFile string

	// Well-known report files
	AggregatedCSV string
	TemplateXLSX  string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return PathsFor(filepath.Dir(exe)), nil
}

// PathsFor builds the path layout rooted at the given base directory.
// Directory structure:
//
//	base/
//	  ├── credentials.dat      (encrypted narrative API key)
//	  ├── data/
//	  │   ├── uploads/         (workbooks received over HTTP)
//	  │   └── reports/         (generated CSV and template files)
//	  ├── logs/                (application logs)
//	  └── web/                 (frontend assets)
func PathsFor(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		WebDir:        filepath.Join(baseDir, "web"),
		StaticDir:     filepath.Join(baseDir, "web", "static"),
		UploadsDir:    filepath.Join(dataDir, "uploads"),
		ReportsDir:    reportsDir,
		LogsDir:       filepath.Join(baseDir, "logs"),

		CredentialsFile: filepath.Join(baseDir, "credentials.dat"),

		AggregatedCSV: filepath.Join(reportsDir, "apbd_aggregated.csv"),
		TemplateXLSX:  filepath.Join(reportsDir, "template_apbd.xlsx"),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ReportsDir,
		p.LogsDir,
		p.WebDir,
		p.StaticDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetWebFilePath returns the path to a web file
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// GetUploadPath returns the path for a received workbook
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCredentialsPath returns the path for the encrypted credentials file
func (p *Paths) GetCredentialsPath() string {
	path := p.CredentialsFile
	logger := slog.Default()
	if logger != nil {
		logger.Debug("Credentials path resolved",
			slog.String("path", path),
			slog.Bool("exists", FileExists(path)))
	}
	return path
}

// GetAggregatedCSVPath returns the path for the apbd_aggregated.csv file
func (p *Paths) GetAggregatedCSVPath() string {
	return p.AggregatedCSV
}

// GetTemplateXLSXPath returns the path for the template_apbd.xlsx file
func (p *Paths) GetTemplateXLSXPath() string {
	return p.TemplateXLSX
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("uploads", p.UploadsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
			slog.String("web", p.WebDir),
		),
		slog.Group("config_files",
			slog.String("credentials", p.CredentialsFile),
		),
		slog.Group("report_files",
			slog.String("aggregated_csv", p.AggregatedCSV),
			slog.String("template_xlsx", p.TemplateXLSX),
		))
}
