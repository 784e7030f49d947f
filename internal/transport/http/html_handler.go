package http

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ServeDashboard serves the analyzer dashboard page. When the web assets
// are not on disk it falls back to a plain status page so the API is still
// discoverable from a browser.
func ServeDashboard(webDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexPath := filepath.Join(webDir, "index.html")

		if _, err := os.Stat(indexPath); os.IsNotExist(err) {
			serveStatusPage(w, r)
			return
		}

		serveHTML(w, r, indexPath)
	}
}

// serveStatusPage renders a minimal page without scripts so it passes the
// production content security policy untouched.
func serveStatusPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html lang="id">
<head>
    <title>APBD Insight</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; }
        .info { background-color: #d1ecf1; color: #0c5460; }
        .warning { background-color: #fff3cd; color: #856404; }
    </style>
</head>
<body>
    <h1>APBD Insight</h1>
    <div class="status info">
        <strong>Status:</strong> Layanan berjalan
        <br><strong>Waktu:</strong> %s
    </div>
    <div class="status warning">
        Berkas dasbor tidak ditemukan. Gunakan API secara langsung.
    </div>
    <h2>Tautan</h2>
    <ul>
        <li><a href="/api/v1/template">Unduh Template APBD</a></li>
        <li><a href="/api/v1/health">Health Check</a></li>
        <li><a href="/api/v1/version">Version Info</a></li>
        <li><a href="/metrics">Metrics</a></li>
    </ul>
</body>
</html>
	`, time.Now().Format("2006-01-02 15:04:05"))
}

// serveHTML serves an HTML file with proper headers
func serveHTML(w http.ResponseWriter, r *http.Request, filePath string) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	tmpl, err := template.ParseFiles(filePath)
	if err != nil {
		http.Error(w, "Error loading page", http.StatusInternalServerError)
		return
	}

	if err := tmpl.Execute(w, nil); err != nil {
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
}
