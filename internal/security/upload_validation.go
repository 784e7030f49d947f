package security

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode"
)

// Threat classifications recorded when an upload is rejected.
const (
	ThreatPathTraversal   = "path_traversal"
	ThreatContentMismatch = "content_mismatch"
	ThreatOversized       = "oversized"
	ThreatMalformedName   = "malformed_filename"
)

// xlsxMagic is the ZIP local file header; every real .xlsx starts with it.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// UploadValidator checks uploaded workbook files before they reach the
// parser. It rejects files whose name or content does not match a real
// Excel workbook and logs every rejection for auditing.
type UploadValidator struct {
	maxSize int64
	logger  *slog.Logger
}

// UploadValidationResult carries the outcome of an upload check.
type UploadValidationResult struct {
	IsValid       bool
	SanitizedName string
	Errors        []string
	Threats       []string
}

// NewUploadValidator creates a validator enforcing the given size limit.
func NewUploadValidator(maxSize int64, logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "upload_validator")),
	}
}

// ValidateWorkbookUpload checks the declared filename, the size and the
// leading bytes of an uploaded file. The header slice needs at least the
// first four bytes of the file.
func (v *UploadValidator) ValidateWorkbookUpload(ctx context.Context, filename string, size int64, header []byte) *UploadValidationResult {
	result := &UploadValidationResult{IsValid: true}

	result.SanitizedName = v.sanitizeFilename(filename, result)

	if !strings.EqualFold(filepath.Ext(result.SanitizedName), ".xlsx") {
		result.IsValid = false
		result.Errors = append(result.Errors, "file extension must be .xlsx")
	}

	if size <= 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, "file is empty")
	} else if v.maxSize > 0 && size > v.maxSize {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("file size %d exceeds limit %d", size, v.maxSize))
		result.Threats = append(result.Threats, ThreatOversized)
	}

	// A renamed CSV or HTML page fails here even with an .xlsx name.
	if size > 0 && !bytes.HasPrefix(header, xlsxMagic) {
		result.IsValid = false
		result.Errors = append(result.Errors, "file content is not a ZIP-based Excel workbook")
		result.Threats = append(result.Threats, ThreatContentMismatch)
	}

	if !result.IsValid || len(result.Threats) > 0 {
		v.logSuspiciousUpload(ctx, filename, size, result)
	}

	return result
}

// sanitizeFilename strips directory components and control characters
// from the client-supplied name.
func (v *UploadValidator) sanitizeFilename(filename string, result *UploadValidationResult) string {
	if strings.Contains(filename, "..") {
		result.Threats = append(result.Threats, ThreatPathTraversal)
	}

	// Browsers on Windows may send full paths; keep the base name only.
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"|?*`, r) {
			continue
		}
		b.WriteRune(r)
	}
	sanitized := strings.TrimSpace(b.String())

	if strings.Trim(sanitized, ".") == "" {
		result.Threats = append(result.Threats, ThreatMalformedName)
		return "upload.xlsx"
	}

	return sanitized
}

func (v *UploadValidator) logSuspiciousUpload(ctx context.Context, filename string, size int64, result *UploadValidationResult) {
	v.logger.WarnContext(ctx, "suspicious upload",
		slog.String("filename", filename),
		slog.Int64("size", size),
		slog.Bool("accepted", result.IsValid),
		slog.Any("errors", result.Errors),
		slog.Any("threats", result.Threats),
	)
}
