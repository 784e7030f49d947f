package http

import (
	"context"
	"io"

	"apbdcli/internal/services"
	"apbdcli/pkg/contracts/domain"
)

// AnalysisServiceInterface defines the interface for analysis operations
type AnalysisServiceInterface interface {
	AnalyzeUpload(ctx context.Context, r io.Reader, opts services.AnalyzeOptions) (*domain.AnalysisReport, error)
	GetRun(ctx context.Context, id string) (*domain.AnalysisReport, error)
	ExportAggregateCSV(ctx context.Context, id string, sep rune) ([]byte, string, error)
}
