// Package api contains API contract definitions for APBD Insight.
// Version v1 represents the current stable API version.
package api

// AnalysisUploadRequest carries the optional multipart form fields that
// accompany a workbook upload. The file itself arrives as the multipart
// part named by config.UploadFieldName; Filename holds its sanitized
// client-supplied name.
type AnalysisUploadRequest struct {
	Filename  string `json:"filename" validate:"required,filename"`
	Narrative bool   `json:"narrative"`
	TopN      int    `json:"top_n" validate:"omitempty,min=1,max=20"`
}

// AnalysisRunRequest identifies a cached analysis run.
type AnalysisRunRequest struct {
	ID string `json:"id" param:"id" validate:"required,uuid4"`
}

// ClientLogRequest represents a log entry shipped from the dashboard page.
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Source  string                 `json:"source,omitempty" validate:"omitempty,max=200"`
}

// HealthCheckRequest represents a health check request.
type HealthCheckRequest struct {
	Verbose bool     `json:"verbose" query:"verbose"`
	Include []string `json:"include" query:"include" validate:"omitempty,dive,oneof=data run_cache narrative system"`
}
