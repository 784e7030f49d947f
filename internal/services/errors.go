package services

import (
	apierrors "apbdcli/internal/errors"
)

// Service-level sentinel errors. The boundary sentinels are aliased here so
// errors.Is matches regardless of which package a caller imports.
var (
	// Run cache errors
	ErrRunNotFound   = apierrors.ErrAnalysisRunNotFound
	ErrWorkbookEmpty = apierrors.ErrWorkbookEmpty

	// Upload errors
	ErrUploadTooLarge = apierrors.ErrUploadTooLarge
	ErrUploadNotXLSX  = apierrors.ErrUploadNotXLSX

	// Narrative errors
	ErrNarrativeDisabled    = apierrors.ErrNarrativeDisabled
	ErrNarrativeUnavailable = apierrors.ErrNarrativeUnavailable
)
