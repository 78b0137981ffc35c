package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrShipmentNotFound = errors.New("shipment not found")
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrTemporary        = errors.New("temporary failure")
)

// AnalysisFailedMessage is the single user-facing text shown when an upload
// could not be analyzed, whatever the underlying cause.
const AnalysisFailedMessage = "Failed to analyze document. The content might be invalid or the service is unavailable. Please try again."

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
