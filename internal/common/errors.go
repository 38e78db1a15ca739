package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Sentinel errors. The extraction pipeline discriminates on these with
// errors.Is: preprocessing and OCR failures degrade to low-confidence results
// at the single-region boundary, AI parse failures trigger the OCR fallback,
// AI network/model failures propagate to the caller.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrImagePreprocessing = errors.New("image preprocessing failed")
	ErrOCREngine          = errors.New("ocr engine failed")
	ErrAIExtraction       = errors.New("ai extraction failed")
	ErrAIParse            = errors.New("ai response parse failed")
	ErrAIDisabled         = errors.New("ai extraction not configured")
	ErrBulkBusy           = errors.New("bulk extraction already running")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
