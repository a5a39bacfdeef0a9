package ocr

import (
	"errors"
	"fmt"
)

// Common OCR processing errors
var (
	// ErrUnsupportedFormat is returned when the file extension is neither a
	// known image type nor PDF. No OCR is attempted.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoText is returned when OCR completed but produced no usable text.
	// Partial or noisy text is not an error; only an empty result is.
	ErrNoText = errors.New("document contains no readable text")

	// ErrInvalidPDF is returned when the input is not a valid PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrTooManyPages is returned when the PDF exceeds the configured page limit.
	ErrTooManyPages = errors.New("PDF exceeds the configured page limit")

	// ErrOCRFailed is returned when the OCR collaborator itself fails.
	ErrOCRFailed = errors.New("OCR processing failed")

	// ErrMissingCredentials is returned by the Vision backend when no Google
	// Cloud credentials are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
)

// Error wraps OCR failures with the operation that produced them.
type Error struct {
	// Op is the operation that failed (e.g. "ExtractText", "RenderPDF").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates an Error with the specified operation and underlying error.
func NewError(op string, err error, details string) *Error {
	return &Error{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapError wraps an error as an Error if it isn't already one.
func WrapError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *Error
	if errors.As(err, &ocrErr) {
		return err // Already wrapped
	}

	return NewError(op, err, details)
}
