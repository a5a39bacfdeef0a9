// Package ocr turns a check scan (image or PDF) into the plain text stream the
// field extractors work on.
//
// Two backends implement the TextExtractor contract:
//   - TesseractExtractor shells out to the tesseract binary; PDF input is
//     rasterized page by page with pdftoppm and each page is OCR'd
//     independently.
//   - VisionExtractor sends the file to the Google Cloud Vision API.
//
// Both backends concatenate multi-page output in page order with a separating
// newline, so downstream pattern matching sees one contiguous document.
package ocr

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// TextExtractor is the contract for OCR backends: file path in, recognized
// text out.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (*Result, error)
}

// Result contains the recognized text with processing metadata.
type Result struct {
	// Text is the recognized text from all pages, concatenated in page order.
	Text string `json:"text"`

	// Pages is the number of pages that were processed.
	Pages int `json:"pages"`

	// Method identifies how the text was produced ("image-ocr", "pdf-ocr", "vision").
	Method string `json:"method"`

	// ProcessedAt is the timestamp when OCR processing completed.
	ProcessedAt time.Time `json:"processed_at"`

	// Duration is how long the OCR processing took.
	Duration time.Duration `json:"duration"`

	// Warnings holds non-fatal per-page problems (a page that failed to OCR,
	// binary stderr noise) that did not prevent a usable result.
	Warnings []string `json:"warnings,omitempty"`
}

// Format is the resolved document format of an input file.
type Format int

const (
	FormatUnknown Format = iota
	FormatImage
	FormatPDF
)

// imageExts is the accepted set of raster image extensions.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
}

// DetectFormat resolves the document format from the path extension.
// It returns ErrUnsupportedFormat for anything that is neither a known
// image type nor a PDF.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return FormatPDF, nil
	case imageExts[ext]:
		return FormatImage, nil
	default:
		return FormatUnknown, NewError("DetectFormat", ErrUnsupportedFormat, ext)
	}
}

// SupportedFile reports whether the path has an extension this package can
// process. Used by callers that scan directories.
func SupportedFile(path string) bool {
	_, err := DetectFormat(path)
	return err == nil
}
