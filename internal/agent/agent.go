// Package agent wires text acquisition, field extraction, and renaming into
// the single extract-and-rename operation the CLI exposes. Collaborators are
// injected at construction, so tests substitute fakes without touching the
// process environment.
package agent

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"checktool/internal/extract"
	"checktool/internal/logger"
	"checktool/internal/ocr"
	"checktool/internal/rename"
)

// Options carries the agent's collaborators and settings.
type Options struct {
	// OCR acquires text from the check file. Required.
	OCR ocr.TextExtractor

	// Extractor locates the two fields in the recognized text. Required.
	Extractor extract.FieldExtractor

	// OutputDir receives the renamed file. Empty means the source directory.
	OutputDir string
}

// Result is the outcome of one processed check.
type Result struct {
	Fields extract.Fields
	OCR    *ocr.Result
	Plan   *rename.Plan
}

// Agent processes one check document per call: acquire text, extract the
// field pair, rename the file.
type Agent struct {
	ocr       ocr.TextExtractor
	extractor extract.FieldExtractor
	renamer   *rename.Renamer
	outputDir string
	log       zerolog.Logger
}

// New creates an agent from its collaborators.
func New(opts Options) (*Agent, error) {
	if opts.OCR == nil {
		return nil, errors.New("agent: OCR text extractor is required")
	}
	if opts.Extractor == nil {
		return nil, errors.New("agent: field extractor is required")
	}
	return &Agent{
		ocr:       opts.OCR,
		extractor: opts.Extractor,
		renamer:   rename.NewRenamer(),
		outputDir: opts.OutputDir,
		log:       logger.WithComponent("agent"),
	}, nil
}

// Extract acquires the text and returns the extracted field pair without
// touching the file.
func (a *Agent) Extract(ctx context.Context, path string) (extract.Fields, *ocr.Result, error) {
	ocrResult, err := a.ocr.ExtractText(ctx, path)
	if err != nil {
		return extract.Fields{}, nil, err
	}

	fields, err := a.extractor.ExtractFields(ctx, ocrResult.Text)
	if err != nil {
		return extract.Fields{}, ocrResult, err
	}
	return fields, ocrResult, nil
}

// Process runs the full extract-and-rename pipeline for one document.
func (a *Agent) Process(ctx context.Context, path string) (*Result, error) {
	fields, ocrResult, err := a.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	if fields.Empty() {
		a.log.Warn().Str("path", path).Msg("no fields recognized; renaming with placeholders")
	}

	plan, err := a.renamer.Rename(path, fields, a.outputDir)
	if err != nil {
		return nil, err
	}

	return &Result{
		Fields: fields,
		OCR:    ocrResult,
		Plan:   plan,
	}, nil
}
