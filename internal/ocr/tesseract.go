package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"

	"checktool/internal/logger"
)

// TesseractConfig configures the exec-based OCR backend.
type TesseractConfig struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Lang     string // default "eng"
	DPI      int    // rasterization DPI for PDF pages, default 300
	MaxPages int    // 0 = no limit
}

// TesseractExtractor implements TextExtractor by shelling out to tesseract,
// rasterizing PDF pages with pdftoppm first.
type TesseractExtractor struct {
	cfg    TesseractConfig
	runner Runner
	log    zerolog.Logger
}

// NewTesseractExtractor creates the backend with defaults filled in.
func NewTesseractExtractor(cfg TesseractConfig) *TesseractExtractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &TesseractExtractor{
		cfg:    cfg,
		runner: execRunner{},
		log:    logger.WithComponent("ocr-tesseract"),
	}
}

// NewTesseractExtractorWithRunner creates the backend with an explicit Runner
// (for testing).
func NewTesseractExtractorWithRunner(cfg TesseractConfig, runner Runner) *TesseractExtractor {
	e := NewTesseractExtractor(cfg)
	e.runner = runner
	return e
}

// ExtractText picks a strategy based on the file extension.
func (e *TesseractExtractor) ExtractText(ctx context.Context, path string) (*Result, error) {
	const op = "ExtractText"
	start := time.Now()

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapError(op, err, path)
	}

	var result *Result
	switch format {
	case FormatPDF:
		result, err = e.extractPDF(ctx, path)
	default:
		result, err = e.extractImage(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(result.Text) == "" {
		return nil, NewError(op, ErrNoText, path)
	}

	result.ProcessedAt = time.Now()
	result.Duration = result.ProcessedAt.Sub(start)

	e.log.Debug().
		Str("path", path).
		Str("method", result.Method).
		Int("pages", result.Pages).
		Int("text_len", len(result.Text)).
		Dur("duration", result.Duration).
		Msg("ocr extraction completed")

	return result, nil
}

func (e *TesseractExtractor) extractImage(ctx context.Context, path string) (*Result, error) {
	text, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return nil, WrapError("extractImage", ErrOCRFailed, err.Error())
	}
	return &Result{
		Text:     text,
		Pages:    1,
		Method:   "image-ocr",
		Warnings: warns,
	}, nil
}

// extractPDF renders every page to a PNG in a temporary directory, OCRs each
// page, and joins the page texts with a newline. The temporary artifacts are
// removed on every path out of this function.
func (e *TesseractExtractor) extractPDF(ctx context.Context, path string) (*Result, error) {
	const op = "extractPDF"

	// Preflight: reject corrupt PDFs and enforce the page limit before
	// spending time on rasterization.
	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, NewError(op, ErrInvalidPDF, err.Error())
	}
	if e.cfg.MaxPages > 0 && pageCount > e.cfg.MaxPages {
		return nil, NewError(op, ErrTooManyPages,
			fmt.Sprintf("document has %d pages, limit is %d", pageCount, e.cfg.MaxPages))
	}

	tmpDir, err := os.MkdirTemp("", "checktool-pages-*")
	if err != nil {
		return nil, WrapError(op, err, "create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.log.Warn().Err(rmErr).Str("dir", tmpDir).Msg("failed to remove temp dir")
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, NewError(op, ErrOCRFailed, strings.TrimSpace(string(errb)))
	}

	// Collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, NewError(op, ErrOCRFailed, "pdftoppm produced no page images")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		text, w, err := e.tesseractOCR(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
		warns = append(warns, w...)
	}

	return &Result{
		Text:     b.String(),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warns,
	}, nil
}

func (e *TesseractExtractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, path, "stdout", "-l", e.cfg.Lang)
	if err != nil {
		return "", []string{strings.TrimSpace(string(errb))}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
