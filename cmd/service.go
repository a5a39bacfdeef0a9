package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"checktool/internal/config"
	"checktool/internal/extract"
	"checktool/internal/llm"
	"checktool/internal/ocr"
	"checktool/internal/rename"
)

// newTextExtractor builds the configured OCR backend. An explicit backend
// flag overrides OCR_BACKEND from the environment.
func newTextExtractor(ctx context.Context, cfg *config.Config, backend string, log zerolog.Logger) (ocr.TextExtractor, error) {
	if backend == "" {
		backend = cfg.OCRBackend
	}

	switch backend {
	case config.BackendVision:
		svc, err := ocr.NewVisionExtractor(ctx)
		if err != nil {
			if errors.Is(err, ocr.ErrMissingCredentials) {
				return nil, fmt.Errorf("Google Cloud credentials not configured. Set GOOGLE_APPLICATION_CREDENTIALS "+
					"or GOOGLE_CREDENTIALS, or switch to the tesseract backend: %w", err)
			}
			return nil, fmt.Errorf("failed to create Vision OCR backend: %w", err)
		}
		log.Debug().Str("backend", backend).Msg("OCR backend created")
		return svc, nil
	case config.BackendTesseract:
		svc := ocr.NewTesseractExtractor(ocr.TesseractConfig{
			Tesseract: cfg.TesseractBin,
			Pdftoppm:  cfg.PdftoppmBin,
			Lang:      cfg.TesseractLang,
			DPI:       cfg.DPI,
			MaxPages:  cfg.MaxPages,
		})
		log.Debug().Str("backend", backend).Msg("OCR backend created")
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown OCR backend %q (expected %q or %q)",
			backend, config.BackendTesseract, config.BackendVision)
	}
}

// newFieldExtractor builds the extraction strategy. LLM mode needs an API
// key; without one it downgrades to regex extraction with a warning rather
// than failing, and even with one the LLM extractor is wrapped so any
// failure falls back to regex.
func newFieldExtractor(cfg *config.Config, useLLM bool, log zerolog.Logger) extract.FieldExtractor {
	regex := extract.NewRegexExtractor()
	if !useLLM {
		return regex
	}

	client, err := llm.NewClient(llm.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	})
	if err != nil {
		log.Warn().Err(err).Msg("LLM mode requested but unavailable; falling back to regex extraction")
		return regex
	}
	return extract.NewFallback(client, regex)
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// translateError maps pipeline failures to user-facing messages.
func translateError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("processing failed")

	var renameErr *rename.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("processing was canceled")
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported file format. Supported: images (jpg, png, tiff, bmp, gif, webp) and PDF")
	case errors.Is(err, ocr.ErrNoText):
		return fmt.Errorf("OCR produced no usable text. The scan may be blank or too degraded to read")
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages. Raise OCR_MAX_PAGES or split the file")
	case errors.As(err, &renameErr):
		return fmt.Errorf("could not rename the file to %s (the original is untouched): %v",
			renameErr.Dest, renameErr.Err)
	default:
		return err
	}
}

// fieldOrNotFound renders one extracted field for terminal output.
func fieldOrNotFound(v *string) string {
	if v == nil {
		return "(not found)"
	}
	return *v
}
