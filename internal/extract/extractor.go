package extract

import (
	"context"

	"github.com/rs/zerolog"

	"checktool/internal/logger"
)

// FieldExtractor is the contract shared by the regex and LLM extractors:
// recognized text in, field pair out. "Not found" is encoded in the result,
// never as an error.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, text string) (Fields, error)
}

// Fallback runs Primary and, if it fails for any reason, runs Secondary on
// the same text. The primary result fully supersedes the secondary one; the
// two are never merged field by field.
type Fallback struct {
	Primary   FieldExtractor
	Secondary FieldExtractor

	log zerolog.Logger
}

// NewFallback composes a primary extractor with a secondary one.
func NewFallback(primary, secondary FieldExtractor) *Fallback {
	return &Fallback{
		Primary:   primary,
		Secondary: secondary,
		log:       logger.WithComponent("extract-fallback"),
	}
}

// ExtractFields implements FieldExtractor.
func (f *Fallback) ExtractFields(ctx context.Context, text string) (Fields, error) {
	fields, err := f.Primary.ExtractFields(ctx, text)
	if err == nil {
		return fields, nil
	}

	f.log.Warn().Err(err).Msg("primary extractor failed, falling back")
	return f.Secondary.ExtractFields(ctx, text)
}
