// Package extract locates the check writer name and check number inside noisy
// OCR text. Two extractors implement the FieldExtractor contract: a layered
// regex heuristic and an OpenAI-backed extractor (internal/llm), composed via
// Fallback so that LLM mode degrades to regex on any failure.
package extract

// Fields is the extraction result pair. A nil field means that extractor
// found nothing; absence is distinct from an empty string, and placeholder
// substitution happens only in the renaming layer.
type Fields struct {
	WriterName  *string `json:"writer_name"`
	CheckNumber *string `json:"check_number"`
}

// Empty reports whether neither field was found.
func (f Fields) Empty() bool {
	return f.WriterName == nil && f.CheckNumber == nil
}

// Str returns a pointer to s. Convenience for building Fields values.
func Str(s string) *string {
	return &s
}
