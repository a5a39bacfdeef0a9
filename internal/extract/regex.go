package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"checktool/internal/logger"
)

// RegexExtractor locates both fields with ordered pattern rules plus
// positional heuristics. It never fails: absence is encoded in the result.
type RegexExtractor struct {
	log zerolog.Logger
}

// NewRegexExtractor creates the regex-based field extractor.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{log: logger.WithComponent("extract-regex")}
}

// payeeRules are tried in order; the first rule whose capture survives
// cleanup wins. Extend by appending variants, not by branching.
// The patterns tolerate common OCR noise: a split "P ay", dropped "of",
// stray punctuation after the phrase.
var payeeRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{"pay-to-the-order-of", regexp.MustCompile(`(?i)p\s?ay\s+to\s+the\s+order\s+of[:.\-\s]*([^\n]+)`)},
	{"pay-to-the-order", regexp.MustCompile(`(?i)p\s?ay\s+to\s+the\s+order[:.\-\s]*([^\n]+)`)},
	{"payable-to", regexp.MustCompile(`(?i)payable\s+to[:.\-\s]*([^\n]+)`)},
}

var (
	// amountRe marks the start of a trailing monetary amount: a token
	// beginning with "$" or shaped like a decimal number.
	amountRe = regexp.MustCompile(`\$\s*\d|\b\d+[.,]\d{2}\b`)

	wsRe     = regexp.MustCompile(`\s+`)
	letterRe = regexp.MustCompile(`[A-Za-z]`)

	// leadingOfRe cleans up the dropped-"of" variant, which can capture a
	// stray "of " when the full phrase rule rejected its candidate.
	leadingOfRe = regexp.MustCompile(`(?i)^of\s+`)

	// capLineRe matches a standalone line of two or more capitalized words,
	// the shape of a payee or account-holder line.
	capLineRe = regexp.MustCompile(`^\s*([A-Z][A-Za-z.'-]*(?:\s+[A-Z][A-Za-z.'-]*)+)\s*$`)
)

// boilerplateWords disqualify a capitalized line from being read as a name.
var boilerplateWords = []string{"bank", "dollars", "order", "date", "memo", "routing", "void", "check"}

// ExtractFields implements FieldExtractor. Both sub-extractions are
// independent; a miss in one does not block the other.
func (e *RegexExtractor) ExtractFields(_ context.Context, text string) (Fields, error) {
	fields := Fields{
		WriterName:  e.parseWriterName(text),
		CheckNumber: e.parseCheckNumber(text),
	}
	e.log.Debug().
		Bool("writer_found", fields.WriterName != nil).
		Bool("number_found", fields.CheckNumber != nil).
		Msg("regex extraction completed")
	return fields, nil
}

func (e *RegexExtractor) parseWriterName(text string) *string {
	for _, rule := range payeeRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := cleanCandidate(m[1]); name != nil {
			e.log.Debug().Str("rule", rule.name).Str("name", *name).Msg("payee line matched")
			return name
		}
	}
	return e.topRegionName(text)
}

// topRegionName is the lower-confidence fallback: check layouts place the
// payee line in the upper area, so accept a standalone capitalized-words
// line from the top third of the text.
func (e *RegexExtractor) topRegionName(text string) *string {
	lines := strings.Split(text, "\n")
	limit := len(lines)/3 + 1
	if limit > len(lines) {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		m := capLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if containsBoilerplate(m[1]) {
			continue
		}
		if name := cleanCandidate(m[1]); name != nil {
			e.log.Debug().Str("rule", "top-region-capitalized-line").Str("name", *name).Msg("payee fallback matched")
			return name
		}
	}
	return nil
}

func containsBoilerplate(line string) bool {
	l := strings.ToLower(line)
	for _, w := range boilerplateWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return false
}

// cleanCandidate post-processes a captured payee candidate: cut a trailing
// monetary amount, trim edge punctuation, collapse whitespace. Candidates
// shorter than 2 characters or without a single letter are rejected.
func cleanCandidate(s string) *string {
	if loc := amountRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = wsRe.ReplaceAllString(s, " ")
	s = strings.Trim(s, " \t.,:;|*_'\"-")
	s = leadingOfRe.ReplaceAllString(s, "")
	if len(s) < 2 || !letterRe.MatchString(s) {
		return nil
	}
	return &s
}

// numberRules locate a check number next to an explicit marker, in rule
// order. The 3-6 digit band excludes routing and account numbers, which run
// 9+ digits.
var numberRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{"check-number-label", regexp.MustCompile(`(?i)check\s*(?:no|number|num)?\.?\s*[:#]?\s*(\d{3,6})\b`)},
	{"no-label", regexp.MustCompile(`(?i)\bno\.?\s*[:#]?\s*(\d{3,6})\b`)},
	{"hash", regexp.MustCompile(`#\s*(\d{3,6})\b`)},
	{"line-end", regexp.MustCompile(`(?m)^[^\d\n]{0,24}\b(\d{3,6})\s*$`)},
}

var isolatedNumRe = regexp.MustCompile(`\b\d{3,6}\b`)

// negativeMarkers near a numeric token suggest it belongs to bank
// boilerplate (routing, account, memo line) rather than the check number.
var negativeMarkers = []string{"routing", "account", "acct", "memo"}

func (e *RegexExtractor) parseCheckNumber(text string) *string {
	// Pass 1: tokens adjacent to an explicit marker.
	for _, rule := range numberRules {
		for _, m := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			token := text[start:end]
			if isAmountFragment(text, start, end) || isDateFragment(text, start, end) {
				continue
			}
			if nearNegativeMarker(text, start, end) {
				continue
			}
			e.log.Debug().Str("rule", rule.name).Str("number", token).Msg("check number matched")
			return &token
		}
	}

	// Pass 2: isolated numeric tokens in reading order, preferring the 4-6
	// digit band the top-right check number usually falls in. Tokens near
	// boilerplate markers are kept only as a last resort.
	var fallback, penalized *string
	for _, m := range isolatedNumRe.FindAllStringIndex(text, -1) {
		start, end := m[0], m[1]
		token := text[start:end]
		if isAmountFragment(text, start, end) || isDateFragment(text, start, end) {
			continue
		}
		if nearNegativeMarker(text, start, end) {
			if penalized == nil {
				penalized = &token
			}
			continue
		}
		if end-start >= 4 {
			e.log.Debug().Str("rule", "isolated-token").Str("number", token).Msg("check number matched")
			return &token
		}
		if fallback == nil {
			fallback = &token
		}
	}
	if fallback != nil {
		return fallback
	}
	return penalized
}

// isAmountFragment reports whether the token is part of a monetary value
// ($500, 500.00) rather than a standalone number.
func isAmountFragment(text string, start, end int) bool {
	if start > 0 {
		switch text[start-1] {
		case '$':
			return true
		case '.', ',':
			if start > 1 && isDigit(text[start-2]) {
				return true
			}
		}
	}
	if end < len(text) && (text[end] == '.' || text[end] == ',') {
		if end+1 < len(text) && isDigit(text[end+1]) {
			return true
		}
	}
	return false
}

// isDateFragment rejects tokens glued to a date separator (08/28/2026).
func isDateFragment(text string, start, end int) bool {
	if start > 0 && text[start-1] == '/' {
		return true
	}
	if end < len(text) && text[end] == '/' {
		return true
	}
	return false
}

func nearNegativeMarker(text string, start, end int) bool {
	lo := start - 32
	if lo < 0 {
		lo = 0
	}
	hi := end + 16
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, marker := range negativeMarkers {
		if strings.Contains(window, marker) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
