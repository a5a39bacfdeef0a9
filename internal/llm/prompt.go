package llm

import "strings"

// maxPromptChars caps how much OCR text is sent; the payee line and check
// number sit near the top of a scan, so the head of the stream is enough.
const maxPromptChars = 4000

func buildSystemPrompt() string {
	parts := []string{
		"You extract two fields from OCR text of a scanned bank check.",
		"Return ONLY a JSON object with exactly these keys:",
		`"writer_name": the payee on the "pay to the order of" line,`,
		`"check_number": the short check number (3-6 digits, top right), distinct from the longer routing and account numbers.`,
		"Use null for a field you cannot find. Never invent values, never add keys.",
	}
	return strings.Join(parts, " ")
}

func buildUserPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString("OCR text of the check:\n\n")
	if len(ocrText) > maxPromptChars {
		b.WriteString(ocrText[:maxPromptChars])
	} else {
		b.WriteString(ocrText)
	}
	return b.String()
}
