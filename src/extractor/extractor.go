package extractor

import (
	"context"
	"strings"
	"unicode"

	"github.com/username/fundfolio/backend/src/logger"
)

// Backend names reported in diagnostics.
const (
	BackendStructured = "pdf-structured"
	BackendPlainText  = "pdf-plaintext"
	BackendNone       = "none"
)

// Document is the extracted content of one statement file. Text preserves
// page order with embedded page markers; Tables preserves each physical
// table's boundaries as an ordered sequence of rows of raw cell strings.
type Document struct {
	Text    string
	Tables  [][][]string
	Backend string
}

// Extract pulls text and tables out of the statement at path. It tries the
// structured backend first and falls back to plain-text extraction when the
// structured pass fails or yields unreadable content. Total failure returns
// an empty Document, never an error: downstream parsers treat empty content
// as "no holdings, no transactions".
func Extract(ctx context.Context, path string, password string) *Document {
	doc, err := extractStructured(ctx, path, password)
	if err == nil && isReadableText(doc.Text) {
		logger.L.Info("Extracted statement content",
			"backend", BackendStructured, "textChars", len(doc.Text), "tables", len(doc.Tables))
		return doc
	}
	if err != nil {
		logger.L.Warn("Structured extraction failed, falling back to plain text", "error", err)
	} else {
		logger.L.Warn("Structured extraction yielded unreadable text, falling back to plain text",
			"textChars", len(doc.Text))
	}

	text, err := extractPlainText(ctx, path, password)
	if err == nil && isReadableText(text) {
		logger.L.Info("Extracted statement content", "backend", BackendPlainText, "textChars", len(text))
		return &Document{Text: text, Backend: BackendPlainText}
	}
	if err != nil {
		logger.L.Error("Plain-text extraction failed", "error", err)
	}

	logger.L.Error("All extraction backends failed, returning empty content", "path", path)
	return &Document{Backend: BackendNone}
}

// statementWords are terms that appear in virtually every account statement.
// Extracted text containing none of them is likely font-encoding garbage.
var statementWords = []string{
	"mutual fund", "folio", "isin", "statement", "nav", "units",
	"depository", "portfolio", "transaction", "account", "holding",
}

// isReadableText requires enough text, a high ratio of plain ASCII, and at
// least one recognizable statement term. Identity-encoded fonts produce text
// that passes length checks but fails both of the latter.
func isReadableText(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	lower := strings.ToLower(text)
	for _, word := range statementWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of basic readable characters to total.
// Strict ASCII on purpose: unicode.IsLetter matches the accented garbage
// produced by identity-encoded fonts.
func textQuality(text string) float64 {
	total := 0
	readable := 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"%&@#!?+=*|", r) ||
			r == '₹' || r == '$' || r == '€' {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
