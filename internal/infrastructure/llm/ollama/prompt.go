package ollama

import (
	"fmt"
	"unicode/utf8"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

const maxSnippet = 4000

func buildAnalysisPrompt(content string, docType domain.DocumentType) string {
	snippet := truncateUTF8(content, maxSnippet)

	return fmt.Sprintf(`You extract data from shipping documents.
The document below is a %q.
Return strict JSON object with keys:
invoiceNumber (string), totalAmount (number), quantity (integer, total items),
skus (array of unique strings), analysisSummary (one sentence string).
Omit a key when the document does not contain it. No markdown, no extra keys.

Document:
%s`, string(docType), snippet)
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
