package surrogate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// Extractor builds a text placeholder from file metadata. Real text
// extraction (PDF parsing, OCR) happens outside this service; the analyzer
// only ever sees this surrogate.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, file domain.FileDescriptor, docType domain.DocumentType, shipmentID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(file.Name) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract content", errors.New("file name is required"))
	}

	var b strings.Builder
	b.WriteString("--- DUMMY FILE CONTENT ---\n")
	fmt.Fprintf(&b, "File Name: %s\n", file.Name)
	fmt.Fprintf(&b, "File Type: %s\n", file.MIMEType)
	fmt.Fprintf(&b, "Size: %d bytes\n", file.Size)
	fmt.Fprintf(&b, "Document Type: %s\n", docType)
	fmt.Fprintf(&b, "Shipment ID: %s\n", shipmentID)
	b.WriteString("This is a placeholder for the actual file content.\n")
	b.WriteString("--- END DUMMY CONTENT ---")
	return b.String(), nil
}
