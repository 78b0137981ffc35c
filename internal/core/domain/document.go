package domain

import (
	"errors"
	"fmt"
	"strings"
)

type DocumentType string

const (
	DocCommercialInvoice   DocumentType = "Commercial Invoice"
	DocBillOfLading        DocumentType = "Bill of Lading"
	DocPackingList         DocumentType = "Packing List"
	DocCertificateOfOrigin DocumentType = "Certificate of Origin"
	DocCustomsDeclaration  DocumentType = "Customs Declaration"
	DocSettlementStatement DocumentType = "Settlement Statement"
)

// Display order of the dashboard columns.
var documentTypes = [...]DocumentType{
	DocCommercialInvoice,
	DocBillOfLading,
	DocPackingList,
	DocCertificateOfOrigin,
	DocCustomsDeclaration,
	DocSettlementStatement,
}

var documentTypeAbbreviations = map[DocumentType]string{
	DocCommercialInvoice:   "CI",
	DocBillOfLading:        "BL",
	DocPackingList:         "PL",
	DocCertificateOfOrigin: "COO",
	DocCustomsDeclaration:  "CD",
	DocSettlementStatement: "SS",
}

// DocumentTypes returns the six recognized document types in display order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypes))
	copy(out, documentTypes[:])
	return out
}

// DocumentTypeCount is the number of slots every shipment carries.
func DocumentTypeCount() int {
	return len(documentTypes)
}

func (t DocumentType) Valid() bool {
	_, ok := documentTypeAbbreviations[t]
	return ok
}

func (t DocumentType) Abbreviation() string {
	return documentTypeAbbreviations[t]
}

// ParseDocumentType accepts a display name (case-insensitive), an abbreviation
// such as "BL", or the legacy "Bill of Lading (BL)" label.
func ParseDocumentType(raw string) (DocumentType, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", WrapError(ErrInvalidInput, "parse document type", errors.New("document type is required"))
	}
	if idx := strings.Index(value, "("); idx > 0 {
		value = strings.TrimSpace(value[:idx])
	}
	for _, t := range documentTypes {
		if strings.EqualFold(value, string(t)) || strings.EqualFold(value, t.Abbreviation()) {
			return t, nil
		}
	}
	return "", WrapError(ErrInvalidInput, "parse document type", fmt.Errorf("unknown document type %q", raw))
}

type DocumentStatus string

const (
	StatusMissing    DocumentStatus = "Missing"
	StatusUploaded   DocumentStatus = "Uploaded"
	StatusProcessing DocumentStatus = "Processing"
	StatusDuplicate  DocumentStatus = "Duplicate"
	StatusError      DocumentStatus = "Error"
)

// Terminal reports whether an upload attempt can come to rest in this status.
func (s DocumentStatus) Terminal() bool {
	return s == StatusUploaded || s == StatusError
}

func ParseDocumentStatus(raw string) (DocumentStatus, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return StatusMissing, nil
	}
	for _, s := range []DocumentStatus{StatusMissing, StatusUploaded, StatusProcessing, StatusDuplicate, StatusError} {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", WrapError(ErrInvalidInput, "parse document status", fmt.Errorf("unknown status %q", raw))
}
