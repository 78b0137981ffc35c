package domain

import (
	"io"
	"time"
)

// FileDescriptor is what the workflow knows about an uploaded file. The bytes
// themselves are never inspected.
type FileDescriptor struct {
	Name     string
	MIMEType string
	Size     int64
}

type UploadRequest struct {
	File         *FileDescriptor
	Body         io.Reader
	ShipmentID   string
	DocumentType DocumentType
	Comments     string
}

type UploadOutcome struct {
	ShipmentID    string            `json:"shipmentId"`
	InvoiceNumber string            `json:"invoiceNumber"`
	DocumentType  DocumentType      `json:"documentType"`
	Slot          SlotRecord        `json:"slot"`
	Entry         *ActivityLogEntry `json:"logEntry,omitempty"`
	Result        AnalysisResult    `json:"result"`
}

// UploadEvent is published once per finished attempt for out-of-process
// collaborators such as the upload ledger.
type UploadEvent struct {
	ID            string          `json:"id"`
	ShipmentID    string          `json:"shipmentId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	DocumentType  DocumentType    `json:"documentType"`
	FileName      string          `json:"fileName"`
	FileSize      int64           `json:"fileSize"`
	StorageLink   string          `json:"storageLink,omitempty"`
	Uploader      string          `json:"uploader"`
	Outcome       Outcome         `json:"outcome"`
	Error         string          `json:"error,omitempty"`
	Comments      string          `json:"comments,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Result        *AnalysisResult `json:"result,omitempty"`
}
