package domain

import "time"

type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailed  Outcome = "Failed"
)

// ActivityLogEntry records one upload attempt. Entries are created once and
// never mutated.
type ActivityLogEntry struct {
	ID            string          `json:"id"`
	FileName      string          `json:"fileName"`
	StorageLink   string          `json:"storageLink"`
	Timestamp     time.Time       `json:"timestamp"`
	DocumentType  DocumentType    `json:"documentType"`
	Uploader      string          `json:"uploader"`
	ShipmentID    string          `json:"shipmentId"`
	Outcome       Outcome         `json:"outcome"`
	Comments      string          `json:"comments,omitempty"`
	ExtractedData *AnalysisResult `json:"extractedData,omitempty"`
}

type ActivityFilter struct {
	ShipmentID   string
	DocumentType DocumentType
	Limit        int
}

func (f ActivityFilter) Match(e ActivityLogEntry) bool {
	if f.ShipmentID != "" && e.ShipmentID != f.ShipmentID {
		return false
	}
	if f.DocumentType != "" && e.DocumentType != f.DocumentType {
		return false
	}
	return true
}
