package domain

import "time"

// AnalysisResult is what the analyzer extracted from a content surrogate.
// Every field is best-effort; nil numerics aggregate as zero.
type AnalysisResult struct {
	InvoiceNumber   string   `json:"invoiceNumber,omitempty"`
	TotalAmount     *float64 `json:"totalAmount,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	SKUs            []string `json:"skus"`
	AnalysisSummary string   `json:"analysisSummary,omitempty"`
}

func (r AnalysisResult) Amount() float64 {
	if r.TotalAmount == nil {
		return 0
	}
	return *r.TotalAmount
}

func (r AnalysisResult) Clone() AnalysisResult {
	out := r
	if r.TotalAmount != nil {
		v := *r.TotalAmount
		out.TotalAmount = &v
	}
	if r.Quantity != nil {
		v := *r.Quantity
		out.Quantity = &v
	}
	out.SKUs = append([]string{}, r.SKUs...)
	return out
}

// AnalyzedRecord ties one successful analysis to the shipment it was run for.
type AnalyzedRecord struct {
	ShipmentID   string         `json:"shipmentId"`
	DocumentType DocumentType   `json:"documentType"`
	AnalyzedAt   time.Time      `json:"analyzedAt"`
	Result       AnalysisResult `json:"result"`
}

func Float64(v float64) *float64 { return &v }

func Int(v int) *int { return &v }
