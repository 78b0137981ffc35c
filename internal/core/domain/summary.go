package domain

import "math"

type Summary struct {
	TotalDocs      int     `json:"totalDocs"`
	UploadedDocs   int     `json:"uploadedDocs"`
	MissingDocs    int     `json:"missingDocs"`
	TotalValue     float64 `json:"totalValue"`
	CompletionRate float64 `json:"completionRate"`
}

// ComputeSummary is a pure projection of the dashboard state.
//
// MissingDocs is TotalDocs minus UploadedDocs, so Processing, Error and
// Duplicate slots all count as missing for the completion metric. TotalValue
// sums every recorded analysis, including results later superseded by a
// re-upload of the same slot.
func ComputeSummary(shipments []Shipment, analyzed []AnalyzedRecord) Summary {
	total := len(shipments) * DocumentTypeCount()
	uploaded := 0
	for _, s := range shipments {
		uploaded += s.CountStatus(StatusUploaded)
	}

	var value float64
	for _, rec := range analyzed {
		value += rec.Result.Amount()
	}

	var rate float64
	if total > 0 {
		rate = math.Round(float64(uploaded)/float64(total)*1000) / 10
	}

	return Summary{
		TotalDocs:      total,
		UploadedDocs:   uploaded,
		MissingDocs:    total - uploaded,
		TotalValue:     value,
		CompletionRate: rate,
	}
}
