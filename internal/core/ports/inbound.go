package ports

import (
	"context"
	"io"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// UploadSubmitter is the inbound contract for the document upload workflow.
type UploadSubmitter interface {
	SubmitUpload(ctx context.Context, req domain.UploadRequest) (*domain.UploadOutcome, error)
}

// DashboardReader is the read model over the session state.
type DashboardReader interface {
	// ListShipments filters by a case-insensitive substring of invoice number
	// or id; a blank query returns every shipment.
	ListShipments(ctx context.Context, query string) ([]domain.Shipment, error)
	GetShipment(ctx context.Context, id string) (*domain.Shipment, error)
	ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error)
	Summary(ctx context.Context) (domain.Summary, error)
}

// DashboardExporter renders the current dashboard as a workbook.
type DashboardExporter interface {
	ExportWorkbook(ctx context.Context, w io.Writer) error
}

// DashboardService is everything the read-side adapters need.
type DashboardService interface {
	DashboardReader
	DashboardExporter
}
