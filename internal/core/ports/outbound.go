package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// SessionStore owns the dashboard state and serializes every transition
// through domain.Reduce.
type SessionStore interface {
	Snapshot(ctx context.Context) (domain.State, error)
	Apply(ctx context.Context, ev domain.Event) (domain.State, error)
}

// Analyzer extracts structured fields from a content surrogate.
type Analyzer interface {
	Analyze(ctx context.Context, content string, docType domain.DocumentType) (domain.AnalysisResult, error)
}

// ContentExtractor produces the text handed to the analyzer.
type ContentExtractor interface {
	Extract(ctx context.Context, file domain.FileDescriptor, docType domain.DocumentType, shipmentID string) (string, error)
}

// ObjectStorage stores raw uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
}

// UploadEventPublisher notifies out-of-process collaborators about finished attempts.
type UploadEventPublisher interface {
	PublishUploadEvent(ctx context.Context, event domain.UploadEvent) error
}

// UploadEventSubscriber delivers upload events until ctx is done.
type UploadEventSubscriber interface {
	SubscribeUploadEvents(ctx context.Context, handler func(context.Context, domain.UploadEvent) error) error
}

// UploadLedger is the append-only dashboard sheet fed by upload events.
type UploadLedger interface {
	Append(ctx context.Context, event domain.UploadEvent) error
}

// WorkbookRenderer writes a dashboard workbook for a state snapshot.
type WorkbookRenderer interface {
	Render(w io.Writer, state domain.State, summary domain.Summary) error
}

// UploadObserver receives lifecycle timings, typically for metrics.
type UploadObserver interface {
	UploadStarted(docType domain.DocumentType)
	UploadFinished(docType domain.DocumentType, outcome domain.Outcome, duration time.Duration)
}

// LedgerObserver receives ledger append timings in the worker.
type LedgerObserver interface {
	StartAppend()
	FinishAppend(duration time.Duration, err error)
	ObserveEventLag(lag time.Duration)
}
