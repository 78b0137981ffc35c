package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
)

// RecordUploadUseCase mirrors finished upload attempts into the ledger sheet.
type RecordUploadUseCase struct {
	ledger   ports.UploadLedger
	observer ports.LedgerObserver
	now      func() time.Time
}

func NewRecordUploadUseCase(ledger ports.UploadLedger) *RecordUploadUseCase {
	return &RecordUploadUseCase{
		ledger: ledger,
		now:    time.Now,
	}
}

func (uc *RecordUploadUseCase) WithObserver(observer ports.LedgerObserver) *RecordUploadUseCase {
	uc.observer = observer
	return uc
}

func (uc *RecordUploadUseCase) Record(ctx context.Context, event domain.UploadEvent) error {
	if strings.TrimSpace(event.ID) == "" || strings.TrimSpace(event.ShipmentID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record upload", errors.New("event id and shipment id are required"))
	}

	start := uc.now()
	if uc.observer != nil {
		if !event.OccurredAt.IsZero() {
			uc.observer.ObserveEventLag(start.Sub(event.OccurredAt))
		}
		uc.observer.StartAppend()
	}
	err := uc.ledger.Append(ctx, event)
	if uc.observer != nil {
		uc.observer.FinishAppend(uc.now().Sub(start), err)
	}
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}

	slog.Info("upload_recorded",
		"event_id", event.ID,
		"shipment_id", event.ShipmentID,
		"document_type", event.DocumentType,
		"outcome", event.Outcome,
	)
	return nil
}
