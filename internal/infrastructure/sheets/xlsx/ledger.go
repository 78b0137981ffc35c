package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

const ledgerSheet = "Uploads"

var ledgerColumns = []any{
	"Event ID", "Occurred At", "Shipment ID", "Invoice Number", "Document Type", "File Name",
	"File Size", "Uploader", "Outcome", "Error", "Comments", "Total Amount", "Quantity", "SKUs", "Storage Link",
}

// Ledger appends one row per upload event to a workbook on disk. It stands in
// for the shared spreadsheet the operations team keeps.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func NewLedger(path string) (*Ledger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &Ledger{path: path}, nil
}

// Append is idempotent per event ID, so redelivered events are skipped.
func (l *Ledger) Append(ctx context.Context, event domain.UploadEvent) error {
	if strings.TrimSpace(event.ID) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "append ledger row", errors.New("event id is required"))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ledgerSheet)
	if err != nil {
		return fmt.Errorf("read ledger rows: %w", err)
	}
	for _, row := range rows {
		if len(row) > 0 && row[0] == event.ID {
			return nil
		}
	}

	if err := setRow(f, ledgerSheet, len(rows)+1, ledgerRow(event)); err != nil {
		return err
	}
	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Rows returns the ledger content without the header.
func (l *Ledger) Rows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ledgerSheet)
	if err != nil {
		return nil, fmt.Errorf("read ledger rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func (l *Ledger) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(l.path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	f = excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename ledger sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := writeHeader(f, ledgerSheet, ledgerColumns, header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func ledgerRow(event domain.UploadEvent) []any {
	values := []any{
		event.ID,
		event.OccurredAt.UTC().Format(time.RFC3339),
		event.ShipmentID,
		event.InvoiceNumber,
		string(event.DocumentType),
		event.FileName,
		event.FileSize,
		event.Uploader,
		string(event.Outcome),
		event.Error,
		event.Comments,
	}
	result := resultColumns(event.Result)
	values = append(values, result[1:]...)
	return append(values, event.StorageLink)
}
