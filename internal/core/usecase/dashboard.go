package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
)

const maxActivityLimit = 500

type DashboardUseCase struct {
	store    ports.SessionStore
	renderer ports.WorkbookRenderer
}

func NewDashboardUseCase(store ports.SessionStore, renderer ports.WorkbookRenderer) *DashboardUseCase {
	return &DashboardUseCase{
		store:    store,
		renderer: renderer,
	}
}

// ListShipments returns shipments in seed order. A non-blank query keeps only
// shipments whose invoice number or id contains it, ignoring case.
func (uc *DashboardUseCase) ListShipments(ctx context.Context, query string) ([]domain.Shipment, error) {
	state, err := uc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return state.Shipments, nil
	}
	out := make([]domain.Shipment, 0, len(state.Shipments))
	for _, sh := range state.Shipments {
		if strings.Contains(strings.ToLower(sh.InvoiceNumber), query) || strings.Contains(strings.ToLower(sh.ID), query) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (uc *DashboardUseCase) GetShipment(ctx context.Context, id string) (*domain.Shipment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get shipment", errors.New("shipment id is required"))
	}
	state, err := uc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sh, ok := state.Shipment(id)
	if !ok {
		return nil, domain.WrapError(domain.ErrShipmentNotFound, "get shipment", fmt.Errorf("id=%s", id))
	}
	return &sh, nil
}

// ListActivity returns matching entries newest first. Limit <= 0 means all.
func (uc *DashboardUseCase) ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	if filter.DocumentType != "" && !filter.DocumentType.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list activity", fmt.Errorf("unknown document type %q", filter.DocumentType))
	}
	if filter.Limit < 0 || filter.Limit > maxActivityLimit {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list activity", fmt.Errorf("limit must be between 0 and %d", maxActivityLimit))
	}

	state, err := uc.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	out := make([]domain.ActivityLogEntry, 0, len(state.Activity))
	for _, entry := range state.Activity {
		if !filter.Match(entry) {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (uc *DashboardUseCase) Summary(ctx context.Context) (domain.Summary, error) {
	state, err := uc.store.Snapshot(ctx)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("load session: %w", err)
	}
	return domain.ComputeSummary(state.Shipments, state.Analyzed), nil
}

func (uc *DashboardUseCase) ExportWorkbook(ctx context.Context, w io.Writer) error {
	if uc.renderer == nil {
		return errors.New("workbook renderer is not configured")
	}
	state, err := uc.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	summary := domain.ComputeSummary(state.Shipments, state.Analyzed)
	if err := uc.renderer.Render(w, state, summary); err != nil {
		return fmt.Errorf("render workbook: %w", err)
	}
	return nil
}
