package xlsx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

const (
	dashboardSheet = "Dashboard"
	activitySheet  = "Activity"
	summarySheet   = "Summary"
)

var statusFill = map[domain.DocumentStatus]string{
	domain.StatusMissing:    "#E5E7EB",
	domain.StatusUploaded:   "#BBF7D0",
	domain.StatusProcessing: "#FEF08A",
	domain.StatusDuplicate:  "#FED7AA",
	domain.StatusError:      "#FECACA",
}

// Renderer writes the dashboard grid, the activity log and the summary
// metrics as one workbook.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(w io.Writer, state domain.State, summary domain.Summary) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", dashboardSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{activitySheet, summarySheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	statusStyles, err := newStatusStyles(f)
	if err != nil {
		return err
	}

	if err := writeDashboard(f, state.Shipments, header, statusStyles); err != nil {
		return err
	}
	if err := writeActivity(f, state.Activity, header); err != nil {
		return err
	}
	if err := writeSummary(f, summary, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func newStatusStyles(f *excelize.File) (map[domain.DocumentStatus]int, error) {
	out := make(map[domain.DocumentStatus]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s style: %w", status, err)
		}
		out[status] = id
	}
	return out, nil
}

func writeDashboard(f *excelize.File, shipments []domain.Shipment, header int, statusStyles map[domain.DocumentStatus]int) error {
	columns := []any{"Shipment ID", "Invoice Number", "Shipping Date", "Origin", "Destination", "Carrier"}
	fixed := len(columns)
	for _, t := range domain.DocumentTypes() {
		columns = append(columns, string(t))
	}
	if err := writeHeader(f, dashboardSheet, columns, header); err != nil {
		return err
	}

	for i, sh := range shipments {
		row := i + 2
		values := []any{sh.ID, sh.InvoiceNumber, sh.ShippingDate, sh.Origin, sh.Destination, sh.Carrier}
		for _, t := range domain.DocumentTypes() {
			values = append(values, slotLabel(sh.SlotFor(t)))
		}
		if err := setRow(f, dashboardSheet, row, values); err != nil {
			return err
		}

		for j, t := range domain.DocumentTypes() {
			cell, err := excelize.CoordinatesToCellName(fixed+j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(dashboardSheet, cell, cell, statusStyles[sh.SlotFor(t).Status()]); err != nil {
				return fmt.Errorf("style %s: %w", cell, err)
			}
		}
	}
	return f.SetColWidth(dashboardSheet, "A", "L", 22)
}

func slotLabel(slot domain.Slot) string {
	if uploaded, ok := slot.(domain.UploadedSlot); ok {
		return fmt.Sprintf("%s: %s", domain.StatusUploaded, uploaded.Name)
	}
	return string(slot.Status())
}

func writeActivity(f *excelize.File, entries []domain.ActivityLogEntry, header int) error {
	columns := []any{
		"Log ID", "Timestamp", "Shipment ID", "Document Type", "File Name", "Uploader",
		"Outcome", "Comments", "Invoice Number", "Total Amount", "Quantity", "SKUs", "Storage Link",
	}
	if err := writeHeader(f, activitySheet, columns, header); err != nil {
		return err
	}

	for i, e := range entries {
		values := []any{
			e.ID, e.Timestamp.UTC().Format(time.RFC3339), e.ShipmentID, string(e.DocumentType),
			e.FileName, e.Uploader, string(e.Outcome), e.Comments,
		}
		values = append(values, resultColumns(e.ExtractedData)...)
		values = append(values, e.StorageLink)
		if err := setRow(f, activitySheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

// resultColumns leaves absent values as empty cells rather than zero.
func resultColumns(result *domain.AnalysisResult) []any {
	if result == nil {
		return []any{"", "", "", ""}
	}
	var amount, quantity any = "", ""
	if result.TotalAmount != nil {
		amount = *result.TotalAmount
	}
	if result.Quantity != nil {
		quantity = *result.Quantity
	}
	return []any{result.InvoiceNumber, amount, quantity, strings.Join(result.SKUs, ", ")}
}

func writeSummary(f *excelize.File, summary domain.Summary, header int) error {
	if err := writeHeader(f, summarySheet, []any{"Metric", "Value"}, header); err != nil {
		return err
	}
	rows := [][]any{
		{"Total Documents", summary.TotalDocs},
		{"Uploaded Documents", summary.UploadedDocs},
		{"Missing Documents", summary.MissingDocs},
		{"Total Value", summary.TotalValue},
		{"Completion Rate (%)", summary.CompletionRate},
	}
	for i, values := range rows {
		if err := setRow(f, summarySheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, columns []any, style int) error {
	if err := setRow(f, sheet, 1, columns); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
