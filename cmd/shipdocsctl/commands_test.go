package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/shipment-docs-tracker/internal/config"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

func runCommand(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := runCommand(t, config.Config{}, "summary")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var summary domain.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if summary.TotalDocs != 30 || summary.UploadedDocs+summary.MissingDocs != summary.TotalDocs {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestExportCommandWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dash.xlsx")
	if _, err := runCommand(t, config.Config{}, "export", "--out", path); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex("Dashboard"); idx < 0 {
		t.Fatalf("expected Dashboard sheet, got %v", f.GetSheetList())
	}
}

func TestAnalyzeCommandRunsMockAnalyzer(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "packing list.pdf")
	if err := os.WriteFile(doc, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg := config.Config{
		AnalyzerBackend:        "mock",
		AnalysisTimeoutSeconds: 5,
		MaxFileSizeMB:          8,
		MaxInFlightUploads:     1,
	}

	out, err := runCommand(t, cfg, "analyze", "--file", doc, "--shipment", "MV0205020250510-02", "--type", "PL")
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out)
	}
	var outcome domain.UploadOutcome
	if err := json.Unmarshal([]byte(out), &outcome); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if outcome.Slot.Status != domain.StatusUploaded || outcome.Slot.Name != "packing list.pdf" {
		t.Fatalf("unexpected slot %+v", outcome.Slot)
	}
	if outcome.Entry == nil || outcome.Entry.Outcome != domain.OutcomeSuccess {
		t.Fatalf("expected a success log entry, got %+v", outcome.Entry)
	}
}

func TestAnalyzeCommandUnknownShipment(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "ci.pdf")
	if err := os.WriteFile(doc, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	out, err := runCommand(t, config.Config{AnalyzerBackend: "mock", MaxInFlightUploads: 1}, "analyze", "--file", doc, "--shipment", "ghost", "--type", "CI")
	if err == nil {
		t.Fatalf("expected error for unknown shipment")
	}
	if !strings.Contains(out, "shipment not found") {
		t.Fatalf("expected not-found message, got %q", out)
	}
}
