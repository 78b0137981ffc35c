package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

type sessionStoreFake struct {
	mu    sync.Mutex
	state domain.State
}

func newSessionStoreFake(t *testing.T) *sessionStoreFake {
	t.Helper()
	state, err := domain.NewState([]domain.Shipment{
		{ID: "S1", InvoiceNumber: "INV-OLD", Origin: "IN", Destination: "KR"},
		{ID: "S2", InvoiceNumber: "INV-S2", Documents: map[domain.DocumentType]domain.Slot{
			domain.DocPackingList: domain.UploadedSlot{Name: "old.pdf", Uploader: "Seed"},
		}},
	})
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return &sessionStoreFake{state: state}
}

func (f *sessionStoreFake) Snapshot(context.Context) (domain.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone(), nil
}

func (f *sessionStoreFake) Apply(_ context.Context, ev domain.Event) (domain.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := domain.Reduce(f.state, ev)
	if err != nil {
		return f.state.Clone(), err
	}
	f.state = next
	return next.Clone(), nil
}

func (f *sessionStoreFake) slot(t *testing.T, shipmentID string, docType domain.DocumentType) domain.Slot {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.state.Shipment(shipmentID)
	if !ok {
		t.Fatalf("shipment %s not found", shipmentID)
	}
	return sh.SlotFor(docType)
}

type extractorFake struct {
	err error
}

func (f *extractorFake) Extract(_ context.Context, file domain.FileDescriptor, docType domain.DocumentType, shipmentID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s|%s|%s|%s", file.Name, file.MIMEType, docType, shipmentID), nil
}

type analyzerFake struct {
	analyze func(ctx context.Context, content string) (domain.AnalysisResult, error)
	calls   atomic.Int32
	content atomic.Value
}

func (f *analyzerFake) Analyze(ctx context.Context, content string, _ domain.DocumentType) (domain.AnalysisResult, error) {
	f.calls.Add(1)
	f.content.Store(content)
	if f.analyze == nil {
		return domain.AnalysisResult{}, nil
	}
	return f.analyze(ctx, content)
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.UploadEvent
	err    error
}

func (f *publisherFake) PublishUploadEvent(_ context.Context, event domain.UploadEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type observerFake struct {
	mu       sync.Mutex
	started  int
	outcomes []domain.Outcome
}

func (f *observerFake) UploadStarted(domain.DocumentType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *observerFake) UploadFinished(_ domain.DocumentType, outcome domain.Outcome, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
}

type archiveFake struct {
	savedKey  string
	savedBody string
}

func (f *archiveFake) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}


func uploadRequest(shipmentID string, docType domain.DocumentType, name string) domain.UploadRequest {
	return domain.UploadRequest{
		File:         &domain.FileDescriptor{Name: name, Size: 1024},
		ShipmentID:   shipmentID,
		DocumentType: docType,
	}
}

func successfulAnalysis(context.Context, string) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{
		InvoiceNumber:   "INV-NEW",
		TotalAmount:     domain.Float64(1500),
		Quantity:        domain.Int(12),
		SKUs:            []string{"SKU-1", "SKU-2"},
		AnalysisSummary: "Commercial invoice for 12 items.",
	}, nil
}

func TestSubmitUploadSuccess(t *testing.T) {
	store := newSessionStoreFake(t)
	analyzer := &analyzerFake{analyze: successfulAnalysis}
	publisher := &publisherFake{}
	observer := &observerFake{}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{}).
		WithEventPublisher(publisher).
		WithObserver(observer)

	before, _ := store.Snapshot(context.Background())
	summaryBefore := domain.ComputeSummary(before.Shipments, before.Analyzed)

	req := uploadRequest("S1", domain.DocCommercialInvoice, "ci final.pdf")
	req.Comments = "signed copy"
	out, err := uc.SubmitUpload(context.Background(), req)
	if err != nil {
		t.Fatalf("SubmitUpload() error = %v", err)
	}

	if out.InvoiceNumber != "INV-NEW" {
		t.Fatalf("expected invoice INV-NEW, got %s", out.InvoiceNumber)
	}
	if out.Slot.Status != domain.StatusUploaded || out.Slot.Uploader != "Admin User" {
		t.Fatalf("unexpected slot record: %+v", out.Slot)
	}
	if out.Slot.StorageLink != "https://mock-drive.com/INV-OLD/ci%20final.pdf" {
		t.Fatalf("unexpected storage link %s", out.Slot.StorageLink)
	}
	if out.Entry == nil || out.Entry.Outcome != domain.OutcomeSuccess || out.Entry.Comments != "signed copy" {
		t.Fatalf("unexpected entry: %+v", out.Entry)
	}
	if !strings.HasPrefix(out.Entry.ID, "log-") {
		t.Fatalf("expected log- id, got %s", out.Entry.ID)
	}
	if content, _ := analyzer.content.Load().(string); !strings.Contains(content, "application/pdf") {
		t.Fatalf("expected inferred mime type in content, got %q", content)
	}

	uploaded, ok := store.slot(t, "S1", domain.DocCommercialInvoice).(domain.UploadedSlot)
	if !ok || uploaded.Name != "ci final.pdf" || uploaded.AnalysisSummary != "Commercial invoice for 12 items." {
		t.Fatalf("unexpected stored slot: %#v", store.slot(t, "S1", domain.DocCommercialInvoice))
	}

	snapshot, _ := store.Snapshot(context.Background())
	if len(snapshot.Activity) != 1 || len(snapshot.Analyzed) != 1 {
		t.Fatalf("expected one entry and one analyzed record, got %d / %d", len(snapshot.Activity), len(snapshot.Analyzed))
	}
	summaryAfter := domain.ComputeSummary(snapshot.Shipments, snapshot.Analyzed)
	if summaryAfter.TotalValue != 1500 {
		t.Fatalf("expected total value 1500, got %v", summaryAfter.TotalValue)
	}
	if summaryAfter.UploadedDocs != summaryBefore.UploadedDocs+1 {
		t.Fatalf("expected uploaded docs %d, got %d", summaryBefore.UploadedDocs+1, summaryAfter.UploadedDocs)
	}
	if summaryAfter.TotalDocs != summaryBefore.TotalDocs {
		t.Fatalf("expected total docs to stay %d, got %d", summaryBefore.TotalDocs, summaryAfter.TotalDocs)
	}

	if len(publisher.events) != 1 || publisher.events[0].Outcome != domain.OutcomeSuccess || publisher.events[0].FileSize != 1024 {
		t.Fatalf("unexpected events: %+v", publisher.events)
	}
	if observer.started != 1 || len(observer.outcomes) != 1 || observer.outcomes[0] != domain.OutcomeSuccess {
		t.Fatalf("unexpected observer calls: started=%d outcomes=%v", observer.started, observer.outcomes)
	}
	if uc.InFlight() != 0 {
		t.Fatalf("expected gate released, got %d", uc.InFlight())
	}
}

func TestSubmitUploadAnalyzerFailureMarksError(t *testing.T) {
	store := newSessionStoreFake(t)
	publisher := &publisherFake{}
	analyzer := &analyzerFake{analyze: func(context.Context, string) (domain.AnalysisResult, error) {
		return domain.AnalysisResult{}, errors.New("model unavailable")
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{}).WithEventPublisher(publisher)

	_, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocBillOfLading, "bl.pdf"))
	if !domain.IsKind(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if status := store.slot(t, "S1", domain.DocBillOfLading).Status(); status != domain.StatusError {
		t.Fatalf("expected error status, got %s", status)
	}

	snapshot, _ := store.Snapshot(context.Background())
	if len(snapshot.Activity) != 0 {
		t.Fatalf("expected no activity entry for failures, got %d", len(snapshot.Activity))
	}
	if len(snapshot.Analyzed) != 0 {
		t.Fatalf("expected no analyzed record, got %d", len(snapshot.Analyzed))
	}
	sh, _ := snapshot.Shipment("S1")
	if sh.InvoiceNumber != "INV-OLD" {
		t.Fatalf("expected invoice unchanged, got %s", sh.InvoiceNumber)
	}
	if len(publisher.events) != 1 || publisher.events[0].Outcome != domain.OutcomeFailed || publisher.events[0].Error == "" {
		t.Fatalf("unexpected events: %+v", publisher.events)
	}
}

func TestSubmitUploadLogsFailedAttemptsWhenEnabled(t *testing.T) {
	store := newSessionStoreFake(t)
	uc := NewSubmitUploadUseCase(store, &extractorFake{err: errors.New("unreadable")}, &analyzerFake{}, UploadOptions{
		LogFailedAttempts: true,
	})

	if _, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocPackingList, "pl.pdf")); err == nil {
		t.Fatalf("expected error")
	}
	snapshot, _ := store.Snapshot(context.Background())
	if len(snapshot.Activity) != 1 || snapshot.Activity[0].Outcome != domain.OutcomeFailed {
		t.Fatalf("expected one failed entry, got %+v", snapshot.Activity)
	}
	if snapshot.Activity[0].ExtractedData != nil {
		t.Fatalf("failed entry must not carry extracted data")
	}
}

func TestSubmitUploadOverwritesUploadedSlot(t *testing.T) {
	store := newSessionStoreFake(t)
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, &analyzerFake{analyze: successfulAnalysis}, UploadOptions{Uploader: "Yujin"})

	if _, err := uc.SubmitUpload(context.Background(), uploadRequest("S2", domain.DocPackingList, "new.pdf")); err != nil {
		t.Fatalf("SubmitUpload() error = %v", err)
	}
	uploaded, ok := store.slot(t, "S2", domain.DocPackingList).(domain.UploadedSlot)
	if !ok || uploaded.Name != "new.pdf" || uploaded.Uploader != "Yujin" {
		t.Fatalf("expected overwritten slot, got %#v", store.slot(t, "S2", domain.DocPackingList))
	}
	if uploaded.AnalysisSummary == "" {
		t.Fatalf("expected first attempt to store a summary")
	}

	uc.analyzer = &analyzerFake{analyze: func(context.Context, string) (domain.AnalysisResult, error) {
		return domain.AnalysisResult{Quantity: domain.Int(3)}, nil
	}}
	if _, err := uc.SubmitUpload(context.Background(), uploadRequest("S2", domain.DocPackingList, "newer.pdf")); err != nil {
		t.Fatalf("second SubmitUpload() error = %v", err)
	}
	uploaded, ok = store.slot(t, "S2", domain.DocPackingList).(domain.UploadedSlot)
	if !ok || uploaded.Name != "newer.pdf" {
		t.Fatalf("expected second overwrite, got %#v", store.slot(t, "S2", domain.DocPackingList))
	}
	if uploaded.AnalysisSummary != "" {
		t.Fatalf("expected empty summary to replace the previous one, got %q", uploaded.AnalysisSummary)
	}
}

func TestSubmitUploadUnknownShipment(t *testing.T) {
	store := newSessionStoreFake(t)
	analyzer := &analyzerFake{analyze: successfulAnalysis}
	publisher := &publisherFake{}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{}).WithEventPublisher(publisher)

	before, _ := store.Snapshot(context.Background())
	_, err := uc.SubmitUpload(context.Background(), uploadRequest("ghost", domain.DocCommercialInvoice, "ci.pdf"))
	if !domain.IsKind(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
	if analyzer.calls.Load() != 0 {
		t.Fatalf("analyzer must not be called for unknown shipment")
	}
	after, _ := store.Snapshot(context.Background())
	if len(after.Shipments) != len(before.Shipments) || len(after.Activity) != 0 {
		t.Fatalf("expected state unchanged")
	}
	if len(publisher.events) != 0 {
		t.Fatalf("expected no events, got %d", len(publisher.events))
	}
}

func TestSubmitUploadUnknownShipmentsLeaveNoSlotLocks(t *testing.T) {
	store := newSessionStoreFake(t)
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, &analyzerFake{analyze: successfulAnalysis}, UploadOptions{})

	for i := 0; i < 1000; i++ {
		_, err := uc.SubmitUpload(context.Background(), uploadRequest(fmt.Sprintf("ghost-%d", i), domain.DocCommercialInvoice, "ci.pdf"))
		if !domain.IsKind(err, domain.ErrShipmentNotFound) {
			t.Fatalf("upload %d: expected ErrShipmentNotFound, got %v", i, err)
		}
	}
	if n := uc.slots.size(); n != 0 {
		t.Fatalf("expected no slot lock entries after rejected uploads, got %d", n)
	}
}

func TestSlotLocksReleaseEntries(t *testing.T) {
	locks := newSlotLocks()
	unlock, err := locks.lock(context.Background(), "S1")
	if err != nil {
		t.Fatalf("lock() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.lock(ctx, "S1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled while held, got %v", err)
	}
	if n := locks.size(); n != 1 {
		t.Fatalf("expected held entry to survive a cancelled waiter, got %d", n)
	}

	unlock()
	if n := locks.size(); n != 0 {
		t.Fatalf("expected entry removed after unlock, got %d", n)
	}

	again, err := locks.lock(context.Background(), "S1")
	if err != nil {
		t.Fatalf("lock() after release error = %v", err)
	}
	again()
}

func TestSubmitUploadValidation(t *testing.T) {
	store := newSessionStoreFake(t)
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, &analyzerFake{}, UploadOptions{MaxFileSizeBytes: 1 << 20})

	tooLarge := uploadRequest("S1", domain.DocCommercialInvoice, "big.pdf")
	tooLarge.File.Size = 2 << 20

	cases := map[string]domain.UploadRequest{
		"no file":       {ShipmentID: "S1", DocumentType: domain.DocCommercialInvoice},
		"blank name":    uploadRequest("S1", domain.DocCommercialInvoice, "  "),
		"no shipment":   uploadRequest("", domain.DocCommercialInvoice, "ci.pdf"),
		"unknown type":  uploadRequest("S1", "Quotation", "q.pdf"),
		"over max size": tooLarge,
	}
	for name, req := range cases {
		if _, err := uc.SubmitUpload(context.Background(), req); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if status := store.slot(t, "S1", domain.DocCommercialInvoice).Status(); status != domain.StatusMissing {
		t.Fatalf("expected slot untouched, got %s", status)
	}
}

func TestSubmitUploadRejectsWhileBusy(t *testing.T) {
	store := newSessionStoreFake(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	analyzer := &analyzerFake{analyze: func(ctx context.Context, content string) (domain.AnalysisResult, error) {
		close(entered)
		<-release
		return successfulAnalysis(ctx, content)
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{})

	done := make(chan error, 1)
	go func() {
		_, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocCommercialInvoice, "ci.pdf"))
		done <- err
	}()
	<-entered

	if status := store.slot(t, "S1", domain.DocCommercialInvoice).Status(); status != domain.StatusProcessing {
		t.Fatalf("expected processing while analyzing, got %s", status)
	}
	_, err := uc.SubmitUpload(context.Background(), uploadRequest("S2", domain.DocBillOfLading, "bl.pdf"))
	if !domain.IsKind(err, domain.ErrUploadInProgress) {
		t.Fatalf("expected ErrUploadInProgress, got %v", err)
	}
	if status := store.slot(t, "S2", domain.DocBillOfLading).Status(); status != domain.StatusMissing {
		t.Fatalf("rejected upload must not touch state, got %s", status)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitUpload() error = %v", err)
	}
}

func TestSubmitUploadTimeoutResolvesToError(t *testing.T) {
	store := newSessionStoreFake(t)
	stuck := make(chan struct{})
	t.Cleanup(func() { close(stuck) })
	analyzer := &analyzerFake{analyze: func(context.Context, string) (domain.AnalysisResult, error) {
		<-stuck
		return domain.AnalysisResult{}, nil
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{AnalysisTimeout: 20 * time.Millisecond})

	_, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocCustomsDeclaration, "cd.pdf"))
	if !domain.IsKind(err, domain.ErrAnalysisFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected analysis failure with deadline, got %v", err)
	}
	if status := store.slot(t, "S1", domain.DocCustomsDeclaration).Status(); status != domain.StatusError {
		t.Fatalf("expected error status, got %s", status)
	}
}

func TestSubmitUploadCallerCancelStillResolvesSlot(t *testing.T) {
	store := newSessionStoreFake(t)
	ctx, cancel := context.WithCancel(context.Background())
	analyzer := &analyzerFake{analyze: func(ctx context.Context, _ string) (domain.AnalysisResult, error) {
		cancel()
		<-ctx.Done()
		return domain.AnalysisResult{}, ctx.Err()
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{})

	if _, err := uc.SubmitUpload(ctx, uploadRequest("S1", domain.DocSettlementStatement, "ss.pdf")); err == nil {
		t.Fatalf("expected error")
	}
	status := store.slot(t, "S1", domain.DocSettlementStatement).Status()
	if !status.Terminal() || status != domain.StatusError {
		t.Fatalf("expected terminal error status after cancel, got %s", status)
	}
}

func TestSubmitUploadAnalyzerPanicMarksError(t *testing.T) {
	store := newSessionStoreFake(t)
	analyzer := &analyzerFake{analyze: func(context.Context, string) (domain.AnalysisResult, error) {
		panic("boom")
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{})

	_, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocCommercialInvoice, "ci.pdf"))
	if !domain.IsKind(err, domain.ErrAnalysisFailed) || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected analysis failure mentioning panic, got %v", err)
	}
	if status := store.slot(t, "S1", domain.DocCommercialInvoice).Status(); status != domain.StatusError {
		t.Fatalf("expected error status, got %s", status)
	}
}

func TestSubmitUploadSerializesSameSlot(t *testing.T) {
	store := newSessionStoreFake(t)
	var active, peak atomic.Int32
	analyzer := &analyzerFake{analyze: func(ctx context.Context, content string) (domain.AnalysisResult, error) {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return successfulAnalysis(ctx, content)
	}}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, analyzer, UploadOptions{MaxInFlight: 4})

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocCommercialInvoice, fmt.Sprintf("ci-%d.pdf", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("SubmitUpload() error = %v", err)
		}
	}
	if peak.Load() != 1 {
		t.Fatalf("expected one analysis per slot at a time, got %d", peak.Load())
	}

	snapshot, _ := store.Snapshot(context.Background())
	if len(snapshot.Activity) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(snapshot.Activity))
	}
	uploaded, ok := store.slot(t, "S1", domain.DocCommercialInvoice).(domain.UploadedSlot)
	if !ok || uploaded.Name != snapshot.Activity[0].FileName {
		t.Fatalf("expected slot to match the last completed attempt, got %#v", store.slot(t, "S1", domain.DocCommercialInvoice))
	}
}

func TestSubmitUploadArchivesBody(t *testing.T) {
	store := newSessionStoreFake(t)
	archive := &archiveFake{}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, &analyzerFake{analyze: successfulAnalysis}, UploadOptions{}).
		WithArchive(archive)
	uc.now = func() time.Time { return time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC) }

	req := uploadRequest("S1", domain.DocCommercialInvoice, "ci final.pdf")
	req.Body = bytes.NewBufferString("%PDF")
	if _, err := uc.SubmitUpload(context.Background(), req); err != nil {
		t.Fatalf("SubmitUpload() error = %v", err)
	}
	if archive.savedKey != "03_KR_TO_CUSTOMER/INV-OLD/Commercial_Invoice/20260102_CI_ci_final.pdf" {
		t.Fatalf("unexpected archive key %s", archive.savedKey)
	}
	if archive.savedBody != "%PDF" {
		t.Fatalf("unexpected archive body %q", archive.savedBody)
	}
}

func TestSubmitUploadPublishErrorIsNotFatal(t *testing.T) {
	store := newSessionStoreFake(t)
	publisher := &publisherFake{err: errors.New("nats down")}
	uc := NewSubmitUploadUseCase(store, &extractorFake{}, &analyzerFake{analyze: successfulAnalysis}, UploadOptions{}).
		WithEventPublisher(publisher)

	if _, err := uc.SubmitUpload(context.Background(), uploadRequest("S1", domain.DocCommercialInvoice, "ci.pdf")); err != nil {
		t.Fatalf("SubmitUpload() error = %v", err)
	}
}

func TestDetectMIMEType(t *testing.T) {
	cases := map[string]string{
		"a.PDF":   "application/pdf",
		"b.xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"c.jpeg":  "image/jpeg",
		"noext":   "application/octet-stream",
		"d.table": "application/octet-stream",
	}
	for name, want := range cases {
		if got := DetectMIMEType(name); got != want {
			t.Fatalf("DetectMIMEType(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2025, 10, 30, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		shipment domain.Shipment
		docType  domain.DocumentType
		name     string
		want     string
	}{
		{
			shipment: domain.Shipment{InvoiceNumber: "TA717001250829", Origin: "태광KR", Destination: "CJ서부US"},
			docType:  domain.DocBillOfLading,
			name:     "bl scan.pdf",
			want:     "01_KR_TO_3PL/TA717001250829/Bill_of_Lading/20251030_BL_bl_scan.pdf",
		},
		{
			shipment: domain.Shipment{InvoiceNumber: "TA717001250829", Origin: "태광KR", Destination: "CJ서부US"},
			docType:  domain.DocSettlementStatement,
			name:     "ss.xlsx",
			want:     "00_SETTLEMENT/TA717001250829/Settlement_Statement/20251030_SS_ss.xlsx",
		},
		{
			shipment: domain.Shipment{Origin: "CJ서부US", Destination: "AMZUS"},
			docType:  domain.DocPackingList,
			name:     "../pl.pdf",
			want:     "02_3PL_OUTBOUND/unassigned/Packing_List/20251030_PL_pl.pdf",
		},
	}
	for _, tc := range cases {
		if got := archiveKey(tc.shipment, tc.docType, tc.name, at); got != tc.want {
			t.Fatalf("archiveKey(%s, %q) = %s, want %s", tc.docType, tc.name, got, tc.want)
		}
	}
}

func TestStorageLink(t *testing.T) {
	got := StorageLink("https://drive.example/", "MV0205020250510-02", "BL #1.pdf")
	if got != "https://drive.example/MV0205020250510-02/BL%20%231.pdf" {
		t.Fatalf("unexpected link %s", got)
	}
}
