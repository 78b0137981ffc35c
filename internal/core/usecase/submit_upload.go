package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/ports"
)

const (
	defaultUploader        = "Admin User"
	defaultStorageBaseURL  = "https://mock-drive.com"
	defaultAnalysisTimeout = 60 * time.Second
	defaultMaxFileSize     = 8 << 20
)

type UploadOptions struct {
	// Uploader is the current-user placeholder stamped on slots and log entries.
	Uploader          string
	StorageBaseURL    string
	AnalysisTimeout   time.Duration
	MaxFileSizeBytes  int64
	MaxInFlight       int
	LogFailedAttempts bool
}

func (o UploadOptions) normalize() UploadOptions {
	out := o
	if strings.TrimSpace(out.Uploader) == "" {
		out.Uploader = defaultUploader
	}
	if strings.TrimSpace(out.StorageBaseURL) == "" {
		out.StorageBaseURL = defaultStorageBaseURL
	}
	if out.AnalysisTimeout <= 0 {
		out.AnalysisTimeout = defaultAnalysisTimeout
	}
	if out.MaxFileSizeBytes <= 0 {
		out.MaxFileSizeBytes = defaultMaxFileSize
	}
	if out.MaxInFlight <= 0 {
		out.MaxInFlight = 1
	}
	return out
}

// SubmitUploadUseCase drives one slot through Processing to Uploaded or Error.
//
// At most MaxInFlight attempts run at once; extra submissions are rejected
// with ErrUploadInProgress. Attempts on the same slot are serialized, so the
// last completed attempt wins and fields from two attempts never mix.
type SubmitUploadUseCase struct {
	store     ports.SessionStore
	extractor ports.ContentExtractor
	analyzer  ports.Analyzer
	archive   ports.ObjectStorage
	events    ports.UploadEventPublisher
	observer  ports.UploadObserver

	opts  UploadOptions
	now   func() time.Time
	newID func() string

	inFlight chan struct{}
	slots    *slotLocks
}

func NewSubmitUploadUseCase(
	store ports.SessionStore,
	extractor ports.ContentExtractor,
	analyzer ports.Analyzer,
	opts UploadOptions,
) *SubmitUploadUseCase {
	opts = opts.normalize()
	return &SubmitUploadUseCase{
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     newLogID,
		inFlight:  make(chan struct{}, opts.MaxInFlight),
		slots:     newSlotLocks(),
	}
}

// WithArchive stores raw upload bodies before analysis.
func (uc *SubmitUploadUseCase) WithArchive(storage ports.ObjectStorage) *SubmitUploadUseCase {
	uc.archive = storage
	return uc
}

func (uc *SubmitUploadUseCase) WithEventPublisher(publisher ports.UploadEventPublisher) *SubmitUploadUseCase {
	uc.events = publisher
	return uc
}

func (uc *SubmitUploadUseCase) WithObserver(observer ports.UploadObserver) *SubmitUploadUseCase {
	uc.observer = observer
	return uc
}

// InFlight reports how many attempts currently hold the in-flight gate.
func (uc *SubmitUploadUseCase) InFlight() int {
	return len(uc.inFlight)
}

func (uc *SubmitUploadUseCase) SubmitUpload(ctx context.Context, req domain.UploadRequest) (*domain.UploadOutcome, error) {
	file, err := uc.validate(req)
	if err != nil {
		return nil, err
	}

	select {
	case uc.inFlight <- struct{}{}:
	default:
		return nil, domain.WrapError(domain.ErrUploadInProgress, "submit upload", fmt.Errorf("limit=%d", cap(uc.inFlight)))
	}
	defer func() { <-uc.inFlight }()

	unlock, err := uc.slots.lock(ctx, slotKey(req.ShipmentID, req.DocumentType))
	if err != nil {
		return nil, fmt.Errorf("wait for slot: %w", err)
	}
	defer unlock()

	started, err := uc.store.Apply(ctx, domain.UploadStarted{
		ShipmentID:   req.ShipmentID,
		DocumentType: req.DocumentType,
	})
	if err != nil {
		return nil, fmt.Errorf("set status=processing: %w", err)
	}
	shipment, _ := started.Shipment(req.ShipmentID)

	startedAt := time.Now()
	if uc.observer != nil {
		uc.observer.UploadStarted(req.DocumentType)
	}

	attempt := uploadAttempt{
		req:        req,
		file:       file,
		invoice:    shipment.InvoiceNumber,
		link:       StorageLink(uc.opts.StorageBaseURL, shipment.InvoiceNumber, file.Name),
		archiveKey: archiveKey(shipment, req.DocumentType, file.Name, uc.now()),
		startedAt:  startedAt,
	}

	result, runErr := uc.run(ctx, attempt)

	// The terminal transition must land even if the caller went away.
	finalCtx := context.WithoutCancel(ctx)
	if runErr != nil {
		return nil, uc.fail(finalCtx, attempt, runErr)
	}
	return uc.complete(finalCtx, attempt, result)
}

type uploadAttempt struct {
	req        domain.UploadRequest
	file       domain.FileDescriptor
	invoice    string
	link       string
	archiveKey string
	startedAt  time.Time
}

type analysisReply struct {
	result domain.AnalysisResult
	err    error
}

func (uc *SubmitUploadUseCase) run(ctx context.Context, a uploadAttempt) (domain.AnalysisResult, error) {
	analyzeCtx, cancel := context.WithTimeout(ctx, uc.opts.AnalysisTimeout)
	defer cancel()

	if uc.archive != nil && a.req.Body != nil {
		if err := uc.archive.Save(analyzeCtx, a.archiveKey, a.req.Body); err != nil {
			return domain.AnalysisResult{}, fmt.Errorf("archive upload: %w", err)
		}
	}

	content, err := uc.extractor.Extract(analyzeCtx, a.file, a.req.DocumentType, a.req.ShipmentID)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("build content surrogate: %w", err)
	}

	replies := make(chan analysisReply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				replies <- analysisReply{err: fmt.Errorf("analyzer panic: %v", r)}
			}
		}()
		result, err := uc.analyzer.Analyze(analyzeCtx, content, a.req.DocumentType)
		replies <- analysisReply{result: result, err: err}
	}()

	select {
	case reply := <-replies:
		if reply.err != nil {
			return domain.AnalysisResult{}, fmt.Errorf("analyze document: %w", reply.err)
		}
		return reply.result, nil
	case <-analyzeCtx.Done():
		return domain.AnalysisResult{}, fmt.Errorf("analyze document: %w", analyzeCtx.Err())
	}
}

func (uc *SubmitUploadUseCase) complete(ctx context.Context, a uploadAttempt, result domain.AnalysisResult) (*domain.UploadOutcome, error) {
	uploadedAt := uc.now()
	slot, err := domain.NewUploadedSlot(a.file.Name, uploadedAt, uc.opts.Uploader, a.link, result.AnalysisSummary)
	if err != nil {
		return nil, uc.fail(ctx, a, err)
	}

	extracted := result.Clone()
	entry := domain.ActivityLogEntry{
		ID:            uc.newID(),
		FileName:      a.file.Name,
		StorageLink:   a.link,
		Timestamp:     uploadedAt,
		DocumentType:  a.req.DocumentType,
		Uploader:      uc.opts.Uploader,
		ShipmentID:    a.req.ShipmentID,
		Outcome:       domain.OutcomeSuccess,
		Comments:      a.req.Comments,
		ExtractedData: &extracted,
	}

	next, err := uc.store.Apply(ctx, domain.UploadSucceeded{
		ShipmentID:   a.req.ShipmentID,
		DocumentType: a.req.DocumentType,
		Slot:         slot,
		Result:       result,
		Entry:        entry,
		AnalyzedAt:   uploadedAt,
	})
	if err != nil {
		return nil, uc.fail(ctx, a, fmt.Errorf("set status=uploaded: %w", err))
	}
	shipment, _ := next.Shipment(a.req.ShipmentID)

	uc.finish(a, domain.OutcomeSuccess)
	uc.publish(ctx, a, domain.UploadEvent{
		ID:            entry.ID,
		InvoiceNumber: shipment.InvoiceNumber,
		StorageLink:   a.link,
		Outcome:       domain.OutcomeSuccess,
		OccurredAt:    uploadedAt,
		Result:        &extracted,
	})

	return &domain.UploadOutcome{
		ShipmentID:    a.req.ShipmentID,
		InvoiceNumber: shipment.InvoiceNumber,
		DocumentType:  a.req.DocumentType,
		Slot:          domain.RecordOf(slot),
		Entry:         &entry,
		Result:        result,
	}, nil
}

func (uc *SubmitUploadUseCase) fail(ctx context.Context, a uploadAttempt, cause error) error {
	failedAt := uc.now()
	id := uc.newID()

	var entry *domain.ActivityLogEntry
	if uc.opts.LogFailedAttempts {
		entry = &domain.ActivityLogEntry{
			ID:           id,
			FileName:     a.file.Name,
			StorageLink:  a.link,
			Timestamp:    failedAt,
			DocumentType: a.req.DocumentType,
			Uploader:     uc.opts.Uploader,
			ShipmentID:   a.req.ShipmentID,
			Outcome:      domain.OutcomeFailed,
			Comments:     a.req.Comments,
		}
	}

	_, markErr := uc.store.Apply(ctx, domain.UploadFailed{
		ShipmentID:   a.req.ShipmentID,
		DocumentType: a.req.DocumentType,
		Entry:        entry,
	})

	slog.Warn("upload_analysis_failed",
		"shipment_id", a.req.ShipmentID,
		"document_type", string(a.req.DocumentType),
		"file_name", a.file.Name,
		"error", cause,
	)
	uc.finish(a, domain.OutcomeFailed)
	uc.publish(ctx, a, domain.UploadEvent{
		ID:            id,
		InvoiceNumber: a.invoice,
		StorageLink:   a.link,
		Outcome:       domain.OutcomeFailed,
		Error:         cause.Error(),
		OccurredAt:    failedAt,
	})

	err := domain.WrapError(domain.ErrAnalysisFailed, "submit upload", cause)
	if markErr != nil {
		return fmt.Errorf("%w; mark slot error: %v", err, markErr)
	}
	return err
}

func (uc *SubmitUploadUseCase) finish(a uploadAttempt, outcome domain.Outcome) {
	if uc.observer != nil {
		uc.observer.UploadFinished(a.req.DocumentType, outcome, time.Since(a.startedAt))
	}
}

func (uc *SubmitUploadUseCase) publish(ctx context.Context, a uploadAttempt, ev domain.UploadEvent) {
	if uc.events == nil {
		return
	}
	ev.ShipmentID = a.req.ShipmentID
	ev.DocumentType = a.req.DocumentType
	ev.FileName = a.file.Name
	ev.FileSize = a.file.Size
	ev.Uploader = uc.opts.Uploader
	ev.Comments = a.req.Comments

	if err := uc.events.PublishUploadEvent(ctx, ev); err != nil {
		slog.Warn("upload_event_publish_failed",
			"event_id", ev.ID,
			"shipment_id", ev.ShipmentID,
			"error", err,
		)
	}
}

func (uc *SubmitUploadUseCase) validate(req domain.UploadRequest) (domain.FileDescriptor, error) {
	if req.File == nil || strings.TrimSpace(req.File.Name) == "" {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "submit upload", errors.New("file is required"))
	}
	if strings.TrimSpace(req.ShipmentID) == "" {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "submit upload", errors.New("shipment id is required"))
	}
	if !req.DocumentType.Valid() {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "submit upload", fmt.Errorf("unknown document type %q", req.DocumentType))
	}
	if req.File.Size < 0 {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "submit upload", errors.New("file size is negative"))
	}
	if req.File.Size > uc.opts.MaxFileSizeBytes {
		return domain.FileDescriptor{}, domain.WrapError(domain.ErrInvalidInput, "submit upload", fmt.Errorf(
			"file size (%.2fMB) exceeds limit (%.2fMB)",
			float64(req.File.Size)/(1<<20),
			float64(uc.opts.MaxFileSizeBytes)/(1<<20),
		))
	}

	file := *req.File
	if strings.TrimSpace(file.MIMEType) == "" {
		file.MIMEType = DetectMIMEType(file.Name)
	}
	return file, nil
}

func newLogID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "log-" + uuid.NewString()
	}
	return "log-" + id.String()
}
