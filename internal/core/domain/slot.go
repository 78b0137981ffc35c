package domain

import (
	"errors"
	"strings"
	"time"
)

// Slot is the per-shipment, per-document-type status record. Each status has
// its own concrete type, so only an UploadedSlot can carry file details.
type Slot interface {
	Status() DocumentStatus
	isSlot()
}

type MissingSlot struct{}

type ProcessingSlot struct{}

// DuplicateSlot is set by an external deduplication step, never by uploads.
type DuplicateSlot struct{}

type ErrorSlot struct{}

type UploadedSlot struct {
	Name            string
	UploadDate      time.Time
	Uploader        string
	StorageLink     string
	AnalysisSummary string
}

func (MissingSlot) Status() DocumentStatus    { return StatusMissing }
func (ProcessingSlot) Status() DocumentStatus { return StatusProcessing }
func (DuplicateSlot) Status() DocumentStatus  { return StatusDuplicate }
func (ErrorSlot) Status() DocumentStatus      { return StatusError }
func (UploadedSlot) Status() DocumentStatus   { return StatusUploaded }

func (MissingSlot) isSlot()    {}
func (ProcessingSlot) isSlot() {}
func (DuplicateSlot) isSlot()  {}
func (ErrorSlot) isSlot()      {}
func (UploadedSlot) isSlot()   {}

// NewUploadedSlot builds an Uploaded slot; the file name is mandatory.
func NewUploadedSlot(name string, uploadDate time.Time, uploader, storageLink, summary string) (UploadedSlot, error) {
	if strings.TrimSpace(name) == "" {
		return UploadedSlot{}, WrapError(ErrInvalidInput, "new uploaded slot", errors.New("file name is required"))
	}
	return UploadedSlot{
		Name:            name,
		UploadDate:      uploadDate,
		Uploader:        uploader,
		StorageLink:     storageLink,
		AnalysisSummary: summary,
	}, nil
}

// SlotRecord is the flat wire/seed representation of a Slot.
type SlotRecord struct {
	Status          DocumentStatus `json:"status" yaml:"status"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
	UploadDate      *time.Time     `json:"uploadDate,omitempty" yaml:"-"`
	Uploader        string         `json:"uploader,omitempty" yaml:"uploader,omitempty"`
	StorageLink     string         `json:"storageLink,omitempty" yaml:"storage_link,omitempty"`
	AnalysisSummary string         `json:"analysisSummary,omitempty" yaml:"analysis_summary,omitempty"`
}

func RecordOf(slot Slot) SlotRecord {
	switch s := slot.(type) {
	case UploadedSlot:
		uploadDate := s.UploadDate
		return SlotRecord{
			Status:          StatusUploaded,
			Name:            s.Name,
			UploadDate:      &uploadDate,
			Uploader:        s.Uploader,
			StorageLink:     s.StorageLink,
			AnalysisSummary: s.AnalysisSummary,
		}
	case nil:
		return SlotRecord{Status: StatusMissing}
	default:
		return SlotRecord{Status: s.Status()}
	}
}

// SlotFromRecord converts a flat record back into its variant. File fields on
// non-Uploaded records are dropped.
func SlotFromRecord(rec SlotRecord) (Slot, error) {
	switch rec.Status {
	case StatusMissing, "":
		return MissingSlot{}, nil
	case StatusProcessing:
		return ProcessingSlot{}, nil
	case StatusDuplicate:
		return DuplicateSlot{}, nil
	case StatusError:
		return ErrorSlot{}, nil
	case StatusUploaded:
		var uploadDate time.Time
		if rec.UploadDate != nil {
			uploadDate = *rec.UploadDate
		}
		return NewUploadedSlot(rec.Name, uploadDate, rec.Uploader, rec.StorageLink, rec.AnalysisSummary)
	default:
		return nil, WrapError(ErrInvalidInput, "slot from record", errors.New("unknown status "+string(rec.Status)))
	}
}
