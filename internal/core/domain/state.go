package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is the whole dashboard session: the shipment grid, the activity log
// (newest first) and every successful analysis.
type State struct {
	Shipments []Shipment
	Activity  []ActivityLogEntry
	Analyzed  []AnalyzedRecord
}

// Event is a state transition understood by Reduce.
type Event interface {
	apply(State) (State, error)
}

// UploadStarted marks a slot Processing before the analyzer is called.
type UploadStarted struct {
	ShipmentID   string
	DocumentType DocumentType
}

// UploadSucceeded replaces the slot with its Uploaded variant, applies a
// non-empty extracted invoice number and records the log entry and result.
type UploadSucceeded struct {
	ShipmentID   string
	DocumentType DocumentType
	Slot         UploadedSlot
	Result       AnalysisResult
	Entry        ActivityLogEntry
	AnalyzedAt   time.Time
}

// UploadFailed moves the slot to Error. Entry is optional.
type UploadFailed struct {
	ShipmentID   string
	DocumentType DocumentType
	Entry        *ActivityLogEntry
}

// Reduce applies ev to s and returns the next state. s is never modified; on
// error the returned state equals s.
func Reduce(s State, ev Event) (State, error) {
	if ev == nil {
		return s, WrapError(ErrInvalidInput, "reduce", errors.New("event is nil"))
	}
	next, err := ev.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func NewState(shipments []Shipment) (State, error) {
	out := State{Shipments: make([]Shipment, 0, len(shipments))}
	seen := make(map[string]struct{}, len(shipments))
	for _, raw := range shipments {
		sh, err := NewShipment(raw)
		if err != nil {
			return State{}, err
		}
		if _, dup := seen[sh.ID]; dup {
			return State{}, WrapError(ErrInvalidInput, "new state", fmt.Errorf("duplicate shipment id %q", sh.ID))
		}
		seen[sh.ID] = struct{}{}
		out.Shipments = append(out.Shipments, sh)
	}
	return out, nil
}

func (s State) Shipment(id string) (Shipment, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Shipment{}, false
	}
	return s.Shipments[idx], true
}

func (s State) Clone() State {
	out := State{
		Shipments: make([]Shipment, len(s.Shipments)),
		Activity:  append([]ActivityLogEntry(nil), s.Activity...),
		Analyzed:  append([]AnalyzedRecord(nil), s.Analyzed...),
	}
	for i, sh := range s.Shipments {
		out.Shipments[i] = sh.Clone()
	}
	return out
}

func (s State) indexOf(id string) int {
	for i, sh := range s.Shipments {
		if sh.ID == id {
			return i
		}
	}
	return -1
}

func (s State) withShipment(idx int, sh Shipment) State {
	shipments := make([]Shipment, len(s.Shipments))
	copy(shipments, s.Shipments)
	shipments[idx] = sh
	out := s
	out.Shipments = shipments
	return out
}

func (s State) withEntry(e ActivityLogEntry) State {
	activity := make([]ActivityLogEntry, 0, len(s.Activity)+1)
	activity = append(activity, e)
	activity = append(activity, s.Activity...)
	out := s
	out.Activity = activity
	return out
}

func (s State) replaceSlot(operation, shipmentID string, t DocumentType, slot Slot) (State, Shipment, error) {
	idx := s.indexOf(shipmentID)
	if idx < 0 {
		return s, Shipment{}, WrapError(ErrShipmentNotFound, operation, fmt.Errorf("id=%s", shipmentID))
	}
	sh, err := s.Shipments[idx].WithSlot(t, slot)
	if err != nil {
		return s, Shipment{}, fmt.Errorf("%s: %w", operation, err)
	}
	return s.withShipment(idx, sh), sh, nil
}

func (ev UploadStarted) apply(s State) (State, error) {
	next, _, err := s.replaceSlot("start upload", ev.ShipmentID, ev.DocumentType, ProcessingSlot{})
	return next, err
}

func (ev UploadSucceeded) apply(s State) (State, error) {
	if strings.TrimSpace(ev.Slot.Name) == "" {
		return s, WrapError(ErrInvalidInput, "complete upload", errors.New("uploaded slot has no file name"))
	}
	next, sh, err := s.replaceSlot("complete upload", ev.ShipmentID, ev.DocumentType, ev.Slot)
	if err != nil {
		return s, err
	}
	if invoice := strings.TrimSpace(ev.Result.InvoiceNumber); invoice != "" {
		sh.InvoiceNumber = invoice
		next = next.withShipment(next.indexOf(ev.ShipmentID), sh)
	}

	next = next.withEntry(ev.Entry)
	analyzed := make([]AnalyzedRecord, 0, len(next.Analyzed)+1)
	analyzed = append(analyzed, next.Analyzed...)
	next.Analyzed = append(analyzed, AnalyzedRecord{
		ShipmentID:   ev.ShipmentID,
		DocumentType: ev.DocumentType,
		AnalyzedAt:   ev.AnalyzedAt,
		Result:       ev.Result.Clone(),
	})
	return next, nil
}

func (ev UploadFailed) apply(s State) (State, error) {
	next, _, err := s.replaceSlot("fail upload", ev.ShipmentID, ev.DocumentType, ErrorSlot{})
	if err != nil {
		return s, err
	}
	if ev.Entry != nil {
		next = next.withEntry(*ev.Entry)
	}
	return next, nil
}
