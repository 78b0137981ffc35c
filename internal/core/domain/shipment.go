package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Shipment struct {
	ID            string
	InvoiceNumber string
	ShippingDate  string
	Origin        string
	Destination   string
	Carrier       string
	Documents     map[DocumentType]Slot
}

// NewShipment returns a shipment whose slot mapping is total: every recognized
// type is present, absent ones default to Missing and unknown keys are dropped.
func NewShipment(s Shipment) (Shipment, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Shipment{}, WrapError(ErrInvalidInput, "new shipment", errors.New("shipment id is required"))
	}
	out := s
	out.Documents = make(map[DocumentType]Slot, DocumentTypeCount())
	for _, t := range documentTypes {
		slot, ok := s.Documents[t]
		if !ok || slot == nil {
			slot = MissingSlot{}
		}
		out.Documents[t] = slot
	}
	return out, nil
}

// SlotFor never returns nil.
func (s Shipment) SlotFor(t DocumentType) Slot {
	if slot, ok := s.Documents[t]; ok && slot != nil {
		return slot
	}
	return MissingSlot{}
}

// WithSlot returns a copy of the shipment with one slot replaced. The receiver
// is left untouched.
func (s Shipment) WithSlot(t DocumentType, slot Slot) (Shipment, error) {
	if !t.Valid() {
		return s, WrapError(ErrInvalidInput, "replace slot", fmt.Errorf("unknown document type %q", t))
	}
	if slot == nil {
		return s, WrapError(ErrInvalidInput, "replace slot", errors.New("slot is nil"))
	}
	out := s.Clone()
	out.Documents[t] = slot
	return out, nil
}

// Clone copies the slot map; slot values are immutable so they are shared.
func (s Shipment) Clone() Shipment {
	out := s
	out.Documents = make(map[DocumentType]Slot, len(s.Documents))
	for k, v := range s.Documents {
		out.Documents[k] = v
	}
	return out
}

func (s Shipment) CountStatus(status DocumentStatus) int {
	n := 0
	for _, t := range documentTypes {
		if s.SlotFor(t).Status() == status {
			n++
		}
	}
	return n
}
