package domain

// DocumentTypeInfo is one entry of the ordered document-type catalogue.
type DocumentTypeInfo struct {
	Name         DocumentType `json:"name"`
	Abbreviation string       `json:"abbreviation"`
}

func DocumentTypeCatalogue() []DocumentTypeInfo {
	out := make([]DocumentTypeInfo, 0, len(documentTypes))
	for _, t := range documentTypes {
		out = append(out, DocumentTypeInfo{Name: t, Abbreviation: t.Abbreviation()})
	}
	return out
}

type DocumentSlotView struct {
	DocumentType DocumentType `json:"documentType"`
	Abbreviation string       `json:"abbreviation"`
	SlotRecord
}

// ShipmentView is the grid row served to clients; slots follow display order.
type ShipmentView struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoiceNumber"`
	ShippingDate  string             `json:"shippingDate"`
	Origin        string             `json:"origin"`
	Destination   string             `json:"destination"`
	Carrier       string             `json:"carrier"`
	Uploaded      int                `json:"uploaded"`
	Documents     []DocumentSlotView `json:"documents"`
}

func (s Shipment) View() ShipmentView {
	docs := make([]DocumentSlotView, 0, len(documentTypes))
	for _, t := range documentTypes {
		docs = append(docs, DocumentSlotView{
			DocumentType: t,
			Abbreviation: t.Abbreviation(),
			SlotRecord:   RecordOf(s.SlotFor(t)),
		})
	}
	return ShipmentView{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		ShippingDate:  s.ShippingDate,
		Origin:        s.Origin,
		Destination:   s.Destination,
		Carrier:       s.Carrier,
		Uploaded:      s.CountStatus(StatusUploaded),
		Documents:     docs,
	}
}

func ShipmentViews(shipments []Shipment) []ShipmentView {
	out := make([]ShipmentView, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, s.View())
	}
	return out
}
