package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

//go:embed shipments.yaml
var defaultSeed []byte

type seedFile struct {
	Shipments []shipmentRecord `yaml:"shipments"`
}

type shipmentRecord struct {
	ID            string                `yaml:"id"`
	InvoiceNumber string                `yaml:"invoice_number"`
	ShippingDate  string                `yaml:"shipping_date"`
	Origin        string                `yaml:"origin"`
	Destination   string                `yaml:"destination"`
	Carrier       string                `yaml:"carrier"`
	Documents     map[string]slotRecord `yaml:"documents"`
}

type slotRecord struct {
	Status          string `yaml:"status"`
	Name            string `yaml:"name"`
	UploadDate      string `yaml:"upload_date"`
	Uploader        string `yaml:"uploader"`
	StorageLink     string `yaml:"storage_link"`
	AnalysisSummary string `yaml:"analysis_summary"`
}

// Default returns the embedded demo shipments.
func Default() ([]domain.Shipment, error) {
	return Parse(defaultSeed)
}

// Load reads shipments from path, or the embedded demo set when path is empty.
func Load(path string) ([]domain.Shipment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML seed. Document keys accept display names or
// abbreviations; types the file leaves out start as Missing.
func Parse(raw []byte) ([]domain.Shipment, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)

	var file seedFile
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse seed", err)
	}

	out := make([]domain.Shipment, 0, len(file.Shipments))
	for i, rec := range file.Shipments {
		sh, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("shipment #%d: %w", i+1, err)
		}
		out = append(out, sh)
	}
	return out, nil
}

func (r shipmentRecord) toDomain() (domain.Shipment, error) {
	docs := make(map[domain.DocumentType]domain.Slot, len(r.Documents))
	for key, rec := range r.Documents {
		docType, err := domain.ParseDocumentType(key)
		if err != nil {
			return domain.Shipment{}, err
		}
		slot, err := rec.toDomain()
		if err != nil {
			return domain.Shipment{}, fmt.Errorf("%s: %w", docType, err)
		}
		docs[docType] = slot
	}

	return domain.NewShipment(domain.Shipment{
		ID:            strings.TrimSpace(r.ID),
		InvoiceNumber: r.InvoiceNumber,
		ShippingDate:  r.ShippingDate,
		Origin:        r.Origin,
		Destination:   r.Destination,
		Carrier:       r.Carrier,
		Documents:     docs,
	})
}

func (r slotRecord) toDomain() (domain.Slot, error) {
	status, err := domain.ParseDocumentStatus(r.Status)
	if err != nil {
		return nil, err
	}
	rec := domain.SlotRecord{
		Status:          status,
		Name:            r.Name,
		Uploader:        r.Uploader,
		StorageLink:     r.StorageLink,
		AnalysisSummary: r.AnalysisSummary,
	}
	if strings.TrimSpace(r.UploadDate) != "" {
		at, err := parseDate(r.UploadDate)
		if err != nil {
			return nil, err
		}
		rec.UploadDate = &at
	}
	return domain.SlotFromRecord(rec)
}

func parseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if at, err := time.Parse(layout, value); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, domain.WrapError(domain.ErrInvalidInput, "parse seed", fmt.Errorf("invalid upload_date %q", raw))
}
