package usecase

import (
	"context"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// StorageLink synthesizes the reference a file-storage collaborator would
// hand out for a shipment's file. No I/O happens here.
func StorageLink(baseURL, invoiceNumber, fileName string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return base + "/" + url.PathEscape(invoiceNumber) + "/" + url.PathEscape(fileName)
}

var mimeTypesByExtension = map[string]string{
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// DetectMIMEType guesses a content type from the file extension.
func DetectMIMEType(fileName string) string {
	if mimeType, ok := mimeTypesByExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

// archiveKey lays raw uploads out as
// {category}/{invoice}/{document type}/YYYYMMDD_{abbr}_{file name}.
func archiveKey(shipment domain.Shipment, docType domain.DocumentType, fileName string, uploadedAt time.Time) string {
	invoice := sanitizeFilename(shipment.InvoiceNumber)
	if invoice == "document.bin" {
		invoice = "unassigned"
	}
	category := domain.CategorizeShipment(shipment.Origin, shipment.Destination, docType)
	name := uploadedAt.Format("20060102") + "_" + docType.Abbreviation() + "_" + sanitizeFilename(fileName)
	return path.Join(string(category), invoice, sanitizeFilename(string(docType)), name)
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

func slotKey(shipmentID string, docType domain.DocumentType) string {
	return shipmentID + "\x00" + string(docType)
}

// slotLocks hands out one context-aware mutex per slot key. An entry lives
// only while some caller holds or waits on it.
type slotLocks struct {
	mu    sync.Mutex
	locks map[string]*slotLock
}

type slotLock struct {
	ch   chan struct{}
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[string]*slotLock)}
}

func (l *slotLocks) lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sl, ok := l.locks[key]
	if !ok {
		sl = &slotLock{ch: make(chan struct{}, 1)}
		l.locks[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	select {
	case sl.ch <- struct{}{}:
		return func() {
			<-sl.ch
			l.release(key, sl)
		}, nil
	case <-ctx.Done():
		l.release(key, sl)
		return nil, ctx.Err()
	}
}

func (l *slotLocks) release(key string, sl *slotLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *slotLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
