package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
)

// Analyzer fabricates plausible results when no model backend is configured.
// Output is a pure function of the content and document type.
type Analyzer struct {
	delay time.Duration
}

func NewAnalyzer(delay time.Duration) *Analyzer {
	if delay < 0 {
		delay = 0
	}
	return &Analyzer{delay: delay}
}

func (a *Analyzer) Analyze(ctx context.Context, content string, docType domain.DocumentType) (domain.AnalysisResult, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return domain.AnalysisResult{}, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return domain.AnalysisResult{}, err
	}

	seq := newSequence(string(docType) + "\x00" + content)
	amount := math.Round((seq.float()*10000+500)*100) / 100
	quantity := 10 + int(seq.next()%200)
	skus := make([]string, 0, 3)
	for len(skus) < 3 {
		skus = append(skus, fmt.Sprintf("SKU%d", 1000+seq.next()%9000))
	}

	return domain.AnalysisResult{
		InvoiceNumber: fmt.Sprintf("INV-%06d", seq.next()%1000000),
		TotalAmount:   domain.Float64(amount),
		Quantity:      domain.Int(quantity),
		SKUs:          skus,
		AnalysisSummary: fmt.Sprintf(
			"This document appears to be a %s for a shipment of %d items, with a total value of $%.2f.",
			docType, quantity, amount,
		),
	}, nil
}

// sequence is a splitmix64 stream seeded from an FNV hash.
type sequence struct {
	state uint64
}

func newSequence(seed string) *sequence {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return &sequence{state: h.Sum64()}
}

func (s *sequence) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (s *sequence) float() float64 {
	return float64(s.next()>>11) / (1 << 53)
}
