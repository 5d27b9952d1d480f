// Package parser turns the unordered, noisy line sequence an OCR engine
// reads off a printed restaurant receipt into a structured Receipt.
//
// The pipeline is a pure, synchronous transformation: classify each line,
// extract items and modifiers from the item section, pull merchant metadata
// and summary amounts from the rest, optionally re-parse with a vendor
// template, then assemble. It never fails: a receipt with zero items is a
// valid result with StatusEmpty, and lines matching no pattern are skipped,
// never propagated as errors.
package parser

import (
	"time"

	"github.com/google/uuid"

	"github.com/azhao/scanpay/internal/models"
)

// Parser holds the tunables for the parsing pipeline. The zero value is not
// usable; use New.
type Parser struct {
	limits    Limits
	templates []Template
	now       func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithLimits overrides the plausibility bounds for extracted amounts.
func WithLimits(l Limits) Option {
	return func(p *Parser) { p.limits = l }
}

// WithTemplates replaces the vendor template registry.
func WithTemplates(ts []Template) Option {
	return func(p *Parser) { p.templates = ts }
}

// withTimeSource is used by tests to pin receipt timestamps.
func withTimeSource(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a Parser with default limits and the built-in vendor
// templates.
func New(opts ...Option) *Parser {
	p := &Parser{
		limits:    DefaultLimits(),
		templates: defaultTemplates,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse assembles a Receipt from one scan's recognized lines, in
// top-to-bottom reading order. It always returns a receipt: total parse
// failure is only observable as an empty item list.
func (p *Parser) Parse(lines []string) *models.Receipt {
	classified := Classify(lines)

	items := extractItems(classified, p.limits)

	meta := metadataExtractor{limits: p.limits}
	for _, line := range classified {
		meta.consume(line)
	}

	// Vendor override: a known layout gets a second, narrower pass whose
	// non-empty findings win field-by-field.
	for _, t := range p.templates {
		if t.Match(meta.info.Name) {
			items = applyTemplate(t, lines, p.limits, items, &meta.info, &meta.amounts)
			break
		}
	}

	subtotal, tax, total := meta.derive(items)

	for i := range items {
		items[i].ID = uuid.New().String()
	}

	status := models.StatusComplete
	if len(items) == 0 {
		status = models.StatusEmpty
	}

	return &models.Receipt{
		ID:         uuid.New().String(),
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: total,
		Restaurant: meta.info,
		Status:     status,
		CreatedAt:  p.now().Unix(),
	}
}
