package parser

import (
	"strings"

	"github.com/azhao/scanpay/internal/models"
)

// Template is a hand-tuned re-parse for a vendor whose layout the generic
// pipeline handles poorly. Templates are matched against the restaurant name
// the generic pass extracted; a match re-reads the raw lines with narrower
// rules and overrides generic fields only where it found something.
type Template struct {
	// Vendor is the canonical restaurant name this template produces.
	Vendor string

	// NameFragments match against the generically-extracted name,
	// case-insensitively. Any hit selects the template.
	NameFragments []string

	// ItemHeader is the exact header this vendor prints above its item
	// section. Item lines are read only between it and the first summary
	// keyword.
	ItemHeader string

	// AddressFragments and PhoneFragment identify metadata lines by
	// substring, replacing the generic shape probes.
	AddressFragments []string
	PhoneFragment    string
}

// defaultTemplates is the registry of known vendor layouts.
var defaultTemplates = []Template{
	{
		Vendor:           "P.F. Chang's",
		NameFragments:    []string{"CHANG"},
		ItemHeader:       "QTY DESCRIPTION",
		AddressFragments: []string{"Fashion Island", "Newport Beach"},
		PhoneFragment:    "(949)",
	},
}

// Match reports whether the template applies to the given restaurant name.
func (t Template) Match(name string) bool {
	upper := strings.ToUpper(name)
	for _, frag := range t.NameFragments {
		if strings.Contains(upper, strings.ToUpper(frag)) {
			return true
		}
	}
	return false
}

// vendorResult carries what a template parse actually found. Zero/empty
// fields mean the template found nothing there and the generic value stands.
type vendorResult struct {
	info    models.RestaurantInfo
	items   []models.ReceiptItem
	amounts summaryAmounts
}

// parse re-reads the raw lines with the template's rules.
func (t Template) parse(lines []string, limits Limits) vendorResult {
	res := vendorResult{info: models.RestaurantInfo{Name: t.Vendor}}

	inItems := false
	e := itemExtractor{limits: limits}
	meta := metadataExtractor{limits: limits}

	for _, line := range lines {
		for _, frag := range t.AddressFragments {
			if strings.Contains(line, frag) {
				res.info.Address = append(res.info.Address, strings.TrimSpace(line))
			}
		}
		if t.PhoneFragment != "" && res.info.Phone == "" && strings.Contains(line, t.PhoneFragment) {
			res.info.Phone = strings.TrimSpace(line)
		}

		if strings.Contains(line, t.ItemHeader) {
			inItems = true
			continue
		}
		if role := summaryRole(line); role != RoleUnclassified && isSummaryTrigger(line) {
			inItems = false
			meta.consume(ClassifiedLine{Text: line, Role: role})
			continue
		}
		if !inItems {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "*") {
			e.modifierLine(line)
		} else {
			e.itemLine(line)
		}
	}
	e.flush()

	res.items = e.items
	res.amounts = meta.amounts
	return res
}

// applyTemplate overrides the generic results field-by-field with whatever
// the vendor parse produced. A vendor parse that found no items changes
// nothing about the item list or totals; the generic result simply stands,
// the same "no items" outcome the generic path reports.
func applyTemplate(t Template, lines []string, limits Limits, items []models.ReceiptItem, info *models.RestaurantInfo, amounts *summaryAmounts) []models.ReceiptItem {
	res := t.parse(lines, limits)

	if res.info.Name != "" {
		info.Name = res.info.Name
	}
	if len(res.info.Address) > 0 {
		info.Address = res.info.Address
	}
	if res.info.Phone != "" {
		info.Phone = res.info.Phone
	}

	if len(res.items) > 0 {
		items = res.items
	}
	if res.amounts.subtotalFound {
		amounts.subtotal = res.amounts.subtotal
		amounts.subtotalFound = true
	}
	if res.amounts.taxFound {
		amounts.tax = res.amounts.tax
		amounts.taxFound = true
	}
	if res.amounts.totalFound {
		amounts.total = res.amounts.total
		amounts.totalFound = true
	}
	return items
}
