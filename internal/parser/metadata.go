package parser

import (
	"strings"

	"github.com/azhao/scanpay/internal/models"
)

// summaryAmounts holds the subtotal/tax/total amounts read off the receipt,
// with found flags so derivation fallbacks know what was actually printed.
type summaryAmounts struct {
	subtotal      float64
	subtotalFound bool
	tax           float64
	taxFound      bool
	total         float64
	totalFound    bool
}

// metadataExtractor accumulates merchant metadata and summary amounts from
// classified lines. Phone, date and order number are first-match-wins: a
// later candidate never overwrites an already-found value. Address lines
// accumulate in order.
type metadataExtractor struct {
	limits  Limits
	info    models.RestaurantInfo
	amounts summaryAmounts
}

func (m *metadataExtractor) consume(line ClassifiedLine) {
	switch line.Role {
	case RoleRestaurantName:
		m.info.Name = strings.TrimSpace(line.Text)
	case RoleAddress:
		m.info.Address = append(m.info.Address, strings.TrimSpace(line.Text))
	case RolePhone:
		if m.info.Phone == "" {
			m.info.Phone = strings.TrimSpace(line.Text)
		}
	case RoleDate:
		if m.info.Date == "" {
			m.info.Date = strings.TrimSpace(line.Text)
		}
	case RoleOrderNumber:
		if m.info.OrderNumber == "" {
			m.info.OrderNumber = strings.TrimSpace(line.Text)
		}
	case RoleSubtotal:
		if !m.amounts.subtotalFound {
			if v, ok := summaryAmount(line.Text, m.limits.Summary); ok {
				m.amounts.subtotal = v
				m.amounts.subtotalFound = true
			}
		}
	case RoleTax:
		if !m.amounts.taxFound {
			if v, ok := summaryAmount(line.Text, m.limits.Tax); ok {
				m.amounts.tax = v
				m.amounts.taxFound = true
			}
		}
	case RoleTotal:
		if !m.amounts.totalFound {
			if v, ok := summaryAmount(line.Text, m.limits.Summary); ok {
				m.amounts.total = v
				m.amounts.totalFound = true
			}
		}
	}
}

// summaryAmount pulls the amount off a summary line. Colon-delimited layouts
// ("Subtotal: $12.34") are extracted from the substring after the colon so a
// stray number in the label can't win, falling back to the whole line.
func summaryAmount(text string, max float64) (float64, bool) {
	if idx := strings.Index(text, ":"); idx >= 0 {
		if match, ok := ExtractPrice(text[idx+1:], max); ok {
			return match.Value, true
		}
	}
	match, ok := ExtractPrice(text, max)
	if !ok {
		return 0, false
	}
	return match.Value, true
}

// derive applies the fallbacks once all lines are processed: a missing
// subtotal becomes the item sum, and a missing total becomes subtotal + tax
// (tax defaulting to 0 when never found).
func (m *metadataExtractor) derive(items []models.ReceiptItem) (subtotal, tax, total float64) {
	subtotal = m.amounts.subtotal
	tax = m.amounts.tax
	total = m.amounts.total

	if !m.amounts.subtotalFound && len(items) > 0 {
		for _, item := range items {
			subtotal += item.Price
		}
	}
	if !m.amounts.totalFound {
		total = subtotal + tax
	}
	return subtotal, tax, total
}
