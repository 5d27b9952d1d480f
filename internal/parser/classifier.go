package parser

import (
	"regexp"
	"strings"

	"github.com/azhao/scanpay/internal/metrics"
)

// LineRole is the semantic role assigned to one OCR line. Roles are mutually
// exclusive per line.
type LineRole int

const (
	RoleUnclassified LineRole = iota
	RoleRestaurantName
	RoleAddress
	RolePhone
	RoleDate
	RoleOrderNumber
	RoleSectionHeader
	RoleItem
	RoleModifier
	RoleSubtotal
	RoleTax
	RoleTotal
)

var roleNames = map[LineRole]string{
	RoleUnclassified:   "unclassified",
	RoleRestaurantName: "restaurant_name",
	RoleAddress:        "address",
	RolePhone:          "phone",
	RoleDate:           "date",
	RoleOrderNumber:    "order_number",
	RoleSectionHeader:  "section_header",
	RoleItem:           "item",
	RoleModifier:       "modifier",
	RoleSubtotal:       "subtotal",
	RoleTax:            "tax",
	RoleTotal:          "total",
}

func (r LineRole) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unclassified"
}

// ClassifiedLine pairs a raw OCR line with its role.
type ClassifiedLine struct {
	Index int
	Text  string
	Role  LineRole
}

// section tracks where the forward pass currently is on the receipt.
type section int

const (
	sectionItems section = iota
	sectionSummary
)

// Item section headers as receipts actually print them (uppercase).
var itemHeaderTokens = []string{"DESCRIPTION", "QT", "ITEM"}

// metadataWindow is how many lines past the restaurant name are probed for
// address, phone, date and order number.
const metadataWindow = 4

var (
	streetTokens = []string{
		"St", "Ave", "Blvd", "Rd", "Dr", "Ln", "Way",
		"Street", "Avenue", "Boulevard", "Road", "Drive", "Lane",
	}
	regionCodes = []string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
		"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
		"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
		"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
		"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	}
	yearFragmentRe = regexp.MustCompile(`\d{3,4}`)
	digitRe        = regexp.MustCompile(`\d`)
)

// Classify runs a single forward pass over the line sequence, assigning each
// line a role. The only mutable state is the current section; metadata roles
// for the first few lines are decided independently of it and win over
// whatever the section pass chose, since a line cannot be both a restaurant
// name and an item.
// Lines before any explicit section header are treated as item-section
// lines: many receipts never print a header, and priceless lines fall out
// harmlessly during extraction anyway.
func Classify(lines []string) []ClassifiedLine {
	out := make([]ClassifiedLine, len(lines))
	sec := sectionItems

	for i, line := range lines {
		role := RoleUnclassified

		switch {
		case isItemHeader(line):
			sec = sectionItems
			role = RoleSectionHeader
		case isSummaryTrigger(line):
			// Fires even mid-items-section, ending it. The trigger line
			// itself is a summary line, classified by keyword below.
			sec = sectionSummary
			role = summaryRole(line)
		case sec == sectionItems:
			if strings.HasPrefix(strings.TrimSpace(line), "*") {
				role = RoleModifier
			} else {
				role = RoleItem
			}
		case sec == sectionSummary:
			role = summaryRole(line)
		}

		if meta, ok := metadataRole(i, line); ok {
			role = meta
		}

		out[i] = ClassifiedLine{Index: i, Text: line, Role: role}
		metrics.LinesClassified.WithLabelValues(role.String()).Inc()
	}

	return out
}

func isItemHeader(line string) bool {
	for _, tok := range itemHeaderTokens {
		if strings.Contains(line, tok) {
			return true
		}
	}
	return false
}

// isSummaryTrigger reports whether the line starts (or continues) the
// summary section. Case-insensitive: receipts print these labels in every
// casing.
func isSummaryTrigger(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "subtotal") || strings.Contains(lower, "tax") {
		return true
	}
	return strings.Contains(lower, "total")
}

// summaryRole picks the summary line kind by case-insensitive keyword
// containment: subtotal beats tax beats plain total.
func summaryRole(line string) LineRole {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "subtotal"):
		return RoleSubtotal
	case strings.Contains(lower, "tax"):
		return RoleTax
	case strings.Contains(lower, "total"):
		return RoleTotal
	}
	return RoleUnclassified
}

// metadataRole decides the merchant-metadata role for lines at the top of
// the receipt. The first line is tentatively the restaurant name; the next
// few are probed for address, phone, date and order-number shapes.
func metadataRole(index int, line string) (LineRole, bool) {
	if index == 0 {
		if strings.Contains(strings.ToLower(line), "receipt") {
			return RoleUnclassified, false
		}
		// A priced first line is an item on a headerless receipt, not a
		// merchant name.
		if _, priced := ExtractPrice(line, DefaultLimits().Item); priced {
			return RoleUnclassified, false
		}
		return RoleRestaurantName, true
	}
	if index > metadataWindow {
		return RoleUnclassified, false
	}

	switch {
	case looksLikeAddress(line):
		return RoleAddress, true
	case looksLikePhone(line):
		return RolePhone, true
	case looksLikeDate(line):
		return RoleDate, true
	case looksLikeOrderNumber(line):
		return RoleOrderNumber, true
	}
	return RoleUnclassified, false
}

func looksLikeAddress(line string) bool {
	if strings.Contains(line, ",") {
		return true
	}
	for _, tok := range strings.Fields(line) {
		trimmed := strings.TrimRight(tok, ".,")
		for _, code := range regionCodes {
			if trimmed == code {
				return true
			}
		}
		for _, street := range streetTokens {
			if strings.EqualFold(trimmed, street) {
				return true
			}
		}
	}
	return false
}

func looksLikePhone(line string) bool {
	if strings.Contains(line, "(") && strings.Contains(line, ")") && strings.Contains(line, "-") {
		return true
	}
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 10 || len(trimmed) > 14 {
		return false
	}
	return len(digitRe.FindAllString(trimmed, -1)) >= 10
}

func looksLikeDate(line string) bool {
	return strings.Contains(line, "/") && yearFragmentRe.MatchString(line)
}

func looksLikeOrderNumber(line string) bool {
	return strings.Contains(strings.ToLower(line), "order") && strings.Contains(line, "#")
}
