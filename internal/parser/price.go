package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Limits bound what counts as a plausible currency amount per call site.
// OCR routinely misreads digit runs (phone numbers, order numbers) as
// prices; anything above the bound is treated as no match at all.
type Limits struct {
	// Item bounds prices on item lines.
	Item float64

	// Tax bounds the tax line amount. Tax is far smaller than item prices,
	// so it gets a tighter bound.
	Tax float64

	// Summary bounds subtotal and total line amounts.
	Summary float64
}

// DefaultLimits are sane bounds for a single restaurant receipt.
func DefaultLimits() Limits {
	return Limits{Item: 1000, Tax: 200, Summary: 1000}
}

// PriceMatch is a currency amount found in a line, with the byte span it
// occupied so callers can cut it out of the text.
type PriceMatch struct {
	Value float64
	Start int
	End   int
}

// Optional currency symbol, digits, optional 2-digit fraction. A comma is
// accepted as the decimal separator (common OCR substitution) and
// normalized to a point before parsing.
var priceRe = regexp.MustCompile(`\$?\d+(?:[.,]\d{2})?`)

// ExtractPrice finds the rightmost plausible currency amount in a line.
// Receipts print quantity before price, so when several numbers appear the
// last one is the price. If the rightmost match exceeds maxReasonable the
// whole line is treated as priceless rather than falling back to an earlier
// number, which would usually be a quantity.
func ExtractPrice(line string, maxReasonable float64) (PriceMatch, bool) {
	locs := priceRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return PriceMatch{}, false
	}

	loc := locs[len(locs)-1]
	raw := strings.TrimPrefix(line[loc[0]:loc[1]], "$")
	raw = strings.ReplaceAll(raw, ",", ".")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value > maxReasonable {
		return PriceMatch{}, false
	}

	return PriceMatch{Value: value, Start: loc[0], End: loc[1]}, true
}
