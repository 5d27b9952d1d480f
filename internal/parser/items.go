package parser

import (
	"regexp"
	"strings"

	"github.com/azhao/scanpay/internal/models"
)

// Leading quantity token on an item line, e.g. "2 Spring Rolls $8.00".
var quantityRe = regexp.MustCompile(`^\d+\s+`)

// pendingItem is the item currently being built. It stays pending until the
// next item line begins (or input ends) so that modifier lines printed below
// it can still attach.
type pendingItem struct {
	name      string
	price     float64
	modifiers []string
}

// itemExtractor is a small state machine over classified item-section lines:
// idle when pending is nil, building otherwise. Transitions are an item line
// seen, a modifier line seen, and end of input.
type itemExtractor struct {
	limits  Limits
	pending *pendingItem
	items   []models.ReceiptItem
}

// itemLine starts a new pending item, flushing the previous one first.
// Lines without a plausible price or whose name reduces to nothing are
// skipped outright; receipts are full of lines that match no pattern.
func (e *itemExtractor) itemLine(text string) {
	match, ok := ExtractPrice(text, e.limits.Item)
	if !ok {
		return
	}

	name := itemName(text, match)
	if name == "" {
		return
	}

	e.flush()
	e.pending = &pendingItem{name: name, price: match.Value}
}

// modifierLine attaches a cleaned "* ..." line to the pending item. With no
// pending item the modifier is an orphan and is dropped.
func (e *itemExtractor) modifierLine(text string) {
	if e.pending == nil {
		return
	}
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "*"))
	if cleaned == "" {
		return
	}
	e.pending.modifiers = append(e.pending.modifiers, cleaned)
}

// flush materializes the pending item, if any, into the item sequence.
func (e *itemExtractor) flush() {
	if e.pending == nil {
		return
	}
	e.items = append(e.items, models.ReceiptItem{
		Name:      e.pending.name,
		Price:     e.pending.price,
		Modifiers: e.pending.modifiers,
	})
	e.pending = nil
}

// itemName derives the item name from a line by cutting out the matched
// price span and a leading quantity token.
func itemName(text string, match PriceMatch) string {
	name := text[:match.Start] + text[match.End:]
	name = quantityRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// extractItems runs the pending-item state machine over the classified
// lines. Zero-price lines still become their own items: a free add-on line
// is a distinct thing from a modifier of the previous item.
func extractItems(lines []ClassifiedLine, limits Limits) []models.ReceiptItem {
	e := itemExtractor{limits: limits}
	for _, line := range lines {
		switch line.Role {
		case RoleItem:
			e.itemLine(line.Text)
		case RoleModifier:
			e.modifierLine(line.Text)
		}
	}
	e.flush()
	return e.items
}
