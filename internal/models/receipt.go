package models

// Status reports the outcome of assembling a receipt.
type Status string

const (
	// StatusComplete means the parse produced at least one item.
	StatusComplete Status = "complete"

	// StatusEmpty means the parse succeeded but no items were detected.
	// This is a normal, reportable outcome, not an error.
	StatusEmpty Status = "empty"
)

// ReceiptItem is a single line item on a receipt.
// Identity is the ID: two items with the same name and price are distinct.
type ReceiptItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the item description with quantity token and price stripped.
	// Always non-empty and trimmed; lines that reduce to an empty name are
	// skipped during extraction.
	Name string `json:"name"`

	// Price is the item price in dollars. Zero is valid: free add-on lines
	// are kept as their own items so they still show up on the bill.
	Price float64 `json:"price"`

	// Modifiers are the "* No Salt"-style lines that followed this item on
	// the receipt, in print order, with the leading marker stripped.
	Modifiers []string `json:"modifiers,omitempty"`
}

// RestaurantInfo is the best-effort merchant metadata pulled from the top of
// the receipt. Every field may be empty.
type RestaurantInfo struct {
	Name        string   `json:"name"`
	Address     []string `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Date        string   `json:"date,omitempty"`
	OrderNumber string   `json:"order_number,omitempty"`
}

// Receipt is the structured result of parsing one scan.
//
// Subtotal and GrandTotal are each either OCR-derived or computed as a
// fallback (subtotal from the item sum, grand total from subtotal + tax), so
// neither is ever absent. Items keep receipt print order.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string `json:"id"`

	// Items are the line items in print order.
	Items []ReceiptItem `json:"items"`

	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`

	Restaurant RestaurantInfo `json:"restaurant"`

	// Status is StatusEmpty when Items is empty, StatusComplete otherwise.
	Status Status `json:"status"`

	// CreatedAt is the Unix timestamp when the receipt was assembled.
	CreatedAt int64 `json:"created_at"`
}

// Item returns the item with the given id, or nil if the receipt has no such
// item.
func (r *Receipt) Item(id string) *ReceiptItem {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}
