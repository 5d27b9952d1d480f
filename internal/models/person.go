package models

// Person is someone claiming items on the bill.
// People are created by explicit user action and survive receipt rescans.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name, defaulting to "Person N" at creation.
	Name string `json:"name"`

	// Color is a display hint picked round-robin from a fixed palette.
	// The core never interprets it.
	Color string `json:"color"`
}

// PersonShare is one person's calculated share of the bill.
type PersonShare struct {
	Person Person `json:"person"`

	// Subtotal is the sum of this person's item shares before tax. Items
	// claimed by several people contribute price/assignees to each.
	Subtotal float64 `json:"subtotal"`

	// Total is Subtotal scaled by grandTotal/subtotal, rounded to cents.
	// The scaling apportions tax (and any folded-in tip) proportionally.
	Total float64 `json:"total"`

	// ItemIDs are the items this person has claimed, in receipt order.
	ItemIDs []string `json:"item_ids,omitempty"`
}
