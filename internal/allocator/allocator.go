// Package allocator manages the people splitting a bill and the
// item-to-person assignment relation, and computes each person's
// proportional share including tax apportionment.
//
// The assignment relation is stored exactly once, keyed by item id.
// Per-person views are computed on demand, so there is no cross-index to
// keep consistent. All mutation goes through a single mutex: every command
// leaves the state consistent before the next one is accepted.
package allocator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/azhao/scanpay/internal/models"
)

var (
	// ErrLastPerson is returned when removing the only remaining person.
	ErrLastPerson = errors.New("at least one person must remain")

	// ErrPersonNotFound is returned for operations on unknown person ids.
	ErrPersonNotFound = errors.New("person not found")
)

// palette is the fixed set of display colors handed out round-robin.
var palette = []string{
	"#E6194B", "#3CB44B", "#4363D8", "#F58231",
	"#911EB4", "#46B5C0", "#F032E6", "#9A6324",
}

// Allocator is the bill-splitting state machine: an ordered list of people
// plus an optional current receipt. It always holds at least one person.
type Allocator struct {
	mu          sync.Mutex
	people      []models.Person
	receipt     *models.Receipt
	assignments map[string]map[string]struct{} // item id -> set of person ids
	created     int                            // people ever created, for names and colors
}

// New creates an Allocator seeded with one person.
func New() *Allocator {
	a := &Allocator{assignments: make(map[string]map[string]struct{})}
	a.addPersonLocked()
	return a
}

// AddPerson appends a new person with a generated name and the next palette
// color, and returns it.
func (a *Allocator) AddPerson() models.Person {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addPersonLocked()
}

func (a *Allocator) addPersonLocked() models.Person {
	p := models.Person{
		ID:    uuid.New().String(),
		Name:  fmt.Sprintf("Person %d", a.created+1),
		Color: palette[a.created%len(palette)],
	}
	a.created++
	a.people = append(a.people, p)
	return p
}

// RenamePerson sets a person's display name.
func (a *Allocator) RenamePerson(id, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.people {
		if a.people[i].ID == id {
			a.people[i].Name = name
			return nil
		}
	}
	return ErrPersonNotFound
}

// RemovePerson removes a person and clears them from every item they had
// claimed. Removing the last remaining person is refused.
func (a *Allocator) RemovePerson(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.people) <= 1 {
		return ErrLastPerson
	}

	idx := -1
	for i := range a.people {
		if a.people[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrPersonNotFound
	}

	a.people = append(a.people[:idx], a.people[idx+1:]...)
	for itemID, people := range a.assignments {
		delete(people, id)
		if len(people) == 0 {
			delete(a.assignments, itemID)
		}
	}
	return nil
}

// ToggleAssignment flips whether the person has claimed the item. Unknown
// item or person ids are ignored. It reports whether the item ended up
// assigned to the person.
func (a *Allocator) ToggleAssignment(itemID, personID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.receipt == nil || a.receipt.Item(itemID) == nil || !a.hasPersonLocked(personID) {
		return false
	}

	people, ok := a.assignments[itemID]
	if !ok {
		people = make(map[string]struct{})
		a.assignments[itemID] = people
	}

	if _, assigned := people[personID]; assigned {
		delete(people, personID)
		if len(people) == 0 {
			delete(a.assignments, itemID)
		}
		return false
	}
	people[personID] = struct{}{}
	return true
}

// ReplaceReceipt swaps in the receipt from a new scan. Receipts are replaced
// wholesale, never patched; assignments referencing items that no longer
// exist are dropped. People survive the swap.
func (a *Allocator) ReplaceReceipt(r *models.Receipt) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.receipt = r
	for itemID := range a.assignments {
		if r == nil || r.Item(itemID) == nil {
			delete(a.assignments, itemID)
		}
	}
}

// Receipt returns the current receipt, or nil before the first scan.
func (a *Allocator) Receipt() *models.Receipt {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.receipt
}

// People returns the people in creation order.
func (a *Allocator) People() []models.Person {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Person, len(a.people))
	copy(out, a.people)
	return out
}

// AssignedTo returns the ids of the people who claimed the item, or nil.
func (a *Allocator) AssignedTo(itemID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	people := a.assignments[itemID]
	if len(people) == 0 {
		return nil
	}
	out := make([]string, 0, len(people))
	for id := range people {
		out = append(out, id)
	}
	return out
}

// PersonTotal computes what one person owes: the sum of their item shares
// scaled by grandTotal/subtotal so that tax (and any tip folded into the
// total) is apportioned proportionally, rounded to cents.
//
// Items claimed by several people split evenly among them. That keeps the
// sum of everyone's totals equal to the grand total once every item is
// claimed, instead of over-collecting on shared items.
func (a *Allocator) PersonTotal(personID string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.personTotalLocked(personID)
}

func (a *Allocator) personTotalLocked(personID string) float64 {
	if a.receipt == nil {
		return 0
	}

	share := a.personSubtotalLocked(personID)

	ratio := 1.0
	if a.receipt.Subtotal > 0 {
		ratio = a.receipt.GrandTotal / a.receipt.Subtotal
	}
	return round2(share * ratio)
}

func (a *Allocator) personSubtotalLocked(personID string) float64 {
	var share float64
	for _, item := range a.receipt.Items {
		people := a.assignments[item.ID]
		if _, ok := people[personID]; ok {
			share += item.Price / float64(len(people))
		}
	}
	return share
}

// GrandTotal returns the current receipt's grand total, 0 before any scan.
func (a *Allocator) GrandTotal() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.receipt == nil {
		return 0
	}
	return a.receipt.GrandTotal
}

// Summary returns every person's computed share, in creation order.
func (a *Allocator) Summary() []models.PersonShare {
	a.mu.Lock()
	defer a.mu.Unlock()

	shares := make([]models.PersonShare, 0, len(a.people))
	for _, p := range a.people {
		share := models.PersonShare{Person: p}
		if a.receipt != nil {
			share.Subtotal = round2(a.personSubtotalLocked(p.ID))
			share.Total = a.personTotalLocked(p.ID)
			for _, item := range a.receipt.Items {
				if _, ok := a.assignments[item.ID][p.ID]; ok {
					share.ItemIDs = append(share.ItemIDs, item.ID)
				}
			}
		}
		shares = append(shares, share)
	}
	return shares
}

func (a *Allocator) hasPersonLocked(id string) bool {
	for i := range a.people {
		if a.people[i].ID == id {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
