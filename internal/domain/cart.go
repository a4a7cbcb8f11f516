// Package domain holds the cart value types and their pure update rules.
package domain

import "math"

// LineItem is one product entry in the cart plus its quantity.
type LineItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Product holds the catalog fields a caller supplies when adding to the cart.
type Product struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	ImageURL string  `json:"image_url"`
	Price    float64 `json:"price"`
}

// Items is the cart collection. Order is insertion order and ids are unique.
// Every update method returns a new slice and leaves the receiver untouched.
type Items []LineItem

// FindIndex returns the index of the line item with the given id, or -1.
func (it Items) FindIndex(id string) int {
	for i := range it {
		if it[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the collection. The copy is never nil.
func (it Items) Clone() Items {
	out := make(Items, len(it))
	copy(out, it)
	return out
}

// WithProduct appends p with quantity 1 unless a line item with the same id
// already exists, in which case the collection is returned unchanged.
// The boolean reports whether a line item was appended.
func (it Items) WithProduct(p Product) (Items, bool) {
	if it.FindIndex(p.ID) >= 0 {
		return it.Clone(), false
	}
	out := make(Items, len(it), len(it)+1)
	copy(out, it)
	return append(out, LineItem{
		ID:       p.ID,
		Title:    p.Title,
		ImageURL: p.ImageURL,
		Price:    p.Price,
		Quantity: 1,
	}), true
}

// Incremented raises the quantity of the matching line item by one,
// saturating at math.MaxInt.
func (it Items) Incremented(id string) Items {
	return it.withQuantity(id, func(q int) int {
		if q == math.MaxInt {
			return q
		}
		return q + 1
	})
}

// Decremented lowers the quantity of the matching line item by one, clamping
// at zero. The item stays in the cart at quantity zero.
func (it Items) Decremented(id string) Items {
	return it.withQuantity(id, func(q int) int {
		if q-1 < 0 {
			return 0
		}
		return q - 1
	})
}

func (it Items) withQuantity(id string, next func(int) int) Items {
	out := it.Clone()
	if i := out.FindIndex(id); i >= 0 {
		out[i].Quantity = next(out[i].Quantity)
	}
	return out
}

// ItemCount returns the total number of units in the cart.
func (it Items) ItemCount() int {
	var count int
	for _, item := range it {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of price times quantity over all line items.
func (it Items) Subtotal() float64 {
	var total float64
	for _, item := range it {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Normalize enforces the collection invariants on data that came from outside
// the process: negative quantities clamp to zero and repeated ids keep their
// first occurrence. It returns the cleaned collection and the number of line
// items that had to be fixed or dropped.
func (it Items) Normalize() (Items, int) {
	out := make(Items, 0, len(it))
	seen := make(map[string]struct{}, len(it))
	fixed := 0
	for _, item := range it {
		if _, dup := seen[item.ID]; dup {
			fixed++
			continue
		}
		seen[item.ID] = struct{}{}
		if item.Quantity < 0 {
			item.Quantity = 0
			fixed++
		}
		out = append(out, item)
	}
	return out, fixed
}
