// Package cart implements the customer-side cart and checkout math:
// dine-in vs. takeaway pricing, totals and order-payload assembly.
package cart

import (
	"errors"
)

var (
	// ErrChoiceRequired is returned on the first add of a
	// takeaway-eligible item when the caller has not yet chosen dine-in
	// or takeaway. No line is created until the choice is made.
	ErrChoiceRequired = errors.New("choose dine-in or takeaway first")
	// ErrNotTakeawayEligible rejects a takeaway request against an item
	// that cannot be taken away.
	ErrNotTakeawayEligible = errors.New("item is not available for takeaway")
	// ErrNotInCart is returned when removing an item that has no line.
	ErrNotInCart = errors.New("item is not in the cart")
)

// Item is a menu catalog entry. Prices are minor currency units;
// TakeawayPrice of zero means "unset, fall back to the base price".
type Item struct {
	ID               string
	Name             string
	Price            int64
	TakeawayPrice    int64
	PackagingFee     int64
	TakeawayEligible bool
}

// Catalog resolves menu item ids.
type Catalog map[string]Item

// Line is one cart entry. IsTakeaway is fixed when the line is first
// created; changing it requires removing and re-adding the item.
type Line struct {
	ItemID       string
	Quantity     int
	IsTakeaway   bool
	Instructions string
}

// Cart holds at most one line per menu item, in first-add order.
type Cart struct {
	lines map[string]*Line
	ids   []string
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{lines: map[string]*Line{}}
}

// Add puts one unit of the item in the cart. A nil takeaway choice means
// the customer has not been asked yet: for takeaway-eligible items the
// add is refused with ErrChoiceRequired until a choice arrives, for
// anything else the line defaults to dine-in. Increments of an existing
// line reuse its original choice and ignore the argument.
func (c *Cart) Add(item Item, takeaway *bool) error {
	if line, ok := c.lines[item.ID]; ok {
		line.Quantity++
		return nil
	}
	want := takeaway != nil && *takeaway
	if want && !item.TakeawayEligible {
		return ErrNotTakeawayEligible
	}
	if takeaway == nil && item.TakeawayEligible {
		return ErrChoiceRequired
	}
	c.lines[item.ID] = &Line{ItemID: item.ID, Quantity: 1, IsTakeaway: want}
	c.ids = append(c.ids, item.ID)
	return nil
}

// Remove takes one unit off the line and deletes it at quantity zero.
func (c *Cart) Remove(itemID string) error {
	line, ok := c.lines[itemID]
	if !ok {
		return ErrNotInCart
	}
	line.Quantity--
	if line.Quantity <= 0 {
		delete(c.lines, itemID)
		for i, id := range c.ids {
			if id == itemID {
				c.ids = append(c.ids[:i], c.ids[i+1:]...)
				break
			}
		}
	}
	return nil
}

// SetInstructions attaches free-text instructions to an existing line.
func (c *Cart) SetInstructions(itemID, text string) error {
	line, ok := c.lines[itemID]
	if !ok {
		return ErrNotInCart
	}
	line.Instructions = text
	return nil
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = map[string]*Line{}
	c.ids = nil
}

// Quantity returns the line quantity for the item, zero when absent.
func (c *Cart) Quantity(itemID string) int {
	if line, ok := c.lines[itemID]; ok {
		return line.Quantity
	}
	return 0
}

// Lines returns copies of the cart lines in first-add order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, *c.lines[id])
	}
	return out
}

// Empty reports whether the cart holds no lines.
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// UnitPrice is the per-unit price charged for the item: takeaway lines
// pay the takeaway price (base price when unset) plus the packaging fee,
// dine-in lines pay the base price.
func UnitPrice(item Item, takeaway bool) int64 {
	if !takeaway {
		return item.Price
	}
	price := item.TakeawayPrice
	if price == 0 {
		price = item.Price
	}
	return price + item.PackagingFee
}

// Total computes the cart total against the catalog. Lines whose item is
// no longer in the catalog contribute nothing.
func (c *Cart) Total(catalog Catalog) int64 {
	var total int64
	for _, id := range c.ids {
		line := c.lines[id]
		item, ok := catalog[id]
		if !ok {
			continue
		}
		total += UnitPrice(item, line.IsTakeaway) * int64(line.Quantity)
	}
	return total
}
