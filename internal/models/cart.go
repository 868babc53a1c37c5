package models

// Cart is the ephemeral client-side selection kept in the session. Prices
// shown here are display hints only; checkout recomputes every amount
// from the authoritative price resolver.
type Cart struct {
	Items      []LineItem `json:"items"`
	TotalCents int        `json:"total_cents"`
}

// Add appends a line item, keeping the no-duplicate-tuple invariant.
func (c *Cart) Add(item LineItem) {
	c.Items = DedupeLineItems(append(c.Items, item))
	c.recalculate()
}

// Remove drops the line item matching the given tuple.
func (c *Cart) Remove(item LineItem) {
	out := c.Items[:0]
	for _, li := range c.Items {
		if li.key() == item.key() {
			continue
		}
		out = append(out, li)
	}
	c.Items = out
	c.recalculate()
}

// IsEmpty returns true if the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) recalculate() {
	total := 0
	for _, li := range c.Items {
		total += li.PriceCents
	}
	c.TotalCents = total
}
