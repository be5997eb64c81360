package domain

// CartLine is one purchasable line in the cart. Name, price and image are
// snapshotted from the catalog product at the time the line is created and
// are never re-synced afterwards.
//
// The JSON field names are the persisted layout under the "cart" storage key
// and must stay snake_case for compatibility with existing stored carts.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"qty"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// LineTotal returns the price contribution of this line.
func (l CartLine) LineTotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Product is the slice of a catalog product the cart snapshots when a line
// is added.
type Product struct {
	ID       string
	Name     string
	Price    float64
	ImageURL string
}

// Cart is the ordered sequence of lines, insertion order preserved.
type Cart []CartLine

// Subtotal sums unit price times quantity over all lines.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, l := range c {
		total += l.LineTotal()
	}
	return total
}

// TotalQuantity sums the quantity of all lines. Zero on an empty cart.
func (c Cart) TotalQuantity() int {
	var count int
	for _, l := range c {
		count += l.Quantity
	}
	return count
}

// GrandTotal applies a fractional discount to the subtotal and adds a flat
// shipping fee. The store does not validate the discount range; callers
// supply a fraction in [0, 1].
func (c Cart) GrandTotal(discountFraction, shippingFee float64) float64 {
	sub := c.Subtotal()
	return sub - sub*discountFraction + shippingFee
}

// FindLine returns the index of the line with the given line id, or -1.
func (c Cart) FindLine(lineID string) int {
	for i := range c {
		if c[i].ID == lineID {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line holding the given catalog
// product, or -1. At most one line per product exists.
func (c Cart) FindProduct(productID string) int {
	for i := range c {
		if c[i].ProductID == productID {
			return i
		}
	}
	return -1
}
