package entity

// CartItem is a product snapshot plus a quantity. The embedded product
// keeps the wire shape flat, matching the order line items built from it.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is always derived from the snapshot price, never stored.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
