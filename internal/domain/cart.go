package domain

// CartLine is one cart entry. Name and Price are snapshots captured when the
// product was first added; later catalog price changes do not track into
// existing lines.
type CartLine struct {
	ProductID ID      `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

// LineTotal returns the captured price times quantity.
func (l CartLine) LineTotal() float64 {
	return l.Price * float64(l.Qty)
}

// CartTotal sums line totals over a set of cart lines.
func CartTotal(lines []CartLine) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// CartQuantity returns the summed quantity of productID across lines.
func CartQuantity(lines []CartLine, productID ID) int {
	var qty int
	for _, l := range lines {
		if l.ProductID == productID {
			qty += l.Qty
		}
	}
	return qty
}
