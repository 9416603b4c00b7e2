// Package pricing computes unit prices from a product's base price and the
// adjustments of the selected option choices.
package pricing

import "bakery/internal/domain/model"

// ResolvePrice returns the base price plus the adjustment of every selected
// choice that still exists on the product. Selections naming an unknown
// option or choice are ignored.
func ResolvePrice(p model.Product, selected model.SelectedOptions) int64 {
	price := p.Price
	if len(selected) == 0 {
		return price
	}
	for _, opt := range p.Options {
		choiceID, ok := selected[opt.Name]
		if !ok || choiceID == "" {
			continue
		}
		if c, ok := opt.Choice(choiceID); ok {
			price += c.PriceAdjustment
		}
	}
	return price
}

// LineTotal is the unit price times the line quantity.
func LineTotal(line model.CartLine, p model.Product) int64 {
	return ResolvePrice(p, line.SelectedOptions) * int64(line.Quantity)
}
