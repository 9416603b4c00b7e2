package model

import "sort"

// SelectedOptions maps option name to choice id.
type SelectedOptions map[string]string

// Equal compares by value. nil and empty are equal.
func (o SelectedOptions) Equal(other SelectedOptions) bool {
	if len(o) != len(other) {
		return false
	}
	for _, k := range o.Keys() {
		v, ok := other[k]
		if !ok || v != o[k] {
			return false
		}
	}
	return true
}

// Keys returns the option names in sorted order.
func (o SelectedOptions) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o SelectedOptions) Clone() SelectedOptions {
	if o == nil {
		return nil
	}
	out := make(SelectedOptions, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// CartLine is one entry of the cart.
// UnitPrice is a cache filled after pricing; it is never persisted.
type CartLine struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	SelectedOptions SelectedOptions `json:"selectedOptions,omitempty"`
	UnitPrice       *int64          `json:"unitPrice,omitempty"`
}

// LineRef identifies a line by product and option combination.
type LineRef struct {
	ProductID       string          `json:"productId"`
	SelectedOptions SelectedOptions `json:"selectedOptions,omitempty"`
}

func (l CartLine) Ref() LineRef {
	return LineRef{ProductID: l.ProductID, SelectedOptions: l.SelectedOptions}
}

// Matches reports whether the line is the one identified by ref.
func (l CartLine) Matches(ref LineRef) bool {
	return l.ProductID == ref.ProductID && l.SelectedOptions.Equal(ref.SelectedOptions)
}

func (l CartLine) Clone() CartLine {
	out := l
	out.SelectedOptions = l.SelectedOptions.Clone()
	if l.UnitPrice != nil {
		p := *l.UnitPrice
		out.UnitPrice = &p
	}
	return out
}
