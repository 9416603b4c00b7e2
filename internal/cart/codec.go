package cart

import (
	"encoding/json"

	"bakery/internal/domain/model"

	"github.com/pkg/errors"
)

// persisted form of a line; unit prices are always recomputed
type storedLine struct {
	ProductID       string            `json:"productId"`
	Quantity        int               `json:"quantity"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

// Encode serializes lines as a JSON array in display order.
func Encode(lines []model.CartLine) ([]byte, error) {
	out := make([]storedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, storedLine{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			SelectedOptions: l.SelectedOptions,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	return data, nil
}

// Decode parses a persisted cart. The result is not reconciled.
func Decode(data []byte) ([]model.CartLine, error) {
	var in []storedLine
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	lines := make([]model.CartLine, 0, len(in))
	for _, l := range in {
		var opts model.SelectedOptions
		if len(l.SelectedOptions) > 0 {
			opts = model.SelectedOptions(l.SelectedOptions)
		}
		lines = append(lines, model.CartLine{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			SelectedOptions: opts,
		})
	}
	return lines, nil
}

// Reconcile drops invalid lines and merges duplicates into the first
// occurrence, keeping at most one line per (product, options) pair.
func Reconcile(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if i := indexOf(out, l.Ref()); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		l = l.Clone()
		l.UnitPrice = nil
		out = append(out, l)
	}
	return out
}

func indexOf(lines []model.CartLine, ref model.LineRef) int {
	for i := range lines {
		if lines[i].Matches(ref) {
			return i
		}
	}
	return -1
}
