// Package loader reads and validates the orders input file, the one
// external collaborator spec.md describes only via the interface the
// core consumes: a pre-validated []order.Order.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"kitchen-dispatcher/internal/order"
)

// DefaultLimit is the historical truncation spec.md §6 documents: the
// original loader only ever processed the first 13 entries of the
// input file. cmd/kitchen exposes this as a flag rather than a
// constant so the limit is configurable, as the spec instructs.
const DefaultLimit = 13

// document is the wire shape of one entry in the orders JSON array.
type document struct {
	ID        string  `json:"id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Temp      string  `json:"temp" validate:"required,oneof=hot cold frozen"`
	ShelfLife int     `json:"shelfLife" validate:"required,gt=0"`
	DecayRate float64 `json:"decayRate" validate:"required,gt=0"`
}

var validate = validator.New()

// Load reads path as a JSON array of order documents, validates each
// entry's shape, and truncates the result to limit entries (pass
// loader.DefaultLimit for the historical behavior). Entries with a
// temperature outside {hot, cold, frozen} cause the whole load to be
// rejected (spec §6).
func Load(path string, limit int) ([]order.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()

	var docs []document
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&docs); err != nil {
		return nil, fmt.Errorf("loader: decode %q: %w", path, err)
	}

	orders := make([]order.Order, 0, len(docs))
	for i, d := range docs {
		if err := validate.Struct(d); err != nil {
			return nil, fmt.Errorf("loader: %q entry %d (%q): %w", path, i, d.ID, err)
		}
		orders = append(orders, order.New(d.ID, d.Name, order.Temperature(d.Temp), d.ShelfLife, d.DecayRate))
	}

	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, nil
}
