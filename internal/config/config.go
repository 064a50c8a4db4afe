// Package config loads and validates the kitchen's run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// Shelf names a capacity bucket a Config must define. All four are
// required; Config.Capacity must carry exactly these keys (spec §6).
const (
	Hot      = "hot"
	Cold     = "cold"
	Frozen   = "frozen"
	Overflow = "overflow"
)

var requiredShelves = []string{Hot, Cold, Frozen, Overflow}

// Config is the immutable run configuration for one simulation.
type Config struct {
	Capacity           map[string]int `json:"capacity" validate:"required"`
	IntakeOrdersPerSec int            `json:"intake_orders_per_sec" validate:"required,gt=0"`
	PickupMinSec       int            `json:"pickup_min_sec" validate:"required,gt=0"`
	PickupMaxSec       int            `json:"pickup_max_sec" validate:"required,gtefield=PickupMinSec"`
	CleanupDelay       float64        `json:"cleanup_delay" validate:"required,gt=0"`
}

var validate = validator.New()

// Load reads and validates a Config from a JSON file. Unknown keys,
// missing keys, and malformed capacity maps are all rejected here, at
// load time, before the simulation starts (spec §6/§7).
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %q: %w", path, err)
	}

	if err := cfg.validateShape(); err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}

	return cfg, nil
}

func (c Config) validateShape() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if len(c.Capacity) != len(requiredShelves) {
		return fmt.Errorf("capacity must define exactly %v, got %v", requiredShelves, keys(c.Capacity))
	}
	for _, name := range requiredShelves {
		v, ok := c.Capacity[name]
		if !ok {
			return fmt.Errorf("capacity missing required shelf %q", name)
		}
		if v <= 0 {
			return fmt.Errorf("capacity[%q] must be positive, got %d", name, v)
		}
	}

	if c.PickupMinSec > c.PickupMaxSec {
		return fmt.Errorf("pickup_min_sec (%d) must be <= pickup_max_sec (%d)", c.PickupMinSec, c.PickupMaxSec)
	}

	return nil
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
