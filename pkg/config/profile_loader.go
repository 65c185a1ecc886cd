package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the operator-maintained subsidy profile: the initial unit
// ceiling and the oracle's price table.
type Profile struct {
	Name               string           `yaml:"name" json:"name"`
	MaxUnitsPerRequest uint64           `yaml:"max_units_per_request" json:"max_units_per_request"`
	UnitPrices         []OperationPrice `yaml:"unit_prices" json:"unit_prices"`
}

// OperationPrice binds a named metered operation to its per-unit price in
// ledger base units.
type OperationPrice struct {
	Operation string `yaml:"operation" json:"operation"`
	UnitPrice uint64 `yaml:"unit_price" json:"unit_price"`
}

// LoadProfile loads and validates a subsidy profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config: failed to parse profile %s: %w", path, err)
	}

	if p.MaxUnitsPerRequest == 0 {
		return nil, fmt.Errorf("config: profile %s: max_units_per_request must be strictly positive", path)
	}
	seen := make(map[string]bool, len(p.UnitPrices))
	for _, price := range p.UnitPrices {
		if price.Operation == "" {
			return nil, fmt.Errorf("config: profile %s: unit_prices entry missing operation name", path)
		}
		if seen[price.Operation] {
			return nil, fmt.Errorf("config: profile %s: duplicate operation %q", path, price.Operation)
		}
		seen[price.Operation] = true
	}
	return &p, nil
}
