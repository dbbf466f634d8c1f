package categorizer

import (
	"fmt"
	"os"
	"strings"

	"expense-reconciliation-service/pkg/errors"

	"gopkg.in/yaml.v3"
)

// AmountRange is an inclusive [Min, Max] band of absolute amounts typical
// for a category.
type AmountRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether the amount falls inside the range.
func (r AmountRange) Contains(amount float64) bool {
	return amount >= r.Min && amount <= r.Max
}

// Category defines the scoring rules for one spending category: keyword
// tiers matched against description and merchant text, merchant-type tokens
// matched against the provider's category hint, and an optional amount range.
type Category struct {
	Name string `yaml:"name" json:"name"`

	HighKeywords   []string `yaml:"high_keywords,omitempty" json:"high_keywords,omitempty"`
	MediumKeywords []string `yaml:"medium_keywords,omitempty" json:"medium_keywords,omitempty"`
	LowKeywords    []string `yaml:"low_keywords,omitempty" json:"low_keywords,omitempty"`

	// MerchantTypes are provider annotation tokens like "ride_share".
	MerchantTypes []string `yaml:"merchant_types,omitempty" json:"merchant_types,omitempty"`

	AmountRange *AmountRange `yaml:"amount_range,omitempty" json:"amount_range,omitempty"`
}

// Catalog is the versioned, externally configurable set of category
// definitions. Declaration order is significant: score ties are resolved in
// favor of the earlier category.
type Catalog struct {
	Version    string     `yaml:"version" json:"version"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// Validate checks the catalog for definitions that would silently
// miscategorize: empty names, duplicate names, inverted amount ranges, and
// blank rule tokens.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		return errors.ConfigurationError(errors.CodeInvalidCatalog,
			"catalog has no categories", nil)
	}

	seen := make(map[string]bool)
	for i, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return errors.ConfigurationError(errors.CodeInvalidCatalog,
				fmt.Sprintf("category %d has an empty name", i), nil)
		}
		if seen[name] {
			return errors.ConfigurationError(errors.CodeInvalidCatalog,
				fmt.Sprintf("duplicate category name '%s'", name), nil)
		}
		seen[name] = true

		if cat.AmountRange != nil && cat.AmountRange.Min > cat.AmountRange.Max {
			return errors.ConfigurationError(errors.CodeInvalidCatalog,
				fmt.Sprintf("category '%s' has min %.2f above max %.2f",
					name, cat.AmountRange.Min, cat.AmountRange.Max), nil)
		}

		for _, group := range [][]string{cat.HighKeywords, cat.MediumKeywords, cat.LowKeywords, cat.MerchantTypes} {
			for _, token := range group {
				if strings.TrimSpace(token) == "" {
					return errors.ConfigurationError(errors.CodeInvalidCatalog,
						fmt.Sprintf("category '%s' contains a blank rule token", name), nil)
				}
			}
		}
	}

	return nil
}

// LoadCatalog reads and validates a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigurationError(errors.CodeMissingCatalog, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidCatalog, path, err)
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// DefaultCatalog returns the built-in category definitions used when no
// catalog file is supplied.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Version: "1",
		Categories: []Category{
			{
				Name:           "Food & Dining",
				HighKeywords:   []string{"restaurant", "cafe", "coffee", "pizza", "sushi", "diner"},
				MediumKeywords: []string{"grill", "kitchen", "bakery", "deli", "bistro"},
				LowKeywords:    []string{"food", "eat", "bar"},
				MerchantTypes:  []string{"restaurant", "fast_food", "coffee_shop", "food_delivery"},
				AmountRange:    &AmountRange{Min: 1, Max: 300},
			},
			{
				Name:           "Transportation",
				HighKeywords:   []string{"uber", "lyft", "taxi", "transit", "parking", "metro"},
				MediumKeywords: []string{"gas", "fuel", "shell", "chevron", "toll"},
				LowKeywords:    []string{"trip", "ride"},
				MerchantTypes:  []string{"ride_share", "gas_station", "public_transit", "parking"},
				AmountRange:    &AmountRange{Min: 1, Max: 200},
			},
			{
				Name:           "Shopping",
				HighKeywords:   []string{"amazon", "walmart", "target", "costco", "ebay"},
				MediumKeywords: []string{"store", "shop", "market", "outlet"},
				LowKeywords:    []string{"retail", "goods"},
				MerchantTypes:  []string{"retail", "online_marketplace", "department_store"},
				AmountRange:    &AmountRange{Min: 1, Max: 2000},
			},
			{
				Name:           "Travel",
				HighKeywords:   []string{"airline", "hotel", "airbnb", "flight", "hertz", "marriott"},
				MediumKeywords: []string{"booking", "resort", "airways", "rental car"},
				LowKeywords:    []string{"travel"},
				MerchantTypes:  []string{"airline", "hotel", "car_rental", "travel_agency"},
				AmountRange:    &AmountRange{Min: 50, Max: 5000},
			},
			{
				Name:           "Utilities",
				HighKeywords:   []string{"electric", "water", "internet", "comcast", "verizon", "utility"},
				MediumKeywords: []string{"energy", "power", "telecom", "wireless"},
				LowKeywords:    []string{"bill", "service"},
				MerchantTypes:  []string{"utility", "telecom", "internet_provider"},
				AmountRange:    &AmountRange{Min: 20, Max: 600},
			},
			{
				Name:           "Entertainment",
				HighKeywords:   []string{"netflix", "spotify", "cinema", "theater", "concert", "steam"},
				MediumKeywords: []string{"movie", "music", "game", "ticket"},
				LowKeywords:    []string{"fun", "event"},
				MerchantTypes:  []string{"streaming", "cinema", "gaming", "live_events"},
				AmountRange:    &AmountRange{Min: 1, Max: 250},
			},
			{
				Name:           "Healthcare",
				HighKeywords:   []string{"pharmacy", "hospital", "clinic", "dental", "walgreens", "cvs"},
				MediumKeywords: []string{"medical", "doctor", "health", "optical"},
				LowKeywords:    []string{"care", "rx"},
				MerchantTypes:  []string{"pharmacy", "hospital", "medical_office"},
				AmountRange:    &AmountRange{Min: 1, Max: 3000},
			},
		},
	}
}
