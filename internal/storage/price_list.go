package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidPriceEntry = errors.New("invalid price list entry")

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ModelNumber *string         `json:"model_number"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsActive    bool            `json:"is_active"`
}

type Material struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	ModelNumber *string         `json:"model_number"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsActive    bool            `json:"is_active"`
}

func (p Product) Validate() error {
	return validatePriceEntry(p.Name, p.UnitPrice)
}

func (m Material) Validate() error {
	return validatePriceEntry(m.Name, m.UnitPrice)
}

func validatePriceEntry(name string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPriceEntry)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: %q has a negative unit price", ErrInvalidPriceEntry, name)
	}
	if !price.Equal(price.Round(2)) {
		return fmt.Errorf("%w: %q unit price allows at most 2 decimal places", ErrInvalidPriceEntry, name)
	}
	return nil
}
