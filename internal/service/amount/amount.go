package amount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"nippo-invoice/internal/storage"
)

// Scale is the number of decimal places stored for quantities, unit prices
// and amounts.
const Scale = 2

var (
	hundred = decimal.NewFromInt(100)

	ErrTaxRateOutOfRange = errors.New("tax rate must be between 0 and 100")
	ErrTooManyDecimals   = errors.New("quantity and unit price allow at most 2 decimal places")
)

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Calculate expects a tax rate already checked with ValidateTaxRate.
func Calculate(items []storage.InvoiceItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.ItemType == storage.ItemHeader || !it.Amount.Valid {
			continue
		}
		subtotal = subtotal.Add(it.Amount.Decimal)
	}

	tax := subtotal.Mul(taxRate).Div(hundred).Floor()

	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}
}

// Apply recalculates the invoice totals from its current items.
func Apply(inv *storage.Invoice) Totals {
	t := Calculate(inv.Items, inv.TaxRate)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
	return t
}

// RecalcItem derives amount from quantity and unit price, rounded to Scale so
// the subtotal is summed from the stored values. Headers never carry
// quantity, unit, price or amount.
func RecalcItem(it *storage.InvoiceItem) {
	if it.ItemType == storage.ItemHeader {
		it.Quantity = decimal.NullDecimal{}
		it.UnitPrice = decimal.NullDecimal{}
		it.Amount = decimal.NullDecimal{}
		it.Unit = ""
		return
	}

	if it.Quantity.Valid && it.UnitPrice.Valid {
		it.Amount = decimal.NewNullDecimal(it.Quantity.Decimal.Mul(it.UnitPrice.Decimal).Round(Scale))
		return
	}
	it.Amount = decimal.NullDecimal{}
}

func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return ErrTaxRateOutOfRange
	}
	return nil
}

// ValidateItems rejects quantities and unit prices finer than Scale.
func ValidateItems(items []storage.InvoiceItem) error {
	for i, it := range items {
		for _, d := range []decimal.NullDecimal{it.Quantity, it.UnitPrice} {
			if d.Valid && !d.Decimal.Equal(d.Decimal.Round(Scale)) {
				return fmt.Errorf("%w: item %d has %s", ErrTooManyDecimals, i, d.Decimal.String())
			}
		}
	}
	return nil
}
