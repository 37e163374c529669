package amount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nippo-invoice/internal/storage"
)

func item(t storage.ItemType, amount int64) storage.InvoiceItem {
	return storage.InvoiceItem{ItemType: t, Amount: decimal.NewNullDecimal(decimal.NewFromInt(amount))}
}

func TestCalculate_Examples(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		rate     int64
		tax      int64
		total    int64
	}{
		{"round number", 10000, 10, 1000, 11000},
		{"floor not round", 1234, 10, 123, 1357},
		{"never rounds up", 999, 10, 99, 1098},
		{"zero rate", 5000, 0, 0, 5000},
		{"reduced rate", 1999, 8, 159, 2158},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []storage.InvoiceItem{item(storage.ItemProduct, tt.subtotal)}
			got := Calculate(items, decimal.NewFromInt(tt.rate))

			assert.True(t, decimal.NewFromInt(tt.subtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, decimal.NewFromInt(tt.tax).Equal(got.TaxAmount), "tax %s", got.TaxAmount)
			assert.True(t, decimal.NewFromInt(tt.total).Equal(got.TotalAmount), "total %s", got.TotalAmount)
		})
	}
}

func TestCalculate_HeadersAndMissingAmountsIgnored(t *testing.T) {
	header := item(storage.ItemHeader, 100000)
	noAmount := storage.InvoiceItem{ItemType: storage.ItemOther}

	items := []storage.InvoiceItem{
		header,
		item(storage.ItemProduct, 3000),
		item(storage.ItemMaterial, 1500),
		item(storage.ItemLabor, 500),
		noAmount,
	}

	got := Calculate(items, decimal.NewFromInt(10))

	assert.Equal(t, "5000", got.Subtotal.String())
	assert.Equal(t, "500", got.TaxAmount.String())
	assert.Equal(t, "5500", got.TotalAmount.String())
}

func TestCalculate_FractionalTaxFloors(t *testing.T) {
	items := []storage.InvoiceItem{{
		ItemType: storage.ItemProduct,
		Amount:   decimal.NewNullDecimal(decimal.RequireFromString("1005.5")),
	}}

	got := Calculate(items, decimal.NewFromInt(10))

	assert.Equal(t, "1005.5", got.Subtotal.String())
	assert.Equal(t, "100", got.TaxAmount.String())
	assert.Equal(t, "1105.5", got.TotalAmount.String())
}

func TestCalculate_Empty(t *testing.T) {
	got := Calculate(nil, decimal.NewFromInt(10))
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.TaxAmount.IsZero())
	assert.True(t, got.TotalAmount.IsZero())
}

func TestApply(t *testing.T) {
	inv := &storage.Invoice{
		TaxRate: decimal.NewFromInt(10),
		Items:   []storage.InvoiceItem{item(storage.ItemProduct, 10000)},
	}

	Apply(inv)

	assert.Equal(t, "10000", inv.Subtotal.String())
	assert.Equal(t, "1000", inv.TaxAmount.String())
	assert.Equal(t, "11000", inv.TotalAmount.String())
}

func TestRecalcItem(t *testing.T) {
	it := storage.InvoiceItem{
		ItemType:  storage.ItemProduct,
		Quantity:  decimal.NewNullDecimal(decimal.RequireFromString("2.5")),
		UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(1200)),
	}
	RecalcItem(&it)
	require.True(t, it.Amount.Valid)
	assert.Equal(t, "3000", it.Amount.Decimal.String())

	it.UnitPrice = decimal.NullDecimal{}
	RecalcItem(&it)
	assert.False(t, it.Amount.Valid)

	header := storage.InvoiceItem{
		ItemType: storage.ItemHeader,
		Unit:     "式",
		Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1)),
		Amount:   decimal.NewNullDecimal(decimal.NewFromInt(500)),
	}
	RecalcItem(&header)
	assert.False(t, header.Amount.Valid)
	assert.False(t, header.Quantity.Valid)
	assert.Empty(t, header.Unit)
}

func TestValidateTaxRate(t *testing.T) {
	assert.NoError(t, ValidateTaxRate(decimal.Zero))
	assert.NoError(t, ValidateTaxRate(decimal.NewFromInt(100)))
	assert.NoError(t, ValidateTaxRate(decimal.NewFromInt(10)))
	assert.ErrorIs(t, ValidateTaxRate(decimal.NewFromInt(-1)), ErrTaxRateOutOfRange)
	assert.ErrorIs(t, ValidateTaxRate(decimal.RequireFromString("100.01")), ErrTaxRateOutOfRange)
}

func TestRecalcItem_RoundsToStoredScale(t *testing.T) {
	items := []storage.InvoiceItem{
		{ItemType: storage.ItemOther, Quantity: decimal.NewNullDecimal(decimal.RequireFromString("0.5")), UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("0.25"))},
		{ItemType: storage.ItemOther, Quantity: decimal.NewNullDecimal(decimal.RequireFromString("0.5")), UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("0.25"))},
	}

	stored := decimal.Zero
	for i := range items {
		RecalcItem(&items[i])
		require.True(t, items[i].Amount.Valid)
		assert.Equal(t, "0.13", items[i].Amount.Decimal.String())
		stored = stored.Add(items[i].Amount.Decimal.Round(Scale))
	}

	totals := Calculate(items, decimal.NewFromInt(10))
	assert.True(t, stored.Equal(totals.Subtotal), "subtotal %s, stored sum %s", totals.Subtotal, stored)
	assert.Equal(t, "0.26", totals.Subtotal.String())
}

func TestValidateItems(t *testing.T) {
	ok := []storage.InvoiceItem{
		{ItemType: storage.ItemHeader, Name: "03/01 work"},
		{ItemType: storage.ItemLabor, Quantity: decimal.NewNullDecimal(decimal.RequireFromString("1.50")), UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("1200.25"))},
		{ItemType: storage.ItemOther, Quantity: decimal.NewNullDecimal(decimal.RequireFromString("2.000")), UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(5))},
	}
	assert.NoError(t, ValidateItems(ok))

	fineQty := []storage.InvoiceItem{
		{ItemType: storage.ItemOther, Quantity: decimal.NewNullDecimal(decimal.RequireFromString("0.125")), UnitPrice: decimal.NewNullDecimal(decimal.NewFromInt(1))},
	}
	assert.ErrorIs(t, ValidateItems(fineQty), ErrTooManyDecimals)

	finePrice := []storage.InvoiceItem{
		{ItemType: storage.ItemOther, Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1)), UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString("9.999"))},
	}
	assert.ErrorIs(t, ValidateItems(finePrice), ErrTooManyDecimals)
}
