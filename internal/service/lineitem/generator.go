// Package lineitem turns daily work reports into invoice line items.
package lineitem

import (
	"fmt"

	"github.com/shopspring/decimal"
	"nippo-invoice/internal/service/amount"
	"nippo-invoice/internal/storage"
)

const headerDateLayout = "01/02"

// Generate builds the ordered item list for the given reports. Unknown or
// empty patterns fall back to by_report.
func Generate(reports []storage.DailyReport, pattern storage.DisplayPattern) []storage.InvoiceItem {
	if pattern == storage.PatternAggregated {
		return aggregated(reports)
	}
	return byReport(reports)
}

func headerName(r storage.DailyReport) string {
	return fmt.Sprintf("%s work", r.WorkDate.Format(headerDateLayout))
}

func byReport(reports []storage.DailyReport) []storage.InvoiceItem {
	items := make([]storage.InvoiceItem, 0, len(reports)*3)
	order := 0

	emit := func(it storage.InvoiceItem) {
		it.SortOrder = order
		amount.RecalcItem(&it)
		items = append(items, it)
		order++
	}

	for _, r := range reports {
		emit(storage.InvoiceItem{ItemType: storage.ItemHeader, Name: headerName(r)})

		for _, pu := range r.Products {
			if pu.Product == nil {
				continue
			}
			emit(productItem(pu.Product, pu.Quantity))
		}

		for _, mu := range r.Materials {
			if mu.Material == nil {
				continue
			}
			emit(materialItem(mu.Material, mu.Quantity))
		}
	}

	return items
}

// aggregated sums usages per product and per material id. The first copy of
// a product seen wins for name, unit and price.
func aggregated(reports []storage.DailyReport) []storage.InvoiceItem {
	var products, materials []storage.InvoiceItem
	productIdx := make(map[int64]int)
	materialIdx := make(map[int64]int)

	for _, r := range reports {
		for _, pu := range r.Products {
			if pu.Product == nil {
				continue
			}
			if i, ok := productIdx[pu.Product.ID]; ok {
				addQuantity(&products[i], pu.Quantity)
				continue
			}
			productIdx[pu.Product.ID] = len(products)
			products = append(products, productItem(pu.Product, pu.Quantity))
		}

		for _, mu := range r.Materials {
			if mu.Material == nil {
				continue
			}
			if i, ok := materialIdx[mu.Material.ID]; ok {
				addQuantity(&materials[i], mu.Quantity)
				continue
			}
			materialIdx[mu.Material.ID] = len(materials)
			materials = append(materials, materialItem(mu.Material, mu.Quantity))
		}
	}

	items := make([]storage.InvoiceItem, 0, len(products)+len(materials))
	items = append(items, products...)
	items = append(items, materials...)
	for i := range items {
		items[i].SortOrder = i
		amount.RecalcItem(&items[i])
	}

	return items
}

func addQuantity(it *storage.InvoiceItem, qty decimal.Decimal) {
	it.Quantity = decimal.NewNullDecimal(it.Quantity.Decimal.Add(qty))
}

func productItem(p *storage.Product, qty decimal.Decimal) storage.InvoiceItem {
	id := p.ID
	return storage.InvoiceItem{
		ItemType:  storage.ItemProduct,
		Name:      p.Name,
		Quantity:  decimal.NewNullDecimal(qty),
		Unit:      p.Unit,
		UnitPrice: decimal.NewNullDecimal(p.UnitPrice),
		ProductID: &id,
	}
}

func materialItem(m *storage.Material, qty decimal.Decimal) storage.InvoiceItem {
	id := m.ID
	return storage.InvoiceItem{
		ItemType:   storage.ItemMaterial,
		Name:       m.Name,
		Quantity:   decimal.NewNullDecimal(qty),
		Unit:       m.Unit,
		UnitPrice:  decimal.NewNullDecimal(m.UnitPrice),
		MaterialID: &id,
	}
}
