package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemHeader   ItemType = "header"
	ItemProduct  ItemType = "product"
	ItemMaterial ItemType = "material"
	ItemLabor    ItemType = "labor"
	ItemOther    ItemType = "other"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemHeader, ItemProduct, ItemMaterial, ItemLabor, ItemOther:
		return true
	}
	return false
}

type DisplayPattern string

const (
	PatternByReport   DisplayPattern = "by_report"
	PatternAggregated DisplayPattern = "aggregated"
)

func (p DisplayPattern) Valid() bool {
	return p == PatternByReport || p == PatternAggregated
}

type InvoiceStatus string

const (
	StatusDraft    InvoiceStatus = "draft"
	StatusIssued   InvoiceStatus = "issued"
	StatusCanceled InvoiceStatus = "canceled"
)

type InvoiceItem struct {
	ID         int64               `json:"id"`
	InvoiceID  int64               `json:"invoice_id"`
	ItemType   ItemType            `json:"item_type"`
	Name       string              `json:"name"`
	Quantity   decimal.NullDecimal `json:"quantity"`
	Unit       string              `json:"unit"`
	UnitPrice  decimal.NullDecimal `json:"unit_price"`
	Amount     decimal.NullDecimal `json:"amount"`
	SortOrder  int                 `json:"sort_order"`
	ProductID  *int64              `json:"product_id"`
	MaterialID *int64              `json:"material_id"`
}

type Invoice struct {
	ID             int64           `json:"id"`
	TenantID       int64           `json:"tenant_id"`
	CustomerID     int64           `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Title          string          `json:"title"`
	PeriodFrom     time.Time       `json:"period_from"`
	PeriodTo       time.Time       `json:"period_to"`
	DisplayPattern DisplayPattern  `json:"display_pattern"`
	Status         InvoiceStatus   `json:"status"`
	InvoiceNumber  *string         `json:"invoice_number"`
	IssuedAt       *time.Time      `json:"issued_at"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Notes          string          `json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at"`
	Items          []InvoiceItem   `json:"items"`
}

// InvoiceListEntry is an invoice row without its items.
type InvoiceListEntry struct {
	ID            int64           `json:"id"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Title         string          `json:"title"`
	Status        InvoiceStatus   `json:"status"`
	InvoiceNumber *string         `json:"invoice_number"`
	IssuedAt      *time.Time      `json:"issued_at"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PeriodFrom    time.Time       `json:"period_from"`
	PeriodTo      time.Time       `json:"period_to"`
}
