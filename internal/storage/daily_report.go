package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type DailyReport struct {
	ID         int64           `json:"id"`
	TenantID   int64           `json:"tenant_id"`
	CustomerID int64           `json:"customer_id"`
	SiteName   string          `json:"site_name"`
	WorkDate   time.Time       `json:"work_date"`
	Summary    string          `json:"summary"`
	Products   []ProductUsage  `json:"products"`
	Materials  []MaterialUsage `json:"materials"`
}

// ProductUsage.Product is nil when the referenced product was deleted.
type ProductUsage struct {
	ID       int64           `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
	Product  *Product        `json:"product"`
}

// MaterialUsage.Material is nil when the referenced material was deleted.
type MaterialUsage struct {
	ID       int64           `json:"id"`
	Quantity decimal.Decimal `json:"quantity"`
	Material *Material       `json:"material"`
}

type Customer struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
}

type MonthlySummary struct {
	CustomerID     int64           `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	ReportCount    int             `json:"report_count"`
	ProductAmount  decimal.Decimal `json:"product_amount"`
	MaterialAmount decimal.Decimal `json:"material_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
