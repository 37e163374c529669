package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"nippo-invoice/internal/service/amount"
	"nippo-invoice/internal/service/lineitem"
	"nippo-invoice/internal/storage"
)

var (
	ErrInvalidItemType = errors.New("invalid item type")
	ErrInvalidPeriod   = errors.New("period_from must not be after period_to")
)

type InvoiceStorage interface {
	GetCustomer(ctx context.Context, tenantID, customerID int64) (*storage.Customer, error)
	GetDailyReports(ctx context.Context, tenantID, customerID int64, from, to time.Time) ([]storage.DailyReport, error)

	SaveInvoice(ctx context.Context, inv *storage.Invoice) (int64, error)
	GetInvoice(ctx context.Context, tenantID, id int64) (*storage.Invoice, error)
	ListInvoices(ctx context.Context, tenantID int64, year, month int) ([]storage.InvoiceListEntry, error)
	UpdateInvoiceItems(ctx context.Context, inv *storage.Invoice) error
	IssueInvoice(ctx context.Context, tenantID, id int64, prefix string, issue func(inv *storage.Invoice, highest string) error) error
	CancelInvoice(ctx context.Context, inv *storage.Invoice) error
}

type InvoiceService struct {
	storage        InvoiceStorage
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

func NewInvoiceService(storage InvoiceStorage, defaultTaxRate decimal.Decimal) *InvoiceService {
	return &InvoiceService{
		storage:        storage,
		defaultTaxRate: defaultTaxRate,
		now:            time.Now,
	}
}

type CreateRequest struct {
	CustomerID     int64                  `json:"customer_id"`
	Title          string                 `json:"title"`
	PeriodFrom     time.Time              `json:"period_from"`
	PeriodTo       time.Time              `json:"period_to"`
	DisplayPattern storage.DisplayPattern `json:"display_pattern"`
	TaxRate        *decimal.Decimal       `json:"tax_rate"`
	Notes          string                 `json:"notes"`
}

// Create builds a draft invoice from the customer's daily reports in the
// requested period and stores it together with its items.
func (s *InvoiceService) Create(ctx context.Context, tenantID int64, req CreateRequest) (*storage.Invoice, error) {
	const op = "service.invoicing.Create"

	if req.PeriodFrom.After(req.PeriodTo) {
		return nil, ErrInvalidPeriod
	}

	var (
		customer *storage.Customer
		reports  []storage.DailyReport
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customer, err = s.storage.GetCustomer(gCtx, tenantID, req.CustomerID)
		if err != nil {
			return fmt.Errorf("customer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		reports, err = s.storage.GetDailyReports(gCtx, tenantID, req.CustomerID, req.PeriodFrom, req.PeriodTo)
		if err != nil {
			return fmt.Errorf("daily reports: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pattern := req.DisplayPattern
	if !pattern.Valid() {
		pattern = storage.PatternByReport
	}

	taxRate := s.defaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	inv := &storage.Invoice{
		TenantID:       tenantID,
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		Title:          req.Title,
		PeriodFrom:     req.PeriodFrom,
		PeriodTo:       req.PeriodTo,
		DisplayPattern: pattern,
		Status:         storage.StatusDraft,
		TaxRate:        taxRate,
		Notes:          req.Notes,
		Items:          lineitem.Generate(reports, pattern),
	}
	amount.Apply(inv)

	id, err := s.storage.SaveInvoice(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv.ID = id
	for i := range inv.Items {
		inv.Items[i].InvoiceID = id
	}

	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	const op = "service.invoicing.Get"

	inv, err := s.storage.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, tenantID int64, year, month int) ([]storage.InvoiceListEntry, error) {
	const op = "service.invoicing.List"

	list, err := s.storage.ListInvoices(ctx, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// UpdateItems replaces the item set of a draft invoice. Amounts, sort order
// and totals are recomputed before anything is written.
func (s *InvoiceService) UpdateItems(ctx context.Context, tenantID, id int64, items []storage.InvoiceItem, taxRate *decimal.Decimal) (*storage.Invoice, error) {
	const op = "service.invoicing.UpdateItems"

	inv, err := s.storage.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if inv.Status != storage.StatusDraft {
		return nil, fmt.Errorf("%s: %w", op, ErrNotDraft)
	}

	if err := normalizeItems(id, items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv.Items = items
	if taxRate != nil {
		inv.TaxRate = *taxRate
	}
	amount.Apply(inv)

	if err := s.storage.UpdateInvoiceItems(ctx, inv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inv, nil
}

// Regenerate rebuilds the items of a draft invoice from the current daily
// reports. An empty pattern keeps the invoice's own.
func (s *InvoiceService) Regenerate(ctx context.Context, tenantID, id int64, pattern storage.DisplayPattern) (*storage.Invoice, error) {
	const op = "service.invoicing.Regenerate"

	inv, err := s.storage.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if inv.Status != storage.StatusDraft {
		return nil, fmt.Errorf("%s: %w", op, ErrNotDraft)
	}

	reports, err := s.storage.GetDailyReports(ctx, tenantID, inv.CustomerID, inv.PeriodFrom, inv.PeriodTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if pattern.Valid() {
		inv.DisplayPattern = pattern
	}

	inv.Items = lineitem.Generate(reports, inv.DisplayPattern)
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
	}
	amount.Apply(inv)

	if err := s.storage.UpdateInvoiceItems(ctx, inv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inv, nil
}

// Issue assigns the next INV-<year>-<seq> number inside the storage
// transaction. A non-draft invoice yields ErrNotDraft and nothing changes; a
// concurrent issuance of the same number yields storage.ErrInvoiceNumberTaken.
func (s *InvoiceService) Issue(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	const op = "service.invoicing.Issue"

	now := s.now()

	err := s.storage.IssueInvoice(ctx, tenantID, id, NumberPrefix(now.Year()), func(inv *storage.Invoice, highest string) error {
		return Issue(inv, highest, now)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inv, err := s.storage.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id int64) (*storage.Invoice, error) {
	const op = "service.invoicing.Cancel"

	inv, err := s.storage.GetInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := Cancel(inv, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.CancelInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inv, nil
}

// Preview recalculates items and totals without touching storage. A nil
// rate means the configured default.
func (s *InvoiceService) Preview(items []storage.InvoiceItem, taxRate *decimal.Decimal) ([]storage.InvoiceItem, amount.Totals, error) {
	if err := normalizeItems(0, items); err != nil {
		return nil, amount.Totals{}, err
	}
	rate := s.defaultTaxRate
	if taxRate != nil {
		rate = *taxRate
	}
	return items, amount.Calculate(items, rate), nil
}

func normalizeItems(invoiceID int64, items []storage.InvoiceItem) error {
	for i := range items {
		if !items[i].ItemType.Valid() {
			return fmt.Errorf("%w: %q at position %d", ErrInvalidItemType, items[i].ItemType, i)
		}
		items[i].InvoiceID = invoiceID
		items[i].SortOrder = i
		amount.RecalcItem(&items[i])
	}
	return nil
}
