package generate_excel

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"nippo-invoice/internal/storage"
)

const (
	InvoiceSheet = "Invoice"
	SummarySheet = "Summary"

	dateLayout = "2006-01-02"
	// first row of the item table
	itemsRow = 8
)

type GenerateExcelStorage interface {
	GetInvoice(ctx context.Context, tenantID, id int64) (*storage.Invoice, error)
	GetMonthlySummary(ctx context.Context, tenantID int64, year, month int) ([]storage.MonthlySummary, error)
}

type GenerateExcelService struct {
	storage GenerateExcelStorage
}

func NewGenerateService(storage GenerateExcelStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

type styles struct {
	title  int
	header int
	group  int
	money  int
	total  int
}

func newStyles(f *excelize.File) (styles, error) {
	var (
		s   styles
		err error
	)

	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	}); err != nil {
		return s, err
	}
	if s.group, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F3F3F3"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 3}); err != nil {
		return s, err
	}
	s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 3})
	return s, err
}

// GenerateInvoiceExcel renders one invoice as a workbook: a title block, the
// item table with header items as merged bold rows, then the totals.
func (g *GenerateExcelService) GenerateInvoiceExcel(ctx context.Context, tenantID, invoiceID int64) ([]byte, error) {
	const op = "service.generate_excel.GenerateInvoiceExcel"

	inv, err := g.storage.GetInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch invoice: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := InvoiceSheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: styles: %w", op, err)
	}

	title := inv.Title
	if title == "" {
		title = "Invoice"
	}
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", "E1")
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	number := "(draft)"
	if inv.InvoiceNumber != nil {
		number = *inv.InvoiceNumber
	}
	issued := ""
	if inv.IssuedAt != nil {
		issued = inv.IssuedAt.Format(dateLayout)
	}

	info := [][2]string{
		{"Customer", inv.CustomerName},
		{"Period", inv.PeriodFrom.Format(dateLayout) + " - " + inv.PeriodTo.Format(dateLayout)},
		{"Invoice No.", number},
		{"Issued", issued},
		{"Status", string(inv.Status)},
	}
	for i, kv := range info {
		row := i + 2
		f.SetCellValue(sheet, cellName(1, row), kv[0])
		f.SetCellValue(sheet, cellName(2, row), kv[1])
	}

	for i, name := range []string{"Item", "Quantity", "Unit", "Unit price", "Amount"} {
		f.SetCellValue(sheet, cellName(i+1, itemsRow-1), name)
	}
	f.SetCellStyle(sheet, cellName(1, itemsRow-1), cellName(5, itemsRow-1), st.header)

	row := itemsRow
	for _, it := range inv.Items {
		f.SetCellValue(sheet, cellName(1, row), it.Name)

		if it.ItemType == storage.ItemHeader {
			f.MergeCell(sheet, cellName(1, row), cellName(5, row))
			f.SetCellStyle(sheet, cellName(1, row), cellName(5, row), st.group)
			row++
			continue
		}

		setDecimal(f, sheet, cellName(2, row), it.Quantity)
		f.SetCellValue(sheet, cellName(3, row), it.Unit)
		setDecimal(f, sheet, cellName(4, row), it.UnitPrice)
		setDecimal(f, sheet, cellName(5, row), it.Amount)
		f.SetCellStyle(sheet, cellName(4, row), cellName(5, row), st.money)
		row++
	}

	row++
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Subtotal", inv.Subtotal},
		{fmt.Sprintf("Tax (%s%%)", inv.TaxRate.String()), inv.TaxAmount},
		{"Total", inv.TotalAmount},
	}
	for _, t := range totals {
		f.SetCellValue(sheet, cellName(4, row), t.label)
		f.SetCellValue(sheet, cellName(5, row), t.value.InexactFloat64())
		f.SetCellStyle(sheet, cellName(4, row), cellName(5, row), st.total)
		row++
	}

	if inv.Notes != "" {
		row++
		f.SetCellValue(sheet, cellName(1, row), inv.Notes)
		f.MergeCell(sheet, cellName(1, row), cellName(5, row))
	}

	f.SetColWidth(sheet, "A", "A", 40)
	f.SetColWidth(sheet, "B", "E", 14)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      itemsRow - 1,
		TopLeftCell: cellName(1, itemsRow),
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	return buf.Bytes(), nil
}

// GenerateSummaryExcel renders the per-customer totals of one month.
func (g *GenerateExcelService) GenerateSummaryExcel(ctx context.Context, tenantID int64, year, month int) ([]byte, error) {
	const op = "service.generate_excel.GenerateSummaryExcel"

	rows, err := g.storage.GetMonthlySummary(ctx, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch summary: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := SummarySheet
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: styles: %w", op, err)
	}

	headers := []string{"Customer", "Reports", "Products", "Materials", "Total"}
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, 1), name)
	}
	f.SetCellStyle(sheet, "A1", cellName(len(headers), 1), st.header)

	grand := decimal.Zero
	for i, s := range rows {
		r := i + 2
		f.SetCellValue(sheet, cellName(1, r), s.CustomerName)
		f.SetCellValue(sheet, cellName(2, r), s.ReportCount)
		f.SetCellValue(sheet, cellName(3, r), s.ProductAmount.InexactFloat64())
		f.SetCellValue(sheet, cellName(4, r), s.MaterialAmount.InexactFloat64())
		f.SetCellValue(sheet, cellName(5, r), s.TotalAmount.InexactFloat64())
		f.SetCellStyle(sheet, cellName(3, r), cellName(5, r), st.money)
		grand = grand.Add(s.TotalAmount)
	}

	last := len(rows) + 2
	f.SetCellValue(sheet, cellName(1, last), "Total")
	f.SetCellValue(sheet, cellName(5, last), grand.InexactFloat64())
	f.SetCellStyle(sheet, cellName(1, last), cellName(5, last), st.total)

	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "E", 14)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write workbook: %w", op, err)
	}

	return buf.Bytes(), nil
}

func setDecimal(f *excelize.File, sheet, cell string, d decimal.NullDecimal) {
	if !d.Valid {
		return
	}
	f.SetCellValue(sheet, cell, d.Decimal.InexactFloat64())
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
