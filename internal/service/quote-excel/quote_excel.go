package quote_excel

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/service/trays"
	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/xuri/excelize/v2"
)

const sheet = "Quote"

var headers = []string{"#", "Kind", "Instrument", "Service / part", "Qty", "Non-repairable", "Unit price", "Discount %", "Urgent", "Brands", "Line total"}

type QuoteSource interface {
	Quote(ctx context.Context, trayID int64) (trays.Quote, error)
}

type QuoteExcelService struct {
	quotes QuoteSource
}

func NewQuoteExcelService(quotes QuoteSource) *QuoteExcelService {
	return &QuoteExcelService{quotes: quotes}
}

// GenerateQuoteExcel renders the display rows of a tray followed by its totals.
func (g *QuoteExcelService) GenerateQuoteExcel(ctx context.Context, trayID int64) ([]byte, error) {
	const op = "service.quote_excel.GenerateQuoteExcel"

	quote, err := g.quotes.Quote(ctx, trayID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Tray %s", trayLabel(quote.Tray)))
	if err := f.SetCellStyle(sheet, "A1", "A1", totalStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	const headerRow = 3
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, headerRow), name)
	}
	if err := f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(headers), headerRow), headerStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := headerRow + 1
	for i, r := range quote.Rows {
		f.SetCellValue(sheet, cellName(1, row), i+1)
		f.SetCellValue(sheet, cellName(2, row), string(r.Identity.Kind))
		f.SetCellValue(sheet, cellName(3, row), r.Identity.InstrumentID)
		f.SetCellValue(sheet, cellName(4, row), itemRef(r.Identity))
		f.SetCellValue(sheet, cellName(5, row), r.Quantity)
		f.SetCellValue(sheet, cellName(6, row), r.NonRepairableQty)
		// a merged row with differing prices has no single unit price
		if r.MixedPrices {
			f.SetCellValue(sheet, cellName(7, row), "mixed")
			f.SetCellValue(sheet, cellName(8, row), "mixed")
		} else {
			f.SetCellValue(sheet, cellName(7, row), r.UnitPrice.InexactFloat64())
			f.SetCellValue(sheet, cellName(8, row), r.DiscountPct.InexactFloat64())
		}
		f.SetCellValue(sheet, cellName(9, row), yesNo(r.Urgent))
		f.SetCellValue(sheet, cellName(10, row), brands(r.BrandGroups))
		f.SetCellValue(sheet, cellName(11, row), r.LineNet.Round(2).InexactFloat64())
		row++
	}

	row++
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", quote.Totals.Subtotal.InexactFloat64()},
		{"Item discounts", quote.Totals.ItemsDiscountAmount.InexactFloat64()},
		{"Tray discount", quote.Totals.GlobalDiscountAmount.InexactFloat64()},
		{"Urgent markup", quote.Totals.UrgentAmount.InexactFloat64()},
		{"Subscription", quote.Totals.SubscriptionDiscountAmount.InexactFloat64()},
		{"Total", quote.Totals.Total.InexactFloat64()},
	}
	labelCol := len(headers) - 1
	for _, t := range totals {
		f.SetCellValue(sheet, cellName(labelCol, row), t.label)
		f.SetCellValue(sheet, cellName(labelCol+1, row), t.value)
		row++
	}
	if err := f.SetCellStyle(sheet, cellName(labelCol, row-1), cellName(labelCol+1, row-1), totalStyle); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(sheet, "B", "D", 15); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetColWidth(sheet, "J", "J", 30); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func trayLabel(t storage.Tray) string {
	if t.IsPool() {
		return "pool"
	}
	return t.Number
}

func itemRef(id storage.Identity) string {
	switch id.Kind {
	case storage.KindService:
		return fmt.Sprintf("service %d", id.ServiceID)
	case storage.KindPart:
		return fmt.Sprintf("part %d", id.PartID)
	default:
		return "-"
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// brands renders groups as "Acme: SN1, SN2*; Other: -" where * marks a
// serial under warranty.
func brands(groups []storage.BrandGroup) string {
	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		serials := make([]string, 0, len(g.Serials))
		for _, s := range g.Serials {
			v := s.Value
			if s.UnderWarranty {
				v += "*"
			}
			serials = append(serials, v)
		}
		list := "-"
		if len(serials) > 0 {
			list = strings.Join(serials, ", ")
		}
		parts = append(parts, g.Brand+": "+list)
	}
	return strings.Join(parts, "; ")
}
