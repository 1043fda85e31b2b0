package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"printcalc/internal/pricing"
	"printcalc/pkg/money"
)

const sheet = "Расчёт"

// Receipt is everything printed on an exported calculation.
type Receipt struct {
	Order        pricing.Order
	Breakdown    pricing.Breakdown
	ETA          time.Time
	Link         string
	PriceVersion string
	CreatedAt    time.Time
}

func Build(r Receipt) (*excelize.File, error) {
	const operation = "receipt.Build"

	f := excelize.NewFile()

	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: failed to create sheet: %w", operation, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: failed to drop default sheet: %w", operation, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: failed to create style: %w", operation, err)
	}

	row := 1
	put := func(label string, value any) {
		f.SetCellValue(sheet, cell("A", row), label)
		f.SetCellValue(sheet, cell("B", row), value)
		row++
	}
	header := func(title string) {
		if row > 1 {
			row++
		}
		f.SetCellValue(sheet, cell("A", row), title)
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), bold)
		row++
	}

	header("Параметры заказа")
	for _, l := range OrderLines(r.Order) {
		put(l.Label, l.Value)
	}

	header("Стоимость")
	for _, l := range PriceLines(r.Breakdown) {
		put(l.Label, l.Value)
	}
	totalRow := row - 1
	f.SetCellStyle(sheet, cell("A", totalRow), cell("B", totalRow), bold)

	header("Справочно")
	put("Итого, ₽", money.Round(r.Breakdown.Total, 2).InexactFloat64())
	put("Готовность", r.ETA.Format("02.01.2006 15:04"))
	put("Дата расчёта", r.CreatedAt.Format("02.01.2006 15:04"))
	if r.PriceVersion != "" {
		put("Версия прайса", r.PriceVersion)
	}
	if r.Link != "" {
		put("Ссылка", r.Link)
		f.SetCellHyperLink(sheet, cell("B", row-1), r.Link, "External")
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 40)
	return f, nil
}

// Bytes renders the workbook into memory, for sending as a chat document.
func Bytes(r Receipt) ([]byte, error) {
	f, err := Build(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("receipt.Bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is the export name of a receipt.
func FileName(r Receipt) string {
	return fmt.Sprintf("%s_%d_%s.xlsx", r.Order.Product, r.Order.Quantity, r.CreatedAt.Format("20060102_1504"))
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
