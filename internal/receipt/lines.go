// Package receipt renders priced orders: as text lines for chat messages and
// as an xlsx workbook.
package receipt

import (
	"fmt"
	"strconv"

	"printcalc/internal/pricing"
	"printcalc/pkg/money"
)

// Line is one labelled row of a receipt.
type Line struct {
	Label string
	Value string
}

var productTitles = map[pricing.Product]string{
	pricing.ProductLeaflets:      "Листовки",
	pricing.ProductBusinessCards: "Визитки",
	pricing.ProductFlyers:        "Флаеры",
}

var optionTitles = map[string]string{
	pricing.PrintSingle:      "односторонняя",
	pricing.PrintDouble:      "двусторонняя",
	pricing.UrgencyStandard:  "стандарт",
	pricing.UrgencyOneDay:    "1 рабочий день",
	pricing.UrgencyUrgent:    "срочно",
	pricing.UrgencyExpress:   "экспресс",
	pricing.DesignNone:       "свой макет",
	pricing.MaterialPaper300: "бумага 300 г",
	pricing.MaterialDesigner: "дизайнерская бумага",
	pricing.MaterialPlastic:  "пластик",
	"gloss":                  "глянцевая",
	"matte":                  "матовая",
	"simple":                 "простой",
	"complex":                "сложный",
}

func ProductTitle(p pricing.Product) string {
	if t, ok := productTitles[p]; ok {
		return t
	}
	return string(p)
}

// OptionTitle returns the Russian name of an option value, or the value
// itself when it has none.
func OptionTitle(v string) string {
	if t, ok := optionTitles[v]; ok {
		return t
	}
	return v
}

func onOff(on bool) string {
	if on {
		return "да"
	}
	return "нет"
}

// OrderLines describes the selected options.
func OrderLines(o pricing.Order) []Line {
	stockLabel := "Бумага"
	if o.Product == pricing.ProductBusinessCards {
		stockLabel = "Материал"
	}

	lines := []Line{
		{"Продукт", ProductTitle(o.Product)},
		{"Формат", o.Size},
		{"Печать", OptionTitle(o.Print)},
		{stockLabel, OptionTitle(o.Stock)},
	}
	if o.GSM != "" {
		lines = append(lines, Line{"Плотность", o.GSM + " г/м²"})
	}
	lines = append(lines,
		Line{"Тираж", strconv.Itoa(o.Quantity) + " шт"},
		Line{"Срочность", OptionTitle(o.Urgency)},
		Line{"Дизайн", OptionTitle(o.Design)},
		Line{"Ламинация", onOff(o.Lamination)},
		Line{"Скругление углов", onOff(o.RoundedCorners)},
	)
	if o.CreasingLines > 0 {
		lines = append(lines, Line{"Биговка", fmt.Sprintf("%d линии", o.CreasingLines)})
	}
	return lines
}

// PriceLines itemizes a breakdown. Zero-valued optional rows are omitted.
func PriceLines(b pricing.Breakdown) []Line {
	lines := []Line{
		{"Цена за единицу", money.Number(b.PerItem) + " ₽"},
	}

	s := b.Surcharges
	for _, add := range []struct {
		label string
		value float64
	}{
		{"в т.ч. ламинация", s.Lamination},
		{"в т.ч. биговка", s.Creasing},
		{"в т.ч. скругление углов", s.Rounded},
		{"в т.ч. доплата за бумагу", s.Stock},
		{"в т.ч. доплата за плотность", s.GSM},
	} {
		if add.value > 0 {
			lines = append(lines, Line{add.label, money.Number(add.value) + " ₽/шт"})
		}
	}

	gross := money.RUB(b.Gross)
	if b.FloorApplied {
		gross += " (минимум: один лист)"
	}
	lines = append(lines, Line{"Сумма", gross})

	if b.DiscountRate > 0 {
		lines = append(lines,
			Line{"Скидка", money.Percent(b.DiscountRate) + ", " + money.RUB(b.DiscountValue)},
			Line{"После скидки", money.RUB(b.AfterDiscount)},
		)
	}
	if b.DesignFee > 0 {
		lines = append(lines, Line{"Дизайн", money.RUB(b.DesignFee)})
	}
	if b.UrgencyK != 1 {
		lines = append(lines, Line{"Коэффициент срочности", "×" + money.Number(b.UrgencyK)})
	}
	if b.VATRate > 0 {
		lines = append(lines,
			Line{"Без НДС", money.RUB(b.Subtotal)},
			Line{"НДС " + money.Percent(b.VATRate), money.RUB(b.VATValue)},
		)
	}
	lines = append(lines, Line{"Итого", money.RUB(b.Total)})
	return lines
}
