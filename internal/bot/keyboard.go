package bot

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"printcalc/internal/pricing"
	"printcalc/internal/receipt"
	"printcalc/internal/share"
)

// BOT KEYBOARDS

const buttonsPerRow = 4

func (b *Bot) createProductKeyboard(products []pricing.Product) tgbotapi.InlineKeyboardMarkup {
	rows := lo.Map(products, func(p pricing.Product, _ int) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(receipt.ProductTitle(p), callbackProduct+string(p)),
		)
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func setButton(label, key, value string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, callbackSet+key+"="+value)
}

// choiceRows renders one option group, marking the current value.
func choiceRows(key, current string, values []string) [][]tgbotapi.InlineKeyboardButton {
	if len(values) < 2 {
		return nil
	}
	buttons := lo.Map(values, func(v string, _ int) tgbotapi.InlineKeyboardButton {
		label := receipt.OptionTitle(v)
		if v == current {
			label = "✓ " + label
		}
		return setButton(label, key, v)
	})
	return lo.Chunk(buttons, buttonsPerRow)
}

func toggleButton(label, key string, on bool) tgbotapi.InlineKeyboardButton {
	if on {
		return setButton("✓ "+label, key, "")
	}
	return setButton(label, key, "1")
}

func (b *Bot) createOrderKeyboard(cfg pricing.Config, o pricing.Order) tgbotapi.InlineKeyboardMarkup {
	c := cfg.Choices()

	var rows [][]tgbotapi.InlineKeyboardButton
	rows = append(rows, choiceRows("size", o.Size, c.Sizes)...)
	rows = append(rows, choiceRows("print", o.Print, c.Prints)...)
	rows = append(rows, choiceRows(share.StockKey(o.Product), o.Stock, c.Stocks)...)
	rows = append(rows, choiceRows("gsm", o.GSM, c.GSMs)...)
	rows = append(rows, choiceRows("urgency", o.Urgency, c.Urgencies)...)
	rows = append(rows, choiceRows("design", o.Design, c.Designs)...)

	finishing := tgbotapi.NewInlineKeyboardRow()
	if !(o.Product == pricing.ProductBusinessCards && o.Stock == pricing.MaterialPlastic) {
		finishing = append(finishing,
			toggleButton("Ламинация", "lam", o.Lamination),
			toggleButton("Углы", "rnd", o.RoundedCorners),
		)
	}
	if o.Product != pricing.ProductBusinessCards {
		next := (o.CreasingLines + 1) % (maxCreasingLines + 1)
		finishing = append(finishing,
			setButton("Биговка: "+strconv.Itoa(o.CreasingLines), "cr", strconv.Itoa(next)))
	}
	if len(finishing) > 0 {
		rows = append(rows, finishing)
	}

	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Тираж: "+strconv.Itoa(o.Quantity), callbackAsk+"qty"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Ссылка", callbackLink),
			tgbotapi.NewInlineKeyboardButtonData("📄 Excel", callbackExport),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Сначала", callbackReset),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
