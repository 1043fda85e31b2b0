package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"printcalc/internal/prices"
	"printcalc/internal/pricing"
	"printcalc/internal/receipt"
)

const etaLayout = "02.01.2006 15:04"

func writeLines(sb *strings.Builder, lines []receipt.Line) {
	for _, l := range lines {
		if l.Value == "" {
			sb.WriteString(l.Label + "\n")
			continue
		}
		fmt.Fprintf(sb, "%s: %s\n", l.Label, l.Value)
	}
}

// formatQuote renders the chat message of a priced order.
func formatQuote(q prices.Quote, eta time.Time, notice string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🧮 %s\n\n", receipt.ProductTitle(q.Order.Product))
	writeLines(&sb, receipt.OrderLines(q.Order))
	sb.WriteString("\n")
	writeLines(&sb, receipt.PriceLines(q.Breakdown))
	fmt.Fprintf(&sb, "\n⏱ Готовность: %s\n", eta.Format(etaLayout))

	if notice != "" {
		fmt.Fprintf(&sb, "\nℹ️ %s\n", notice)
	}
	return sb.String()
}

// userMessage explains a failed price acquisition or quote in user terms.
func userMessage(err error) string {
	var verr *prices.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Файл цен не прошёл проверку:\n• " + strings.Join(verr.Problems, "\n• ")
	case errors.Is(err, prices.ErrTableMalformed):
		return "Файл цен повреждён: проверьте JSON."
	case errors.Is(err, prices.ErrTableUnavailable), errors.Is(err, pricing.ErrPricesNotLoaded):
		return "Цены не загружены. Калькулятор временно недоступен, попробуйте позже."
	case errors.Is(err, pricing.ErrUnknownProduct):
		return "Этот продукт сейчас не рассчитывается."
	default:
		return "Ошибка при обработке запроса"
	}
}

// author identifies an admin in logs and stored table versions.
func author(u *tgbotapi.User) string {
	if u == nil {
		return "telegram"
	}
	if u.UserName != "" {
		return "telegram:@" + u.UserName
	}
	return fmt.Sprintf("telegram:%d", u.ID)
}
