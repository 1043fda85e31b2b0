package bot

import (
	"context"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"printcalc/internal/prices"
	"printcalc/internal/pricing"
	"printcalc/internal/receipt"
	"printcalc/internal/share"
	"printcalc/internal/storage/redis"
)

// availableProducts lists the products the loaded table actually prices.
func availableProducts(catalog *prices.Catalog) []pricing.Product {
	return lo.Filter(pricing.Products, func(p pricing.Product, _ int) bool {
		return catalog.Table.Has(p)
	})
}

func (b *Bot) showProducts(ctx context.Context, chatID int64) {
	catalog, err := b.prices.Holder().Current()
	if err != nil {
		b.sendError(chatID, userMessage(err))
		return
	}

	products := availableProducts(catalog)
	if len(products) == 0 {
		b.sendError(chatID, "В таблице цен нет ни одного продукта.")
		return
	}

	if err := b.state.Save(ctx, chatID, &redis.UserState{Step: StepProductSelection}); err != nil {
		b.logger.Error("Failed to set product selection state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	msg := tgbotapi.NewMessage(chatID, "Что будем считать?")
	msg.ReplyMarkup = b.createProductKeyboard(products)
	b.sendMessage(msg)
}

func (b *Bot) handleDefault(ctx context.Context, chatID int64) {
	b.showProducts(ctx, chatID)
}

func (b *Bot) handleCallbackData(ctx context.Context, chatID int64, data string) {
	switch {
	case strings.HasPrefix(data, callbackProduct):
		b.handleProductSelection(ctx, chatID, strings.TrimPrefix(data, callbackProduct))

	case strings.HasPrefix(data, callbackSet):
		key, value, _ := strings.Cut(strings.TrimPrefix(data, callbackSet), "=")
		b.updateOrder(ctx, chatID, url.Values{key: []string{value}})

	case data == callbackAsk+"qty":
		b.askQuantity(ctx, chatID)

	case data == callbackLink:
		b.sendLink(ctx, chatID)

	case data == callbackExport:
		b.sendExport(ctx, chatID)

	case data == callbackReset:
		b.showProducts(ctx, chatID)

	default:
		b.logger.Warn("Unknown callback", zap.String("data", data))
	}
}

func (b *Bot) handleProductSelection(ctx context.Context, chatID int64, key string) {
	p, ok := pricing.ParseProduct(key)
	if !ok {
		b.sendError(chatID, "Неизвестный продукт")
		return
	}

	if err := b.state.StartProduct(ctx, chatID, p); err != nil {
		b.logger.Error("Failed to start product",
			zap.Int64("chat_id", chatID),
			zap.String("product", key),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	b.renderQuote(ctx, chatID)
}

// updateOrder merges updates into the stored order and shows the new price.
func (b *Bot) updateOrder(ctx context.Context, chatID int64, updates url.Values) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}
	if state.Empty() {
		b.showProducts(ctx, chatID)
		return
	}

	state.Step = StepConfigure
	state.Query = apply(values(state), updates).Encode()
	if err := b.state.Save(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save order", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	b.renderQuote(ctx, chatID)
}

// currentQuote prices the stored order. The stored query is rewritten in
// its normalized form so that the next change starts from what was shown.
func (b *Bot) currentQuote(ctx context.Context, chatID int64) (prices.Quote, pricing.Config, *prices.Catalog, bool) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return prices.Quote{}, nil, nil, false
	}
	if state.Empty() {
		b.showProducts(ctx, chatID)
		return prices.Quote{}, nil, nil, false
	}

	p, _ := pricing.ParseProduct(state.Product)
	quote, catalog, err := b.prices.Quote(p, values(state))
	if err != nil {
		b.logger.Warn("Quote failed",
			zap.Int64("chat_id", chatID),
			zap.String("product", state.Product),
			zap.Error(err))
		b.sendError(chatID, userMessage(err))
		return prices.Quote{}, nil, nil, false
	}
	cfg, _ := catalog.Config(p)

	state.Query = share.Encode(cfg, quote.Order)
	state.Notice = quote.Adjustment.Message
	if err := b.state.Save(ctx, chatID, state); err != nil {
		b.logger.Error("Failed to save order", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return quote, cfg, catalog, true
}

func (b *Bot) renderQuote(ctx context.Context, chatID int64) {
	quote, cfg, _, ok := b.currentQuote(ctx, chatID)
	if !ok {
		return
	}

	text := formatQuote(quote, pricing.ETA(quote.Order.Urgency, b.now()), quote.Adjustment.Message)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.createOrderKeyboard(cfg, quote.Order)
	b.sendMessage(msg)
}

func (b *Bot) askQuantity(ctx context.Context, chatID int64) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil || state.Empty() {
		b.showProducts(ctx, chatID)
		return
	}

	if err := b.state.SetStep(ctx, chatID, StepQuantityInput); err != nil {
		b.logger.Error("Failed to set quantity input state", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	b.sendText(chatID, "Введите тираж, например 500:")
}

func (b *Bot) handleQuantityInput(ctx context.Context, chatID int64, text string) {
	b.updateOrder(ctx, chatID, url.Values{"qty": []string{text}})
}

// handleConfigureText accepts "key=value" pairs typed without /set.
func (b *Bot) handleConfigureText(ctx context.Context, chatID int64, text string) {
	state, err := b.state.Get(ctx, chatID)
	if err != nil || state.Empty() {
		b.showProducts(ctx, chatID)
		return
	}

	p, _ := pricing.ParseProduct(state.Product)
	updates, invalid := parseAssignments(p, text)
	if len(updates) == 0 {
		b.sendText(chatID, "Выберите параметры кнопками или отправьте, например: тираж=500 формат=A5")
		return
	}
	if len(invalid) > 0 {
		b.sendText(chatID, "Не понял: "+strings.Join(invalid, ", "))
	}
	b.updateOrder(ctx, chatID, updates)
}

func (b *Bot) sendLink(ctx context.Context, chatID int64) {
	quote, cfg, _, ok := b.currentQuote(ctx, chatID)
	if !ok {
		return
	}
	b.sendText(chatID, "🔗 "+share.Link(b.cfg.PublicBaseURL, cfg, quote.Order))
}

func (b *Bot) sendExport(ctx context.Context, chatID int64) {
	quote, cfg, catalog, ok := b.currentQuote(ctx, chatID)
	if !ok {
		return
	}

	now := b.now()
	r := receipt.Receipt{
		Order:        quote.Order,
		Breakdown:    quote.Breakdown,
		ETA:          pricing.ETA(quote.Order.Urgency, now),
		Link:         share.Link(b.cfg.PublicBaseURL, cfg, quote.Order),
		PriceVersion: catalog.Table.Meta().Version,
		CreatedAt:    now,
	}

	data, err := receipt.Bytes(r)
	if err != nil {
		b.logger.Error("Failed to build receipt", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendError(chatID, "Не удалось сформировать файл")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: receipt.FileName(r), Bytes: data})
	doc.Caption = "Расчёт стоимости"
	b.sendMessage(doc)
}
