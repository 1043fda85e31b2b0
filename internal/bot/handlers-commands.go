package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"printcalc/internal/pricing"
)

const helpText = `Калькулятор стоимости печати.

/start - выбрать продукт
/set ключ=значение - изменить параметры, например /set тираж=500 формат=A5 ламинация=да
/link - ссылка на текущий расчёт
/export - расчёт в Excel
/reset - начать заново

Ключи: формат, печать, бумага (материал), плотность, тираж, срочность, дизайн, ламинация, углы, биговка.`

const adminHelpText = `

Администратору:
/reload - перезагрузить цены
/prices - состояние таблицы цен
Пришлите файл prices.json, чтобы заменить цены.`

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	b.sendText(chatID, "Привет! 👋 Я посчитаю стоимость печати.")
	b.showProducts(ctx, chatID)
}

func (b *Bot) handleHelp(_ context.Context, msg *tgbotapi.Message) {
	text := helpText
	if msg.From != nil && b.isAdmin(msg.From.ID) {
		text += adminHelpText
	}
	b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReset(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if err := b.state.Clear(ctx, chatID); err != nil {
		b.logger.Error("Failed to clear user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
	b.showProducts(ctx, chatID)
}

func (b *Bot) handleSet(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}
	if state.Empty() {
		b.sendText(chatID, "Сначала выберите продукт.")
		b.showProducts(ctx, chatID)
		return
	}

	p, _ := pricing.ParseProduct(state.Product)
	updates, invalid := parseAssignments(p, msg.CommandArguments())
	if len(invalid) > 0 {
		b.sendText(chatID, "Не понял: "+strings.Join(invalid, ", "))
	}
	if len(updates) == 0 {
		if len(invalid) == 0 {
			b.sendText(chatID, "Пример: /set тираж=500 формат=A5")
		}
		return
	}
	b.updateOrder(ctx, chatID, updates)
}

func (b *Bot) handleLink(ctx context.Context, msg *tgbotapi.Message) {
	b.sendLink(ctx, msg.Chat.ID)
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	b.sendExport(ctx, msg.Chat.ID)
}

func (b *Bot) handleUnknownCommand(chatID int64) {
	b.sendText(chatID, "Неизвестная команда. Список команд: /help")
}
