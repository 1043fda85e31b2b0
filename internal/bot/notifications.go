package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// notifyAdmins tells every admin except the one in chat except about a price
// change.
func (b *Bot) notifyAdmins(text string, except int64) {
	for _, id := range b.cfg.AdminIDs {
		if id == except {
			continue
		}
		if _, err := b.bot.Send(tgbotapi.NewMessage(id, "📢 "+text)); err != nil {
			b.logger.Error("Failed to notify admin",
				zap.Int64("admin_id", id),
				zap.Error(err))
		}
	}
}
