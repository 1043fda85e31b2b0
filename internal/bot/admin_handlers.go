package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"printcalc/internal/prices"
)

const (
	statusTimeLayout = "02.01.2006 15:04:05"
	historyLimit     = 5
)

func (b *Bot) requireAdmin(msg *tgbotapi.Message) bool {
	if msg.From != nil && b.isAdmin(msg.From.ID) {
		return true
	}
	b.sendError(msg.Chat.ID, "Команда доступна только администраторам.")
	return false
}

func (b *Bot) handleReload(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}
	chatID := msg.Chat.ID

	catalog, err := b.prices.Reload(ctx)
	if err != nil {
		b.sendError(chatID, userMessage(err))
		return
	}

	text := "✅ Цены обновлены: " + describeCatalog(catalog)
	b.sendText(chatID, text)
	b.notifyAdmins(fmt.Sprintf("%s перезагрузил цены: %s", author(msg.From), describeCatalog(catalog)), chatID)
}

func (b *Bot) handlePricesStatus(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	var sb strings.Builder
	catalog, err := b.prices.Holder().Current()
	if err != nil {
		sb.WriteString("⚠️ Таблица цен не загружена.\n")
	} else {
		fmt.Fprintf(&sb, "Таблица цен: %s\nЗагружена: %s\n",
			describeCatalog(catalog), catalog.LoadedAt.Format(statusTimeLayout))
	}
	if lastErr := b.prices.Holder().LastError(); lastErr != nil {
		fmt.Fprintf(&sb, "Последняя ошибка загрузки: %v\n", lastErr)
	}

	history, err := b.prices.History(ctx, historyLimit)
	if err != nil {
		b.logger.Warn("Failed to list price table versions", zap.Error(err))
	}
	if len(history) > 0 {
		sb.WriteString("\nСохранённые версии:\n")
		for _, rec := range history {
			fmt.Fprintf(&sb, "v%d %s, %s (%s)\n", rec.Version, rec.CreatedAt.Format(statusTimeLayout), rec.Source, rec.Author)
		}
	}
	b.sendText(msg.Chat.ID, sb.String())
}

func describeCatalog(c *prices.Catalog) string {
	meta := c.Table.Meta()
	parts := []string{"источник " + c.Source}
	if meta.Version != "" {
		parts = append(parts, "версия "+meta.Version)
	}
	if meta.Updated != "" {
		parts = append(parts, "от "+meta.Updated)
	}
	return strings.Join(parts, ", ")
}

// handleDocument installs a price file sent by an admin.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.From == nil || !b.isAdmin(msg.From.ID) {
		b.sendError(chatID, "Загружать файлы цен могут только администраторы.")
		return
	}
	if msg.Document.FileSize > maxDocumentSize {
		b.sendError(chatID, "Файл слишком большой.")
		return
	}

	data, err := b.downloadDocument(ctx, msg.Document.FileID)
	if err != nil {
		b.logger.Error("Failed to download price file",
			zap.Int64("chat_id", chatID),
			zap.String("file_name", msg.Document.FileName),
			zap.Error(err))
		b.sendError(chatID, "Не удалось скачать файл.")
		return
	}

	catalog, err := b.prices.Upload(ctx, data, author(msg.From))
	if err != nil {
		b.sendError(chatID, userMessage(err))
		return
	}

	b.sendText(chatID, "✅ Новые цены применены: "+describeCatalog(catalog))
	b.notifyAdmins(fmt.Sprintf("%s загрузил новые цены: %s", author(msg.From), describeCatalog(catalog)), chatID)
}

func (b *Bot) downloadDocument(ctx context.Context, fileID string) ([]byte, error) {
	const operation = "bot.downloadDocument"

	fileURL, err := b.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get file url: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", operation, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%s: file exceeds %d bytes", operation, maxDocumentSize)
	}
	return data, nil
}
