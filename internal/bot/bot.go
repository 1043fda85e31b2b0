package bot

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/prices"
)

// telegramAPI is the part of tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	bot        telegramAPI
	updates    func() tgbotapi.UpdatesChannel
	logger     *zap.Logger
	state      *StateStorage
	prices     *prices.Service
	cfg        *config.Config
	httpClient *http.Client
	now        func() time.Time
	mu         sync.Mutex
	handlers   map[string]func(context.Context, int64, string)
	commands   map[string]func(context.Context, *tgbotapi.Message)
}

func New(
	token string,
	sessions sessionStore,
	svc *prices.Service,
	logger *zap.Logger,
	cfg *config.Config,
) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	botAPI.Debug = cfg.DevMode

	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))

	b := newBot(botAPI, sessions, svc, logger, cfg)
	b.updates = func() tgbotapi.UpdatesChannel {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		return botAPI.GetUpdatesChan(u)
	}
	return b, nil
}

func newBot(api telegramAPI, sessions sessionStore, svc *prices.Service, logger *zap.Logger, cfg *config.Config) *Bot {
	b := &Bot{
		bot:        api,
		logger:     logger,
		state:      NewStateStorage(sessions),
		prices:     svc,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPRequestTimeout},
		now:        time.Now,
	}
	b.registerHandlers()
	return b
}

func (b *Bot) registerHandlers() {
	b.handlers = map[string]func(context.Context, int64, string){
		StepConfigure:     b.handleConfigureText,
		StepQuantityInput: b.handleQuantityInput,
	}

	b.commands = map[string]func(context.Context, *tgbotapi.Message){
		"start":  b.handleStart,
		"help":   b.handleHelp,
		"reset":  b.handleReset,
		"set":    b.handleSet,
		"link":   b.handleLink,
		"export": b.handleExport,
		"reload": b.handleReload,
		"prices": b.handlePricesStatus,
	}
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting bot")

	updates := b.updates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down bot")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.logger.Debug("Processing message",
		zap.Int64("chat_id", chatID),
		zap.String("text", msg.Text))

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	if msg.IsCommand() {
		if handler, ok := b.commands[msg.Command()]; ok {
			handler(ctx, msg)
		} else {
			b.handleUnknownCommand(chatID)
		}
		return
	}

	state, err := b.state.Get(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to get user state",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		b.sendError(chatID, "Ошибка при обработке запроса")
		return
	}

	if handler, exists := b.handlers[state.Step]; exists {
		handler(ctx, chatID, msg.Text)
	} else {
		b.handleDefault(ctx, chatID)
	}
}

func (b *Bot) processCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID

	b.logger.Debug("Processing callback",
		zap.Int64("chat_id", chatID),
		zap.String("data", callback.Data))

	if _, err := b.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	b.handleCallbackData(ctx, chatID, callback.Data)
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendText(chatID, "❌ "+text)
}
