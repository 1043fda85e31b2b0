package bot

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"printcalc/internal/config"
	"printcalc/internal/prices"
	"printcalc/internal/pricing"
	"printcalc/internal/storage/redis"
)

const (
	userID  int64 = 42
	adminID int64 = 7
)

type fakeAPI struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	return "http://127.0.0.1:0/file", nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.Chattable {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	msg, ok := f.last(t).(tgbotapi.MessageConfig)
	require.True(t, ok, "last sent is %T", f.last(t))
	return msg.Text
}

type fixture struct {
	bot      *Bot
	api      *fakeAPI
	sessions *redis.Storage
}

func newFixture(t *testing.T, loaded bool) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	sessions := redis.NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), time.Hour)
	t.Cleanup(sessions.Close)

	logger := zap.NewNop()
	svc := prices.NewService(prices.NewFileSource("../pricing/testdata/prices.json"), nil, prices.NewHolder(), logger)
	if loaded {
		_, err := svc.Reload(context.Background())
		require.NoError(t, err)
	}

	cfg := &config.Config{
		PublicBaseURL:      "https://print.example",
		AdminIDs:           []int64{adminID},
		HTTPRequestTimeout: time.Second,
	}

	api := &fakeAPI{}
	b := newBot(api, sessions, svc, logger, cfg)
	b.now = func() time.Time { return time.Date(2025, time.October, 10, 12, 0, 0, 0, time.UTC) }
	return &fixture{bot: b, api: api, sessions: sessions}
}

func command(from int64, text string) tgbotapi.Update {
	cmd, _, _ := cutSpace(text)
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: from},
		From:     &tgbotapi.User{ID: from, UserName: "user"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func cutSpace(s string) (string, string, bool) {
	for i, r := range s {
		if r == ' ' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func text(from int64, s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: s,
		Chat: &tgbotapi.Chat{ID: from},
		From: &tgbotapi.User{ID: from},
	}}
}

func callback(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: from},
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: from}},
	}}
}

func (f *fixture) state(t *testing.T) (*redis.UserState, url.Values) {
	t.Helper()
	state, err := f.sessions.GetUserDialogState(context.Background(), userID)
	require.NoError(t, err)
	q, err := url.ParseQuery(state.Query)
	require.NoError(t, err)
	return state, q
}

func TestStartShowsProducts(t *testing.T) {
	f := newFixture(t, true)
	f.bot.handleUpdate(context.Background(), command(userID, "/start"))

	msg, ok := f.api.last(t).(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Len(t, markup.InlineKeyboard, len(pricing.Products))

	state, _ := f.state(t)
	assert.Equal(t, StepProductSelection, state.Step)
}

func TestConfigureOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	f.bot.handleUpdate(ctx, callback(userID, callbackProduct+string(pricing.ProductLeaflets)))
	assert.Contains(t, f.api.lastText(t), "Итого")

	state, q := f.state(t)
	assert.Equal(t, StepConfigure, state.Step)
	assert.Equal(t, string(pricing.ProductLeaflets), state.Product)
	assert.Equal(t, "100", q.Get("qty"))

	f.bot.handleUpdate(ctx, callback(userID, callbackSet+"size=A5"))
	f.bot.handleUpdate(ctx, callback(userID, callbackSet+"lam=1"))
	_, q = f.state(t)
	assert.Equal(t, "A5", q.Get("size"))
	assert.Equal(t, "1", q.Get("lam"))

	f.bot.handleUpdate(ctx, callback(userID, callbackSet+"lam="))
	_, q = f.state(t)
	assert.Empty(t, q.Get("lam"))

	f.bot.handleUpdate(ctx, callback(userID, callbackSet+"size=A6"))
	_, q = f.state(t)
	assert.Empty(t, q.Get("size"), "defaults are not stored")
}

func TestQuantityInputIsNormalized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	f.bot.handleUpdate(ctx, callback(userID, callbackProduct+string(pricing.ProductBusinessCards)))
	f.bot.handleUpdate(ctx, callback(userID, callbackAsk+"qty"))

	state, _ := f.state(t)
	assert.Equal(t, StepQuantityInput, state.Step)

	f.bot.handleUpdate(ctx, text(userID, "130"))

	state, q := f.state(t)
	assert.Equal(t, StepConfigure, state.Step)
	assert.Equal(t, "144", q.Get("qty"))
	assert.NotEmpty(t, state.Notice)
	assert.Contains(t, f.api.lastText(t), "ℹ️")
}

func TestSetCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	f.bot.handleUpdate(ctx, command(userID, "/set тираж=500"))
	assert.Contains(t, f.api.lastText(t), "Что будем считать?")

	f.bot.handleUpdate(ctx, callback(userID, callbackProduct+string(pricing.ProductBusinessCards)))
	f.bot.handleUpdate(ctx, command(userID, "/set материал=designer тираж=240 цвет=red"))

	_, q := f.state(t)
	assert.Equal(t, "designer", q.Get("material"))
	assert.Equal(t, "240", q.Get("qty"))
	assert.Contains(t, f.api.lastText(t), "Итого")
}

func TestLinkAndExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	f.bot.handleUpdate(ctx, callback(userID, callbackProduct+string(pricing.ProductLeaflets)))
	f.bot.handleUpdate(ctx, callback(userID, callbackLink))
	assert.Equal(t, "🔗 https://print.example/leaflets?qty=100", f.api.lastText(t))

	f.bot.handleUpdate(ctx, command(userID, "/export"))
	doc, ok := f.api.last(t).(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.NotEmpty(t, file.Bytes)
	assert.Contains(t, file.Name, ".xlsx")
}

func TestBlockedWithoutPrices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	f.bot.handleUpdate(ctx, command(userID, "/start"))
	assert.Contains(t, f.api.lastText(t), "Цены не загружены")

	f.bot.handleUpdate(ctx, callback(userID, callbackProduct+string(pricing.ProductLeaflets)))
	assert.Contains(t, f.api.lastText(t), "Цены не загружены")
}

func TestAdminCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	f.bot.handleUpdate(ctx, command(userID, "/reload"))
	assert.Contains(t, f.api.lastText(t), "только администраторам")

	f.bot.handleUpdate(ctx, command(adminID, "/reload"))
	assert.Contains(t, f.api.lastText(t), "версия 3")

	f.bot.handleUpdate(ctx, command(adminID, "/prices"))
	assert.Contains(t, f.api.lastText(t), "источник file")
}

func TestDocumentFromUserIsRejected(t *testing.T) {
	f := newFixture(t, true)

	upd := text(userID, "")
	upd.Message.Document = &tgbotapi.Document{FileID: "x", FileName: "prices.json"}
	f.bot.handleUpdate(context.Background(), upd)

	assert.Contains(t, f.api.lastText(t), "только администраторы")
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t, true)
	f.bot.handleUpdate(context.Background(), command(userID, "/foo"))
	assert.Contains(t, f.api.lastText(t), "/help")
}
