// Package telegram connects the chat handlers to the Telegram Bot API
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers/filters/callbackquery"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/bot"
	"github.com/mmcdole/releasebot/internal/domain"
)

const requestSlack = 5 * time.Second

// Bot runs long polling and routes updates to the handler
type Bot struct {
	api        *gotgbot.Bot
	dispatcher *ext.Dispatcher
	updater    *ext.Updater
	handler    *bot.Handler
	cfg        adapter.TelegramConfig
	logger     *slog.Logger

	ctx context.Context // Parent of every handled update
}

// New authenticates with the Bot API and registers the command handlers
func New(cfg *adapter.TelegramConfig, h *bot.Handler, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Token == "" {
		return nil, adapter.ErrMissingCredentials
	}

	api, err := gotgbot.NewBot(cfg.Token, &gotgbot.BotOpts{
		RequestOpts: &gotgbot.RequestOpts{Timeout: cfg.PollTimeout + requestSlack},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}

	b := &Bot{
		api:     api,
		handler: h,
		cfg:     *cfg,
		logger:  logger,
		ctx:     context.Background(),
	}

	b.dispatcher = ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, _ *ext.Context, err error) ext.DispatcherAction {
			logger.Error("update handler failed", "error", err)
			return ext.DispatcherActionNoop
		},
		MaxRoutines: cfg.MaxRoutines,
	})
	b.register()
	b.updater = ext.NewUpdater(b.dispatcher, nil)

	logger.Info("telegram bot authenticated", "username", api.User.Username)
	return b, nil
}

// API returns the underlying client
func (b *Bot) API() *gotgbot.Bot {
	return b.api
}

func (b *Bot) register() {
	kinds := map[string]domain.MediaKind{"movie": domain.KindMovie, "series": domain.KindSeries}

	b.command("start", func(ctx context.Context, ec *ext.Context, p bot.Presenter) {
		b.handler.Start(ctx, ec.EffectiveChat.Id, p)
	})
	b.command("stop", func(ctx context.Context, ec *ext.Context, p bot.Presenter) {
		b.handler.Stop(ctx, ec.EffectiveChat.Id, p)
	})
	b.command("help", func(ctx context.Context, _ *ext.Context, p bot.Presenter) {
		b.handler.Help(ctx, p)
	})
	b.command("year", func(ctx context.Context, ec *ext.Context, p bot.Presenter) {
		b.handler.Year(ctx, commandArgs(ec), p)
	})

	for suffix, kind := range kinds {
		b.command("releases_"+suffix, func(ctx context.Context, _ *ext.Context, p bot.Presenter) {
			b.handler.Releases(ctx, kind, p)
		})
		b.command("next_"+suffix, func(ctx context.Context, _ *ext.Context, p bot.Presenter) {
			b.handler.Next(ctx, kind, p)
		})
		b.command("random_"+suffix, func(ctx context.Context, _ *ext.Context, p bot.Presenter) {
			b.handler.RandomMenu(ctx, kind, p)
		})
	}

	b.dispatcher.AddHandler(handlers.NewCallback(callbackquery.All, b.onCallback))
}

// command registers a handler answering with new messages
func (b *Bot) command(name string, fn func(context.Context, *ext.Context, bot.Presenter)) {
	b.dispatcher.AddHandler(handlers.NewCommand(name, func(_ *gotgbot.Bot, ec *ext.Context) error {
		if ec.EffectiveChat == nil {
			return nil
		}
		b.logger.Debug("command", "name", name, "chat", ec.EffectiveChat.Id)
		fn(b.ctx, ec, NewSendNew(b.api, ec.EffectiveChat.Id))
		return nil
	}))
}

func (b *Bot) onCallback(_ *gotgbot.Bot, ec *ext.Context) error {
	cq := ec.CallbackQuery
	if _, err := cq.Answer(b.api, nil); err != nil {
		b.logger.Debug("failed to answer callback", "error", err)
	}

	msg := ec.EffectiveMessage
	if msg == nil || msg.Chat.Id == 0 {
		b.logger.Debug("callback without accessible message", "data", cq.Data)
		return nil
	}
	b.handler.HandleAction(b.ctx, cq.Data, NewEditInPlace(b.api, msg))
	return nil
}

// commandArgs returns the text after the command word
func commandArgs(ec *ext.Context) string {
	args := ec.Args()
	if len(args) <= 1 {
		return ""
	}
	return strings.Join(args[1:], " ")
}

// Start begins long polling. Handlers run under ctx until Stop.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	if _, err := b.api.SetMyCommands(botCommands, nil); err != nil {
		b.logger.Warn("failed to publish command list", "error", err)
	}

	err := b.updater.StartPolling(b.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: int64(b.cfg.PollTimeout / time.Second),
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: b.cfg.PollTimeout + requestSlack,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	b.logger.Info("polling started")
	return nil
}

// Stop ends polling and waits for running handlers
func (b *Bot) Stop() error {
	return b.updater.Stop()
}

var botCommands = []gotgbot.BotCommand{
	{Command: "releases_movie", Description: "Цифровые релизы фильмов сегодня"},
	{Command: "releases_series", Description: "Премьеры сериалов сегодня"},
	{Command: "next_movie", Description: "Ближайшие релизы фильмов"},
	{Command: "next_series", Description: "Ближайшие премьеры сериалов"},
	{Command: "random_movie", Description: "Случайный фильм"},
	{Command: "random_series", Description: "Случайный сериал"},
	{Command: "year", Description: "Что выходило в этот день в другом году"},
	{Command: "stop", Description: "Отписаться от рассылки"},
	{Command: "help", Description: "Список команд"},
}
