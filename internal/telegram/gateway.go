// Package telegram connects the responder to Telegram using go-telegram/bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/guildsite/internal/logger"
	"github.com/edgard/guildsite/internal/responder"
)

// ErrMissingToken is returned by Run when no bot token is configured.
var ErrMissingToken = errors.New("telegram bot token cannot be empty")

// sender is the part of *bot.Bot used to answer messages.
type sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Gateway long-polls Telegram and dispatches messages to a responder.Handler.
type Gateway struct {
	token   string
	handler responder.Handler
	logger  *slog.Logger
	status  responder.Status
	self    atomic.Pointer[responder.Identity]
	opts    []bot.Option
}

// NewGateway creates a gateway. Extra options are passed to bot.New.
func NewGateway(token string, handler responder.Handler, log *slog.Logger, opts ...bot.Option) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		token:   token,
		handler: handler,
		logger:  log.With("component", "telegram_gateway"),
		opts:    opts,
	}
}

func (g *Gateway) Name() string {
	return "telegram"
}

// State reports whether the gateway is currently polling.
func (g *Gateway) State() responder.State {
	return g.status.Get()
}

// Run authenticates with getMe and polls for updates until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	if g.token == "" {
		return ErrMissingToken
	}

	opts := append([]bot.Option{
		bot.WithMiddlewares(logger.TelegramMiddleware(g.logger)),
		bot.WithDefaultHandler(g.handleUpdate),
	}, g.opts...)

	b, err := bot.New(g.token, opts...)
	if err != nil {
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get telegram bot info: %w", err)
	}
	self := identityFromUser(me)
	g.self.Store(&self)

	g.status.Set(responder.Connected)
	g.handler.OnReady(ctx, self)

	b.Start(ctx)
	g.status.Set(responder.Disconnected)
	g.logger.Info("Telegram polling stopped")
	return nil
}

func (g *Gateway) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	g.dispatch(ctx, update, b)
}

func (g *Gateway) dispatch(ctx context.Context, update *models.Update, s sender) {
	msg, ok := messageFromUpdate(update)
	if !ok {
		return
	}

	var self responder.Identity
	if p := g.self.Load(); p != nil {
		self = *p
	}
	g.handler.OnMessage(ctx, self, msg, chatReplier{s: s})
}

type chatReplier struct {
	s sender
}

func (c chatReplier) Reply(ctx context.Context, channelID, text string) error {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", channelID, err)
	}
	if _, err := c.s.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func identityFromUser(u *models.User) responder.Identity {
	if u == nil {
		return responder.Identity{}
	}
	return responder.Identity{ID: strconv.FormatInt(u.ID, 10), Name: u.Username}
}

func messageFromUpdate(update *models.Update) (responder.Message, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return responder.Message{}, false
	}
	return responder.Message{
		AuthorID:  strconv.FormatInt(update.Message.From.ID, 10),
		ChannelID: strconv.FormatInt(update.Message.Chat.ID, 10),
		Content:   update.Message.Text,
	}, true
}
