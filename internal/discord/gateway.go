// Package discord connects the responder to the Discord gateway using discordgo.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/edgard/guildsite/internal/responder"
)

// ErrMissingToken is returned by Run when no bot token is configured.
var ErrMissingToken = errors.New("discord bot token is empty")

// Intents requested on identify. Message content is a privileged intent
// and must be enabled for the application in the developer portal.
const Intents = discordgo.IntentGuildMessages |
	discordgo.IntentDirectMessages |
	discordgo.IntentMessageContent

// sender is the part of *discordgo.Session used to answer messages.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Gateway runs one Discord session and dispatches its events to a responder.Handler.
type Gateway struct {
	token   string
	handler responder.Handler
	logger  *slog.Logger
	status  responder.Status
}

// NewGateway creates a gateway. The token is not checked until Run.
func NewGateway(token string, handler responder.Handler, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		token:   normalizeToken(token),
		handler: handler,
		logger:  logger.With("component", "discord_gateway"),
	}
}

func (g *Gateway) Name() string {
	return "discord"
}

// State reports whether the gateway currently holds a ready session.
func (g *Gateway) State() responder.State {
	return g.status.Get()
}

// Run opens the session and blocks until ctx is cancelled, then closes it.
// Authentication failures are returned; reconnects after a successful open
// are handled by discordgo.
func (g *Gateway) Run(ctx context.Context) error {
	if g.token == "" {
		return ErrMissingToken
	}

	s, err := discordgo.New("Bot " + g.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents

	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		g.onReady(ctx, r)
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Resumed) {
		g.status.Set(responder.Connected)
		g.logger.InfoContext(ctx, "Discord session resumed")
	})
	s.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		g.status.Set(responder.Disconnected)
		g.logger.WarnContext(ctx, "Discord session disconnected")
	})
	s.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		g.onMessageCreate(ctx, selfIdentity(s), m, s)
	})

	g.logger.InfoContext(ctx, "Connecting to Discord gateway...")
	if err := s.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	<-ctx.Done()
	g.logger.InfoContext(ctx, "Closing Discord session...")
	g.status.Set(responder.Disconnected)
	if err := s.Close(); err != nil {
		g.logger.Warn("Error closing Discord session", "error", err)
	}
	return nil
}

func (g *Gateway) onReady(ctx context.Context, r *discordgo.Ready) {
	g.status.Set(responder.Connected)
	g.handler.OnReady(ctx, identityFromUser(r.User))
}

func (g *Gateway) onMessageCreate(ctx context.Context, self responder.Identity, m *discordgo.MessageCreate, s sender) {
	msg, ok := messageFromEvent(m)
	if !ok {
		return
	}
	g.handler.OnMessage(ctx, self, msg, channelReplier{s: s})
}

type channelReplier struct {
	s sender
}

func (c channelReplier) Reply(ctx context.Context, channelID, text string) error {
	if _, err := c.s.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	return nil
}

// normalizeToken accepts the token with or without the "Bot " scheme prefix.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "Bot" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(token, "Bot "))
}

func selfIdentity(s *discordgo.Session) responder.Identity {
	if s == nil || s.State == nil {
		return responder.Identity{}
	}
	return identityFromUser(s.State.User)
}

func identityFromUser(u *discordgo.User) responder.Identity {
	if u == nil {
		return responder.Identity{}
	}
	return responder.Identity{ID: u.ID, Name: u.String()}
}

func messageFromEvent(m *discordgo.MessageCreate) (responder.Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return responder.Message{}, false
	}
	return responder.Message{
		AuthorID:  m.Author.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}, true
}
