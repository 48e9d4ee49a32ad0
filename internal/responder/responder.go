// Package responder contains the gateway-agnostic chat logic: the event
// handler contract that every gateway adapter dispatches to, and the
// ping handler that answers the "!ping" command.
package responder

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// PingCommand is the literal prefix the bot reacts to.
	PingCommand = "!ping"
	// PongReply is sent back to the originating channel.
	PongReply = "Pong 🏓"
)

// Identity describes the account a gateway is connected as.
type Identity struct {
	ID   string
	Name string
}

// Message is an inbound chat message, valid for the duration of one handler call.
type Message struct {
	AuthorID  string
	ChannelID string
	Content   string
}

// Replier sends text to a channel on the gateway that delivered a message.
type Replier interface {
	Reply(ctx context.Context, channelID, text string) error
}

// Handler receives gateway events. Gateways call OnReady once per
// successful handshake and OnMessage for every delivered message.
type Handler interface {
	OnReady(ctx context.Context, self Identity)
	OnMessage(ctx context.Context, self Identity, msg Message, r Replier)
}

// Ping answers PingCommand with PongReply.
type Ping struct {
	logger *slog.Logger
}

// NewPing creates the ping handler.
func NewPing(logger *slog.Logger) *Ping {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ping{logger: logger.With("handler", "ping")}
}

func (p *Ping) OnReady(ctx context.Context, self Identity) {
	p.logger.InfoContext(ctx, "Bot logged in", "bot_id", self.ID, "bot_name", self.Name)
}

func (p *Ping) OnMessage(ctx context.Context, self Identity, msg Message, r Replier) {
	if msg.AuthorID == self.ID {
		return
	}
	if !strings.HasPrefix(msg.Content, PingCommand) {
		return
	}

	if err := r.Reply(ctx, msg.ChannelID, PongReply); err != nil {
		p.logger.ErrorContext(ctx, "Failed to send ping reply", "error", err, "channel_id", msg.ChannelID)
		return
	}
	p.logger.DebugContext(ctx, "Answered ping", "channel_id", msg.ChannelID, "author_id", msg.AuthorID)
}
