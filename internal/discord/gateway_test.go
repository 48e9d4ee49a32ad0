package discord

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/guildsite/internal/responder"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (f *fakeSender) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sent == nil {
		f.sent = make(map[string][]string)
	}
	f.sent[channelID] = append(f.sent[channelID], content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

type recordingHandler struct {
	ready []responder.Identity
}

func (h *recordingHandler) OnReady(_ context.Context, self responder.Identity) {
	h.ready = append(h.ready, self)
}

func (h *recordingHandler) OnMessage(context.Context, responder.Identity, responder.Message, responder.Replier) {
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMessage(authorID, channelID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		Author:    &discordgo.User{ID: authorID},
		ChannelID: channelID,
		Content:   content,
	}}
}

func TestRunWithoutToken(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "   ", "Bot "} {
		g := NewGateway(token, responder.NewPing(discardLogger()), discardLogger())
		err := g.Run(context.Background())
		require.ErrorIs(t, err, ErrMissingToken, "token %q", token)
		assert.Equal(t, responder.Disconnected, g.State())
	}
}

func TestOnMessageCreate(t *testing.T) {
	t.Parallel()

	self := responder.Identity{ID: "bot-1"}
	g := NewGateway("token", responder.NewPing(discardLogger()), discardLogger())

	tests := []struct {
		name string
		msg  *discordgo.MessageCreate
		want []string
	}{
		{name: "ping", msg: newMessage("user-1", "chan-1", "!ping"), want: []string{"Pong 🏓"}},
		{name: "self", msg: newMessage("bot-1", "chan-1", "!ping")},
		{name: "other text", msg: newMessage("user-1", "chan-1", "hello")},
		{name: "no author", msg: &discordgo.MessageCreate{Message: &discordgo.Message{ChannelID: "chan-1", Content: "!ping"}}},
		{name: "no message", msg: &discordgo.MessageCreate{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &fakeSender{}
			g.onMessageCreate(context.Background(), self, tt.msg, s)
			assert.Equal(t, tt.want, s.sent["chan-1"])
		})
	}
}

func TestOnReadyMarksConnected(t *testing.T) {
	t.Parallel()

	h := &recordingHandler{}
	g := NewGateway("token", h, discardLogger())
	require.Equal(t, responder.Disconnected, g.State())

	g.onReady(context.Background(), &discordgo.Ready{User: &discordgo.User{ID: "bot-1", Username: "guildbot"}})

	assert.Equal(t, responder.Connected, g.State())
	require.Len(t, h.ready, 1)
	assert.Equal(t, "bot-1", h.ready[0].ID)
	assert.Contains(t, h.ready[0].Name, "guildbot")
}

func TestNormalizeToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc.def", normalizeToken("abc.def"))
	assert.Equal(t, "abc.def", normalizeToken("Bot abc.def"))
	assert.Equal(t, "abc.def", normalizeToken(" abc.def\n"))
	assert.Equal(t, "", normalizeToken("Bot"))
	assert.Equal(t, "", normalizeToken(""))
}

func TestSelfIdentity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, responder.Identity{}, selfIdentity(nil))
	assert.Equal(t, responder.Identity{}, selfIdentity(&discordgo.Session{}))

	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: "bot-1", Username: "guildbot"}
	assert.Equal(t, "bot-1", selfIdentity(s).ID)
}
