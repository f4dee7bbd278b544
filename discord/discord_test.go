package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResponder struct {
	msgs  []types.IncomingMessage
	reply *types.Response
}

func (r *recordingResponder) ResolveResponse(_ context.Context, msg types.IncomingMessage, _ *types.StreamLiveState) *types.Response {
	r.msgs = append(r.msgs, msg)
	return r.reply
}

type sent struct{ channelID, content string }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(cfg Config, responder Responder, sendErr error) (*Client, *[]sent) {
	var out []sent
	c := newClient(cfg, responder, nil, logging.Discard())
	c.now = func() time.Time { return testNow }
	c.send = func(channelID, content string) error {
		out = append(out, sent{channelID, content})
		return sendErr
	}
	return c, &out
}

func TestHandleMessage(t *testing.T) {
	bot := &discordgo.User{ID: "900", Username: "streambuddy", Bot: true}
	human := &discordgo.User{ID: "42", Username: "budi"}

	tests := []struct {
		name       string
		cfg        Config
		msg        *discordgo.Message
		reply      *types.Response
		wantText   string
		wantStream string
		wantSent   []sent
	}{
		{
			name:       "mention token is rewritten and reply sent",
			cfg:        DefaultConfig(),
			msg:        &discordgo.Message{ChannelID: "c1", Author: human, Content: "<@900> build lancelot dong", Mentions: []*discordgo.User{bot}},
			reply:      &types.Response{Text: "Build Lancelot andalan", Source: types.SourceTemplate},
			wantText:   "@streambuddy build lancelot dong",
			wantStream: "c1",
			wantSent:   []sent{{"c1", "Build Lancelot andalan"}},
		},
		{
			name:       "configured stream id",
			cfg:        Config{StreamID: "gamerjkt", BotName: "streambuddy"},
			msg:        &discordgo.Message{ChannelID: "c1", Author: human, Content: "<@!900> halo", Mentions: []*discordgo.User{bot}},
			wantText:   "@streambuddy halo",
			wantStream: "gamerjkt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &recordingResponder{reply: tt.reply}
			c, out := newTestClient(tt.cfg, responder, nil)

			c.HandleMessage(context.Background(), tt.msg)

			require.Len(t, responder.msgs, 1)
			got := responder.msgs[0]
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantStream, got.StreamID)
			assert.Equal(t, "42", got.SenderID)
			assert.Equal(t, types.PlatformDiscord, got.Platform)
			assert.Equal(t, testNow, got.Timestamp)
			assert.Equal(t, tt.wantSent, *out)
		})
	}
}

func TestHandleMessageIgnoresBots(t *testing.T) {
	responder := &recordingResponder{reply: &types.Response{Text: "hi"}}
	c, out := newTestClient(DefaultConfig(), responder, nil)

	c.HandleMessage(context.Background(), &discordgo.Message{ChannelID: "c1", Author: &discordgo.User{ID: "1", Bot: true}, Content: "@streambuddy hi"})
	c.HandleMessage(context.Background(), &discordgo.Message{ChannelID: "c1", Content: "no author"})

	assert.Empty(t, responder.msgs)
	assert.Empty(t, *out)
}

func TestHandleMessageSendFailure(t *testing.T) {
	responder := &recordingResponder{reply: &types.Response{Text: "hi"}}
	c, out := newTestClient(DefaultConfig(), responder, errors.New("missing access"))

	c.HandleMessage(context.Background(), &discordgo.Message{ChannelID: "c1", Author: &discordgo.User{ID: "1"}, Content: "@streambuddy hi"})

	assert.Len(t, *out, 1)
}

func askInteraction(member *discordgo.Member, user *discordgo.User, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "c9",
		Member:    member,
		User:      user,
		Data:      discordgo.ApplicationCommandInteractionData{Name: "ask", Options: options},
	}}
}

func question(v string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: "question", Type: discordgo.ApplicationCommandOptionString, Value: v}
}

func TestAskMessage(t *testing.T) {
	c, _ := newTestClient(DefaultConfig(), &recordingResponder{}, nil)

	t.Run("guild member", func(t *testing.T) {
		msg, err := c.askMessage(askInteraction(&discordgo.Member{User: &discordgo.User{ID: "42", Username: "budi"}}, nil, question(" counter fanny? ")))
		require.NoError(t, err)
		assert.Equal(t, "@streambuddy counter fanny?", msg.Text)
		assert.Equal(t, "42", msg.SenderID)
		assert.Equal(t, "c9", msg.StreamID)
	})

	t.Run("direct message user", func(t *testing.T) {
		msg, err := c.askMessage(askInteraction(nil, &discordgo.User{ID: "7", Username: "sari"}, question("jadwal stream?")))
		require.NoError(t, err)
		assert.Equal(t, "sari", msg.SenderHandle)
	})

	errCases := map[string]*discordgo.InteractionCreate{
		"nil":            nil,
		"no user":        askInteraction(nil, nil, question("hi")),
		"no question":    askInteraction(nil, &discordgo.User{ID: "7"}),
		"blank question": askInteraction(nil, &discordgo.User{ID: "7"}, question("  ")),
	}
	for name, i := range errCases {
		t.Run(name, func(t *testing.T) {
			_, err := c.askMessage(i)
			assert.Error(t, err)
		})
	}
}

func TestAnswer(t *testing.T) {
	responder := &recordingResponder{}
	c, _ := newTestClient(DefaultConfig(), responder, nil)
	msg := types.IncomingMessage{Text: "@streambuddy halo"}

	assert.Equal(t, noAnswer, c.answer(context.Background(), msg))

	responder.reply = &types.Response{Text: "Halo juga!"}
	assert.Equal(t, "Halo juga!", c.answer(context.Background(), msg))
}

func TestAddCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range AddCommands() {
		names[cmd.Name] = true
	}
	assert.True(t, names["help"])
	assert.True(t, names["ask"])

	c, _ := newTestClient(DefaultConfig(), &recordingResponder{}, nil)
	handlers := c.MakeCommandHandlers()
	for name := range names {
		assert.Contains(t, handlers, name)
	}
}
