package discord

import (
	"context"
	"strings"

	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
	"github.com/bwmarrin/discordgo"
)

// normalizeMentions rewrites Discord's <@id> mention tokens to @username so
// name based mention detection sees them.
func normalizeMentions(content string, mentions []*discordgo.User) string {
	for _, u := range mentions {
		if u == nil {
			continue
		}
		name := "@" + u.Username
		content = strings.ReplaceAll(content, "<@"+u.ID+">", name)
		content = strings.ReplaceAll(content, "<@!"+u.ID+">", name)
	}
	return content
}

func (c *Client) streamID(channelID string) string {
	if c.cfg.StreamID != "" {
		return c.cfg.StreamID
	}
	return channelID
}

func (c *Client) incoming(m *discordgo.Message) types.IncomingMessage {
	msg := types.IncomingMessage{
		SenderID:     m.Author.ID,
		SenderHandle: m.Author.Username,
		StreamID:     c.streamID(m.ChannelID),
		Text:         normalizeMentions(m.Content, m.Mentions),
		Platform:     types.PlatformDiscord,
		Timestamp:    m.Timestamp,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = c.now()
	}
	return msg
}

func (c *Client) resolve(ctx context.Context, msg types.IncomingMessage) *types.Response {
	var live *types.StreamLiveState
	if c.live != nil {
		live = c.live.LiveState(ctx)
	}
	return c.responder.ResolveResponse(ctx, msg, live)
}

// HandleMessage runs a channel message through the responder and replies in
// the same channel. Messages from bots are ignored.
func (c *Client) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	metrics.DiscordMessageReceived.Add(1)

	resp := c.resolve(ctx, c.incoming(m))
	if resp == nil || resp.Text == "" {
		return
	}

	if err := c.send(m.ChannelID, resp.Text); err != nil {
		c.logger.Error("error sending message to channel", "error", err.Error(), "channelID", m.ChannelID)
		return
	}
	c.logger.Debug("sent response to discord", "source", string(resp.Source), "responseLength", len(resp.Text))
	metrics.DiscordMessageSent.Add(1)
}
