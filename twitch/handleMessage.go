package twitchirc

import (
	"context"
	"strings"

	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
	v2 "github.com/gempir/go-twitch-irc/v2"
)

func (irc *IRC) cleanMessage(msg v2.PrivateMessage) types.IncomingMessage {
	chat := types.IncomingMessage{
		SenderID:     msg.User.ID,
		SenderHandle: msg.User.DisplayName,
		StreamID:     msg.Channel,
		Text:         msg.Message,
		Platform:     types.PlatformTwitch,
		Timestamp:    msg.Time,
	}
	if chat.SenderHandle == "" {
		chat.SenderHandle = msg.User.Name
	}
	if chat.Timestamp.IsZero() {
		chat.Timestamp = irc.now()
	}

	// restreamed chat arrives as "[Source] user: text"
	if strings.Contains(msg.User.DisplayName, "RestreamBot") {
		text := strings.Replace(msg.Message, "]", ":", 1)
		words := strings.SplitN(text, ":", 3)
		if len(words) == 3 {
			chat.SenderHandle = strings.TrimSpace(words[1])
			chat.SenderID = "restream:" + strings.ToLower(chat.SenderHandle)
			chat.Text = strings.TrimSpace(words[2])
		}
	}
	return chat
}

func (irc *IRC) ignored(msg v2.PrivateMessage) bool {
	if strings.HasPrefix(msg.Message, "!") {
		return true
	}
	if strings.EqualFold(msg.User.Name, irc.cfg.BotName) {
		return true
	}
	for _, u := range irc.cfg.IgnoreUsers {
		if strings.EqualFold(msg.User.DisplayName, u) || strings.EqualFold(msg.User.Name, u) {
			return true
		}
	}
	return false
}

// HandleChat runs a chat message through the responder and says the reply.
func (irc *IRC) HandleChat(ctx context.Context, msg v2.PrivateMessage) {
	if irc.ignored(msg) {
		irc.logger.Debug("ignoring message", "user", msg.User.Name)
		return
	}

	chat := irc.cleanMessage(msg)
	var live *types.StreamLiveState
	if irc.live != nil {
		live = irc.live.LiveState(ctx)
	}

	resp := irc.responder.ResolveResponse(ctx, chat, live)
	if resp == nil || resp.Text == "" {
		return
	}

	// Don't log the actual response content to protect privacy
	irc.logger.Debug("sending response to Twitch", "source", string(resp.Source), "responseLength", len(resp.Text))
	irc.say(irc.cfg.Channel, resp.Text)
	metrics.TwitchMessageSentCount.Add(1)
}
