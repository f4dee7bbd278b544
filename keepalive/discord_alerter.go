package keepalive

import (
	"context"
	"fmt"

	"github.com/Soypete/streambuddy/logging"
	"github.com/bwmarrin/discordgo"
)

// DiscordAlerter sends alerts to a Discord channel
type DiscordAlerter struct {
	session   *discordgo.Session
	channelID string
	userID    string // Discord user ID to mention, rendered as <@id>
	send      func(channelID, content string) error
	logger    *logging.Logger
}

// NewDiscordAlerter opens a bot session and resolves channel, which may be a
// channel id or a channel name in any guild the bot is in.
func NewDiscordAlerter(token, channel, userID string, logger *logging.Logger) (*DiscordAlerter, error) {
	if logger == nil {
		logger = logging.Default()
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Open the session to access guilds
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord session: %w", err)
	}

	channelID, err := resolveChannel(session, channel)
	if err != nil {
		if closeErr := session.Close(); closeErr != nil {
			logger.Error("failed to close Discord session", "error", closeErr.Error())
		}
		return nil, err
	}

	logger.Info("Discord alerter initialized", "channelID", channelID)
	a := newAlerter(channelID, userID, logger)
	a.session = session
	a.send = func(channelID, content string) error {
		_, err := session.ChannelMessageSend(channelID, content)
		return err
	}
	return a, nil
}

func newAlerter(channelID, userID string, logger *logging.Logger) *DiscordAlerter {
	return &DiscordAlerter{channelID: channelID, userID: userID, logger: logger}
}

func resolveChannel(session *discordgo.Session, channel string) (string, error) {
	if ch, err := session.Channel(channel); err == nil {
		return ch.ID, nil
	}
	for _, guild := range session.State.Guilds {
		channels, err := session.GuildChannels(guild.ID)
		if err != nil {
			continue
		}
		for _, ch := range channels {
			if ch.Name == channel {
				return ch.ID, nil
			}
		}
	}
	return "", fmt.Errorf("channel %s not found in any guild", channel)
}

func (da *DiscordAlerter) format(message string) string {
	if da.userID != "" {
		return fmt.Sprintf("<@%s> **StreamBuddy alert:** %s", da.userID, message)
	}
	return "**StreamBuddy alert:** " + message
}

// SendAlert sends an alert message to the configured Discord channel
func (da *DiscordAlerter) SendAlert(_ context.Context, target string, message string) error {
	if err := da.send(da.channelID, da.format(message)); err != nil {
		da.logger.Error("failed to send Discord alert", "error", err.Error(), "target", target, "channelID", da.channelID)
		return fmt.Errorf("failed to send Discord message: %w", err)
	}
	da.logger.Info("Discord alert sent", "target", target, "channelID", da.channelID)
	return nil
}

// Close closes the Discord session
func (da *DiscordAlerter) Close() error {
	if da.session == nil {
		return nil
	}
	return da.session.Close()
}
