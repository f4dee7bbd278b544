// Package discord connects the response pipeline to a Discord guild.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
	"github.com/bwmarrin/discordgo"
)

// Config configures the Discord transport. Token is read from DISCORD_SECRET.
type Config struct {
	Enabled bool `yaml:"enabled"`
	// StreamID groups Discord chat with a stream for analytics. Empty uses the channel id.
	StreamID         string `yaml:"stream_id"`
	BotName          string `yaml:"bot_name"`
	GuildID          string `yaml:"guild_id"`
	RegisterCommands bool   `yaml:"register_commands"`

	Token string `yaml:"-"`
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		BotName:          "streambuddy",
		RegisterCommands: true,
	}
}

// Responder decides what to say in reply to a chat message.
type Responder interface {
	ResolveResponse(ctx context.Context, msg types.IncomingMessage, live *types.StreamLiveState) *types.Response
}

// LiveStateSource supplies the optional stream context for a message.
type LiveStateSource interface {
	LiveState(ctx context.Context) *types.StreamLiveState
}

type Client struct {
	Session   *discordgo.Session
	cfg       Config
	responder Responder
	live      LiveStateSource
	send      func(channelID, content string) error
	now       func() time.Time
	logger    *logging.Logger
}

func newClient(cfg Config, responder Responder, live LiveStateSource, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		cfg:       cfg,
		responder: responder,
		live:      live,
		now:       time.Now,
		logger:    logger,
	}
}

// Setup creates the discord session, opens the websocket and registers the
// slash commands. live may be nil.
func Setup(cfg Config, responder Responder, live LiveStateSource, logger *logging.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("DISCORD_SECRET is not set")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	c := newClient(cfg, responder, live, logger)
	c.Session = session
	c.send = func(channelID, content string) error {
		_, err := session.ChannelMessageSend(channelID, content)
		return err
	}

	session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		c.HandleMessage(context.Background(), m.Message)
	})

	commandHandlers := c.MakeCommandHandlers()
	session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})

	// opens websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection to discord: %w", err)
	}

	if cfg.RegisterCommands {
		for _, v := range AddCommands() {
			if _, err := session.ApplicationCommandCreate(session.State.User.ID, cfg.GuildID, v); err != nil {
				_ = session.Close()
				return nil, fmt.Errorf("error creating command %s: %w", v.Name, err)
			}
		}
	}
	c.logger.Info("discord session opened", "guildID", cfg.GuildID)
	return c, nil
}

// Run blocks until ctx is done and then closes the session.
func (c *Client) Run(ctx context.Context) error {
	<-ctx.Done()
	c.logger.Info("closing discord session")
	if c.Session == nil {
		return nil
	}
	if err := c.Session.Close(); err != nil {
		return fmt.Errorf("error closing discord session: %w", err)
	}
	return nil
}
