package discord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
	"github.com/bwmarrin/discordgo"
)

const (
	helpText   = "Mention aku di chat (misal: @streambuddy build lancelot dong) atau pakai /ask buat nanya soal game dan stream."
	noAnswer   = "Hmm, aku belum punya jawaban buat itu."
	askFailure = "Gagal nanya StreamBuddy, coba lagi nanti ya."
)

// SlashCommands that print a response to the user
func AddCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "help",
			Description: "How to talk to StreamBuddy",
		},
		{
			Name:        "ask",
			Description: "Ask StreamBuddy about the game or the stream",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "What do you want to ask?",
					Required:    true,
				},
			},
		},
	}
}

// MakeCommandHandlers returns a map of command names to their respective functions
func (c *Client) MakeCommandHandlers() map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"help": c.help,
		"ask":  c.ask,
	}
}

func (c *Client) respond(s *discordgo.Session, i *discordgo.InteractionCreate, command, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
	if err != nil {
		c.logger.Error("error responding to command", "command", command, "error", err.Error())
		metrics.DiscordCommandErrors.WithLabelValues(command).Inc()
		return
	}
	metrics.DiscordMessageSent.Add(1)
}

func (c *Client) help(s *discordgo.Session, i *discordgo.InteractionCreate) {
	metrics.DiscordCommandTotal.WithLabelValues("help").Inc()
	c.respond(s, i, "help", helpText)
}

func (c *Client) ask(s *discordgo.Session, i *discordgo.InteractionCreate) {
	metrics.DiscordCommandTotal.WithLabelValues("ask").Inc()

	msg, err := c.askMessage(i)
	if err != nil {
		c.logger.Error("error responding to ask command, no data", "error", err.Error())
		c.respond(s, i, "ask", askFailure)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.respond(s, i, "ask", c.answer(ctx, msg))
}

// answer runs an ask command through the responder. Slash commands are
// addressed to the bot, so the message carries an explicit mention.
func (c *Client) answer(ctx context.Context, msg types.IncomingMessage) string {
	resp := c.resolve(ctx, msg)
	if resp == nil || resp.Text == "" {
		return noAnswer
	}
	return resp.Text
}

// askMessage validates an ask interaction and builds the message for it.
func (c *Client) askMessage(i *discordgo.InteractionCreate) (types.IncomingMessage, error) {
	if i == nil || i.Interaction == nil {
		return types.IncomingMessage{}, errors.New("interaction is empty")
	}
	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user == nil {
		return types.IncomingMessage{}, errors.New("interaction has no user")
	}
	if i.Type != discordgo.InteractionApplicationCommand {
		return types.IncomingMessage{}, errors.New("interaction is not a command")
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return types.IncomingMessage{}, errors.New("question is missing")
	}
	question := strings.TrimSpace(data.Options[0].StringValue())
	if question == "" {
		return types.IncomingMessage{}, errors.New("question is empty")
	}

	return types.IncomingMessage{
		SenderID:     user.ID,
		SenderHandle: user.Username,
		StreamID:     c.streamID(i.ChannelID),
		Text:         "@" + c.cfg.BotName + " " + question,
		Platform:     types.PlatformDiscord,
		Timestamp:    c.now(),
	}, nil
}
