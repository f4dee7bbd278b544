// Package twitchirc connects the response pipeline to a Twitch channel's chat.
package twitchirc

import (
	"context"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
	v2 "github.com/gempir/go-twitch-irc/v2"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Responder decides what to say in reply to a chat message.
type Responder interface {
	ResolveResponse(ctx context.Context, msg types.IncomingMessage, live *types.StreamLiveState) *types.Response
}

// IRC Connection to the twitch IRC server.
type IRC struct {
	cfg       Config
	responder Responder
	live      LiveStateSource
	Client    *v2.Client
	say       func(channel, text string)

	mu               sync.RWMutex
	tok              *oauth2.Token
	tokenRefreshTime time.Time // Time when the token was last refreshed
	authCode         chan string
	now              func() time.Time
	logger           *logging.Logger
}

// SetupTwitchIRC sets up the IRC and retrieves the chat token. live may be nil.
func SetupTwitchIRC(ctx context.Context, cfg Config, responder Responder, live LiveStateSource, logger *logging.Logger) (*IRC, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Channel == "" {
		return nil, errors.New("twitch channel is not configured")
	}

	irc := &IRC{
		cfg:       cfg,
		responder: responder,
		live:      live,
		authCode:  make(chan string, 1),
		now:       time.Now,
		logger:    logger,
	}

	if err := irc.AuthTwitch(ctx); err != nil {
		logger.Error("failed to authenticate with twitch", "error", err.Error())
		return nil, errors.Wrap(err, "failed to authenticate with twitch")
	}

	logger.Info("authenticated with twitch", "channel", cfg.Channel)
	return irc, nil
}

// Run connects to the twitch IRC server and blocks until ctx is done or the
// connection fails.
func (irc *IRC) Run(ctx context.Context) error {
	irc.logger.Info("connecting to twitch IRC", "channel", irc.cfg.Channel)
	c := v2.NewClient(irc.cfg.BotName, "oauth:"+irc.accessToken())
	c.Join(irc.cfg.Channel)
	c.OnConnect(func() {
		metrics.TwitchConnectionCount.Add(1)
		irc.logger.Info("connection to twitch IRC established")
		if irc.cfg.Greeting != "" {
			c.Say(irc.cfg.Channel, irc.cfg.Greeting)
		}
	})
	c.OnPrivateMessage(func(msg v2.PrivateMessage) {
		metrics.TwitchMessageReceived.Add(1)
		irc.HandleChat(ctx, msg)
	})
	irc.Client = c
	irc.say = c.Say

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Connect()
	}()

	select {
	case <-ctx.Done():
		irc.logger.Info("disconnecting from twitch IRC")
		_ = c.Disconnect()
		return nil
	case err := <-errCh:
		if errors.Is(err, v2.ErrClientDisconnected) {
			return nil
		}
		return errors.Wrap(err, "twitch IRC connection failed")
	}
}

func (irc *IRC) accessToken() string {
	irc.mu.RLock()
	defer irc.mu.RUnlock()
	if irc.tok == nil {
		return ""
	}
	return irc.tok.AccessToken
}
