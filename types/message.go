// Package types holds the data that flows through the response pipeline.
package types

import (
	"time"
)

// Platform names the chat service a message came from.
type Platform string

const (
	PlatformTwitch  Platform = "twitch"
	PlatformDiscord Platform = "discord"
	PlatformCLI     Platform = "cli"
)

// GameContext identifies a supported game. The empty value means no game was detected.
type GameContext string

// NoGame is the zero GameContext.
const NoGame GameContext = ""

// IncomingMessage is a single chat message as delivered by a transport.
// It is treated as immutable once received.
type IncomingMessage struct {
	SenderID     string
	SenderHandle string
	StreamID     string
	Text         string
	Platform     Platform
	GameHint     GameContext
	Timestamp    time.Time
}

// StreamLiveState is optional context about the stream the message was sent in.
// Zero fields mean the value is unknown: StreamStart.IsZero(), CurrentGame == ""
// and ViewerCount == nil must all be handled without error.
type StreamLiveState struct {
	StreamStart time.Time
	CurrentGame string
	ViewerCount *int
}

// HasStart reports whether the stream start time is known.
func (s *StreamLiveState) HasStart() bool {
	return s != nil && !s.StreamStart.IsZero()
}

// HasGame reports whether the current game is known.
func (s *StreamLiveState) HasGame() bool {
	return s != nil && s.CurrentGame != ""
}

// HasViewers reports whether the viewer count is known.
func (s *StreamLiveState) HasViewers() bool {
	return s != nil && s.ViewerCount != nil
}
