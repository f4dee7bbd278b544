package ai

import (
	"fmt"
	"strings"
	"time"

	"github.com/Soypete/streambuddy/types"
)

const coHostPrompt = "You are %s, the AI co-host in %s's live stream chat. The stream is mostly Indonesian gamers, so answer casually the way they talk: mix Indonesian and English naturally, use gaming slang where it fits, keep it friendly and hype. Answer in one or two short sentences. Do not use links, hashtags, or new lines. Do not start with ! or /. If you do not know something about the stream, say so instead of guessing. Never be rude, even if the chatter is."

// BuildPrompt returns the system and user messages for one question.
// game is the display name of the detected game and may be empty.
func BuildPrompt(cfg Config, question, game string, live *types.StreamLiveState, now time.Time) (string, string) {
	system := fmt.Sprintf(coHostPrompt, cfg.BotName, cfg.Streamer)

	var facts []string
	if game != "" {
		facts = append(facts, "The question is about "+game+".")
	}
	if live.HasGame() {
		facts = append(facts, "The streamer is currently playing "+live.CurrentGame+".")
	}
	if live.HasStart() {
		elapsed := now.Sub(live.StreamStart).Truncate(time.Minute)
		facts = append(facts, fmt.Sprintf("The stream has been live for %s.", elapsed))
	}
	if live.HasViewers() {
		facts = append(facts, fmt.Sprintf("There are %d viewers.", *live.ViewerCount))
	}

	var user strings.Builder
	if len(facts) > 0 {
		user.WriteString("Context: ")
		user.WriteString(strings.Join(facts, " "))
		user.WriteString("\n")
	}
	user.WriteString("Chat question: ")
	user.WriteString(strings.TrimSpace(question))
	return system, user.String()
}
