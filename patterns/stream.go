package patterns

import (
	"fmt"
	"regexp"
	"time"

	"github.com/Soypete/streambuddy/types"
)

type lang int

const (
	indonesian lang = iota
	english
)

// streamPattern answers a question about the live stream itself.
type streamPattern struct {
	name   string
	re     *regexp.Regexp
	answer func(e *Engine, live *types.StreamLiveState) string
}

func streamPatterns() []streamPattern {
	return []streamPattern{
		{
			name: "duration_id",
			re: regexp.MustCompile(`(?i)berapa\s+(?:lama|jam)\b.*(?:stream|live|siaran|mulai)` +
				`|(?:stream|live|siaran)\w*\s+(?:udah\s+|sudah\s+|dah\s+)?berapa\s+(?:lama|jam)`),
			answer: durationAnswer(indonesian),
		},
		{
			name:   "duration_en",
			re:     regexp.MustCompile(`(?i)\bhow\s+long\b.*(?:stream|live|been\s+on)|\buptime\b`),
			answer: durationAnswer(english),
		},
		{
			name:   "game_id",
			re:     regexp.MustCompile(`(?i)\b(?:main|maen|mainin)\s+(?:game\s+)?apa\b|\bgame(?:nya)?\s+apa\b`),
			answer: gameAnswer(indonesian),
		},
		{
			name:   "game_en",
			re:     regexp.MustCompile(`(?i)\bwhat\s+(?:game\s+)?(?:are\s+)?(?:you|u)\s+playing\b|\b(?:what|which)\s+game\b`),
			answer: gameAnswer(english),
		},
		{
			name:   "viewers_id",
			re:     regexp.MustCompile(`(?i)\bberapa\s+(?:orang\s+)?(?:(?:yang|yg)\s+)?(?:viewers?|penonton|nonton)`),
			answer: viewersAnswer(indonesian),
		},
		{
			name:   "viewers_en",
			re:     regexp.MustCompile(`(?i)\bhow\s+many\s+(?:viewers|people|watching)|\bviewer\s+count\b`),
			answer: viewersAnswer(english),
		},
	}
}

func durationAnswer(l lang) func(*Engine, *types.StreamLiveState) string {
	return func(e *Engine, live *types.StreamLiveState) string {
		if !live.HasStart() {
			if l == english {
				return "Not sure how long we've been live yet, hang tight!"
			}
			return "Belum tahu nih udah live berapa lama, sabar ya!"
		}
		d := FormatDuration(e.now().Sub(live.StreamStart), l == english)
		if l == english {
			return fmt.Sprintf("We've been live for %s, thanks for hanging out!", d)
		}
		return fmt.Sprintf("Udah live %s nih, makasih udah nemenin!", d)
	}
}

func gameAnswer(l lang) func(*Engine, *types.StreamLiveState) string {
	return func(_ *Engine, live *types.StreamLiveState) string {
		if !live.HasGame() {
			if l == english {
				return "Not sure what game is up yet, stay tuned!"
			}
			return "Belum tahu lagi main game apa nih, tunggu aja ya!"
		}
		if l == english {
			return fmt.Sprintf("We're playing %s right now!", live.CurrentGame)
		}
		return fmt.Sprintf("Lagi main %s sekarang, gas!", live.CurrentGame)
	}
}

func viewersAnswer(l lang) func(*Engine, *types.StreamLiveState) string {
	return func(_ *Engine, live *types.StreamLiveState) string {
		if !live.HasViewers() {
			if l == english {
				return "Don't know the viewer count yet, but thanks for watching!"
			}
			return "Belum tahu jumlah penontonnya, tapi makasih udah nonton!"
		}
		if l == english {
			return fmt.Sprintf("There are %d viewers watching right now!", *live.ViewerCount)
		}
		return fmt.Sprintf("Ada %d penonton sekarang, makasih udah nonton!", *live.ViewerCount)
	}
}

// FormatDuration renders d as whole hours and minutes, e.g. "2 jam 15 menit".
// Negative durations are treated as zero.
func FormatDuration(d time.Duration, english bool) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)

	if english {
		if hours == 0 {
			return plural(minutes, "minute")
		}
		return plural(hours, "hour") + " " + plural(minutes, "minute")
	}
	if hours == 0 {
		return fmt.Sprintf("%d menit", minutes)
	}
	return fmt.Sprintf("%d jam %d menit", hours, minutes)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
