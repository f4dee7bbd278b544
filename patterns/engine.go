// Package patterns answers live-stream questions and canned game Q&A with regular expressions.
package patterns

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
)

// Pattern is a game Q&A rule. Response may reference capture groups as
// {name} for named groups or {1}, {2} for positional ones.
type Pattern struct {
	Pattern  string `yaml:"pattern"`
	Response string `yaml:"response"`
}

// Config holds the per-game Q&A patterns.
type Config struct {
	Games map[types.GameContext][]Pattern `yaml:"games"`
	// Placeholder fills captures that did not participate in the match.
	Placeholder string `yaml:"placeholder"`
}

// DefaultConfig returns the built-in game Q&A.
func DefaultConfig() Config {
	return Config{
		Placeholder: "hero itu",
		Games: map[types.GameContext][]Pattern{
			"mobile_legends": {
				{Pattern: `(?i)\bcombo(?:\s+(?P<hero>[a-z]+))?`, Response: "Combo {hero}: buka pakai skill 1, lanjut skill 2, ultimate pas musuh kena CC."},
				{Pattern: `(?i)\bhero\s+(?:favorit|andalan|favorite)\b`, Response: "Hero andalan di stream ini Lancelot sama Chou!"},
				{Pattern: `(?i)\b(?:role|lane)\s+(?P<hero>[a-z]+)\b`, Response: "{hero} paling enak dimainin sesuai role aslinya, jangan dipaksa roam ya."},
			},
			"free_fire": {
				{Pattern: `(?i)\bskill\s+(?P<hero>[a-z]+)`, Response: "Skill {hero} cocok buat rush, kombinasikan sama Alok biar aman."},
			},
			"pubg_mobile": {
				{Pattern: `(?i)\bdrop\s+(?:di\s+)?(?:mana|where)\b`, Response: "Biasanya drop di Pochinki atau School, langsung panas!"},
			},
			"valorant": {
				{Pattern: `(?i)\blineup(?:\s+(?P<hero>[a-z]+))?`, Response: "Lineup {hero} ada di clip highlight, cek Discord ya!"},
				{Pattern: `(?i)\bmain\s+(?P<hero>[a-z]+)\s+(?:gimana|how)\b`, Response: "Main {hero}: pakai utility dulu, baru entry bareng tim."},
			},
			"genshin_impact": {
				{Pattern: `(?i)\b(?:team|tim)\s+(?P<hero>[a-z]+(?:\s+tao)?)`, Response: "Team {hero}: satu sub-DPS, satu support, satu healer atau shielder."},
			},
			"minecraft": {
				{Pattern: `(?i)\bversi\s+(?:berapa|apa)\b|\bwhat\s+version\b`, Response: "Main di versi Java terbaru!"},
			},
		},
	}
}

// HeroSource lists the character names of a game in their canonical casing.
type HeroSource interface {
	Heroes(game types.GameContext) []string
}

type gamePattern struct {
	re       *regexp.Regexp
	response string
}

// Engine resolves pattern answers. It is safe for concurrent use once built.
type Engine struct {
	stream      []streamPattern
	games       map[types.GameContext][]gamePattern
	placeholder string
	heroes      HeroSource
	now         func() time.Time
	logger      *logging.Logger
}

// New compiles cfg. Captures naming a hero of the game are rewritten to the
// casing heroes reports; a nil heroes keeps them as typed. A nil now uses time.Now.
func New(cfg Config, heroes HeroSource, now func() time.Time, logger *logging.Logger) (*Engine, error) {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		stream:      streamPatterns(),
		games:       make(map[types.GameContext][]gamePattern, len(cfg.Games)),
		placeholder: cfg.Placeholder,
		heroes:      heroes,
		now:         now,
		logger:      logger,
	}
	for game, ps := range cfg.Games {
		for i, p := range ps {
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern %d for %s: %w", i, game, err)
			}
			e.games[game] = append(e.games[game], gamePattern{re: re, response: p.Response})
		}
	}
	return e, nil
}

// Resolve answers question. Stream questions are checked first regardless of
// game, then the game's patterns in definition order. live may be nil.
func (e *Engine) Resolve(game types.GameContext, question string, live *types.StreamLiveState) (string, bool) {
	if resp, ok := e.ResolveStream(question, live); ok {
		return resp, true
	}
	return e.ResolveGame(game, question)
}

// ResolveStream answers questions about the live stream itself (uptime,
// current game, viewers). live may be nil.
func (e *Engine) ResolveStream(question string, live *types.StreamLiveState) (string, bool) {
	for _, p := range e.stream {
		if p.re.MatchString(question) {
			e.logger.Debug("stream pattern matched", "pattern", p.name)
			return p.answer(e, live), true
		}
	}
	return "", false
}

// ResolveGame answers with the first of game's patterns matching question.
func (e *Engine) ResolveGame(game types.GameContext, question string) (string, bool) {
	if game == types.NoGame {
		return "", false
	}
	for _, p := range e.games[game] {
		m := p.re.FindStringSubmatch(question)
		if m == nil {
			continue
		}
		return e.expand(game, p, m), true
	}
	return "", false
}

func (e *Engine) expand(game types.GameContext, p gamePattern, m []string) string {
	resp := p.response
	for i, name := range p.re.SubexpNames() {
		if i == 0 {
			continue
		}
		val := strings.TrimSpace(m[i])
		if val == "" {
			val = e.placeholder
		} else {
			val = e.canonical(game, val)
		}
		if name != "" {
			resp = strings.ReplaceAll(resp, "{"+name+"}", val)
		}
		resp = strings.ReplaceAll(resp, fmt.Sprintf("{%d}", i), val)
	}
	return resp
}

func (e *Engine) canonical(game types.GameContext, val string) string {
	if e.heroes == nil {
		return val
	}
	for _, h := range e.heroes.Heroes(game) {
		if strings.EqualFold(h, val) {
			return h
		}
	}
	return val
}
