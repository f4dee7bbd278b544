// Package games holds the closed set of supported games and resolves which one a message is about.
package games

import (
	"strings"

	"github.com/Soypete/streambuddy/types"
)

// Game is a supported game.
type Game struct {
	ID          types.GameContext `yaml:"id"`
	DisplayName string            `yaml:"display_name"`
	// Aliases are matched as substrings in list order after the display name.
	Aliases []string `yaml:"aliases"`
	// Heroes are character names that template responses can refer to.
	Heroes []string `yaml:"heroes"`
}

// Config lists supported games. List order is match priority.
type Config struct {
	Games []Game `yaml:"games"`
}

// DefaultConfig returns the games the co-host knows about.
func DefaultConfig() Config {
	return Config{Games: []Game{
		{
			ID:          "mobile_legends",
			DisplayName: "Mobile Legends",
			Aliases:     []string{"mobile_legends", "mobile legends", "mlbb", "ml"},
			Heroes: []string{
				"Lancelot", "Fanny", "Gusion", "Ling", "Chou", "Layla", "Miya", "Tigreal",
				"Franco", "Kagura", "Granger", "Alucard", "Hayabusa", "Beatrix", "Valentina",
			},
		},
		{
			ID:          "free_fire",
			DisplayName: "Free Fire",
			Aliases:     []string{"free_fire", "free fire", "ff"},
			Heroes:      []string{"Alok", "Chrono", "Kelly", "Skyler", "Wukong", "Hayato"},
		},
		{
			ID:          "pubg_mobile",
			DisplayName: "PUBG Mobile",
			Aliases:     []string{"pubg_mobile", "pubg mobile", "pubgm", "pubg"},
		},
		{
			ID:          "valorant",
			DisplayName: "Valorant",
			Aliases:     []string{"valorant", "valo"},
			Heroes:      []string{"Jett", "Reyna", "Sage", "Phoenix", "Omen", "Sova", "Killjoy", "Raze"},
		},
		{
			ID:          "genshin_impact",
			DisplayName: "Genshin Impact",
			Aliases:     []string{"genshin_impact", "genshin impact", "genshin"},
			Heroes:      []string{"Raiden", "Zhongli", "Hu Tao", "Nahida", "Kazuha", "Furina"},
		},
		{
			ID:          "minecraft",
			DisplayName: "Minecraft",
			Aliases:     []string{"minecraft", "mc"},
		},
	}}
}

// Registry resolves text to a game.
type Registry struct {
	games []Game
	byID  map[types.GameContext]Game
}

// NewRegistry builds a registry from cfg, preserving list order.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		games: make([]Game, 0, len(cfg.Games)),
		byID:  make(map[types.GameContext]Game, len(cfg.Games)),
	}
	for _, g := range cfg.Games {
		if g.ID == types.NoGame {
			continue
		}
		r.games = append(r.games, g)
		r.byID[g.ID] = g
	}
	return r
}

// Resolve returns the first game in list order whose display name or alias
// appears in text, or NoGame.
func (r *Registry) Resolve(text string) types.GameContext {
	lower := strings.ToLower(text)
	if lower == "" {
		return types.NoGame
	}
	for _, g := range r.games {
		for _, term := range g.terms() {
			if strings.Contains(lower, term) {
				return g.ID
			}
		}
	}
	return types.NoGame
}

// Lookup returns the game with id.
func (r *Registry) Lookup(id types.GameContext) (Game, bool) {
	g, ok := r.byID[id]
	return g, ok
}

// Supported reports whether id is a known game.
func (r *Registry) Supported(id types.GameContext) bool {
	_, ok := r.byID[id]
	return ok
}

// DisplayName returns the human name for id, or the id itself.
func (r *Registry) DisplayName(id types.GameContext) string {
	if g, ok := r.byID[id]; ok && g.DisplayName != "" {
		return g.DisplayName
	}
	return string(id)
}

// Terms returns every lowercased name and alias, for use as gaming vocabulary.
func (r *Registry) Terms() []string {
	var terms []string
	for _, g := range r.games {
		terms = append(terms, g.terms()...)
	}
	return terms
}

// Heroes returns the character names known for id.
func (r *Registry) Heroes(id types.GameContext) []string {
	return r.byID[id].Heroes
}

func (g Game) terms() []string {
	terms := make([]string, 0, len(g.Aliases)+1)
	if g.DisplayName != "" {
		terms = append(terms, strings.ToLower(g.DisplayName))
	}
	for _, a := range g.Aliases {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			terms = append(terms, a)
		}
	}
	return terms
}
