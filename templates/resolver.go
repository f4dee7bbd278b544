// Package templates matches chat messages against keyword-triggered canned responses.
package templates

import (
	"context"
	"strings"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
)

// noMatch is the cached negative result. It can never be a template response
// because responses are trimmed and non-empty.
const noMatch = "\x00no-match"

// HeroPlaceholder is used for {hero} when the message names no known hero.
const HeroPlaceholder = "hero favoritmu"

// Config tunes the Template Resolver.
type Config struct {
	HitTTL  time.Duration `yaml:"hit_ttl"`
	MissTTL time.Duration `yaml:"miss_ttl"`
	// CacheSize bounds the in-memory cache.
	CacheSize int `yaml:"cache_size"`
	// FuzzyMinLength is the shortest token considered for edit-distance matching.
	FuzzyMinLength   int    `yaml:"fuzzy_min_length"`
	FuzzyMaxDistance int    `yaml:"fuzzy_max_distance"`
	HeroPlaceholder  string `yaml:"hero_placeholder"`
	Slang            Slang  `yaml:"slang"`
	// File, when set, is a YAML template file used instead of the built-in set
	// if no database is configured.
	File string `yaml:"file"`
}

// DefaultConfig returns the resolver settings used in production.
func DefaultConfig() Config {
	return Config{
		HitTTL:           5 * time.Minute,
		MissTTL:          30 * time.Second,
		CacheSize:        4096,
		FuzzyMinLength:   4,
		FuzzyMaxDistance: 2,
		HeroPlaceholder:  HeroPlaceholder,
		Slang:            DefaultSlang(),
	}
}

// HeroSource lists the character names of a game.
type HeroSource interface {
	Heroes(game types.GameContext) []string
}

// MatchKind says which strategy matched a template.
type MatchKind string

const (
	MatchDirect MatchKind = "direct"
	MatchSlang  MatchKind = "slang"
	MatchFuzzy  MatchKind = "fuzzy"
)

// Resolver finds the template response for a message.
type Resolver struct {
	store  Store
	cache  Cache
	heroes HeroSource
	cfg    Config
	logger *logging.Logger

	// OnCache is called with true on a cache hit and false on a miss. Optional.
	OnCache func(hit bool)
}

// NewResolver creates a Resolver. heroes may be nil; cache may be nil to disable caching.
func NewResolver(store Store, cache Cache, heroes HeroSource, cfg Config, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HeroPlaceholder == "" {
		cfg.HeroPlaceholder = HeroPlaceholder
	}
	return &Resolver{
		store:  store,
		cache:  cache,
		heroes: heroes,
		cfg:    cfg,
		logger: logger,
	}
}

// CacheKey is the cache key for a message in a game context.
func CacheKey(game types.GameContext, text string) string {
	return string(ContextOf(game)) + "|" + strings.ToLower(text)
}

// Resolve returns the response for text in game, or false when no template matches.
// Store and cache failures are logged and never returned.
func (r *Resolver) Resolve(ctx context.Context, text string, game types.GameContext) (string, bool) {
	key := CacheKey(game, text)

	if r.cache != nil {
		v, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("template cache get failed", "error", err.Error())
		} else if ok {
			r.observe(true)
			if v == noMatch {
				return "", false
			}
			return v, true
		}
	}
	r.observe(false)

	templates, err := r.store.ActiveTemplates(ctx, ContextOf(game))
	if err != nil {
		r.logger.Error("failed to load templates", "game", string(ContextOf(game)), "error", err.Error())
		return "", false
	}
	sortTemplates(templates)

	lower := strings.ToLower(text)
	for _, t := range templates {
		kind, ok := r.match(t, lower)
		if !ok {
			continue
		}
		resp := strings.TrimSpace(r.fill(t.Response, lower, game))
		if resp == "" {
			continue
		}
		r.logger.Debug("template matched", "templateID", t.ID.String(), "match", string(kind))
		r.remember(ctx, key, resp, r.cfg.HitTTL)
		return resp, true
	}

	r.remember(ctx, key, noMatch, r.cfg.MissTTL)
	return "", false
}

// Match reports which strategy, if any, matches t against the lowercased message.
func (r *Resolver) Match(t types.ResponseTemplate, text string) (MatchKind, bool) {
	return r.match(t, strings.ToLower(text))
}

func (r *Resolver) match(t types.ResponseTemplate, lower string) (MatchKind, bool) {
	for _, k := range t.Keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return MatchDirect, true
		}
	}
	for _, k := range t.Keywords {
		for _, v := range r.cfg.Slang.variants(k) {
			if v != "" && strings.Contains(lower, strings.ToLower(v)) {
				return MatchSlang, true
			}
		}
	}
	tokens := strings.Fields(lower)
	for _, k := range t.Keywords {
		k = strings.ToLower(k)
		for _, tok := range tokens {
			if len([]rune(tok)) < r.cfg.FuzzyMinLength {
				continue
			}
			if levenshtein(tok, k) <= r.cfg.FuzzyMaxDistance {
				return MatchFuzzy, true
			}
		}
	}
	return "", false
}

// fill replaces {hero} with the first hero of game named in the message.
func (r *Resolver) fill(resp, lower string, game types.GameContext) string {
	if !strings.Contains(resp, "{hero}") {
		return resp
	}
	hero := r.cfg.HeroPlaceholder
	if r.heroes != nil {
		for _, h := range r.heroes.Heroes(game) {
			if h != "" && strings.Contains(lower, strings.ToLower(h)) {
				hero = h
				break
			}
		}
	}
	return strings.ReplaceAll(resp, "{hero}", hero)
}

func (r *Resolver) remember(ctx context.Context, key, value string, ttl time.Duration) {
	if r.cache == nil || ttl <= 0 {
		return
	}
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn("template cache set failed", "error", err.Error())
	}
}

func (r *Resolver) observe(hit bool) {
	if r.OnCache != nil {
		r.OnCache(hit)
	}
}
