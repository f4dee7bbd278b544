package pipeline

import (
	"fmt"
	"time"

	"github.com/Soypete/streambuddy/ai"
	"github.com/Soypete/streambuddy/analytics"
	"github.com/Soypete/streambuddy/budget"
	"github.com/Soypete/streambuddy/classifier"
	"github.com/Soypete/streambuddy/config"
	"github.com/Soypete/streambuddy/games"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/mention"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/patterns"
	"github.com/Soypete/streambuddy/templates"
)

// Stores are the persistence collaborators. Nil fields fall back to the
// in-memory defaults or disable the feature.
type Stores struct {
	Templates templates.Store
	Snapshots analytics.Sink
	Responses ResponseLog
}

// Stack is a built pipeline plus the stateful components whose loops the
// caller runs.
type Stack struct {
	*Pipeline
	Governor   *budget.Governor
	Aggregator *analytics.Aggregator
}

// Build wires every component from cfg.
func Build(cfg config.Config, stores Stores, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}

	reg := games.NewRegistry(cfg.Games)
	cls, err := classifier.New(cfg.Classifier, reg.Terms(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	gate := mention.NewGate(cfg.Mention.Names, mention.NewLRUStore(cfg.Mention.MaxSenders, cfg.Mention.SenderTTL), logger)

	store := stores.Templates
	if store == nil {
		if store, err = staticTemplates(cfg.Templates.File); err != nil {
			return nil, err
		}
	}
	cache, err := templates.NewMemoryCache(cfg.Templates.CacheSize, time.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to build template cache: %w", err)
	}
	resolver := templates.NewResolver(store, cache, reg, cfg.Templates, logger)
	resolver.OnCache = func(hit bool) {
		if hit {
			metrics.TemplateCache.WithLabelValues("hit").Inc()
			return
		}
		metrics.TemplateCache.WithLabelValues("miss").Inc()
	}

	engine, err := patterns.New(cfg.Patterns, reg, time.Now, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern engine: %w", err)
	}

	governor := budget.NewGovernor(cfg.Budget.Config)
	completer, err := ai.NewCompleter(cfg.Fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to build completer: %w", err)
	}
	adapter := ai.NewAdapter(completer, governor, cfg.Budget.Pricing, cfg.Fallback, logger)

	aggregator := analytics.NewAggregator(stores.Snapshots, time.Now, logger)

	p, err := New(Components{
		Gate:       gate,
		Classifier: cls,
		Games:      reg,
		Templates:  resolver,
		Patterns:   engine,
		Budget:     governor,
		Fallback:   adapter,
		Analytics:  aggregator,
		Responses:  stores.Responses,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &Stack{Pipeline: p, Governor: governor, Aggregator: aggregator}, nil
}

func staticTemplates(path string) (*templates.StaticStore, error) {
	if path == "" {
		return templates.NewStaticStore(templates.Defaults()), nil
	}
	ts, err := templates.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	return templates.NewStaticStore(ts), nil
}
