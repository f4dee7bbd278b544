// Package pipeline turns one chat message into a response decision.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/Soypete/streambuddy/ai"
	"github.com/Soypete/streambuddy/analytics"
	"github.com/Soypete/streambuddy/classifier"
	"github.com/Soypete/streambuddy/games"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/mention"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/patterns"
	"github.com/Soypete/streambuddy/templates"
	"github.com/Soypete/streambuddy/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BudgetExhausted is the reply when the fallback is skipped for budget.
const BudgetExhausted = "Kuota AI hari ini udah habis nih, coba tanya hal lain atau tanya lagi besok ya!"

// Fallback answers questions nothing else could.
type Fallback interface {
	Complete(ctx context.Context, question, game string, live *types.StreamLiveState) ai.Result
}

// Budget decides whether the fallback may be called. A successful Reserve
// holds a slot against the ceilings until Release.
type Budget interface {
	Reserve() bool
	Release()
	State() types.BudgetState
}

// Recorder observes accepted messages.
type Recorder interface {
	Record(e analytics.Event)
}

// ResponseLog stores what the co-host said. Writes are best effort.
type ResponseLog interface {
	InsertResponse(ctx context.Context, msg types.IncomingMessage, resp types.Response) error
}

// Components are the stages of the pipeline. Responses is optional.
type Components struct {
	Gate       *mention.Gate
	Classifier *classifier.Classifier
	Games      *games.Registry
	Templates  *templates.Resolver
	Patterns   *patterns.Engine
	Budget     Budget
	Fallback   Fallback
	Analytics  Recorder
	Responses  ResponseLog
}

// Pipeline is the single entry point transports call for every chat message.
type Pipeline struct {
	c      Components
	tracer trace.Tracer
	logger *logging.Logger
}

// New validates c and builds a Pipeline.
func New(c Components, logger *logging.Logger) (*Pipeline, error) {
	switch {
	case c.Gate == nil:
		return nil, errors.New("pipeline: mention gate is required")
	case c.Classifier == nil:
		return nil, errors.New("pipeline: classifier is required")
	case c.Games == nil:
		return nil, errors.New("pipeline: game registry is required")
	case c.Templates == nil:
		return nil, errors.New("pipeline: template resolver is required")
	case c.Patterns == nil:
		return nil, errors.New("pipeline: pattern engine is required")
	case c.Budget == nil:
		return nil, errors.New("pipeline: budget is required")
	case c.Fallback == nil:
		return nil, errors.New("pipeline: fallback is required")
	case c.Analytics == nil:
		return nil, errors.New("pipeline: analytics recorder is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		c:      c,
		tracer: otel.Tracer("github.com/Soypete/streambuddy/pipeline"),
		logger: logger,
	}, nil
}

// ResolveResponse decides what, if anything, to say in reply to msg.
// A nil result means no response. live may be nil. It never fails: collaborator
// errors are logged and degraded.
func (p *Pipeline) ResolveResponse(ctx context.Context, msg types.IncomingMessage, live *types.StreamLiveState) *types.Response {
	start := time.Now()
	defer func() { metrics.ResolveDuration.Observe(time.Since(start).Seconds()) }()

	ctx, span := p.tracer.Start(ctx, "pipeline.ResolveResponse", trace.WithAttributes(
		attribute.String("platform", string(msg.Platform)),
		attribute.String("stream.id", msg.StreamID),
	))
	defer span.End()

	metrics.MessagesReceived.WithLabelValues(string(msg.Platform)).Inc()
	log := p.logger.WithContext(ctx).WithMessage(msg)

	if d := p.c.Gate.Check(msg); d != mention.Accepted {
		metrics.Rejections.WithLabelValues("mention", string(d)).Inc()
		span.SetAttributes(attribute.String("outcome", string(d)))
		return nil
	}

	result := p.c.Classifier.Classify(msg.Text, msg.SenderHandle)
	span.SetAttributes(attribute.Int("priority", result.Priority), attribute.String("verdict", string(result.Reason)))
	if result.Rejected() {
		metrics.Rejections.WithLabelValues("classifier", string(result.Reason)).Inc()
		log.Debug("message rejected", "verdict", string(result.Reason), "rule", result.Rule)
		return nil
	}

	game := p.gameContext(msg, live)
	span.SetAttributes(attribute.String("game", string(game)))

	resp := p.respond(ctx, msg, game, live, log)
	resp.Priority = result.Priority
	span.SetAttributes(attribute.String("source", string(resp.Source)))
	metrics.Responses.WithLabelValues(string(resp.Source)).Inc()

	p.c.Analytics.Record(analytics.Event{
		StreamID:    msg.StreamID,
		SenderID:    msg.SenderID,
		WasMention:  true,
		WasResponse: true,
		WasFallback: resp.Source == types.SourceFallback || resp.Source == types.SourceFallbackError,
	})

	if p.c.Responses != nil {
		if err := p.c.Responses.InsertResponse(ctx, msg, *resp); err != nil {
			metrics.ResponseLogWriteFailed.Add(1)
			log.Warn("failed to log response", "error", err.Error())
		}
	}

	log.Info("responding", "source", string(resp.Source), "game", string(game), "priority", resp.Priority, "length", len(resp.Text))
	return resp
}

func (p *Pipeline) respond(ctx context.Context, msg types.IncomingMessage, game types.GameContext, live *types.StreamLiveState, log *logging.Logger) *types.Response {
	// live-state questions win over templates, whose fuzzy keywords catch chat filler
	if text, ok := p.c.Patterns.ResolveStream(msg.Text, live); ok {
		return &types.Response{Text: text, Source: types.SourcePattern, Game: game}
	}

	if text, ok := p.c.Templates.Resolve(ctx, msg.Text, game); ok {
		return &types.Response{Text: text, Source: types.SourceTemplate, Game: game}
	}

	if text, ok := p.c.Patterns.ResolveGame(game, msg.Text); ok {
		return &types.Response{Text: text, Source: types.SourcePattern, Game: game}
	}

	if !p.c.Budget.Reserve() {
		metrics.BudgetDenied.Inc()
		log.Info("budget exhausted, skipping fallback")
		return &types.Response{Text: BudgetExhausted, Source: types.SourceBudgetExhausted, Game: game}
	}
	defer p.c.Budget.Release()

	displayName := ""
	if game != types.NoGame {
		displayName = p.c.Games.DisplayName(game)
	}
	res := p.c.Fallback.Complete(ctx, msg.Text, displayName, live)

	state := p.c.Budget.State()
	metrics.BudgetSpend.WithLabelValues("daily").Set(state.DailyCost)
	metrics.BudgetSpend.WithLabelValues("monthly").Set(state.MonthlyCost)

	source := types.SourceFallback
	if res.Failed {
		source = types.SourceFallbackError
	}
	return &types.Response{Text: res.Text, Source: source, Game: game, Cost: res.Cost}
}

// gameContext prefers a supported hint from the transport, then the message
// text, then the game the stream is currently showing.
func (p *Pipeline) gameContext(msg types.IncomingMessage, live *types.StreamLiveState) types.GameContext {
	if msg.GameHint != types.NoGame && p.c.Games.Supported(msg.GameHint) {
		return msg.GameHint
	}
	if g := p.c.Games.Resolve(msg.Text); g != types.NoGame {
		return g
	}
	if live.HasGame() {
		return p.c.Games.Resolve(live.CurrentGame)
	}
	return types.NoGame
}
