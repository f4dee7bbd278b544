package ai

import (
	"context"
	"time"

	"github.com/Soypete/streambuddy/budget"
	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
)

// Apology is returned whenever the model cannot be used.
const Apology = "Maaf, aku lagi nggak bisa jawab sekarang. Coba tanya lagi nanti ya!"

// Tracker receives the estimated cost of each successful completion.
type Tracker interface {
	Track(cost float64)
}

// Result is the outcome of one fallback.
type Result struct {
	Text string
	Cost float64
	// Failed is set when Text is the apology.
	Failed bool
}

// Adapter turns a chat question into a model completion.
type Adapter struct {
	completer Completer
	tracker   Tracker
	pricing   budget.Pricing
	cfg       Config
	now       func() time.Time
	logger    *logging.Logger
}

// NewAdapter creates an Adapter. A nil completer means no credential is configured.
func NewAdapter(completer Completer, tracker Tracker, pricing budget.Pricing, cfg Config, logger *logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Adapter{
		completer: completer,
		tracker:   tracker,
		pricing:   pricing,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// Complete asks the model to answer question. It always returns some text:
// any failure is logged and replaced by Apology.
func (a *Adapter) Complete(ctx context.Context, question, game string, live *types.StreamLiveState) Result {
	if a.completer == nil {
		metrics.FallbackCalls.WithLabelValues("no_credential").Inc()
		a.logger.Warn("no completion credential configured, skipping fallback")
		return Result{Text: Apology, Failed: true}
	}

	system, user := BuildPrompt(a.cfg, question, game, live, a.now())

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	c, err := a.completer.Complete(ctx, system, user)
	if err != nil {
		metrics.FailedLLMGen.Add(1)
		metrics.FallbackCalls.WithLabelValues("error").Inc()
		a.logger.Error("fallback completion failed", "error", err.Error())
		return Result{Text: Apology, Failed: true}
	}

	cost := a.pricing.Cost(c.Usage, system+user, c.Text)
	if a.tracker != nil {
		a.tracker.Track(cost)
	}

	text := CleanResponse(c.Text, a.cfg.MaxChars)
	if text == "" {
		metrics.EmptyLLMResponse.Add(1)
		metrics.FallbackCalls.WithLabelValues("empty").Inc()
		a.logger.Warn("fallback completion was empty")
		return Result{Text: Apology, Cost: cost, Failed: true}
	}

	metrics.SuccessfulLLMGen.Add(1)
	metrics.FallbackCalls.WithLabelValues("success").Inc()
	a.logger.Debug("fallback completion", "cost", cost, "promptTokens", c.Usage.PromptTokens, "completionTokens", c.Usage.CompletionTokens)
	return Result{Text: text, Cost: cost}
}
