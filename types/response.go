package types

import (
	"time"

	"github.com/google/uuid"
)

// ResponseTemplate is a keyword-triggered canned response bound to a game.
// Templates are read-mostly reference data owned by the template store.
type ResponseTemplate struct {
	ID       uuid.UUID   `db:"id" yaml:"-"`
	Game     GameContext `db:"game" yaml:"game"`
	Keywords []string    `db:"-" yaml:"keywords"`
	Response string      `db:"response" yaml:"response"`
	// Priority orders templates within a game, higher first.
	Priority int `db:"priority" yaml:"priority"`
	// Position is the definition order used to break priority ties.
	Position int  `db:"position" yaml:"-"`
	Active   bool `db:"is_active" yaml:"active"`
}

// ResponseSource names the pipeline stage that produced a response.
type ResponseSource string

const (
	SourceTemplate        ResponseSource = "template"
	SourcePattern         ResponseSource = "pattern"
	SourceFallback        ResponseSource = "fallback"
	SourceFallbackError   ResponseSource = "fallback_error"
	SourceBudgetExhausted ResponseSource = "budget_exhausted"
)

// Response is what the pipeline decided to say.
type Response struct {
	Text     string
	Source   ResponseSource
	Game     GameContext
	Priority int
	// Cost is the estimated spend of the external completion, zero otherwise.
	Cost float64
}

// Snapshot is an immutable per-stream analytics record for one flush interval.
type Snapshot struct {
	StreamID          string    `db:"stream_id"`
	TotalMessages     int       `db:"total_messages"`
	TotalMentions     int       `db:"total_mentions"`
	TotalResponses    int       `db:"total_responses"`
	FallbackResponses int       `db:"fallback_responses"`
	UniqueViewers     int       `db:"unique_viewers"`
	CapturedAt        time.Time `db:"captured_at"`
}

// BudgetState is a copy of the cost governor's counters.
type BudgetState struct {
	DailyCost        float64
	MonthlyCost      float64
	DailyCallCount   int
	MonthlyCallCount int
}
