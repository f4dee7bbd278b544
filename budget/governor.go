// Package budget tracks spend on the external completion service and decides
// whether another call is allowed.
package budget

import (
	"math"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/types"
)

// Config sets the spending ceilings. Call ceilings of zero mean unlimited.
type Config struct {
	DailyLimit       float64 `yaml:"daily_limit"`
	MonthlyLimit     float64 `yaml:"monthly_limit"`
	DailyCallLimit   int     `yaml:"daily_call_limit"`
	MonthlyCallLimit int     `yaml:"monthly_call_limit"`
	// Location is the IANA zone used to decide when a day or month rolls over.
	Location string  `yaml:"location"`
	Pricing  Pricing `yaml:"pricing"`
}

// DefaultConfig returns a small hobby budget.
func DefaultConfig() Config {
	return Config{
		DailyLimit:   1.00,
		MonthlyLimit: 20.00,
		Location:     "Asia/Jakarta",
		Pricing:      DefaultPricing(),
	}
}

// Governor holds the running cost and call totals. Counters only grow until
// ResetDaily or ResetMonthly is called. It never reads the clock.
//
// Calls in flight hold a reservation: each counts as one call and as the
// average cost seen so far this month, so concurrent callers cannot all pass
// the last free slot.
type Governor struct {
	mu      sync.Mutex
	cfg     Config
	state   types.BudgetState
	pending int
}

// NewGovernor returns a Governor with zeroed counters.
func NewGovernor(cfg Config) *Governor {
	return &Governor{cfg: cfg}
}

// WithinBudget reports whether both the daily and monthly ceilings still hold,
// counting reserved calls.
func (g *Governor) WithinBudget() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowed()
}

// Reserve checks the ceilings and, when they hold, holds one call against
// them until Release. Track the call's cost before releasing it.
func (g *Governor) Reserve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.allowed() {
		return false
	}
	g.pending++
	return true
}

// Release drops a reservation taken by Reserve.
func (g *Governor) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending > 0 {
		g.pending--
	}
}

func (g *Governor) allowed() bool {
	s := g.state
	held := float64(g.pending) * g.averageCost()
	if s.DailyCost+held >= g.cfg.DailyLimit || s.MonthlyCost+held >= g.cfg.MonthlyLimit {
		return false
	}
	if g.cfg.DailyCallLimit > 0 && s.DailyCallCount+g.pending >= g.cfg.DailyCallLimit {
		return false
	}
	if g.cfg.MonthlyCallLimit > 0 && s.MonthlyCallCount+g.pending >= g.cfg.MonthlyCallLimit {
		return false
	}
	return true
}

func (g *Governor) averageCost() float64 {
	if g.state.MonthlyCallCount == 0 {
		return 0
	}
	return g.state.MonthlyCost / float64(g.state.MonthlyCallCount)
}

// Track records one completion call costing cost. Negative or NaN costs count as zero.
func (g *Governor) Track(cost float64) {
	if cost < 0 || math.IsNaN(cost) {
		cost = 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.DailyCost += cost
	g.state.MonthlyCost += cost
	g.state.DailyCallCount++
	g.state.MonthlyCallCount++
}

// ResetDaily zeroes the daily counters.
func (g *Governor) ResetDaily() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.DailyCost = 0
	g.state.DailyCallCount = 0
}

// ResetMonthly zeroes the monthly counters.
func (g *Governor) ResetMonthly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.MonthlyCost = 0
	g.state.MonthlyCallCount = 0
}

// State returns a copy of the counters.
func (g *Governor) State() types.BudgetState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Zone loads the configured location, defaulting to UTC.
func (c Config) Zone() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Location)
}
