package budget

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGovernor_DailyCeiling(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 1, MonthlyLimit: 10})
	assert.True(t, g.WithinBudget())

	g.Track(0.6)
	assert.True(t, g.WithinBudget())
	g.Track(0.4)
	assert.False(t, g.WithinBudget(), "dailyCost == ceiling is over budget")

	g.Track(0.1)
	assert.False(t, g.WithinBudget())

	g.ResetDaily()
	assert.True(t, g.WithinBudget())
	s := g.State()
	assert.Zero(t, s.DailyCost)
	assert.Zero(t, s.DailyCallCount)
	assert.InDelta(t, 1.1, s.MonthlyCost, 1e-9)
	assert.Equal(t, 3, s.MonthlyCallCount)
}

func TestGovernor_MonthlyCeiling(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 5, MonthlyLimit: 2})
	g.Track(2)
	assert.False(t, g.WithinBudget())

	g.ResetDaily()
	assert.False(t, g.WithinBudget(), "daily reset does not clear monthly")

	g.ResetMonthly()
	assert.True(t, g.WithinBudget())
}

func TestGovernor_CallCeilings(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		calls int
		want  bool
	}{
		{name: "unlimited", cfg: Config{DailyLimit: 1, MonthlyLimit: 1}, calls: 100, want: true},
		{name: "daily calls", cfg: Config{DailyLimit: 1, MonthlyLimit: 1, DailyCallLimit: 3}, calls: 3, want: false},
		{name: "below daily calls", cfg: Config{DailyLimit: 1, MonthlyLimit: 1, DailyCallLimit: 3}, calls: 2, want: true},
		{name: "monthly calls", cfg: Config{DailyLimit: 1, MonthlyLimit: 1, MonthlyCallLimit: 5}, calls: 5, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGovernor(tt.cfg)
			for i := 0; i < tt.calls; i++ {
				g.Track(0)
			}
			assert.Equal(t, tt.want, g.WithinBudget())
		})
	}
}

func TestGovernor_IgnoresBadCost(t *testing.T) {
	g := NewGovernor(DefaultConfig())
	g.Track(-3)
	g.Track(math.NaN())
	s := g.State()
	assert.Zero(t, s.DailyCost)
	assert.Equal(t, 2, s.DailyCallCount)
}

func TestGovernor_ZeroCeilingBlocks(t *testing.T) {
	assert.False(t, NewGovernor(Config{}).WithinBudget())
}

func TestGovernor_ConcurrentTrack(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 1000, MonthlyLimit: 1000})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				g.Track(0.01)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, g.State().DailyCallCount)
	assert.InDelta(t, 10, g.State().DailyCost, 1e-6)
}

func TestGovernor_ReserveCallCeiling(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 1, MonthlyLimit: 10, DailyCallLimit: 1})

	require.True(t, g.Reserve())
	assert.False(t, g.Reserve(), "the only call is already reserved")
	assert.False(t, g.WithinBudget())

	g.Release()
	assert.True(t, g.Reserve())
	g.Track(0.01)
	g.Release()
	assert.False(t, g.Reserve(), "the tracked call used the ceiling")

	g.Release()
	assert.Equal(t, 1, g.State().DailyCallCount, "extra releases are ignored")
}

func TestGovernor_ReserveHoldsAverageCost(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 0.05, MonthlyLimit: 10})
	g.Track(0.02)

	// 0.02 spent, each reservation holds the 0.02 average
	require.True(t, g.Reserve())
	require.True(t, g.Reserve())
	assert.False(t, g.Reserve())

	g.Release()
	g.Release()
	assert.True(t, g.WithinBudget())
}

func TestGovernor_ConcurrentReserve(t *testing.T) {
	g := NewGovernor(Config{DailyLimit: 100, MonthlyLimit: 100, DailyCallLimit: 5})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Reserve() {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, granted)
}

func TestPricing_Cost(t *testing.T) {
	p := Pricing{PromptPerMillion: 1, CompletionPerMillion: 2}

	assert.InDelta(t, (100+2*50)/1e6, p.Cost(Usage{PromptTokens: 100, CompletionTokens: 50}, "", ""), 1e-12)
	// 8 chars -> 2 tokens, 5 chars -> 2 tokens
	assert.InDelta(t, (2+2*2)/1e6, p.Cost(Usage{}, "abcdefgh", "abcde"), 1e-12)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 1, EstimateTokens("héé"))
}

func TestConfig_Zone(t *testing.T) {
	loc, err := Config{}.Zone()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = Config{Location: "Nowhere/Special"}.Zone()
	assert.Error(t, err)
}

type resetCounter struct {
	daily, monthly int
}

func (r *resetCounter) ResetDaily()   { r.daily++ }
func (r *resetCounter) ResetMonthly() { r.monthly++ }

func Test_checkRollover(t *testing.T) {
	base := time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		current        time.Time
		daily, monthly int
	}{
		{name: "same day", current: base.Add(30 * time.Minute), daily: 0, monthly: 0},
		{name: "next day next month", current: base.Add(2 * time.Hour), daily: 1, monthly: 1},
		{name: "clock moved back a day", current: time.Date(2024, 1, 30, 1, 0, 0, 0, time.UTC), daily: 1, monthly: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &resetCounter{}
			got := checkRollover(r, base, tt.current, logging.Discard())
			assert.Equal(t, tt.current, got)
			assert.Equal(t, tt.daily, r.daily)
			assert.Equal(t, tt.monthly, r.monthly)
		})
	}
}

func TestRunResets_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunResets(ctx, &resetCounter{}, time.Millisecond, time.UTC, nil, logging.Discard())
	assert.ErrorIs(t, err, context.Canceled)
}
