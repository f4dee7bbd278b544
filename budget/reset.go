package budget

import (
	"context"
	"time"

	"github.com/Soypete/streambuddy/logging"
)

// Resetter is the part of the Governor driven by the calendar.
type Resetter interface {
	ResetDaily()
	ResetMonthly()
}

// RunResets checks the calendar every tick and resets g when the day or month
// changes in loc. It returns when ctx is done.
func RunResets(ctx context.Context, g Resetter, tick time.Duration, loc *time.Location, now func() time.Time, logger *logging.Logger) error {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}

	last := now().In(loc)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			last = checkRollover(g, last, now().In(loc), logger)
		}
	}
}

func checkRollover(g Resetter, last, current time.Time, logger *logging.Logger) time.Time {
	ly, lm, ld := last.Date()
	cy, cm, cd := current.Date()
	if ly != cy || lm != cm {
		logger.Info("resetting monthly budget", "month", current.Format("2006-01"))
		g.ResetMonthly()
	}
	if ly != cy || lm != cm || ld != cd {
		logger.Info("resetting daily budget", "day", current.Format("2006-01-02"))
		g.ResetDaily()
	}
	return current
}
