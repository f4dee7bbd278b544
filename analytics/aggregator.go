// Package analytics counts per-stream chat activity and periodically emits snapshots.
package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/types"
)

// Sink persists snapshots. Writes are best effort.
type Sink interface {
	InsertSnapshots(ctx context.Context, snapshots []types.Snapshot) error
}

// Event is one accepted message and what the pipeline did with it.
type Event struct {
	StreamID    string
	SenderID    string
	WasMention  bool
	WasResponse bool
	WasFallback bool
}

type counters struct {
	totalMessages     int
	totalMentions     int
	totalResponses    int
	fallbackResponses int
	senders           map[string]struct{}
}

func newCounters() *counters {
	return &counters{senders: make(map[string]struct{})}
}

// Aggregator holds live per-stream counters. Streams are created on first
// message and kept, zeroed, across flushes.
type Aggregator struct {
	mu      sync.Mutex
	streams map[string]*counters
	sink    Sink
	now     func() time.Time
	logger  *logging.Logger
}

// NewAggregator creates an Aggregator. sink may be nil, in which case
// snapshots are only returned from Flush.
func NewAggregator(sink Sink, now func() time.Time, logger *logging.Logger) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Aggregator{
		streams: make(map[string]*counters),
		sink:    sink,
		now:     now,
		logger:  logger,
	}
}

// Record counts one accepted message.
func (a *Aggregator) Record(e Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.streams[e.StreamID]
	if !ok {
		c = newCounters()
		a.streams[e.StreamID] = c
	}
	c.totalMessages++
	if e.WasMention {
		c.totalMentions++
	}
	if e.WasResponse {
		c.totalResponses++
	}
	if e.WasFallback {
		c.fallbackResponses++
	}
	c.senders[e.SenderID] = struct{}{}
}

// Flush swaps every stream's counters for fresh ones, returns the snapshots
// and hands them to the sink. A sink failure is logged; the counters stay reset.
func (a *Aggregator) Flush(ctx context.Context) []types.Snapshot {
	at := a.now()

	a.mu.Lock()
	live := a.streams
	a.streams = make(map[string]*counters, len(live))
	for id := range live {
		a.streams[id] = newCounters()
	}
	a.mu.Unlock()

	snapshots := make([]types.Snapshot, 0, len(live))
	for id, c := range live {
		snapshots = append(snapshots, types.Snapshot{
			StreamID:          id,
			TotalMessages:     c.totalMessages,
			TotalMentions:     c.totalMentions,
			TotalResponses:    c.totalResponses,
			FallbackResponses: c.fallbackResponses,
			UniqueViewers:     len(c.senders),
			CapturedAt:        at,
		})
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].StreamID < snapshots[j].StreamID })

	if a.sink != nil && len(snapshots) > 0 {
		if err := a.sink.InsertSnapshots(ctx, snapshots); err != nil {
			metrics.SnapshotFlushFailed.Add(1)
			a.logger.Error("failed to persist snapshots", "count", len(snapshots), "error", err.Error())
		} else {
			metrics.SnapshotsFlushed.Add(float64(len(snapshots)))
		}
	}
	return snapshots
}

// Run flushes every interval until ctx is done, then flushes once more.
func (a *Aggregator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// use a fresh context so the last interval is still written
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			a.Flush(flushCtx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			a.Flush(ctx)
		}
	}
}
