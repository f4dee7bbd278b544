package twitchirc

import (
	"context"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/metrics"
	"github.com/Soypete/streambuddy/twitch/helix"
	"github.com/Soypete/streambuddy/types"
)

// LiveStateSource supplies the optional stream context for a message.
type LiveStateSource interface {
	LiveState(ctx context.Context) *types.StreamLiveState
}

type streamGetter interface {
	GetStream(ctx context.Context, login string) (*helix.StreamData, error)
}

// HelixLiveState looks the channel up on Helix and remembers the answer for ttl.
type HelixLiveState struct {
	client streamGetter
	login  string
	ttl    time.Duration
	now    func() time.Time
	logger *logging.Logger

	mu        sync.Mutex
	cached    *types.StreamLiveState
	fetchedAt time.Time
}

// NewHelixLiveState creates a live state source for the channel login.
func NewHelixLiveState(client streamGetter, login string, ttl time.Duration, logger *logging.Logger) *HelixLiveState {
	if logger == nil {
		logger = logging.Default()
	}
	return &HelixLiveState{
		client: client,
		login:  login,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// LiveState returns the channel's current state, nil when offline or unknown.
// Lookup failures keep serving the previous value.
func (h *HelixLiveState) LiveState(ctx context.Context) *types.StreamLiveState {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.fetchedAt.IsZero() && h.now().Sub(h.fetchedAt) < h.ttl {
		return h.cached
	}

	stream, err := h.client.GetStream(ctx, h.login)
	if err != nil {
		metrics.LiveStateLookupFailed.Add(1)
		h.logger.Warn("failed to fetch stream state", "channel", h.login, "error", err.Error())
		return h.cached
	}

	h.fetchedAt = h.now()
	if stream == nil {
		h.cached = nil
		return nil
	}
	viewers := stream.ViewerCount
	h.cached = &types.StreamLiveState{
		StreamStart: stream.StartedAt,
		CurrentGame: stream.GameName,
		ViewerCount: &viewers,
	}
	return h.cached
}
