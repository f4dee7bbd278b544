// Package mention decides whether a chat message is addressed to the co-host.
package mention

import (
	"strings"
	"sync"
	"time"

	"github.com/Soypete/streambuddy/logging"
	"github.com/Soypete/streambuddy/types"
)

const (
	DefaultMaxSenders = 10000
	DefaultSenderTTL  = 6 * time.Hour
)

// Config configures the mention gate.
type Config struct {
	// Names are the aliases the co-host answers to. Short aliases match as substrings.
	Names []string `yaml:"names"`

	// MaxSenders bounds the dedup state.
	MaxSenders int `yaml:"max_senders"`

	// SenderTTL evicts dedup state for senders that have gone quiet.
	SenderTTL time.Duration `yaml:"sender_ttl"`
}

// DefaultConfig returns the mention names the co-host ships with.
func DefaultConfig() Config {
	return Config{
		Names:      []string{"streambuddy", "stream buddy", "sb"},
		MaxSenders: DefaultMaxSenders,
		SenderTTL:  DefaultSenderTTL,
	}
}

// Decision is the outcome of a gate check.
type Decision string

const (
	Accepted     Decision = "accepted"
	Duplicate    Decision = "duplicate"
	NotMentioned Decision = "not_mentioned"
)

// Gate filters messages down to fresh mentions of the co-host.
type Gate struct {
	names  []string
	store  SenderStateStore
	mu     sync.Mutex
	logger *logging.Logger
}

// NewGate creates a gate. The configured names are normalized once here.
func NewGate(names []string, store SenderStateStore, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = NewLRUStore(DefaultMaxSenders, DefaultSenderTTL)
	}

	normalized := make([]string, 0, len(names))
	for _, n := range names {
		if n = Normalize(n); n != "" {
			normalized = append(normalized, n)
		}
	}

	return &Gate{
		names:  normalized,
		store:  store,
		logger: logger,
	}
}

// Accept reports whether msg is a new message that mentions the co-host.
func (g *Gate) Accept(msg types.IncomingMessage) bool {
	return g.Check(msg) == Accepted
}

// Check runs the dedup test and then the mention test.
// The sender's last message is always replaced, even when the message is later
// rejected, so repeated spam is suppressed the same way as repeated mentions.
func (g *Gate) Check(msg types.IncomingMessage) Decision {
	text := strings.TrimSpace(msg.Text)

	g.mu.Lock()
	last, seen := g.store.LastMessage(msg.SenderID)
	if seen && last == text {
		g.mu.Unlock()
		g.logger.Debug("dropping duplicate message", "senderID", msg.SenderID)
		return Duplicate
	}
	g.store.SetLastMessage(msg.SenderID, text)
	g.mu.Unlock()

	if !g.Mentions(text) {
		return NotMentioned
	}
	return Accepted
}

// Mentions reports whether text contains any configured name after normalization.
func (g *Gate) Mentions(text string) bool {
	normalized := Normalize(text)
	for _, name := range g.names {
		if strings.Contains(normalized, name) {
			return true
		}
	}
	return false
}
