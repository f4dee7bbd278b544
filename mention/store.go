package mention

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SenderStateStore remembers the last message seen from each sender.
type SenderStateStore interface {
	LastMessage(senderID string) (string, bool)
	SetLastMessage(senderID, text string)
}

// LRUStore is a bounded SenderStateStore. Senders are evicted when the store is
// full or when their entry is older than the configured TTL.
type LRUStore struct {
	cache *expirable.LRU[string, string]
}

// NewLRUStore creates a store holding at most size senders. A ttl of zero disables expiry.
func NewLRUStore(size int, ttl time.Duration) *LRUStore {
	if size <= 0 {
		size = DefaultMaxSenders
	}
	return &LRUStore{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

// LastMessage returns the last stored message for senderID.
func (s *LRUStore) LastMessage(senderID string) (string, bool) {
	return s.cache.Get(senderID)
}

// SetLastMessage stores text as the last message for senderID.
func (s *LRUStore) SetLastMessage(senderID, text string) {
	s.cache.Add(senderID, text)
}

// Len is the number of senders currently tracked.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
