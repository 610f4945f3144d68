package activity

import (
	"sync"
	"time"
)

// FeedSize is how many entries the feed keeps.
const FeedSize = 5

type Entry struct {
	ID      string    `json:"id"`
	TxHash  string    `json:"txHash,omitempty"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Feed is a bounded newest-first list of activity entries.
type Feed struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewFeed returns a feed holding the node status entries shown before any
// manager event is observed.
func NewFeed() *Feed {
	now := time.Now().UTC()
	return &Feed{
		entries: []Entry{
			{ID: "1", Type: "NODE_STABLE", Message: "BASE-MAINNET", Status: "ACTIVE", At: now},
			{ID: "2", Type: "AUTH_VERIFIED", Message: "E2E_ENCRYPTED", Status: "OK", At: now},
		},
	}
}

// Push prepends e, dropping the oldest entries beyond FeedSize. Entries whose
// ID is already present are ignored.
func (f *Feed) Push(e Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.entries {
		if existing.ID == e.ID {
			return false
		}
	}

	entries := make([]Entry, 0, FeedSize)
	entries = append(entries, e)
	entries = append(entries, f.entries...)
	if len(entries) > FeedSize {
		entries = entries[:FeedSize]
	}
	f.entries = entries
	return true
}

func (f *Feed) List() []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Entry(nil), f.entries...)
}
