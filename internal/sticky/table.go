// Package sticky tracks per-channel sticky messages that are reposted after a
// configured number of new messages. The table is in-memory only and is lost
// when the process exits.
package sticky

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInvalidInterval is returned when a sticky rule's interval is below 1
var ErrInvalidInterval = errors.New("interval must be at least 1")

// Rule is a snapshot of one channel's sticky configuration
type Rule struct {
	ChannelID string
	Message   string
	Interval  int
	Count     int
}

type entry struct {
	mu       sync.Mutex
	message  string
	interval int
	count    int
}

// Table maps channel ID to its sticky rule. Each channel has its own lock so
// counting in one channel never waits on another.
type Table struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Set installs a sticky rule for the channel, replacing any existing one.
// The count starts at zero.
func (t *Table) Set(channelID, message string, interval int) error {
	if interval < 1 {
		return fmt.Errorf("%d: %w", interval, ErrInvalidInterval)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[channelID] = &entry{message: message, interval: interval}
	return nil
}

// Remove deletes the channel's rule, reporting whether one existed
func (t *Table) Remove(channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[channelID]; !ok {
		return false
	}
	delete(t.entries, channelID)
	return true
}

// Get returns a snapshot of the channel's rule
func (t *Table) Get(channelID string) (Rule, bool) {
	t.mu.RLock()
	e, ok := t.entries[channelID]
	t.mu.RUnlock()
	if !ok {
		return Rule{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return Rule{ChannelID: channelID, Message: e.message, Interval: e.interval, Count: e.count}, true
}

// Observe counts one message in the channel. When the count reaches the
// interval it resets to zero and the sticky text is returned with repost=true.
func (t *Table) Observe(channelID string) (message string, repost bool) {
	t.mu.RLock()
	e, ok := t.entries[channelID]
	t.mu.RUnlock()
	if !ok {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.count++
	if e.count < e.interval {
		return "", false
	}
	e.count = 0
	return e.message, true
}

// List returns snapshots of every rule ordered by channel ID
func (t *Table) List() []Rule {
	t.mu.RLock()
	ids := make([]string, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	t.mu.RUnlock()

	sort.Strings(ids)
	rules := make([]Rule, 0, len(ids))
	for _, id := range ids {
		if r, ok := t.Get(id); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// Len returns the number of channels with a sticky rule
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
