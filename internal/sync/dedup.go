package sync

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Dedup cache sizing
const (
	DefaultDedupSize = 1024
	DefaultDedupTTL  = time.Hour
)

// Deduplicator is the cheap first tier of duplicate suppression: a bounded
// in-memory cache of recently processed (config, message) pairs. It only
// avoids wasted work; the unique index behind HistoryStore.InsertPending is
// what actually guarantees exactly-once.
type Deduplicator struct {
	seen *expirable.LRU[string, struct{}]
}

// NewDeduplicator creates a deduplicator with bounded size and entry TTL
func NewDeduplicator(size int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{
		seen: expirable.NewLRU[string, struct{}](size, nil, ttl),
	}
}

// Seen reports whether this message was recently processed for this config
func (d *Deduplicator) Seen(configID, channelID, messageTS string) bool {
	_, ok := d.seen.Get(dedupKey(configID, channelID, messageTS))
	return ok
}

// Mark records that this message was processed for this config
func (d *Deduplicator) Mark(configID, channelID, messageTS string) {
	d.seen.Add(dedupKey(configID, channelID, messageTS), struct{}{})
}

// Len returns the number of live cache entries
func (d *Deduplicator) Len() int {
	return d.seen.Len()
}

func dedupKey(configID, channelID, messageTS string) string {
	return fmt.Sprintf("%s|%s|%s", configID, channelID, messageTS)
}
