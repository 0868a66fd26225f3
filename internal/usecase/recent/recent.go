package recent

import (
	"slices"
	"sync"
	"time"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
)

// Cache keeps the most recent inbound image messages so that an album can be
// recovered after the fact. Entries are evicted by age and then by count,
// oldest first.
type Cache struct {
	mu      sync.RWMutex
	records []entity.InboundImageRecord

	maxEntries int
	ttlSeconds int64
	now        func() time.Time
}

func New(maxEntries int, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		maxEntries: maxEntries,
		ttlSeconds: int64(ttl / time.Second),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type Option func(*Cache)

// Clock overrides the time source used for TTL eviction.
func Clock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Track upserts record by message id and applies eviction.
func (c *Cache) Track(record entity.InboundImageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := false
	for i := range c.records {
		if c.records[i].MessageID == record.MessageID {
			c.records[i] = record
			replaced = true

			break
		}
	}
	if !replaced {
		c.records = append(c.records, record)
	}

	c.evict()
}

func (c *Cache) evict() {
	if c.ttlSeconds > 0 {
		cutoff := c.now().Unix() - c.ttlSeconds
		c.records = slices.DeleteFunc(c.records, func(r entity.InboundImageRecord) bool {
			return r.TimestampSeconds < cutoff
		})
	}

	if c.maxEntries > 0 && len(c.records) > c.maxEntries {
		sortRecords(c.records)
		c.records = slices.Delete(c.records, 0, len(c.records)-c.maxEntries)
	}
}

// FindByID looks a record up by message id. An empty conversationID matches any conversation.
func (c *Cache) FindByID(messageID, conversationID string) (entity.InboundImageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.records {
		if r.MessageID != messageID {
			continue
		}
		if conversationID != "" && r.ConversationID != conversationID {
			continue
		}

		return r, true
	}

	return entity.InboundImageRecord{}, false
}

func (c *Cache) FindByAlbumGroup(conversationID, albumGroupID string) []entity.InboundImageRecord {
	if albumGroupID == "" {
		return nil
	}

	return c.collect(func(r entity.InboundImageRecord) bool {
		return r.ConversationID == conversationID && r.AlbumGroupID == albumGroupID
	})
}

func (c *Cache) FindByProximity(conversationID, participantID string, aroundTimestamp, windowSeconds int64) []entity.InboundImageRecord {
	return c.collect(func(r entity.InboundImageRecord) bool {
		if r.ConversationID != conversationID || r.ParticipantID != participantID {
			return false
		}
		d := r.TimestampSeconds - aroundTimestamp

		return d >= -windowSeconds && d <= windowSeconds
	})
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.records)
}

func (c *Cache) collect(match func(entity.InboundImageRecord) bool) []entity.InboundImageRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []entity.InboundImageRecord

	for _, r := range c.records {
		if !match(r) {
			continue
		}
		if _, ok := seen[r.MessageID]; ok {
			continue
		}
		seen[r.MessageID] = struct{}{}
		out = append(out, r)
	}

	sortRecords(out)

	return out
}

func sortRecords(records []entity.InboundImageRecord) {
	slices.SortStableFunc(records, func(a, b entity.InboundImageRecord) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
}
