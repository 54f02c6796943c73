package cache

import "time"

// DispatchRecord is one recently dispatched ticket, kept per group so
// follow-up messages can be matched to it.
type DispatchRecord struct {
	Folio        string
	Place        string
	ChatID       string
	DispatchedAt time.Time
}

// DispatchCache tracks recent dispatches keyed by chat/group identity.
type DispatchCache struct {
	ttl *TTL
}

// NewDispatchCache creates a dispatch cache with the given TTL.
func NewDispatchCache(ttl time.Duration) *DispatchCache {
	return &DispatchCache{ttl: NewTTL(ttl)}
}

// Record remembers a dispatch for the group.
func (c *DispatchCache) Record(groupID string, rec DispatchRecord) {
	records := c.Recent(groupID)
	records = append(records, rec)
	c.ttl.Set(groupID, records)
}

// Recent returns the live dispatch records for a group, oldest first.
func (c *DispatchCache) Recent(groupID string) []DispatchRecord {
	v, ok := c.ttl.Get(groupID)
	if !ok {
		return nil
	}
	records, ok := v.([]DispatchRecord)
	if !ok {
		return nil
	}
	return records
}

// Forget drops one folio from the group's records.
func (c *DispatchCache) Forget(groupID, folio string) {
	records := c.Recent(groupID)
	kept := records[:0]
	for _, r := range records {
		if r.Folio != folio {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		c.ttl.Delete(groupID)
		return
	}
	c.ttl.Set(groupID, kept)
}

// Clear drops all records.
func (c *DispatchCache) Clear() {
	c.ttl.Clear()
}

// Close stops the underlying janitor.
func (c *DispatchCache) Close() {
	c.ttl.Close()
}
