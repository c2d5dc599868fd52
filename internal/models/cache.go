package models

import "time"

// CacheEntry is a persisted ranked-result row keyed by query fingerprint.
type CacheEntry struct {
	Fingerprint string `gorm:"primaryKey;size:64" json:"fingerprint"`
	SearchType  string `gorm:"size:40;index" json:"search_type"`

	// Payload is the JSON-encoded ranked result.
	Payload []byte `gorm:"type:blob" json:"-"`

	// EntityRefs is a comma-separated list of entity ids referenced by
	// the query params, used for targeted invalidation.
	EntityRefs string `gorm:"size:2000;index" json:"entity_refs"`

	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `gorm:"index" json:"expires_at"`
	HitCount     int64     `gorm:"default:0" json:"hit_count"`
	LastAccessed time.Time `json:"last_accessed"`
}

// TableName specifies the table name for GORM.
func (CacheEntry) TableName() string {
	return "cache_entries"
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// CacheStats provides aggregate statistics about the match cache.
type CacheStats struct {
	TotalEntries   int64            `json:"total_entries"`
	ActiveEntries  int64            `json:"active_entries"`
	ExpiredEntries int64            `json:"expired_entries"`
	TotalHits      int64            `json:"total_hits"`
	AvgHits        float64          `json:"avg_hits"`
	BySearchType   map[string]int64 `json:"by_search_type"`

	// Efficiency is total hits over max(1, total entries).
	Efficiency float64 `json:"efficiency"`
}
