package db

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// GetCacheEntry returns the row for a fingerprint, or nil if absent.
// Expiry is the caller's concern; rows are returned as stored.
func (db *DB) GetCacheEntry(fingerprint string) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	err := db.Where("fingerprint = ?", fingerprint).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	return &entry, nil
}

// PutCacheEntry upserts a row by fingerprint. The write resets
// created_at/expires_at and payload; hit counters are preserved only on
// conflict if the caller carries them over.
func (db *DB) PutCacheEntry(entry *models.CacheEntry) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "fingerprint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"search_type", "payload", "entity_refs",
			"created_at", "expires_at", "last_accessed",
		}),
	}).Create(entry).Error
}

// TouchCacheEntry records a hit: increments hit_count and stamps
// last_accessed.
func (db *DB) TouchCacheEntry(fingerprint string, now time.Time) error {
	return db.Model(&models.CacheEntry{}).
		Where("fingerprint = ?", fingerprint).
		Updates(map[string]any{
			"hit_count":     gorm.Expr("hit_count + 1"),
			"last_accessed": now,
		}).Error
}

// DeleteCacheEntriesByRef removes rows whose entity_refs contain the id
// as a whole list element. Wrapping both sides in commas keeps "d1" from
// matching "d10". Returns the number of rows removed.
func (db *DB) DeleteCacheEntriesByRef(entityID string) (int64, error) {
	res := db.Where("',' || entity_refs || ',' LIKE ?", "%,"+entityID+",%").Delete(&models.CacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete cache entries by ref: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteExpiredCacheEntries removes rows past expires_at.
func (db *DB) DeleteExpiredCacheEntries(now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now).Delete(&models.CacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteColdCacheEntries removes rows older than minAge with fewer than
// minHits hits.
func (db *DB) DeleteColdCacheEntries(minHits int64, minAge time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-minAge)
	res := db.Where("hit_count < ? AND created_at <= ?", minHits, cutoff).Delete(&models.CacheEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete cold cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CacheStatistics aggregates cache counters.
func (db *DB) CacheStatistics(now time.Time) (*models.CacheStats, error) {
	stats := &models.CacheStats{BySearchType: map[string]int64{}}

	if err := db.Model(&models.CacheEntry{}).Count(&stats.TotalEntries).Error; err != nil {
		return nil, fmt.Errorf("count cache entries: %w", err)
	}
	if err := db.Model(&models.CacheEntry{}).
		Where("expires_at > ?", now).Count(&stats.ActiveEntries).Error; err != nil {
		return nil, fmt.Errorf("count active entries: %w", err)
	}
	stats.ExpiredEntries = stats.TotalEntries - stats.ActiveEntries

	var hits struct{ Total int64 }
	if err := db.Model(&models.CacheEntry{}).
		Select("COALESCE(SUM(hit_count), 0) AS total").Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("sum hits: %w", err)
	}
	stats.TotalHits = hits.Total

	type typeCount struct {
		SearchType string
		N          int64
	}
	var rows []typeCount
	if err := db.Model(&models.CacheEntry{}).
		Select("search_type, COUNT(*) AS n").
		Group("search_type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("group by search type: %w", err)
	}
	for _, r := range rows {
		stats.BySearchType[r.SearchType] = r.N
	}

	if stats.TotalEntries > 0 {
		stats.AvgHits = float64(stats.TotalHits) / float64(stats.TotalEntries)
	}
	denom := stats.TotalEntries
	if denom < 1 {
		denom = 1
	}
	stats.Efficiency = float64(stats.TotalHits) / float64(denom)

	return stats, nil
}
