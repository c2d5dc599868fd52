// Package cache stores ranked match results keyed by query
// fingerprint, with TTL expiry, hit tracking, targeted invalidation and
// single-flight recomputation.
package cache

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// ErrCacheStoreFailed indicates the cache store is unreachable. Callers
// bypass the cache and compute fresh rather than failing the request.
var ErrCacheStoreFailed = errors.New("cache store failed")

// Store persists cache rows.
type Store interface {
	GetCacheEntry(fingerprint string) (*models.CacheEntry, error)
	PutCacheEntry(entry *models.CacheEntry) error
	TouchCacheEntry(fingerprint string, now time.Time) error
	DeleteCacheEntriesByRef(entityID string) (int64, error)
	DeleteExpiredCacheEntries(now time.Time) (int64, error)
	DeleteColdCacheEntries(minHits int64, minAge time.Duration, now time.Time) (int64, error)
	CacheStatistics(now time.Time) (*models.CacheStats, error)
}

// Config holds cache tuning knobs.
type Config struct {
	DefaultTTL time.Duration

	// Optimize evicts entries older than MinAge with fewer than
	// MinHits hits.
	MinHits int64
	MinAge  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 15 * time.Minute,
		MinHits:    2,
		MinAge:     time.Hour,
	}
}

// Cache is the match result cache.
type Cache struct {
	store  Store
	cfg    Config
	logger *zap.Logger
	group  singleflight.Group
}

// New creates a cache over a store.
func New(store Store, cfg Config, logger *zap.Logger) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultConfig().DefaultTTL
	}
	if cfg.MinHits <= 0 {
		cfg.MinHits = DefaultConfig().MinHits
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = DefaultConfig().MinAge
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, cfg: cfg, logger: logger}
}

// Get returns the cached payload for a query if a non-expired entry
// exists, recording the hit. Expired or absent entries are a miss;
// expired rows are left for cleanup, not deleted here.
func (c *Cache) Get(searchType string, params map[string]any) ([]byte, bool) {
	fp, err := Fingerprint(searchType, params)
	if err != nil {
		c.logger.Warn("fingerprint failed", zap.Error(err))
		return nil, false
	}
	return c.getByFingerprint(fp)
}

func (c *Cache) getByFingerprint(fp string) ([]byte, bool) {
	entry, err := c.store.GetCacheEntry(fp)
	if err != nil {
		c.logger.Warn("cache read failed", zap.Error(err))
		return nil, false
	}
	if entry == nil || entry.Expired(time.Now()) {
		return nil, false
	}

	if err := c.store.TouchCacheEntry(fp, time.Now()); err != nil {
		c.logger.Warn("cache hit bookkeeping failed", zap.Error(err))
	}
	return entry.Payload, true
}

// Put upserts a payload by fingerprint. The write resets created_at and
// expires_at and does not count as a hit. entityRefs lists the entity
// ids the query referenced, enabling targeted invalidation.
func (c *Cache) Put(searchType string, params map[string]any, payload []byte, entityRefs []string, ttl time.Duration) error {
	fp, err := Fingerprint(searchType, params)
	if err != nil {
		return err
	}
	return c.putByFingerprint(fp, searchType, payload, entityRefs, ttl)
}

func (c *Cache) putByFingerprint(fp, searchType string, payload []byte, entityRefs []string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.cfg.DefaultTTL
	}
	now := time.Now()
	entry := &models.CacheEntry{
		Fingerprint:  fp,
		SearchType:   searchType,
		Payload:      payload,
		EntityRefs:   strings.Join(entityRefs, ","),
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
	if err := c.store.PutCacheEntry(entry); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}
	return nil
}

// GetOrCompute serves the query from cache or computes it exactly once
// per fingerprint under concurrent identical requests (single-flight).
// A failing cache store downgrades to uncoordinated fresh computation:
// correctness is preferred over strict deduplication. The returned bool
// reports a cache hit.
// The compute callback returns the payload plus the entity ids it
// references, which are stored for targeted invalidation.
func (c *Cache) GetOrCompute(searchType string, params map[string]any, ttl time.Duration, compute func() ([]byte, []string, error)) ([]byte, bool, error) {
	fp, err := Fingerprint(searchType, params)
	if err != nil {
		c.logger.Warn("fingerprint failed, bypassing cache", zap.Error(err))
		payload, _, cerr := compute()
		return payload, false, cerr
	}

	type outcome struct {
		payload []byte
		hit     bool
	}

	v, err, _ := c.group.Do(fp, func() (any, error) {
		if payload, ok := c.getByFingerprint(fp); ok {
			return outcome{payload: payload, hit: true}, nil
		}

		payload, entityRefs, err := compute()
		if err != nil {
			return nil, err
		}

		if perr := c.putByFingerprint(fp, searchType, payload, entityRefs, ttl); perr != nil {
			c.logger.Warn("cache write failed, serving uncached result", zap.Error(perr))
		}
		return outcome{payload: payload}, nil
	})
	if err != nil {
		return nil, false, err
	}

	o := v.(outcome)
	return o.payload, o.hit, nil
}

// Invalidate removes every entry whose params referenced the entity.
// Call it whenever data that could change rankings changes (feedback,
// skill updates). Returns the number of entries removed.
func (c *Cache) Invalidate(entityID string) (int64, error) {
	if entityID == "" {
		return 0, nil
	}
	removed, err := c.store.DeleteCacheEntriesByRef(entityID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}
	if removed > 0 {
		c.logger.Info("cache invalidated", zap.String("entity", entityID), zap.Int64("removed", removed))
	}
	return removed, nil
}

// CleanupExpired deletes all entries past expires_at and returns the
// count removed.
func (c *Cache) CleanupExpired() (int64, error) {
	removed, err := c.store.DeleteExpiredCacheEntries(time.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}
	return removed, nil
}

// OptimizeReport summarizes an optimize pass.
type OptimizeReport struct {
	EntriesBefore int64 `json:"entries_before"`
	EntriesAfter  int64 `json:"entries_after"`
	Expired       int64 `json:"expired_removed"`
	Cold          int64 `json:"cold_removed"`
}

// Optimize removes expired entries, then evicts low-hit entries past
// the age bound to cap cache size.
func (c *Cache) Optimize() (*OptimizeReport, error) {
	now := time.Now()

	before, err := c.store.CacheStatistics(now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}

	report := &OptimizeReport{EntriesBefore: before.TotalEntries}

	if report.Expired, err = c.store.DeleteExpiredCacheEntries(now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}
	if report.Cold, err = c.store.DeleteColdCacheEntries(c.cfg.MinHits, c.cfg.MinAge, now); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}

	report.EntriesAfter = report.EntriesBefore - report.Expired - report.Cold
	c.logger.Info("cache optimized",
		zap.Int64("before", report.EntriesBefore),
		zap.Int64("after", report.EntriesAfter))
	return report, nil
}

// Statistics aggregates cache counters.
func (c *Cache) Statistics() (*models.CacheStats, error) {
	stats, err := c.store.CacheStatistics(time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheStoreFailed, err)
	}
	return stats, nil
}
