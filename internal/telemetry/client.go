// Package telemetry provides anonymous usage tracking via PostHog.
package telemetry

import (
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// PostHogAPIKey is set at compile time via ldflags.
var PostHogAPIKey string

// Client interface for telemetry operations.
type Client interface {
	Track(event string, properties map[string]interface{})
	Close()

	TrackMatchPerformed(searchType string, poolSize, resultCount int, cacheHit bool, durationMs int64)
	TrackBatchMatch(searchType string, itemCount, failedCount int)
	TrackFeedbackSubmitted(rating int, cacheInvalidated bool)
	TrackCacheMaintenance(operation string, removed int64)
	TrackGraphSeeded(nodeCount, edgeCount int)
}

// posthogClient wraps the PostHog SDK.
type posthogClient struct {
	client    posthog.Client
	sessionID string
	mu        sync.Mutex
}

// noopClient does nothing (for disabled telemetry).
type noopClient struct{}

// IsEnabled returns true if telemetry is enabled.
// Telemetry is opt-out: enabled by default unless DEVMATCH_TELEMETRY_TRACKING_ENABLED=false.
func IsEnabled() bool {
	return os.Getenv("DEVMATCH_TELEMETRY_TRACKING_ENABLED") != "false" && PostHogAPIKey != ""
}

// New creates a new telemetry client.
func New() Client {
	if !IsEnabled() {
		return &noopClient{}
	}

	client, err := posthog.NewWithConfig(PostHogAPIKey, posthog.Config{
		Endpoint:  "https://us.i.posthog.com",
		BatchSize: 250,
		Interval:  5 * time.Second,
	})
	if err != nil {
		return &noopClient{}
	}

	return &posthogClient{
		client:    client,
		sessionID: uuid.New().String(),
	}
}

// Track sends an event to PostHog.
func (c *posthogClient) Track(event string, properties map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if properties == nil {
		properties = map[string]interface{}{}
	}
	properties["session_id"] = c.sessionID

	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.sessionID,
		Event:      event,
		Properties: properties,
	})
}

// Close flushes and shuts down the client.
func (c *posthogClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.client.Close()
}

func (c *posthogClient) TrackMatchPerformed(searchType string, poolSize, resultCount int, cacheHit bool, durationMs int64) {
	c.Track("match_performed", map[string]interface{}{
		"search_type":  searchType,
		"pool_size":    poolSize,
		"result_count": resultCount,
		"cache_hit":    cacheHit,
		"duration_ms":  durationMs,
	})
}

func (c *posthogClient) TrackBatchMatch(searchType string, itemCount, failedCount int) {
	c.Track("batch_match", map[string]interface{}{
		"search_type":  searchType,
		"item_count":   itemCount,
		"failed_count": failedCount,
	})
}

func (c *posthogClient) TrackFeedbackSubmitted(rating int, cacheInvalidated bool) {
	c.Track("feedback_submitted", map[string]interface{}{
		"rating":            rating,
		"cache_invalidated": cacheInvalidated,
	})
}

func (c *posthogClient) TrackCacheMaintenance(operation string, removed int64) {
	c.Track("cache_maintenance", map[string]interface{}{
		"operation": operation,
		"removed":   removed,
	})
}

func (c *posthogClient) TrackGraphSeeded(nodeCount, edgeCount int) {
	c.Track("graph_seeded", map[string]interface{}{
		"node_count": nodeCount,
		"edge_count": edgeCount,
	})
}

func (n *noopClient) Track(string, map[string]interface{}) {}
func (n *noopClient) Close()                               {}
func (n *noopClient) TrackMatchPerformed(string, int, int, bool, int64) {
}
func (n *noopClient) TrackBatchMatch(string, int, int)        {}
func (n *noopClient) TrackFeedbackSubmitted(int, bool)        {}
func (n *noopClient) TrackCacheMaintenance(string, int64)     {}
func (n *noopClient) TrackGraphSeeded(int, int)               {}
