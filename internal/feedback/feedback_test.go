package feedback

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/devmatch/internal/cache"
	"github.com/asteroid-belt/devmatch/internal/db"
)

// recordingAdjuster captures popularity bumps.
type recordingAdjuster struct {
	mu    sync.Mutex
	bumps map[string]float64
}

func (r *recordingAdjuster) BumpPopularity(skill string, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bumps == nil {
		r.bumps = map[string]float64{}
	}
	r.bumps[skill] += delta
	return nil
}

func testFeedback(t *testing.T) (*Service, *db.DB, *cache.Cache, *recordingAdjuster) {
	t.Helper()

	database, err := db.New(db.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	matchCache := cache.New(database, cache.DefaultConfig(), nil)
	adjuster := &recordingAdjuster{}
	return New(database, matchCache, adjuster, nil), database, matchCache, adjuster
}

func TestProvide_AppendsRow(t *testing.T) {
	svc, database, _, _ := testFeedback(t)

	receipt, err := svc.Provide("m1", Input{
		Rating:                    4,
		AccuracySignals:           map[string]bool{"vector": true, "graph": false},
		SuggestedSkillCorrections: []string{"django"},
		CandidateID:               "d1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.FeedbackID)

	row, err := database.LatestFeedbackForMatch("m1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 4, row.Rating)
	assert.Equal(t, "d1", row.CandidateID)
	assert.JSONEq(t, `{"vector":true,"graph":false}`, row.AccuracySignals)
	assert.JSONEq(t, `["django"]`, row.SuggestedSkillCorrections)
}

func TestProvide_RejectsBadInput(t *testing.T) {
	svc, _, _, _ := testFeedback(t)

	_, err := svc.Provide("", Input{Rating: 3})
	assert.Error(t, err, "empty match id")

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Provide("m1", Input{Rating: rating})
		assert.Errorf(t, err, "rating %d must be rejected", rating)
	}
}

func TestProvide_InvalidatesCandidateEntries(t *testing.T) {
	svc, _, matchCache, _ := testFeedback(t)

	params := map[string]any{"project_id": "p1"}
	require.NoError(t, matchCache.Put("developer_matches", params, []byte("x"), []string{"p1", "d1"}, time.Hour))

	receipt, err := svc.Provide("m1", Input{Rating: 2, CandidateID: "d1"})
	require.NoError(t, err)
	assert.True(t, receipt.CacheInvalidated)
	assert.Equal(t, int64(1), receipt.EntriesRemoved)

	_, hit := matchCache.Get("developer_matches", params)
	assert.False(t, hit, "entry referencing the candidate must be gone")
}

func TestProvide_NoCandidateNoInvalidation(t *testing.T) {
	svc, _, matchCache, _ := testFeedback(t)

	params := map[string]any{"project_id": "p1"}
	require.NoError(t, matchCache.Put("developer_matches", params, []byte("x"), []string{"p1", "d1"}, time.Hour))

	receipt, err := svc.Provide("m1", Input{Rating: 5})
	require.NoError(t, err)
	assert.False(t, receipt.CacheInvalidated)

	_, hit := matchCache.Get("developer_matches", params)
	assert.True(t, hit)
}

func TestRecalculateConfidence_PenalizesCorrectedSkills(t *testing.T) {
	svc, database, _, adjuster := testFeedback(t)

	_, err := svc.Provide("m1", Input{
		Rating:                    1,
		SuggestedSkillCorrections: []string{"django"},
		CandidateID:               "d1",
	})
	require.NoError(t, err)

	updated, err := svc.RecalculateConfidence(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	snap, err := database.LatestSkillConfidence("django")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 1, snap.Version)
	// Baseline 0.5 minus 0.02*(5+1-1) for a rating-1 correction.
	assert.InDelta(t, 0.4, snap.Confidence, 1e-9)

	adjuster.mu.Lock()
	defer adjuster.mu.Unlock()
	assert.Negative(t, adjuster.bumps["django"])
}

func TestRecalculateConfidence_VersionsAccumulate(t *testing.T) {
	svc, database, _, _ := testFeedback(t)

	for i := 0; i < 2; i++ {
		_, err := svc.Provide("m1", Input{
			Rating:                    2,
			SuggestedSkillCorrections: []string{"react"},
		})
		require.NoError(t, err)

		_, err = svc.RecalculateConfidence(24 * time.Hour)
		require.NoError(t, err)
	}

	snap, err := database.LatestSkillConfidence("react")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 2, snap.Version, "each pass appends a new version")
	assert.Less(t, snap.Confidence, 0.5)
}

func TestRecalculateConfidence_IgnoresOldFeedback(t *testing.T) {
	svc, _, _, _ := testFeedback(t)

	_, err := svc.Provide("m1", Input{
		Rating:                    1,
		SuggestedSkillCorrections: []string{"go"},
	})
	require.NoError(t, err)

	// A negative window puts the cutoff in the future, excluding
	// everything already written.
	updated, err := svc.RecalculateConfidence(-time.Hour)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestRecalculateConfidence_NoCorrectionsNoUpdates(t *testing.T) {
	svc, _, _, _ := testFeedback(t)

	_, err := svc.Provide("m1", Input{Rating: 5})
	require.NoError(t, err)

	updated, err := svc.RecalculateConfidence(24 * time.Hour)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
