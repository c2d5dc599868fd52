package db

import (
	"testing"
	"time"

	"github.com/asteroid-belt/devmatch/internal/models"
)

func testCacheEntry(fp, searchType, refs string, ttl time.Duration) *models.CacheEntry {
	now := time.Now()
	return &models.CacheEntry{
		Fingerprint:  fp,
		SearchType:   searchType,
		Payload:      []byte(`{"candidates":[]}`),
		EntityRefs:   refs,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
}

func TestPutGetCacheEntry(t *testing.T) {
	db := testDB(t)

	entry := testCacheEntry("fp1", "developer_matches", "p1,d1,d2", time.Hour)
	if err := db.PutCacheEntry(entry); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	got, err := db.GetCacheEntry("fp1")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetCacheEntry() = nil, want entry")
	}
	if got.SearchType != "developer_matches" {
		t.Errorf("SearchType = %q, want developer_matches", got.SearchType)
	}
	if string(got.Payload) != `{"candidates":[]}` {
		t.Errorf("Payload = %q", got.Payload)
	}
}

func TestGetCacheEntry_AbsentReturnsNil(t *testing.T) {
	db := testDB(t)

	got, err := db.GetCacheEntry("missing")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetCacheEntry() = %+v, want nil", got)
	}
}

func TestPutCacheEntry_UpsertsByFingerprint(t *testing.T) {
	db := testDB(t)

	if err := db.PutCacheEntry(testCacheEntry("fp1", "developer_matches", "p1", time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	update := testCacheEntry("fp1", "developer_matches", "p1,d9", 2*time.Hour)
	update.Payload = []byte(`{"candidates":[{"candidate_id":"d9"}]}`)
	if err := db.PutCacheEntry(update); err != nil {
		t.Fatalf("PutCacheEntry() update error = %v", err)
	}

	var count int64
	if err := db.Model(&models.CacheEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if count != 1 {
		t.Errorf("entries = %d, want 1 (upsert)", count)
	}

	got, err := db.GetCacheEntry("fp1")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if got.EntityRefs != "p1,d9" {
		t.Errorf("EntityRefs = %q, want p1,d9", got.EntityRefs)
	}
}

func TestTouchCacheEntry(t *testing.T) {
	db := testDB(t)

	if err := db.PutCacheEntry(testCacheEntry("fp1", "developer_matches", "p1", time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := db.TouchCacheEntry("fp1", time.Now()); err != nil {
			t.Fatalf("TouchCacheEntry() error = %v", err)
		}
	}

	got, err := db.GetCacheEntry("fp1")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if got.HitCount != 3 {
		t.Errorf("HitCount = %d, want 3", got.HitCount)
	}
}

func TestDeleteCacheEntriesByRef(t *testing.T) {
	db := testDB(t)

	entries := []*models.CacheEntry{
		testCacheEntry("fp1", "developer_matches", "p1,d1", time.Hour),
		testCacheEntry("fp2", "developer_matches", "p2,d2", time.Hour),
		testCacheEntry("fp3", "project_matches", "d1,p2", time.Hour),
	}
	for _, entry := range entries {
		if err := db.PutCacheEntry(entry); err != nil {
			t.Fatalf("PutCacheEntry() error = %v", err)
		}
	}

	removed, err := db.DeleteCacheEntriesByRef("d1")
	if err != nil {
		t.Fatalf("DeleteCacheEntriesByRef() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	survivor, err := db.GetCacheEntry("fp2")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if survivor == nil {
		t.Error("unrelated entry was removed")
	}
}

func TestDeleteCacheEntriesByRef_WholeIDOnly(t *testing.T) {
	db := testDB(t)

	entries := []*models.CacheEntry{
		testCacheEntry("fp1", "developer_matches", "p1,dev1", time.Hour),
		testCacheEntry("fp2", "developer_matches", "p1,dev10", time.Hour),
		testCacheEntry("fp3", "developer_matches", "dev1", time.Hour),
	}
	for _, entry := range entries {
		if err := db.PutCacheEntry(entry); err != nil {
			t.Fatalf("PutCacheEntry() error = %v", err)
		}
	}

	removed, err := db.DeleteCacheEntriesByRef("dev1")
	if err != nil {
		t.Fatalf("DeleteCacheEntriesByRef() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	survivor, err := db.GetCacheEntry("fp2")
	if err != nil {
		t.Fatalf("GetCacheEntry() error = %v", err)
	}
	if survivor == nil {
		t.Error("entry for dev10 was removed by a dev1 invalidation")
	}
}

func TestDeleteExpiredCacheEntries(t *testing.T) {
	db := testDB(t)

	if err := db.PutCacheEntry(testCacheEntry("old", "developer_matches", "", -time.Minute)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}
	if err := db.PutCacheEntry(testCacheEntry("new", "developer_matches", "", time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	removed, err := db.DeleteExpiredCacheEntries(time.Now())
	if err != nil {
		t.Fatalf("DeleteExpiredCacheEntries() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestDeleteColdCacheEntries(t *testing.T) {
	db := testDB(t)

	cold := testCacheEntry("cold", "developer_matches", "", time.Hour)
	cold.CreatedAt = time.Now().Add(-2 * time.Hour)
	if err := db.PutCacheEntry(cold); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	warm := testCacheEntry("warm", "developer_matches", "", time.Hour)
	warm.CreatedAt = time.Now().Add(-2 * time.Hour)
	if err := db.PutCacheEntry(warm); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}
	// Two hits keep the warm entry above the threshold.
	for i := 0; i < 2; i++ {
		if err := db.TouchCacheEntry("warm", time.Now()); err != nil {
			t.Fatalf("TouchCacheEntry() error = %v", err)
		}
	}

	fresh := testCacheEntry("fresh", "developer_matches", "", time.Hour)
	if err := db.PutCacheEntry(fresh); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}

	removed, err := db.DeleteColdCacheEntries(2, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("DeleteColdCacheEntries() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1 (only the old, unhit entry)", removed)
	}

	if entry, _ := db.GetCacheEntry("cold"); entry != nil {
		t.Error("cold entry survived")
	}
	if entry, _ := db.GetCacheEntry("warm"); entry == nil {
		t.Error("warm entry was evicted")
	}
	if entry, _ := db.GetCacheEntry("fresh"); entry == nil {
		t.Error("fresh entry was evicted")
	}
}

func TestCacheStatistics(t *testing.T) {
	db := testDB(t)

	if err := db.PutCacheEntry(testCacheEntry("fp1", "developer_matches", "", time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}
	if err := db.PutCacheEntry(testCacheEntry("fp2", "developer_matches", "", -time.Minute)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}
	if err := db.PutCacheEntry(testCacheEntry("fp3", "project_matches", "", time.Hour)); err != nil {
		t.Fatalf("PutCacheEntry() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := db.TouchCacheEntry("fp1", time.Now()); err != nil {
			t.Fatalf("TouchCacheEntry() error = %v", err)
		}
	}

	stats, err := db.CacheStatistics(time.Now())
	if err != nil {
		t.Fatalf("CacheStatistics() error = %v", err)
	}

	if stats.TotalEntries != 3 {
		t.Errorf("TotalEntries = %d, want 3", stats.TotalEntries)
	}
	if stats.ActiveEntries != 2 {
		t.Errorf("ActiveEntries = %d, want 2", stats.ActiveEntries)
	}
	if stats.ExpiredEntries != 1 {
		t.Errorf("ExpiredEntries = %d, want 1", stats.ExpiredEntries)
	}
	if stats.TotalHits != 4 {
		t.Errorf("TotalHits = %d, want 4", stats.TotalHits)
	}
	if stats.BySearchType["developer_matches"] != 2 {
		t.Errorf("developer_matches count = %d, want 2", stats.BySearchType["developer_matches"])
	}
	if want := 4.0 / 3.0; stats.Efficiency != want {
		t.Errorf("Efficiency = %v, want %v", stats.Efficiency, want)
	}
}
