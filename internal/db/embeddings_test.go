package db

import (
	"testing"

	"github.com/asteroid-belt/devmatch/internal/models"
)

func testEmbeddingRow(entityID string, vec []float32) *models.Embedding {
	row := &models.Embedding{
		EntityType:   models.EntityDeveloper,
		EntityID:     entityID,
		ModelVersion: "test-model-v1",
		ContentHash:  "hash-" + entityID,
	}
	row.SetVector(vec)
	return row
}

func TestPutGetEmbedding(t *testing.T) {
	db := testDB(t)

	want := []float32{0.1, 0.2, 0.3}
	if err := db.PutEmbedding(testEmbeddingRow("d1", want)); err != nil {
		t.Fatalf("PutEmbedding() error = %v", err)
	}

	row, err := db.GetEmbedding(models.EntityDeveloper, "d1", "test-model-v1")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if row == nil {
		t.Fatal("GetEmbedding() = nil, want row")
	}

	got := row.GetVector()
	if len(got) != len(want) {
		t.Fatalf("vector length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vector[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if row.Dimension != 3 {
		t.Errorf("Dimension = %d, want 3", row.Dimension)
	}
}

func TestGetEmbedding_AbsentReturnsNil(t *testing.T) {
	db := testDB(t)

	row, err := db.GetEmbedding(models.EntityDeveloper, "missing", "test-model-v1")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if row != nil {
		t.Errorf("GetEmbedding() = %+v, want nil", row)
	}
}

func TestPutEmbedding_SupersedesNotMutates(t *testing.T) {
	db := testDB(t)

	if err := db.PutEmbedding(testEmbeddingRow("d1", []float32{1, 0, 0})); err != nil {
		t.Fatalf("PutEmbedding() error = %v", err)
	}
	if err := db.PutEmbedding(testEmbeddingRow("d1", []float32{0, 1, 0})); err != nil {
		t.Fatalf("PutEmbedding() error = %v", err)
	}

	// Current row is the newer vector.
	row, err := db.GetEmbedding(models.EntityDeveloper, "d1", "test-model-v1")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if row == nil || row.GetVector()[1] != 1 {
		t.Errorf("current row = %+v, want newer vector", row)
	}

	// Old row survives, marked superseded.
	var total, superseded int64
	if err := db.Model(&models.Embedding{}).Count(&total).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if err := db.Model(&models.Embedding{}).Where("superseded = ?", true).Count(&superseded).Error; err != nil {
		t.Fatalf("count error = %v", err)
	}
	if total != 2 {
		t.Errorf("total rows = %d, want 2 (append, never mutate)", total)
	}
	if superseded != 1 {
		t.Errorf("superseded rows = %d, want 1", superseded)
	}
}

func TestGetEmbedding_ModelVersionIsolated(t *testing.T) {
	db := testDB(t)

	row := testEmbeddingRow("d1", []float32{1, 2, 3})
	if err := db.PutEmbedding(row); err != nil {
		t.Fatalf("PutEmbedding() error = %v", err)
	}

	other, err := db.GetEmbedding(models.EntityDeveloper, "d1", "different-model")
	if err != nil {
		t.Fatalf("GetEmbedding() error = %v", err)
	}
	if other != nil {
		t.Error("embeddings from different model versions must not be served")
	}
}

func TestEmbeddingDimension(t *testing.T) {
	db := testDB(t)

	dim, err := db.EmbeddingDimension("test-model-v1")
	if err != nil {
		t.Fatalf("EmbeddingDimension() error = %v", err)
	}
	if dim != 0 {
		t.Errorf("EmbeddingDimension() = %d, want 0 before any rows", dim)
	}

	if err := db.PutEmbedding(testEmbeddingRow("d1", []float32{1, 2, 3, 4})); err != nil {
		t.Fatalf("PutEmbedding() error = %v", err)
	}

	dim, err = db.EmbeddingDimension("test-model-v1")
	if err != nil {
		t.Fatalf("EmbeddingDimension() error = %v", err)
	}
	if dim != 4 {
		t.Errorf("EmbeddingDimension() = %d, want 4", dim)
	}
}
