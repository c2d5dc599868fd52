package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// snapshotFile is the on-disk format for candidate pools: plain
// developer and project snapshots, no coupling to any persistence
// layer.
type snapshotFile struct {
	Developers []models.Developer `json:"developers"`
	Projects   []models.Project   `json:"projects"`
}

// loadSnapshots reads a snapshot file and registers its entries with
// the service.
func (a *app) loadSnapshots(ctx context.Context, path string) (*snapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}

	var snaps snapshotFile
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("parse snapshots: %w", err)
	}

	for _, dev := range snaps.Developers {
		if err := a.service.UpsertDeveloper(ctx, dev); err != nil {
			return nil, fmt.Errorf("register developer %s: %w", dev.ID, err)
		}
	}
	for _, project := range snaps.Projects {
		if err := a.service.UpsertProject(ctx, project); err != nil {
			return nil, fmt.Errorf("register project %s: %w", project.ID, err)
		}
	}
	return &snaps, nil
}

// printJSON renders a value as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
