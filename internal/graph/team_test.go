package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalTeam_FullCoverage(t *testing.T) {
	g := seedGraph()

	candidates := []TeamCandidate{
		{ID: "backend", Skills: []string{"python", "django"}},
		{ID: "frontend", Skills: []string{"react", "javascript"}},
		{ID: "generalist", Skills: []string{"python"}},
	}

	result := g.OptimalTeam(candidates, []string{"python", "django", "react"}, 3)

	assert.Equal(t, 1.0, result.Coverage)
	assert.ElementsMatch(t, []string{"python", "django", "react"}, result.CoveredSkills)
	assert.Empty(t, result.UncoveredSkill)
	require.Len(t, result.Members, 2, "two members already cover everything")
	assert.Equal(t, "backend", result.Members[0].ID, "widest coverage picked first")
}

func TestOptimalTeam_SizeLimit(t *testing.T) {
	g := seedGraph()

	candidates := []TeamCandidate{
		{ID: "a", Skills: []string{"python"}},
		{ID: "b", Skills: []string{"django"}},
		{ID: "c", Skills: []string{"react"}},
	}

	result := g.OptimalTeam(candidates, []string{"python", "django", "react"}, 2)

	assert.Len(t, result.Members, 2)
	assert.Less(t, result.Coverage, 1.0)
	assert.Len(t, result.UncoveredSkill, 1)
}

func TestOptimalTeam_UncoverableSkills(t *testing.T) {
	g := seedGraph()

	candidates := []TeamCandidate{
		{ID: "a", Skills: []string{"python"}},
	}

	result := g.OptimalTeam(candidates, []string{"python", "cobol"}, 3)

	assert.Equal(t, 0.5, result.Coverage)
	assert.Equal(t, []string{"cobol"}, result.UncoveredSkill)
}

func TestOptimalTeam_LowerIDTieBreak(t *testing.T) {
	g := seedGraph()

	// Identical candidates; the lower id must win.
	candidates := []TeamCandidate{
		{ID: "zeta", Skills: []string{"python", "react"}},
		{ID: "alpha", Skills: []string{"python", "react"}},
	}

	result := g.OptimalTeam(candidates, []string{"python", "react"}, 1)

	require.Len(t, result.Members, 1)
	assert.Equal(t, "alpha", result.Members[0].ID)
}

func TestOptimalTeam_NoUsefulCandidates(t *testing.T) {
	g := seedGraph()

	candidates := []TeamCandidate{
		{ID: "a", Skills: []string{"cobol"}},
	}

	result := g.OptimalTeam(candidates, []string{"rust"}, 3)

	assert.Empty(t, result.Members)
	assert.Zero(t, result.Coverage)
}

func TestOptimalTeam_EmptyInputs(t *testing.T) {
	g := seedGraph()

	assert.Empty(t, g.OptimalTeam(nil, []string{"python"}, 3).Members)
	assert.Empty(t, g.OptimalTeam([]TeamCandidate{{ID: "a", Skills: []string{"python"}}}, nil, 3).Members)
	assert.Empty(t, g.OptimalTeam([]TeamCandidate{{ID: "a", Skills: []string{"python"}}}, []string{"python"}, 0).Members)
}

func TestOptimalTeam_MemberCoversRecorded(t *testing.T) {
	g := seedGraph()

	candidates := []TeamCandidate{
		{ID: "backend", Skills: []string{"python", "django"}},
		{ID: "frontend", Skills: []string{"react"}},
	}

	result := g.OptimalTeam(candidates, []string{"python", "django", "react"}, 3)

	require.Len(t, result.Members, 2)
	assert.ElementsMatch(t, []string{"python", "django"}, result.Members[0].Covers)
	assert.Contains(t, result.Members[1].Covers, "react")
}
