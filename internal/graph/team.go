package graph

import "sort"

// TeamCandidate is a candidate considered for team assembly.
type TeamCandidate struct {
	ID     string
	Skills []string
}

// TeamMember is a selected candidate with the skills they contribute.
type TeamMember struct {
	ID            string   `json:"id"`
	Compatibility float64  `json:"compatibility"`
	Covers        []string `json:"covers"`
}

// TeamResult is the outcome of greedy team assembly.
type TeamResult struct {
	Members        []TeamMember `json:"members"`
	CoveredSkills  []string     `json:"covered_skills"`
	UncoveredSkill []string     `json:"uncovered_skills"`
	Coverage       float64      `json:"coverage"`
}

// OptimalTeam assembles a team by greedy weighted set cover: it
// repeatedly picks the candidate whose compatibility covers the most
// currently-uncovered required skills, weighted by per-skill score.
// Ties break by higher compatibility, then lower candidate id.
// Selection stops at teamSizeLimit or full coverage.
func (g *Graph) OptimalTeam(candidates []TeamCandidate, requiredSkills []string, teamSizeLimit int) *TeamResult {
	result := &TeamResult{
		Members:        []TeamMember{},
		CoveredSkills:  []string{},
		UncoveredSkill: []string{},
	}
	if teamSizeLimit <= 0 || len(requiredSkills) == 0 {
		return result
	}

	uncovered := make(map[string]bool, len(requiredSkills))
	for _, s := range requiredSkills {
		uncovered[Normalize(s)] = true
	}

	remaining := make([]TeamCandidate, len(candidates))
	copy(remaining, candidates)
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].ID < remaining[j].ID })

	for len(result.Members) < teamSizeLimit && len(uncovered) > 0 && len(remaining) > 0 {
		bestIdx := -1
		var bestGain, bestCompat float64
		var bestCovers []string

		for i, cand := range remaining {
			required := make([]string, 0, len(uncovered))
			for s := range uncovered {
				required = append(required, s)
			}
			sort.Strings(required)

			compat := g.Compatibility(cand.Skills, required, DefaultMaxDepth)

			var gain float64
			var covers []string
			for _, bd := range compat.Breakdown {
				if bd.Score > 0 {
					gain += bd.Score
					covers = append(covers, bd.Skill)
				}
			}
			if gain == 0 {
				continue
			}

			better := gain > bestGain ||
				(gain == bestGain && compat.TotalScore > bestCompat)
			// remaining is id-sorted, so the first of equal candidates
			// wins the lower-id tie-break.
			if better {
				bestIdx, bestGain, bestCompat, bestCovers = i, gain, compat.TotalScore, covers
			}
		}

		if bestIdx < 0 {
			break
		}

		picked := remaining[bestIdx]
		result.Members = append(result.Members, TeamMember{
			ID:            picked.ID,
			Compatibility: bestCompat,
			Covers:        bestCovers,
		})
		for _, s := range bestCovers {
			if uncovered[s] {
				delete(uncovered, s)
				result.CoveredSkills = append(result.CoveredSkills, s)
			}
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	for s := range uncovered {
		result.UncoveredSkill = append(result.UncoveredSkill, s)
	}
	sort.Strings(result.CoveredSkills)
	sort.Strings(result.UncoveredSkill)
	if n := len(requiredSkills); n > 0 {
		result.Coverage = float64(len(result.CoveredSkills)) / float64(n)
	}
	return result
}
