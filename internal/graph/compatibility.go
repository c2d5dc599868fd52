package graph

// SkillScore is the per-required-skill component of a compatibility
// breakdown.
type SkillScore struct {
	Skill string  `json:"skill"`
	Score float64 `json:"score"`

	// Direct is true when the candidate holds the skill itself.
	Direct bool `json:"direct"`

	// Via names the held skill providing the best indirect path, empty
	// for direct or missing skills.
	Via string `json:"via,omitempty"`
}

// CompatibilityResult is the outcome of scoring a candidate's skills
// against a requirement set.
type CompatibilityResult struct {
	// TotalScore is the mean over required skills; missing skills count
	// as zero. Always within [0,1].
	TotalScore float64 `json:"total_score"`

	Breakdown []SkillScore `json:"breakdown"`

	// MatchedSkills are required skills held directly.
	MatchedSkills []string `json:"matched_skills"`

	// MissingSkills are required skills with no direct match.
	MissingSkills []string `json:"missing_skills"`
}

// Compatibility scores how well candidateSkills cover requiredSkills.
// Each required skill scores 1.0 if directly held, otherwise the best
// decayed path weight from the required skill to any held skill within
// maxDepth hops, otherwise 0. Adding a direct skill to the candidate
// can only raise or hold the total for a fixed requirement set.
func (g *Graph) Compatibility(candidateSkills, requiredSkills []string, maxDepth int) *CompatibilityResult {
	result := &CompatibilityResult{
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}
	if len(requiredSkills) == 0 {
		return result
	}

	held := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		held[Normalize(s)] = true
	}

	var sum float64
	for _, required := range requiredSkills {
		req := Normalize(required)

		if held[req] {
			result.Breakdown = append(result.Breakdown, SkillScore{Skill: req, Score: 1.0, Direct: true})
			result.MatchedSkills = append(result.MatchedSkills, req)
			sum += 1.0
			continue
		}

		score := SkillScore{Skill: req}
		for related, weight := range g.RelatedSkills(req, maxDepth) {
			if !held[related] {
				continue
			}
			// Deterministic: on equal weight prefer the lexically
			// smaller skill name.
			if weight > score.Score || (weight == score.Score && score.Via != "" && related < score.Via) {
				score.Score = weight
				score.Via = related
			}
		}

		result.Breakdown = append(result.Breakdown, score)
		result.MissingSkills = append(result.MissingSkills, req)
		sum += score.Score
	}

	result.TotalScore = sum / float64(len(requiredSkills))
	return result
}
