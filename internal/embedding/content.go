package embedding

import (
	"fmt"
	"strings"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// NormalizeText case-folds and collapses whitespace so that trivially
// different spellings of the same text share one cache key.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// SkillsContent builds the skills-side embedding text for a developer.
// The skill list is repeated for emphasis.
func SkillsContent(dev *models.Developer) string {
	skills := strings.Join(dev.Skills, ", ")
	parts := []string{skills, skills}
	if dev.ExperienceLevel != "" {
		parts = append(parts, dev.ExperienceLevel+" developer")
	}
	return strings.Join(parts, "\n\n")
}

// ExperienceContent builds the experience-side embedding text for a
// developer.
func ExperienceContent(dev *models.Developer) string {
	var parts []string
	if dev.Bio != "" {
		parts = append(parts, dev.Bio)
	}
	if dev.ExperienceLevel != "" {
		parts = append(parts, fmt.Sprintf("%s level, %.0f years of experience", dev.ExperienceLevel, dev.ExperienceYears))
	}
	if len(dev.Skills) > 0 {
		parts = append(parts, strings.Join(dev.Skills, ", "))
	}
	return strings.Join(parts, "\n\n")
}

// DescriptionContent builds the description-side embedding text for a
// project. The title is repeated for emphasis.
func DescriptionContent(project *models.Project) string {
	var parts []string
	if project.Title != "" {
		parts = append(parts, project.Title, project.Title)
	}
	if project.Description != "" {
		parts = append(parts, project.Description)
	}
	return strings.Join(parts, "\n\n")
}

// RequirementsContent builds the requirements-side embedding text for a
// project.
func RequirementsContent(project *models.Project) string {
	var parts []string
	if len(project.RequiredSkills) > 0 {
		skills := strings.Join(project.RequiredSkills, ", ")
		parts = append(parts, skills, skills)
	}
	if project.Requirements != "" {
		parts = append(parts, project.Requirements)
	}
	return strings.Join(parts, "\n\n")
}

// TruncateToTokens truncates content to approximate token limit.
// Uses ~4 chars per token as rough estimate.
func TruncateToTokens(content string, maxTokens int) string {
	maxChars := maxTokens * 4
	if len(content) <= maxChars {
		return content
	}
	return content[:maxChars]
}
