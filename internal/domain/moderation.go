package domain

import "strings"

// ModerationState represents the editorial lifecycle of a single translation.
type ModerationState string

const (
	ModerationStateDraft       ModerationState = "draft"
	ModerationStateNeedsReview ModerationState = "needs_review"
	ModerationStatePublished   ModerationState = "published"
	ModerationStateArchived    ModerationState = "archived"
)

var moderationLabels = map[ModerationState]string{
	ModerationStateDraft:       "Draft",
	ModerationStateNeedsReview: "Needs Review",
	ModerationStatePublished:   "Published",
	ModerationStateArchived:    "Archived",
}

// NormalizeModerationState coerces arbitrary input into the canonical lower
// snake case form. Empty input resolves to draft.
func NormalizeModerationState(input string) ModerationState {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return ModerationStateDraft
	}
	trimmed = strings.ReplaceAll(trimmed, " ", "_")
	trimmed = strings.ReplaceAll(trimmed, "-", "_")
	return ModerationState(trimmed)
}

// IsPublished reports whether the state maps to a published translation.
func IsPublished(state ModerationState) bool {
	return NormalizeModerationState(string(state)) == ModerationStatePublished
}

// ModerationLabel returns the display label for a known state, falling back
// to a title-cased rendering of the raw value.
func ModerationLabel(state ModerationState) string {
	normalized := NormalizeModerationState(string(state))
	if label, ok := moderationLabels[normalized]; ok {
		return label
	}
	parts := strings.Split(string(normalized), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// PublishedStatus returns the canonical row status code for a state.
func PublishedStatus(state ModerationState) int {
	if IsPublished(state) {
		return 1
	}
	return 0
}
