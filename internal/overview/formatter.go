package overview

import (
	"strings"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

const (
	statusPublished     = "Published"
	statusNotPublished  = "Not published"
	statusNotTranslated = "Not translated"
	outdatedMarker      = "outdated"
	notApplicable       = "n/a"
	originalSuffix      = " (Original language)"
)

// StatusFormatter renders the moderation label of a translation followed by
// an outdated marker. Translations without a moderation state fall back to
// the published flag.
type StatusFormatter struct{}

var _ interfaces.ModerationStateFormatter = StatusFormatter{}

// NewStatusFormatter returns the default moderation state formatter.
func NewStatusFormatter() StatusFormatter {
	return StatusFormatter{}
}

// Render implements interfaces.ModerationStateFormatter.
func (StatusFormatter) Render(state string, published bool, outdated bool) string {
	label := ""
	if strings.TrimSpace(state) != "" {
		label = domain.ModerationLabel(domain.NormalizeModerationState(state))
	}
	if label == "" {
		label = statusNotPublished
		if published {
			label = statusPublished
		}
	}
	if outdated {
		return label + " " + outdatedMarker
	}
	return label
}
