package workflow

import (
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

const (
	// EntityTypeTranslation identifies content translations for workflow transitions.
	EntityTypeTranslation = "content_translation"
)

// TranslationContext captures metadata about a translation whose moderation
// state is being changed.
type TranslationContext struct {
	ContentID       uuid.UUID
	ContentType     string
	RevisionID      int64
	Langcode        string
	SourceLangcode  string
	ModerationState domain.ModerationState
	Outdated        bool
	TriggeredBy     string
	SyncedAt        *time.Time
}

// Metadata renders the context as a map suitable for workflow metadata payloads.
func (c TranslationContext) Metadata() map[string]any {
	payload := map[string]any{
		"content_id":       c.ContentID.String(),
		"revision_id":      c.RevisionID,
		"langcode":         c.Langcode,
		"moderation_state": string(c.ModerationState),
		"outdated":         c.Outdated,
	}
	if c.ContentType != "" {
		payload["content_type"] = c.ContentType
	}
	if c.SourceLangcode != "" && !domain.IsUnspecifiedSource(c.SourceLangcode) {
		payload["source_langcode"] = c.SourceLangcode
	}
	if c.TriggeredBy != "" {
		payload["triggered_by"] = c.TriggeredBy
	}
	if c.SyncedAt != nil {
		payload["synced_at"] = c.SyncedAt.UTC().Format(time.RFC3339)
	}
	return payload
}
