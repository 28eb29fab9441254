package revisions

import (
	"sort"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ContentItem is the stable identity of a revisioned, translatable record.
type ContentItem struct {
	bun.BaseModel `bun:"table:content_items,alias:ci"`

	ID                uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ContentType       string    `bun:"content_type,notnull" json:"content_type"`
	OriginalLangcode  string    `bun:"original_langcode,notnull" json:"original_langcode"`
	DefaultRevisionID int64     `bun:"default_revision_id,notnull" json:"default_revision_id"`
	LatestRevisionID  int64     `bun:"latest_revision_id,notnull" json:"latest_revision_id"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// CurrentRevisionID is the newest revision of the item, which may be a
// forward draft ahead of the default revision.
func (c *ContentItem) CurrentRevisionID() int64 {
	if c == nil {
		return 0
	}
	return c.LatestRevisionID
}

// IsDefaultRevision reports whether revisionID is the default revision.
func (c *ContentItem) IsDefaultRevision(revisionID int64) bool {
	return c != nil && c.DefaultRevisionID == revisionID
}

// Revision is an immutable snapshot of a content item across all languages.
type Revision struct {
	bun.BaseModel `bun:"table:content_revisions,alias:cr"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ContentID  uuid.UUID `bun:"content_id,notnull,type:uuid" json:"content_id"`
	RevisionID int64     `bun:"revision_id,notnull" json:"revision_id"`
	CreatedBy  string    `bun:"created_by" json:"created_by"`
	LogMessage string    `bun:"log_message" json:"log_message,omitempty"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Translations map[string]*Translation `bun:"-" json:"translations"`
}

// Translation returns the translation stored for langcode.
func (r *Revision) Translation(langcode string) (*Translation, bool) {
	if r == nil || r.Translations == nil {
		return nil, false
	}
	tr, ok := r.Translations[domain.NormalizeLangcode(langcode)]
	return tr, ok && tr != nil
}

// Langcodes returns the languages present on the revision in lexical order.
func (r *Revision) Langcodes() []string {
	if r == nil {
		return nil
	}
	codes := make([]string, 0, len(r.Translations))
	for code := range r.Translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Originals returns the langcodes of every translation without a source language.
func (r *Revision) Originals() []string {
	var originals []string
	for _, code := range r.Langcodes() {
		if r.Translations[code].IsOriginal() {
			originals = append(originals, code)
		}
	}
	return originals
}

// Translation is the language variant of a revision.
type Translation struct {
	bun.BaseModel `bun:"table:content_revision_translations,alias:crt"`

	ID              uuid.UUID              `bun:",pk,type:uuid" json:"id"`
	ContentID       uuid.UUID              `bun:"content_id,notnull,type:uuid" json:"content_id"`
	RevisionID      int64                  `bun:"revision_id,notnull" json:"revision_id"`
	Langcode        string                 `bun:"langcode,notnull" json:"langcode"`
	Label           string                 `bun:"label" json:"label"`
	SourceLangcode  string                 `bun:"source_langcode,notnull" json:"source_langcode"`
	ModerationState domain.ModerationState `bun:"moderation_state,notnull" json:"moderation_state"`
	Outdated        bool                   `bun:"outdated,notnull" json:"outdated"`
	AuthorID        string                 `bun:"author_id" json:"author_id,omitempty"`
	// Affected marks the languages that changed when the revision was saved.
	Affected  bool      `bun:"revision_translation_affected,notnull" json:"revision_translation_affected"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// IsOriginal reports whether the translation was authored without a source.
func (t *Translation) IsOriginal() bool {
	return t != nil && domain.IsUnspecifiedSource(t.SourceLangcode)
}

// IsPublished derives publication from the moderation state.
func (t *Translation) IsPublished() bool {
	return t != nil && domain.IsPublished(t.ModerationState)
}

// CanonicalRow is the per-language projection of the default revision that
// readers use when they do not ask for a specific revision.
type CanonicalRow struct {
	bun.BaseModel `bun:"table:content_field_data,alias:cfd"`

	ID              uuid.UUID              `bun:",pk,type:uuid" json:"id"`
	ContentID       uuid.UUID              `bun:"content_id,notnull,type:uuid" json:"content_id"`
	Langcode        string                 `bun:"langcode,notnull" json:"langcode"`
	RevisionID      int64                  `bun:"revision_id,notnull" json:"revision_id"`
	Label           string                 `bun:"label" json:"label"`
	ModerationState domain.ModerationState `bun:"moderation_state,notnull" json:"moderation_state"`
	Status          int                    `bun:"status,notnull" json:"status"`
	DefaultLangcode bool                   `bun:"default_langcode,notnull" json:"default_langcode"`
	UpdatedAt       time.Time              `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
