package revisions

import (
	"context"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

// Store is the revisioned storage contract consumed by the overview and the
// moderation sync engine. Implementations are synchronous and fallible;
// callers propagate their errors unchanged.
type Store interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*ContentItem, error)
	GetItem(ctx context.Context, contentID uuid.UUID) (*ContentItem, error)
	// ListRevisions returns every revision with its translations, newest first.
	ListRevisions(ctx context.Context, contentID uuid.UUID) ([]*Revision, error)
	LoadRevision(ctx context.Context, contentID uuid.UUID, revisionID int64) (*Revision, error)
	// LoadCanonical returns the default revision.
	LoadCanonical(ctx context.Context, contentID uuid.UUID) (*Revision, error)
	// LatestRevisionFor returns the newest revision in which langcode was
	// changed, falling back to the newest revision that carries it.
	LatestRevisionFor(ctx context.Context, contentID uuid.UUID, langcode string) (*Revision, error)
	SaveTranslation(ctx context.Context, input SaveTranslationInput) (*SaveResult, error)
	CanonicalRows(ctx context.Context, contentID uuid.UUID) ([]*CanonicalRow, error)
}

// CreateItemInput seeds a content item with its original translation.
type CreateItemInput struct {
	ID              uuid.UUID
	ContentType     string
	Langcode        string
	Label           string
	ModerationState domain.ModerationState
	AuthorID        string
	CreatedBy       string
	LogMessage      string
}

// TranslationFields lists the translation attributes a save may change. Nil
// pointers leave the stored value untouched.
type TranslationFields struct {
	Label           *string
	SourceLangcode  *string
	ModerationState *domain.ModerationState
	Outdated        *bool
	AuthorID        *string
}

// SaveTranslationInput describes a single language save.
type SaveTranslationInput struct {
	ContentID uuid.UUID
	// RevisionID is the base revision. Zero selects the newest revision.
	RevisionID        int64
	Langcode          string
	Fields            TranslationFields
	CreateNewRevision bool
	CreatedBy         string
	LogMessage        string
}

// SaveResult reports what a save persisted.
type SaveResult struct {
	Item          *ContentItem
	Revision      *Revision
	Langcode      string
	PreviousState domain.ModerationState
	CurrentState  domain.ModerationState
	// TranslationCreated is true when the language did not exist on the base revision.
	TranslationCreated bool
	NewRevision        bool
}

// StateChanged reports whether the save moved the translation to a new moderation state.
func (r *SaveResult) StateChanged() bool {
	if r == nil {
		return false
	}
	return r.TranslationCreated || r.PreviousState != r.CurrentState
}

// Translation returns the saved translation.
func (r *SaveResult) Translation() *Translation {
	if r == nil {
		return nil
	}
	tr, _ := r.Revision.Translation(r.Langcode)
	return tr
}

// StringPtr is a convenience for building TranslationFields.
func StringPtr(value string) *string {
	return &value
}

// StatePtr is a convenience for building TranslationFields.
func StatePtr(state domain.ModerationState) *domain.ModerationState {
	return &state
}

// BoolPtr is a convenience for building TranslationFields.
func BoolPtr(value bool) *bool {
	return &value
}
