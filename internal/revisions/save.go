package revisions

import (
	"strings"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/identity"
	"github.com/google/uuid"
)

// savePlan is the set of rows a store must persist for one save.
type savePlan struct {
	result    *SaveResult
	canonical []*CanonicalRow
}

func planCreate(input CreateItemInput, now time.Time) (*ContentItem, *Revision, *CanonicalRow, error) {
	if strings.TrimSpace(input.ContentType) == "" {
		return nil, nil, nil, ErrContentTypeRequired
	}
	langcode := domain.NormalizeLangcode(input.Langcode)
	if langcode == "" {
		return nil, nil, nil, ErrLangcodeRequired
	}
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return nil, nil, nil, ErrLabelRequired
	}
	id := input.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	state := domain.NormalizeModerationState(string(input.ModerationState))

	item := &ContentItem{
		ID:                id,
		ContentType:       strings.TrimSpace(input.ContentType),
		OriginalLangcode:  langcode,
		DefaultRevisionID: 1,
		LatestRevisionID:  1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	revision := &Revision{
		ID:         identity.RevisionUUID(id, 1),
		ContentID:  id,
		RevisionID: 1,
		CreatedBy:  input.CreatedBy,
		LogMessage: input.LogMessage,
		CreatedAt:  now,
		Translations: map[string]*Translation{
			langcode: {
				ID:              identity.TranslationUUID(id, 1, langcode),
				ContentID:       id,
				RevisionID:      1,
				Langcode:        langcode,
				Label:           label,
				SourceLangcode:  domain.LangcodeNotSpecified,
				ModerationState: state,
				AuthorID:        input.AuthorID,
				Affected:        true,
				CreatedAt:       now,
				UpdatedAt:       now,
			},
		},
	}
	row := canonicalRowFor(item, revision, revision.Translations[langcode], now)
	return item, revision, row, nil
}

// planSave applies input to copies of item and base. existing holds the
// item's canonical rows keyed by langcode. The default pointer only moves
// forward, to a revision where a translation becomes published. A canonical
// row follows its own language: other languages keep their rows when the
// default moves.
func planSave(item *ContentItem, base *Revision, existing map[string]*CanonicalRow, input SaveTranslationInput, now time.Time) (*savePlan, error) {
	langcode := domain.NormalizeLangcode(input.Langcode)
	if langcode == "" {
		return nil, ErrLangcodeRequired
	}

	nextItem := cloneItem(item)
	revision := cloneRevision(base)
	newRevision := input.CreateNewRevision

	if newRevision {
		revisionID := nextItem.LatestRevisionID + 1
		revision.RevisionID = revisionID
		revision.ID = identity.RevisionUUID(nextItem.ID, revisionID)
		revision.CreatedAt = now
		revision.CreatedBy = input.CreatedBy
		revision.LogMessage = input.LogMessage
		for code, tr := range revision.Translations {
			tr.ID = identity.TranslationUUID(nextItem.ID, revisionID, code)
			tr.RevisionID = revisionID
			tr.Affected = false
		}
		nextItem.LatestRevisionID = revisionID
	} else if strings.TrimSpace(input.LogMessage) != "" {
		revision.LogMessage = input.LogMessage
	}

	tr, exists := revision.Translations[langcode]
	previous := domain.ModerationState("")
	if !exists {
		created, err := newTranslation(revision, langcode, input.Fields, now)
		if err != nil {
			return nil, err
		}
		tr = created
		revision.Translations[langcode] = tr
	} else {
		previous = tr.ModerationState
		applyFields(tr, input.Fields)
	}
	tr.Affected = true
	tr.UpdatedAt = now

	defaultChanged := false
	if tr.IsPublished() && revision.RevisionID > nextItem.DefaultRevisionID {
		nextItem.DefaultRevisionID = revision.RevisionID
		defaultChanged = true
	}
	nextItem.UpdatedAt = now

	plan := &savePlan{
		result: &SaveResult{
			Item:               nextItem,
			Revision:           revision,
			Langcode:           langcode,
			PreviousState:      previous,
			CurrentState:       tr.ModerationState,
			TranslationCreated: !exists,
			NewRevision:        newRevision,
		},
	}

	isDefault := nextItem.IsDefaultRevision(revision.RevisionID)
	if projectsCanonical(existing[langcode], revision.RevisionID, tr, isDefault) {
		plan.canonical = append(plan.canonical, canonicalRowFor(nextItem, revision, tr, now))
	}
	if defaultChanged {
		for _, code := range revision.Langcodes() {
			if code == langcode || existing[code] != nil {
				continue
			}
			plan.canonical = append(plan.canonical, canonicalRowFor(nextItem, revision, revision.Translations[code], now))
		}
	}
	return plan, nil
}

// projectsCanonical reports whether a save of tr on revisionID replaces the
// language's canonical row. Rows never move to an older revision, and a
// published row only gives way to a newer publish or to edits of its own
// revision.
func projectsCanonical(row *CanonicalRow, revisionID int64, tr *Translation, isDefault bool) bool {
	if row == nil {
		return isDefault || tr.IsPublished()
	}
	switch {
	case revisionID == row.RevisionID:
		return true
	case revisionID < row.RevisionID:
		return false
	case tr.IsPublished():
		return true
	default:
		return isDefault && !domain.IsPublished(row.ModerationState)
	}
}

func newTranslation(revision *Revision, langcode string, fields TranslationFields, now time.Time) (*Translation, error) {
	source := ""
	if fields.SourceLangcode != nil {
		source = domain.NormalizeLangcode(*fields.SourceLangcode)
	}
	if source == "" {
		if originals := revision.Originals(); len(originals) > 0 {
			source = originals[0]
		}
	}
	label := ""
	if fields.Label != nil {
		label = strings.TrimSpace(*fields.Label)
	}
	if label == "" {
		sourceTr, ok := revision.Translation(source)
		if !ok {
			return nil, ErrSourceMissing
		}
		label = sourceTr.Label
	}
	if source == "" {
		source = domain.LangcodeNotSpecified
	}

	tr := &Translation{
		ID:              identity.TranslationUUID(revision.ContentID, revision.RevisionID, langcode),
		ContentID:       revision.ContentID,
		RevisionID:      revision.RevisionID,
		Langcode:        langcode,
		Label:           label,
		SourceLangcode:  source,
		ModerationState: domain.ModerationStateDraft,
		CreatedAt:       now,
	}
	applyFields(tr, TranslationFields{
		ModerationState: fields.ModerationState,
		Outdated:        fields.Outdated,
		AuthorID:        fields.AuthorID,
	})
	return tr, nil
}

func applyFields(tr *Translation, fields TranslationFields) {
	if fields.Label != nil {
		if label := strings.TrimSpace(*fields.Label); label != "" {
			tr.Label = label
		}
	}
	if fields.SourceLangcode != nil {
		source := domain.NormalizeLangcode(*fields.SourceLangcode)
		if source == "" {
			source = domain.LangcodeNotSpecified
		}
		tr.SourceLangcode = source
	}
	if fields.ModerationState != nil {
		tr.ModerationState = domain.NormalizeModerationState(string(*fields.ModerationState))
	}
	if fields.Outdated != nil {
		tr.Outdated = *fields.Outdated
	}
	if fields.AuthorID != nil {
		tr.AuthorID = strings.TrimSpace(*fields.AuthorID)
	}
}

func canonicalRowFor(item *ContentItem, revision *Revision, tr *Translation, now time.Time) *CanonicalRow {
	return &CanonicalRow{
		ID:              identity.CanonicalUUID(item.ID, tr.Langcode),
		ContentID:       item.ID,
		Langcode:        tr.Langcode,
		RevisionID:      revision.RevisionID,
		Label:           tr.Label,
		ModerationState: tr.ModerationState,
		Status:          domain.PublishedStatus(tr.ModerationState),
		DefaultLangcode: tr.Langcode == item.OriginalLangcode,
		UpdatedAt:       now,
	}
}

// latestFor picks the revision a language was last edited in. revisions must
// be sorted newest first.
func latestFor(revisions []*Revision, langcode string) *Revision {
	var fallback *Revision
	for _, revision := range revisions {
		tr, ok := revision.Translation(langcode)
		if !ok {
			continue
		}
		if tr.Affected {
			return revision
		}
		if fallback == nil {
			fallback = revision
		}
	}
	return fallback
}

func cloneItem(item *ContentItem) *ContentItem {
	if item == nil {
		return nil
	}
	copied := *item
	return &copied
}

func cloneRevision(revision *Revision) *Revision {
	if revision == nil {
		return nil
	}
	copied := *revision
	copied.Translations = make(map[string]*Translation, len(revision.Translations))
	for code, tr := range revision.Translations {
		copied.Translations[code] = cloneTranslation(tr)
	}
	return &copied
}

func cloneTranslation(tr *Translation) *Translation {
	if tr == nil {
		return nil
	}
	copied := *tr
	return &copied
}

func cloneCanonical(row *CanonicalRow) *CanonicalRow {
	if row == nil {
		return nil
	}
	copied := *row
	return &copied
}
