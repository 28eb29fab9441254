package revisions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

func fixedClock() func() time.Time {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func seedArticle(t *testing.T, store Store, state domain.ModerationState) *ContentItem {
	t.Helper()
	item, err := store.CreateItem(context.Background(), CreateItemInput{
		ContentType:     "article",
		Langcode:        "en",
		Label:           "Hello",
		ModerationState: state,
		AuthorID:        "author-1",
		CreatedBy:       "editor",
		LogMessage:      "initial",
	})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	return item
}

func TestMemoryStoreCreateItemSeedsOriginalTranslation(t *testing.T) {
	store := NewMemoryStore(WithMemoryClock(fixedClock()))
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStateDraft)

	if item.DefaultRevisionID != 1 || item.LatestRevisionID != 1 {
		t.Fatalf("expected revision 1 to be default and latest, got %+v", item)
	}

	revision, err := store.LoadCanonical(ctx, item.ID)
	if err != nil {
		t.Fatalf("LoadCanonical() error = %v", err)
	}
	tr, ok := revision.Translation("en")
	if !ok {
		t.Fatal("expected english translation")
	}
	if !tr.IsOriginal() || tr.SourceLangcode != domain.LangcodeNotSpecified {
		t.Fatalf("expected original translation, got source %q", tr.SourceLangcode)
	}

	rows, err := store.CanonicalRows(ctx, item.ID)
	if err != nil {
		t.Fatalf("CanonicalRows() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Status != 0 || !rows[0].DefaultLangcode {
		t.Fatalf("unexpected canonical rows %+v", rows)
	}
}

func TestMemoryStoreCreateItemValidation(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.CreateItem(context.Background(), CreateItemInput{ContentType: "article", Label: "x"})
	if !errors.Is(err, ErrLangcodeRequired) {
		t.Fatalf("expected ErrLangcodeRequired, got %v", err)
	}
	_, err = store.CreateItem(context.Background(), CreateItemInput{Langcode: "en", Label: "x"})
	if !errors.Is(err, ErrContentTypeRequired) {
		t.Fatalf("expected ErrContentTypeRequired, got %v", err)
	}
}

func TestMemoryStoreNewRevisionCopiesSiblings(t *testing.T) {
	store := NewMemoryStore(WithMemoryClock(fixedClock()))
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStatePublished)

	result, err := store.SaveTranslation(ctx, SaveTranslationInput{
		ContentID:         item.ID,
		RevisionID:        1,
		Langcode:          "fr",
		Fields:            TranslationFields{Label: StringPtr("Bonjour"), SourceLangcode: StringPtr("en")},
		CreateNewRevision: true,
		CreatedBy:         "translator",
	})
	if err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}
	if !result.NewRevision || !result.TranslationCreated || result.Revision.RevisionID != 2 {
		t.Fatalf("unexpected save result %+v", result)
	}
	if result.CurrentState != domain.ModerationStateDraft {
		t.Fatalf("expected new translation to default to draft, got %s", result.CurrentState)
	}
	if result.Item.DefaultRevisionID != 1 || result.Item.LatestRevisionID != 2 {
		t.Fatalf("expected default 1 latest 2, got %+v", result.Item)
	}

	en, ok := result.Revision.Translation("en")
	if !ok || en.Affected {
		t.Fatalf("expected copied english translation without affected flag, got %+v", en)
	}

	latestEN, err := store.LatestRevisionFor(ctx, item.ID, "en")
	if err != nil {
		t.Fatalf("LatestRevisionFor(en) error = %v", err)
	}
	if latestEN.RevisionID != 1 {
		t.Fatalf("expected english latest revision 1, got %d", latestEN.RevisionID)
	}
	latestFR, err := store.LatestRevisionFor(ctx, item.ID, "fr")
	if err != nil {
		t.Fatalf("LatestRevisionFor(fr) error = %v", err)
	}
	if latestFR.RevisionID != 2 {
		t.Fatalf("expected french latest revision 2, got %d", latestFR.RevisionID)
	}

	list, err := store.ListRevisions(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListRevisions() error = %v", err)
	}
	if len(list) != 2 || list[0].RevisionID != 2 || list[1].RevisionID != 1 {
		t.Fatalf("expected revisions newest first, got %d entries", len(list))
	}
	if _, ok := list[1].Translation("fr"); ok {
		t.Fatal("expected revision 1 to remain without french")
	}
}

func TestMemoryStorePublishingMovesDefaultRevision(t *testing.T) {
	store := NewMemoryStore(WithMemoryClock(fixedClock()))
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStatePublished)

	if _, err := store.SaveTranslation(ctx, SaveTranslationInput{
		ContentID:         item.ID,
		Langcode:          "fr",
		Fields:            TranslationFields{Label: StringPtr("Bonjour")},
		CreateNewRevision: true,
	}); err != nil {
		t.Fatalf("SaveTranslation() create error = %v", err)
	}

	rows, _ := store.CanonicalRows(ctx, item.ID)
	if len(rows) != 1 {
		t.Fatalf("expected draft forward revision to leave canonical rows untouched, got %d rows", len(rows))
	}

	result, err := store.SaveTranslation(ctx, SaveTranslationInput{
		ContentID: item.ID,
		Langcode:  "fr",
		Fields:    TranslationFields{ModerationState: StatePtr(domain.ModerationStatePublished)},
	})
	if err != nil {
		t.Fatalf("SaveTranslation() publish error = %v", err)
	}
	if result.NewRevision || result.Revision.RevisionID != 2 {
		t.Fatalf("expected in-place save on revision 2, got %+v", result)
	}
	if result.PreviousState != domain.ModerationStateDraft || !result.StateChanged() {
		t.Fatalf("expected state change from draft, got %s", result.PreviousState)
	}
	if result.Item.DefaultRevisionID != 2 {
		t.Fatalf("expected revision 2 to become default, got %d", result.Item.DefaultRevisionID)
	}

	rows, err = store.CanonicalRows(ctx, item.ID)
	if err != nil {
		t.Fatalf("CanonicalRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected canonical rows for en and fr, got %d", len(rows))
	}
	wantRevision := map[string]int64{"en": 1, "fr": 2}
	for _, row := range rows {
		if row.RevisionID != wantRevision[row.Langcode] || row.Status != 1 {
			t.Fatalf("expected published %s row at revision %d, got %+v", row.Langcode, wantRevision[row.Langcode], row)
		}
	}
}

func TestMemoryStoreDefaultRevisionNeverMovesBackwards(t *testing.T) {
	store := NewMemoryStore(WithMemoryClock(fixedClock()))
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStateDraft)

	steps := []SaveTranslationInput{
		{ContentID: item.ID, RevisionID: 1, Langcode: "fr", Fields: TranslationFields{Label: StringPtr("Bonjour")}},
		{ContentID: item.ID, RevisionID: 1, Langcode: "en", Fields: TranslationFields{ModerationState: StatePtr(domain.ModerationStatePublished)}, CreateNewRevision: true},
		{ContentID: item.ID, RevisionID: 1, Langcode: "fr", Fields: TranslationFields{ModerationState: StatePtr(domain.ModerationStatePublished)}},
	}
	for i, input := range steps {
		if _, err := store.SaveTranslation(ctx, input); err != nil {
			t.Fatalf("step %d: SaveTranslation() error = %v", i, err)
		}
	}

	current, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if current.DefaultRevisionID != 2 || current.LatestRevisionID != 2 {
		t.Fatalf("expected default and latest revision 2, got default=%d latest=%d", current.DefaultRevisionID, current.LatestRevisionID)
	}

	rows, err := store.CanonicalRows(ctx, item.ID)
	if err != nil {
		t.Fatalf("CanonicalRows() error = %v", err)
	}
	want := map[string]CanonicalRow{
		"en": {RevisionID: 2, ModerationState: domain.ModerationStatePublished, Status: 1},
		"fr": {RevisionID: 1, ModerationState: domain.ModerationStatePublished, Status: 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d canonical rows, got %d", len(want), len(rows))
	}
	for _, row := range rows {
		exp := want[row.Langcode]
		if row.RevisionID != exp.RevisionID || row.ModerationState != exp.ModerationState || row.Status != exp.Status {
			t.Fatalf("unexpected %s canonical row: %+v", row.Langcode, row)
		}
	}
}

func TestMemoryStoreForwardDraftKeepsPublishedCanonical(t *testing.T) {
	store := NewMemoryStore(WithMemoryClock(fixedClock()))
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStatePublished)

	if _, err := store.SaveTranslation(ctx, SaveTranslationInput{
		ContentID:         item.ID,
		Langcode:          "en",
		Fields:            TranslationFields{Label: StringPtr("Hello again"), ModerationState: StatePtr(domain.ModerationStateDraft)},
		CreateNewRevision: true,
	}); err != nil {
		t.Fatalf("SaveTranslation() error = %v", err)
	}

	rows, err := store.CanonicalRows(ctx, item.ID)
	if err != nil {
		t.Fatalf("CanonicalRows() error = %v", err)
	}
	if len(rows) != 1 || rows[0].RevisionID != 1 || rows[0].Status != 1 || rows[0].Label != "Hello" {
		t.Fatalf("expected the published revision 1 row to stay live, got %+v", rows)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if _, err := store.GetItem(ctx, uuid.New()); !IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	item := seedArticle(t, store, domain.ModerationStateDraft)
	if _, err := store.LoadRevision(ctx, item.ID, 9); !IsNotFound(err) {
		t.Fatalf("expected revision not found, got %v", err)
	}
	if _, err := store.LatestRevisionFor(ctx, item.ID, "de"); !IsNotFound(err) {
		t.Fatalf("expected translation not found, got %v", err)
	}
	_, err := store.SaveTranslation(ctx, SaveTranslationInput{ContentID: item.ID, RevisionID: 7, Langcode: "en"})
	if !IsNotFound(err) {
		t.Fatalf("expected base revision not found, got %v", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	item := seedArticle(t, store, domain.ModerationStateDraft)

	revision, _ := store.LoadRevision(ctx, item.ID, 1)
	revision.Translations["en"].Label = "mutated"

	again, _ := store.LoadRevision(ctx, item.ID, 1)
	if again.Translations["en"].Label != "Hello" {
		t.Fatalf("expected stored label to be unaffected, got %q", again.Translations["en"].Label)
	}
}
