package overview

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

var testLanguages = []interfaces.Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
}

func newItem(defaultRevision, latestRevision int64) *revisions.ContentItem {
	return &revisions.ContentItem{
		ID:                uuid.MustParse("7a4b0c1e-8f55-4a4e-9a64-2c8b9e0f4d21"),
		ContentType:       "article",
		OriginalLangcode:  "en",
		DefaultRevisionID: defaultRevision,
		LatestRevisionID:  latestRevision,
	}
}

func newRevision(id int64, translations ...*revisions.Translation) *revisions.Revision {
	revision := &revisions.Revision{
		RevisionID:   id,
		CreatedBy:    "alice",
		CreatedAt:    time.Date(2024, 3, int(id), 10, 0, 0, 0, time.UTC),
		Translations: map[string]*revisions.Translation{},
	}
	for _, tr := range translations {
		tr.RevisionID = id
		revision.Translations[tr.Langcode] = tr
	}
	return revision
}

func tr(langcode, source string, state domain.ModerationState) *revisions.Translation {
	return &revisions.Translation{
		Langcode:        langcode,
		Label:           "Label " + langcode,
		SourceLangcode:  source,
		ModerationState: state,
	}
}

func TestBuildOrdersRowsNewestFirst(t *testing.T) {
	builder := NewStatusMatrixBuilder()
	item := newItem(2, 3)
	history := []*revisions.Revision{
		newRevision(1, tr("en", "und", domain.ModerationStatePublished)),
		newRevision(3, tr("en", "und", domain.ModerationStateDraft)),
		newRevision(2, tr("en", "und", domain.ModerationStatePublished)),
	}

	rows, err := builder.Build(item, history, testLanguages)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].RevisionID <= rows[i].RevisionID {
			t.Fatalf("rows not strictly descending: %d before %d", rows[i-1].RevisionID, rows[i].RevisionID)
		}
	}
	if history[0].RevisionID != 1 {
		t.Fatal("expected input slice to be left untouched")
	}
}

func TestBuildEmitsOneCellPerConfiguredLanguage(t *testing.T) {
	builder := NewStatusMatrixBuilder()
	item := newItem(1, 2)
	history := []*revisions.Revision{
		newRevision(2, tr("en", "und", domain.ModerationStateDraft), tr("fr", "en", domain.ModerationStateDraft)),
		newRevision(1, tr("en", "und", domain.ModerationStatePublished)),
	}

	rows, err := builder.Build(item, history, testLanguages)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, row := range rows {
		if len(row.Cells) != len(testLanguages) {
			t.Fatalf("revision %d: expected %d cells, got %d", row.RevisionID, len(testLanguages), len(row.Cells))
		}
		seen := map[string]bool{}
		for idx, cell := range row.Cells {
			if seen[cell.Langcode] {
				t.Fatalf("revision %d: duplicate cell for %s", row.RevisionID, cell.Langcode)
			}
			seen[cell.Langcode] = true
			if cell.Langcode != testLanguages[idx].Code {
				t.Fatalf("expected configured order, got %s at %d", cell.Langcode, idx)
			}
		}
	}
}

func TestBuildOriginalCell(t *testing.T) {
	builder := NewStatusMatrixBuilder()
	item := newItem(1, 1)
	revision := newRevision(1, tr("en", "und", domain.ModerationStateDraft), tr("fr", "en", domain.ModerationStateDraft))

	row, err := builder.BuildRow(item, revision, testLanguages)
	if err != nil {
		t.Fatalf("BuildRow() error = %v", err)
	}
	en, _ := row.Cell("en")
	if !en.Original || en.SourceName != "n/a" {
		t.Fatalf("expected original english cell with n/a source, got %+v", en)
	}
	if en.LanguageName != "English (Original language)" {
		t.Fatalf("unexpected language name %q", en.LanguageName)
	}
	fr, _ := row.Cell("fr")
	if fr.Original || fr.SourceName != "English" {
		t.Fatalf("expected french translated from English, got %+v", fr)
	}
	de, _ := row.Cell("de")
	if de.Translated || de.Title != "n/a" || de.SourceName != "n/a" || de.Status != "Not translated" {
		t.Fatalf("unexpected missing language cell %+v", de)
	}
}

func TestBuildSourceColumnGating(t *testing.T) {
	item := newItem(1, 1)
	cases := []struct {
		name     string
		revision *revisions.Revision
		enabled  bool
		expected bool
	}{
		{
			name:     "original only",
			revision: newRevision(1, tr("en", "und", domain.ModerationStateDraft)),
			enabled:  true,
		},
		{
			name:     "translated from original",
			revision: newRevision(1, tr("en", "und", domain.ModerationStateDraft), tr("fr", "en", domain.ModerationStateDraft)),
			enabled:  true,
		},
		{
			name: "translated from sibling",
			revision: newRevision(1,
				tr("en", "und", domain.ModerationStateDraft),
				tr("fr", "en", domain.ModerationStateDraft),
				tr("de", "fr", domain.ModerationStateDraft)),
			enabled:  true,
			expected: true,
		},
		{
			name: "column disabled",
			revision: newRevision(1,
				tr("en", "und", domain.ModerationStateDraft),
				tr("de", "fr", domain.ModerationStateDraft)),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			builder := NewStatusMatrixBuilder(WithSourceColumnEnabled(tc.enabled))
			row, err := builder.BuildRow(item, tc.revision, testLanguages)
			if err != nil {
				t.Fatalf("BuildRow() error = %v", err)
			}
			if row.ShowSourceColumn != tc.expected {
				t.Fatalf("expected ShowSourceColumn=%v, got %v", tc.expected, row.ShowSourceColumn)
			}
		})
	}
}

func TestBuildIntegrityFailuresYieldUnavailableRows(t *testing.T) {
	builder := NewStatusMatrixBuilder()
	item := newItem(1, 3)
	history := []*revisions.Revision{
		newRevision(3, tr("fr", "en", domain.ModerationStateDraft)),
		newRevision(2, tr("en", "und", domain.ModerationStateDraft), tr("fr", "xx", domain.ModerationStateDraft)),
		newRevision(1, tr("en", "und", domain.ModerationStatePublished)),
	}

	rows, err := builder.Build(item, history, testLanguages)
	if !IsDataIntegrity(err) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected every revision to keep a row, got %d", len(rows))
	}

	var integrity *DataIntegrityError
	if !errors.As(rows[0].Err, &integrity) || integrity.Reason != ReasonMissingOriginal {
		t.Fatalf("expected missing original on revision 3, got %v", rows[0].Err)
	}
	if !rows[0].Unavailable || len(rows[0].Cells) != 0 {
		t.Fatalf("expected unavailable row without cells, got %+v", rows[0])
	}
	if !errors.As(rows[1].Err, &integrity) || integrity.Reason != ReasonUnknownSource || integrity.Langcode != "xx" {
		t.Fatalf("expected unknown source on revision 2, got %v", rows[1].Err)
	}
	if rows[2].Unavailable {
		t.Fatal("expected revision 1 to build")
	}
}

func TestBuildDropsDuplicateRevisions(t *testing.T) {
	builder := NewStatusMatrixBuilder()
	item := newItem(1, 1)
	history := []*revisions.Revision{
		newRevision(1, tr("en", "und", domain.ModerationStateDraft)),
		newRevision(1, tr("en", "und", domain.ModerationStateDraft)),
	}
	rows, err := builder.Build(item, history, testLanguages[:1])
	if !IsDataIntegrity(err) {
		t.Fatalf("expected duplicate revision error, got %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single row, got %d", len(rows))
	}
}

func TestBuildRowTitleAndLink(t *testing.T) {
	builder := NewStatusMatrixBuilder(WithRowDateLayout("2006-01-02"))
	item := newItem(1, 2)

	historical := newRevision(2, tr("en", "und", domain.ModerationStateDraft))
	historical.CreatedBy = ""
	row, err := builder.BuildRow(item, historical, testLanguages[:1])
	if err != nil {
		t.Fatalf("BuildRow() error = %v", err)
	}
	if row.Title != "2024-03-02 by Anonymous" {
		t.Fatalf("unexpected title %q", row.Title)
	}
	if row.Link.Route != "revision" || row.Link.Params[ParamRevisionID] != "2" {
		t.Fatalf("expected revision link, got %+v", row.Link)
	}

	row, err = builder.BuildRow(item, newRevision(1, tr("en", "und", domain.ModerationStatePublished)), testLanguages[:1])
	if err != nil {
		t.Fatalf("BuildRow() error = %v", err)
	}
	if row.Link.Route != "canonical" {
		t.Fatalf("expected canonical link for the default revision, got %+v", row.Link)
	}
	if _, ok := row.Link.Params[ParamRevisionID]; ok {
		t.Fatal("expected canonical link without revision id")
	}
}

func TestStatusFormatterRender(t *testing.T) {
	formatter := NewStatusFormatter()
	cases := []struct {
		state     string
		published bool
		outdated  bool
		expected  string
	}{
		{state: "draft", expected: "Draft"},
		{state: "needs_review", outdated: true, expected: "Needs Review outdated"},
		{state: "published", published: true, expected: "Published"},
		{published: true, expected: "Published"},
		{outdated: true, expected: "Not published outdated"},
	}
	for _, tc := range cases {
		if got := formatter.Render(tc.state, tc.published, tc.outdated); got != tc.expected {
			t.Fatalf("Render(%q, %v, %v) = %q, want %q", tc.state, tc.published, tc.outdated, got, tc.expected)
		}
	}
}
