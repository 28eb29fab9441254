package overview

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

// DefaultDateLayout mirrors the short admin date format.
const DefaultDateLayout = "01/02/2006 - 15:04"

const anonymousAuthor = "Anonymous"

// StatusMatrixBuilder turns a revision history into overview rows. It keeps
// no mutable state and is safe for concurrent use.
type StatusMatrixBuilder struct {
	formatter    interfaces.ModerationStateFormatter
	routes       Routes
	dateLayout   string
	sourceColumn bool
}

// BuilderOption configures a StatusMatrixBuilder.
type BuilderOption func(*StatusMatrixBuilder)

// WithStatusFormatter overrides the moderation status formatter.
func WithStatusFormatter(formatter interfaces.ModerationStateFormatter) BuilderOption {
	return func(b *StatusMatrixBuilder) {
		if formatter != nil {
			b.formatter = formatter
		}
	}
}

// WithBuilderRoutes overrides the route names used for row and cell links.
func WithBuilderRoutes(routes Routes) BuilderOption {
	return func(b *StatusMatrixBuilder) {
		b.routes = routes.withDefaults()
	}
}

// WithRowDateLayout overrides the layout used for row titles.
func WithRowDateLayout(layout string) BuilderOption {
	return func(b *StatusMatrixBuilder) {
		if strings.TrimSpace(layout) != "" {
			b.dateLayout = layout
		}
	}
}

// WithSourceColumnEnabled toggles the source language column. When disabled
// rows never request it.
func WithSourceColumnEnabled(enabled bool) BuilderOption {
	return func(b *StatusMatrixBuilder) {
		b.sourceColumn = enabled
	}
}

// NewStatusMatrixBuilder constructs a builder with the default formatter.
func NewStatusMatrixBuilder(opts ...BuilderOption) *StatusMatrixBuilder {
	builder := &StatusMatrixBuilder{
		formatter:    NewStatusFormatter(),
		routes:       DefaultRoutes(),
		dateLayout:   DefaultDateLayout,
		sourceColumn: true,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder
}

// Build returns one row per revision, newest first, with one cell per
// configured language. Revisions that fail integrity checks yield unavailable
// rows; the returned error joins every DataIntegrityError encountered.
func (b *StatusMatrixBuilder) Build(item *revisions.ContentItem, history []*revisions.Revision, languages []interfaces.Language) ([]Row, error) {
	if item == nil {
		return nil, revisions.ErrContentIDRequired
	}
	ordered := orderRevisions(history)
	rows := make([]Row, 0, len(ordered))
	seen := make(map[int64]struct{}, len(ordered))

	var errs []error
	for _, revision := range ordered {
		if _, dup := seen[revision.RevisionID]; dup {
			errs = append(errs, &DataIntegrityError{
				ContentID:  item.ID,
				RevisionID: revision.RevisionID,
				Reason:     ReasonDuplicateRevision,
			})
			continue
		}
		seen[revision.RevisionID] = struct{}{}

		row, err := b.BuildRow(item, revision, languages)
		if err != nil {
			errs = append(errs, err)
		}
		rows = append(rows, row)
	}
	return rows, errors.Join(errs...)
}

// BuildRow renders a single revision. On integrity failure the returned row
// is marked unavailable and carries no cells.
func (b *StatusMatrixBuilder) BuildRow(item *revisions.ContentItem, revision *revisions.Revision, languages []interfaces.Language) (Row, error) {
	row := b.baseRow(item, revision)

	originals := revision.Originals()
	switch len(originals) {
	case 0:
		return unavailable(row, &DataIntegrityError{ContentID: item.ID, RevisionID: revision.RevisionID, Reason: ReasonMissingOriginal})
	case 1:
	default:
		return unavailable(row, &DataIntegrityError{
			ContentID:  item.ID,
			RevisionID: revision.RevisionID,
			Langcode:   strings.Join(originals, ","),
			Reason:     ReasonMultipleOriginals,
		})
	}
	original := originals[0]

	row.OriginalLangcode = original
	row.MultipleTranslations = len(revision.Translations) > 1
	row.ShowSourceColumn = b.sourceColumn && HasForeignSource(revision, original)

	names := make(map[string]string, len(languages))
	for _, lang := range languages {
		names[domain.NormalizeLangcode(lang.Code)] = languageName(lang)
	}

	cells := make([]Cell, 0, len(languages))
	for _, lang := range languages {
		cell, err := b.buildCell(item, revision, original, lang, names)
		if err != nil {
			return unavailable(row, err)
		}
		cells = append(cells, cell)
	}
	row.Cells = cells
	return row, nil
}

func (b *StatusMatrixBuilder) buildCell(item *revisions.ContentItem, revision *revisions.Revision, original string, lang interfaces.Language, names map[string]string) (Cell, error) {
	code := domain.NormalizeLangcode(lang.Code)
	cell := Cell{
		Langcode:     code,
		LanguageName: languageName(lang),
	}

	tr, ok := revision.Translation(code)
	if !ok {
		cell.Title = notApplicable
		cell.SourceName = notApplicable
		cell.Status = statusNotTranslated
		return cell, nil
	}

	cell.Translated = true
	cell.Title = tr.Label
	cell.ModerationState = tr.ModerationState
	cell.Published = tr.IsPublished()
	cell.Outdated = tr.Outdated
	cell.Status = b.formatter.Render(string(tr.ModerationState), cell.Published, tr.Outdated)
	link := b.revisionLink(item, revision.RevisionID)
	link.Params[ParamLangcode] = code
	cell.Link = &link

	if code == original {
		cell.Original = true
		cell.LanguageName += originalSuffix
		cell.SourceName = notApplicable
		return cell, nil
	}

	cell.SourceLangcode = tr.SourceLangcode
	if domain.IsUnspecifiedSource(tr.SourceLangcode) {
		cell.SourceName = notApplicable
		return cell, nil
	}
	name, known := names[domain.NormalizeLangcode(tr.SourceLangcode)]
	if !known {
		return cell, &DataIntegrityError{
			ContentID:  item.ID,
			RevisionID: revision.RevisionID,
			Langcode:   tr.SourceLangcode,
			Reason:     ReasonUnknownSource,
		}
	}
	cell.SourceName = name
	return cell, nil
}

func (b *StatusMatrixBuilder) baseRow(item *revisions.ContentItem, revision *revisions.Revision) Row {
	author := strings.TrimSpace(revision.CreatedBy)
	if author == "" {
		author = anonymousAuthor
	}
	return Row{
		RevisionID: revision.RevisionID,
		Default:    item.IsDefaultRevision(revision.RevisionID),
		Current:    revision.RevisionID == item.CurrentRevisionID(),
		CreatedAt:  revision.CreatedAt,
		CreatedBy:  revision.CreatedBy,
		LogMessage: revision.LogMessage,
		Title:      fmt.Sprintf("%s by %s", revision.CreatedAt.Format(b.dateLayout), author),
		Link:       b.revisionLink(item, revision.RevisionID),
	}
}

// revisionLink addresses historical revisions by id and the default revision
// through the canonical route.
func (b *StatusMatrixBuilder) revisionLink(item *revisions.ContentItem, revisionID int64) Link {
	if item.IsDefaultRevision(revisionID) {
		return Link{Route: b.routes.Canonical, Params: itemParams(item)}
	}
	return Link{Route: b.routes.Revision, Params: revisionParams(item, revisionID)}
}

// HasForeignSource reports whether any translation of revision was translated
// from a language other than original.
func HasForeignSource(revision *revisions.Revision, original string) bool {
	for _, code := range revision.Langcodes() {
		source := revision.Translations[code].SourceLangcode
		if domain.IsUnspecifiedSource(source) {
			continue
		}
		if domain.NormalizeLangcode(source) != original {
			return true
		}
	}
	return false
}

func unavailable(row Row, err error) (Row, error) {
	row.Unavailable = true
	row.Err = err
	row.Cells = nil
	return row, err
}

func orderRevisions(history []*revisions.Revision) []*revisions.Revision {
	ordered := make([]*revisions.Revision, 0, len(history))
	for _, revision := range history {
		if revision != nil {
			ordered = append(ordered, revision)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RevisionID > ordered[j].RevisionID
	})
	return ordered
}

func languageName(lang interfaces.Language) string {
	if name := strings.TrimSpace(lang.Name); name != "" {
		return name
	}
	return lang.Code
}
