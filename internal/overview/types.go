package overview

import (
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

// OperationKind enumerates the actions an editor may take from the overview.
type OperationKind string

const (
	OperationAdd          OperationKind = "add"
	OperationEdit         OperationKind = "edit"
	OperationDelete       OperationKind = "delete"
	OperationRevert       OperationKind = "revert"
	OperationSetAsCurrent OperationKind = "set_as_current"
)

// Link addresses a named route. URL is filled by the overview service once
// the route has been resolved.
type Link struct {
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
	URL    string            `json:"url,omitempty"`
}

// Operation is a permitted action with its display title and target.
type Operation struct {
	Kind  OperationKind `json:"kind"`
	Title string        `json:"title"`
	Link  Link          `json:"link"`
}

// Cell is the status of one configured language within one revision.
type Cell struct {
	Langcode        string                 `json:"langcode"`
	LanguageName    string                 `json:"language_name"`
	Title           string                 `json:"title"`
	Link            *Link                  `json:"link,omitempty"`
	Translated      bool                   `json:"translated"`
	Original        bool                   `json:"original"`
	SourceLangcode  string                 `json:"source_langcode,omitempty"`
	SourceName      string                 `json:"source_name,omitempty"`
	ModerationState domain.ModerationState `json:"moderation_state,omitempty"`
	Published       bool                   `json:"published"`
	Outdated        bool                   `json:"outdated"`
	Status          string                 `json:"status"`
	Operations      []Operation            `json:"operations,omitempty"`
}

// Row is the overview entry for one revision.
type Row struct {
	RevisionID           int64       `json:"revision_id"`
	Default              bool        `json:"default"`
	Current              bool        `json:"current"`
	CreatedAt            time.Time   `json:"created_at"`
	CreatedBy            string      `json:"created_by"`
	LogMessage           string      `json:"log_message,omitempty"`
	Title                string      `json:"title"`
	Link                 Link        `json:"link"`
	OriginalLangcode     string      `json:"original_langcode,omitempty"`
	MultipleTranslations bool        `json:"multiple_translations"`
	ShowSourceColumn     bool        `json:"show_source_column"`
	Cells                []Cell      `json:"cells,omitempty"`
	Operations           []Operation `json:"operations,omitempty"`
	// Unavailable rows could not be built; Err holds the reason.
	Unavailable bool  `json:"unavailable"`
	Err         error `json:"-"`
}

// Overview is the revision/translation matrix for one content item.
type Overview struct {
	ContentID         uuid.UUID `json:"content_id"`
	ContentType       string    `json:"content_type"`
	DefaultRevisionID int64     `json:"default_revision_id"`
	CurrentRevisionID int64     `json:"current_revision_id"`
	Rows              []Row     `json:"rows"`
	CacheTags         []string  `json:"cache_tags,omitempty"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Row returns the row built for revisionID.
func (o *Overview) Row(revisionID int64) (Row, bool) {
	if o == nil {
		return Row{}, false
	}
	for _, row := range o.Rows {
		if row.RevisionID == revisionID {
			return row, true
		}
	}
	return Row{}, false
}

// Cell returns the cell for langcode.
func (r Row) Cell(langcode string) (Cell, bool) {
	for _, cell := range r.Cells {
		if cell.Langcode == langcode {
			return cell, true
		}
	}
	return Cell{}, false
}

// Operation returns the first operation of the given kind.
func (c Cell) Operation(kind OperationKind) (Operation, bool) {
	return findOperation(c.Operations, kind)
}

// Operation returns the first revision level operation of the given kind.
func (r Row) Operation(kind OperationKind) (Operation, bool) {
	return findOperation(r.Operations, kind)
}

func findOperation(ops []Operation, kind OperationKind) (Operation, bool) {
	for _, op := range ops {
		if op.Kind == kind {
			return op, true
		}
	}
	return Operation{}, false
}
