package overview

import (
	"strconv"

	"github.com/goliatone/go-content-revisions/internal/revisions"
)

// Route parameter names.
const (
	ParamContentID  = "content_id"
	ParamRevisionID = "revision_id"
	ParamLangcode   = "langcode"
	ParamSource     = "source"
	ParamTarget     = "target"
)

// Routes names the routes the overview links to.
type Routes struct {
	Canonical                 string
	Revision                  string
	EditForm                  string
	DeleteForm                string
	TranslationAdd            string
	TranslationEdit           string
	TranslationDelete         string
	RevertConfirm             string
	RevertTranslationConfirm  string
	DeleteRevisionConfirm     string
	DeleteTranslationRevision string
}

// DefaultRoutes returns the route names registered by the default route config.
func DefaultRoutes() Routes {
	return Routes{
		Canonical:                 "canonical",
		Revision:                  "revision",
		EditForm:                  "edit_form",
		DeleteForm:                "delete_form",
		TranslationAdd:            "translation_revision_add",
		TranslationEdit:           "translation_revision_edit",
		TranslationDelete:         "translation_delete",
		RevertConfirm:             "revision_revert_confirm",
		RevertTranslationConfirm:  "revision_revert_translation_confirm",
		DeleteRevisionConfirm:     "revision_delete_confirm",
		DeleteTranslationRevision: "revision_delete_translation_confirm",
	}
}

func (r Routes) withDefaults() Routes {
	defaults := DefaultRoutes()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&r.Canonical, defaults.Canonical)
	fill(&r.Revision, defaults.Revision)
	fill(&r.EditForm, defaults.EditForm)
	fill(&r.DeleteForm, defaults.DeleteForm)
	fill(&r.TranslationAdd, defaults.TranslationAdd)
	fill(&r.TranslationEdit, defaults.TranslationEdit)
	fill(&r.TranslationDelete, defaults.TranslationDelete)
	fill(&r.RevertConfirm, defaults.RevertConfirm)
	fill(&r.RevertTranslationConfirm, defaults.RevertTranslationConfirm)
	fill(&r.DeleteRevisionConfirm, defaults.DeleteRevisionConfirm)
	fill(&r.DeleteTranslationRevision, defaults.DeleteTranslationRevision)
	return r
}

func itemParams(item *revisions.ContentItem) map[string]string {
	return map[string]string{ParamContentID: item.ID.String()}
}

func revisionParams(item *revisions.ContentItem, revisionID int64) map[string]string {
	params := itemParams(item)
	params[ParamRevisionID] = strconv.FormatInt(revisionID, 10)
	return params
}
