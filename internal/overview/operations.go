package overview

import (
	"context"
	"sort"

	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

const (
	titleAdd          = "Add"
	titleEdit         = "Edit"
	titleDelete       = "Delete"
	titleRevert       = "Revert"
	titleSetAsCurrent = "Set as current revision"
)

// OperationSet is an immutable collection of operations and the cache tags
// gathered while deciding them. With and Tag return extended copies.
type OperationSet struct {
	ops  []Operation
	tags []string
}

// With returns a set that also contains op.
func (s OperationSet) With(op Operation) OperationSet {
	ops := make([]Operation, len(s.ops), len(s.ops)+1)
	copy(ops, s.ops)
	return OperationSet{ops: append(ops, op), tags: s.tags}
}

// Tag returns a set that also carries tags. Duplicates are dropped.
func (s OperationSet) Tag(tags ...string) OperationSet {
	if len(tags) == 0 {
		return s
	}
	merged := make([]string, len(s.tags), len(s.tags)+len(tags))
	copy(merged, s.tags)
	for _, tag := range tags {
		if tag == "" || containsString(merged, tag) {
			continue
		}
		merged = append(merged, tag)
	}
	return OperationSet{ops: s.ops, tags: merged}
}

// Operations returns a copy of the accumulated operations.
func (s OperationSet) Operations() []Operation {
	if len(s.ops) == 0 {
		return nil
	}
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// CacheTags returns the accumulated tags sorted.
func (s OperationSet) CacheTags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	sort.Strings(out)
	return out
}

// Has reports whether an operation of kind is present.
func (s OperationSet) Has(kind OperationKind) bool {
	_, ok := findOperation(s.ops, kind)
	return ok
}

// OperationResolver decides which actions the capability oracle allows for
// overview cells and revisions. It never mutates its inputs.
type OperationResolver struct {
	oracle            interfaces.CapabilityOracle
	types             interfaces.ContentTypeRegistry
	routes            Routes
	directEdit        bool
	translationDelete bool
}

// ResolverOption configures an OperationResolver.
type ResolverOption func(*OperationResolver)

// WithContentTypeRegistry gates Add operations on translatable content types.
func WithContentTypeRegistry(registry interfaces.ContentTypeRegistry) ResolverOption {
	return func(r *OperationResolver) {
		r.types = registry
	}
}

// WithResolverRoutes overrides the route names used for operation links.
func WithResolverRoutes(routes Routes) ResolverOption {
	return func(r *OperationResolver) {
		r.routes = routes.withDefaults()
	}
}

// WithDirectEdit toggles links to the entity edit and delete forms.
func WithDirectEdit(enabled bool) ResolverOption {
	return func(r *OperationResolver) {
		r.directEdit = enabled
	}
}

// WithTranslationDelete toggles per-language delete operations.
func WithTranslationDelete(enabled bool) ResolverOption {
	return func(r *OperationResolver) {
		r.translationDelete = enabled
	}
}

// NewOperationResolver constructs a resolver. A nil oracle denies everything.
func NewOperationResolver(oracle interfaces.CapabilityOracle, opts ...ResolverOption) *OperationResolver {
	resolver := &OperationResolver{
		oracle:     oracle,
		routes:     DefaultRoutes(),
		directEdit: true,
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// ResolveCell returns the Add, Edit and Delete operations allowed for cell.
func (r *OperationResolver) ResolveCell(ctx context.Context, cell Cell, revision *revisions.Revision, item *revisions.ContentItem) OperationSet {
	set := OperationSet{}
	if revision == nil || item == nil {
		return set
	}
	subject := revisionSubject(item, revision.RevisionID)

	if !cell.Translated {
		source := sourceFor(revision, item)
		if source == "" || source == cell.Langcode {
			return set
		}
		create := r.can(ctx, interfaces.CapabilityCreateTranslation, subject, cell.Langcode)
		set = set.Tag(create.CacheTags...)
		if create.Allowed && r.translatable(item.ContentType) {
			params := revisionParams(item, revision.RevisionID)
			params[ParamSource] = source
			params[ParamTarget] = cell.Langcode
			set = set.With(Operation{
				Kind:  OperationAdd,
				Title: titleAdd,
				Link:  Link{Route: r.routes.TranslationAdd, Params: params},
			})
		}
		return set
	}

	update := r.can(ctx, interfaces.CapabilityUpdateEntity, subject, cell.Langcode)
	translationUpdate := r.can(ctx, interfaces.CapabilityUpdateTranslation, subject, cell.Langcode)
	set = set.Tag(update.CacheTags...).Tag(translationUpdate.CacheTags...)
	switch {
	case update.Allowed && r.directEdit:
		params := itemParams(item)
		params[ParamLangcode] = cell.Langcode
		set = set.With(Operation{Kind: OperationEdit, Title: titleEdit, Link: Link{Route: r.routes.EditForm, Params: params}})
	case !cell.Original && translationUpdate.Allowed:
		params := revisionParams(item, revision.RevisionID)
		params[ParamLangcode] = cell.Langcode
		set = set.With(Operation{Kind: OperationEdit, Title: titleEdit, Link: Link{Route: r.routes.TranslationEdit, Params: params}})
	}

	if cell.Original || !r.translationDelete {
		return set
	}
	entitySubject := revisionSubject(item, item.DefaultRevisionID)
	remove := r.can(ctx, interfaces.CapabilityDeleteEntity, entitySubject, cell.Langcode)
	translationRemove := r.can(ctx, interfaces.CapabilityDeleteTranslation, entitySubject, cell.Langcode)
	set = set.Tag(remove.CacheTags...).Tag(translationRemove.CacheTags...)
	params := itemParams(item)
	params[ParamLangcode] = cell.Langcode
	switch {
	case remove.Allowed && r.directEdit:
		set = set.With(Operation{Kind: OperationDelete, Title: titleDelete, Link: Link{Route: r.routes.DeleteForm, Params: params}})
	case translationRemove.Allowed:
		set = set.With(Operation{Kind: OperationDelete, Title: titleDelete, Link: Link{Route: r.routes.TranslationDelete, Params: params}})
	}
	return set
}

// ResolveRevision returns the revision level Revert or SetAsCurrent and
// Delete operations. translationCount is the number of languages on the
// item's default revision and selects the translation aware routes.
func (r *OperationResolver) ResolveRevision(ctx context.Context, revision *revisions.Revision, item *revisions.ContentItem, translationCount int) OperationSet {
	set := OperationSet{}
	if revision == nil || item == nil {
		return set
	}
	subject := revisionSubject(item, revision.RevisionID)
	multilingual := translationCount > 1

	revert := r.can(ctx, interfaces.CapabilityRevertRevisions, subject, item.OriginalLangcode)
	set = set.Tag(revert.CacheTags...)
	if revert.Allowed && !item.IsDefaultRevision(revision.RevisionID) {
		kind, title := OperationRevert, titleRevert
		if revision.RevisionID == item.CurrentRevisionID() {
			kind, title = OperationSetAsCurrent, titleSetAsCurrent
		}
		link := Link{Route: r.routes.RevertConfirm, Params: revisionParams(item, revision.RevisionID)}
		if multilingual {
			link.Route = r.routes.RevertTranslationConfirm
			link.Params[ParamLangcode] = item.OriginalLangcode
		}
		set = set.With(Operation{Kind: kind, Title: title, Link: link})
	}

	remove := r.can(ctx, interfaces.CapabilityDeleteRevisions, subject, item.OriginalLangcode)
	set = set.Tag(remove.CacheTags...)
	if remove.Allowed {
		link := Link{Route: r.routes.DeleteRevisionConfirm, Params: revisionParams(item, revision.RevisionID)}
		if multilingual {
			link.Route = r.routes.DeleteTranslationRevision
			link.Params[ParamLangcode] = item.OriginalLangcode
		}
		set = set.With(Operation{Kind: OperationDelete, Title: titleDelete, Link: link})
	}
	return set
}

func (r *OperationResolver) can(ctx context.Context, capability interfaces.Capability, subject interfaces.CapabilitySubject, langcode string) interfaces.Decision {
	if r.oracle == nil {
		return interfaces.Decision{}
	}
	return r.oracle.Can(ctx, capability, subject, langcode)
}

func (r *OperationResolver) translatable(contentType string) bool {
	if r.types == nil {
		return true
	}
	return r.types.IsTranslatable(contentType)
}

func revisionSubject(item *revisions.ContentItem, revisionID int64) interfaces.CapabilitySubject {
	return interfaces.CapabilitySubject{
		ContentID:   item.ID,
		ContentType: item.ContentType,
		RevisionID:  revisionID,
	}
}

// sourceFor picks the language a new translation is created from: the
// revision's original, falling back to the item's.
func sourceFor(revision *revisions.Revision, item *revisions.ContentItem) string {
	if originals := revision.Originals(); len(originals) == 1 {
		return originals[0]
	}
	return item.OriginalLangcode
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
