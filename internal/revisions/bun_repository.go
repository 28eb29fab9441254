package revisions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewContentItemRepository creates a repository for ContentItem records.
func NewContentItemRepository(db *bun.DB) repository.Repository[*ContentItem] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentItem]{
		NewRecord: func() *ContentItem { return &ContentItem{} },
		GetID: func(c *ContentItem) uuid.UUID {
			return c.ID
		},
		SetID: func(c *ContentItem, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(c *ContentItem) string {
			if c == nil {
				return ""
			}
			return c.ID.String()
		},
	})
}

// NewRevisionRepository creates a repository for Revision records.
func NewRevisionRepository(db *bun.DB) repository.Repository[*Revision] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Revision]{
		NewRecord: func() *Revision { return &Revision{} },
		GetID: func(r *Revision) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Revision, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Revision) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

// NewTranslationRepository creates a repository for Translation records.
func NewTranslationRepository(db *bun.DB) repository.Repository[*Translation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Translation]{
		NewRecord: func() *Translation { return &Translation{} },
		GetID: func(t *Translation) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Translation, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(t *Translation) string {
			if t == nil {
				return ""
			}
			return t.ID.String()
		},
	})
}

// NewCanonicalRowRepository creates a repository for CanonicalRow records.
func NewCanonicalRowRepository(db *bun.DB) repository.Repository[*CanonicalRow] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CanonicalRow]{
		NewRecord: func() *CanonicalRow { return &CanonicalRow{} },
		GetID: func(r *CanonicalRow) uuid.UUID {
			return r.ID
		},
		SetID: func(r *CanonicalRow, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *CanonicalRow) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

// BunStore persists revisions using go-repository-bun repositories.
type BunStore struct {
	items        repository.Repository[*ContentItem]
	revisions    repository.Repository[*Revision]
	translations repository.Repository[*Translation]
	canonical    repository.Repository[*CanonicalRow]
	now          func() time.Time
}

// BunOption configures a BunStore.
type BunOption func(*BunStore)

// WithBunClock overrides the clock used for timestamps.
func WithBunClock(clock func() time.Time) BunOption {
	return func(s *BunStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBunStore constructs a Bun-backed store without caching.
func NewBunStore(db *bun.DB, opts ...BunOption) *BunStore {
	return NewBunStoreWithCache(db, nil, nil, opts...)
}

// NewBunStoreWithCache constructs a Bun-backed store. When a cache service is
// supplied, content item lookups are served through go-repository-cache.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...BunOption) *BunStore {
	store := &BunStore{
		items:        wrapWithCache(NewContentItemRepository(db), cacheService, keySerializer),
		revisions:    NewRevisionRepository(db),
		translations: NewTranslationRepository(db),
		canonical:    NewCanonicalRowRepository(db),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

var _ Store = (*BunStore)(nil)

func (s *BunStore) CreateItem(ctx context.Context, input CreateItemInput) (*ContentItem, error) {
	item, revision, row, err := planCreate(input, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.items.GetByID(ctx, item.ID.String()); err == nil {
		return nil, ErrItemExists
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, "content_item", item.ID.String())
	}

	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	if err := s.insertRevision(ctx, revision); err != nil {
		return nil, err
	}
	if _, err := s.canonical.Create(ctx, row); err != nil {
		return nil, err
	}
	return cloneItem(item), nil
}

func (s *BunStore) GetItem(ctx context.Context, contentID uuid.UUID) (*ContentItem, error) {
	item, err := s.items.GetByID(ctx, contentID.String())
	if err != nil {
		return nil, mapRepositoryError(err, "content_item", contentID.String())
	}
	return item, nil
}

func (s *BunStore) ListRevisions(ctx context.Context, contentID uuid.UUID) ([]*Revision, error) {
	if _, err := s.GetItem(ctx, contentID); err != nil {
		return nil, err
	}
	records, _, err := s.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("revision_id DESC")
		}),
	)
	if err != nil {
		return nil, err
	}
	translations, _, err := s.translations.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
	)
	if err != nil {
		return nil, err
	}
	attachTranslations(records, translations)
	sort.SliceStable(records, func(i, j int) bool { return records[i].RevisionID > records[j].RevisionID })
	return records, nil
}

func (s *BunStore) LoadRevision(ctx context.Context, contentID uuid.UUID, revisionID int64) (*Revision, error) {
	records, _, err := s.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.revision_id = ?", revisionID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "revision", Key: revisionKey(contentID, revisionID)}
	}
	translations, _, err := s.translations.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.revision_id = ?", revisionID)
		}),
	)
	if err != nil {
		return nil, err
	}
	attachTranslations(records, translations)
	return records[0], nil
}

func (s *BunStore) LoadCanonical(ctx context.Context, contentID uuid.UUID) (*Revision, error) {
	item, err := s.GetItem(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return s.LoadRevision(ctx, contentID, item.DefaultRevisionID)
}

func (s *BunStore) LatestRevisionFor(ctx context.Context, contentID uuid.UUID, langcode string) (*Revision, error) {
	revisions, err := s.ListRevisions(ctx, contentID)
	if err != nil {
		return nil, err
	}
	revision := latestFor(revisions, langcode)
	if revision == nil {
		return nil, &NotFoundError{Resource: "translation", Key: contentID.String() + ":" + domain.NormalizeLangcode(langcode)}
	}
	return revision, nil
}

func (s *BunStore) SaveTranslation(ctx context.Context, input SaveTranslationInput) (*SaveResult, error) {
	if input.ContentID == uuid.Nil {
		return nil, ErrContentIDRequired
	}
	item, err := s.GetItem(ctx, input.ContentID)
	if err != nil {
		return nil, err
	}
	baseID := input.RevisionID
	if baseID == 0 {
		baseID = item.LatestRevisionID
	}
	base, err := s.LoadRevision(ctx, input.ContentID, baseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.canonicalByLangcode(ctx, input.ContentID)
	if err != nil {
		return nil, err
	}

	plan, err := planSave(item, base, existing, input, s.now().UTC())
	if err != nil {
		return nil, err
	}
	result := plan.result

	if result.NewRevision {
		if err := s.insertRevision(ctx, result.Revision); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.revisions.Update(ctx, result.Revision); err != nil {
			return nil, mapRepositoryError(err, "revision", revisionKey(input.ContentID, baseID))
		}
		tr := result.Translation()
		if result.TranslationCreated {
			if _, err := s.translations.Create(ctx, tr); err != nil {
				return nil, err
			}
		} else if _, err := s.translations.Update(ctx, tr); err != nil {
			return nil, mapRepositoryError(err, "translation", tr.ID.String())
		}
	}

	for _, row := range plan.canonical {
		if err := s.upsertCanonical(ctx, row); err != nil {
			return nil, err
		}
	}

	if _, err := s.items.Update(ctx, result.Item); err != nil {
		return nil, mapRepositoryError(err, "content_item", input.ContentID.String())
	}
	return result, nil
}

func (s *BunStore) CanonicalRows(ctx context.Context, contentID uuid.UUID) ([]*CanonicalRow, error) {
	if _, err := s.GetItem(ctx, contentID); err != nil {
		return nil, err
	}
	records, _, err := s.canonical.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("langcode ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BunStore) canonicalByLangcode(ctx context.Context, contentID uuid.UUID) (map[string]*CanonicalRow, error) {
	records, _, err := s.canonical.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.content_id = ?", contentID)
		}),
	)
	if err != nil {
		return nil, err
	}
	rows := make(map[string]*CanonicalRow, len(records))
	for _, row := range records {
		rows[row.Langcode] = row
	}
	return rows, nil
}

func (s *BunStore) insertRevision(ctx context.Context, revision *Revision) error {
	if _, err := s.revisions.Create(ctx, revision); err != nil {
		return err
	}
	for _, code := range revision.Langcodes() {
		if _, err := s.translations.Create(ctx, revision.Translations[code]); err != nil {
			return err
		}
	}
	return nil
}

func (s *BunStore) upsertCanonical(ctx context.Context, row *CanonicalRow) error {
	_, err := s.canonical.GetByID(ctx, row.ID.String())
	switch {
	case err == nil:
		_, err = s.canonical.Update(ctx, row)
		return err
	case goerrors.IsCategory(err, repository.CategoryDatabaseNotFound):
		_, err = s.canonical.Create(ctx, row)
		return err
	default:
		return mapRepositoryError(err, "canonical_row", row.ID.String())
	}
}

func attachTranslations(records []*Revision, translations []*Translation) {
	byRevision := make(map[int64]*Revision, len(records))
	for _, record := range records {
		record.Translations = make(map[string]*Translation)
		byRevision[record.RevisionID] = record
	}
	for _, tr := range translations {
		if record, ok := byRevision[tr.RevisionID]; ok {
			record.Translations[tr.Langcode] = tr
		}
	}
}

// Migrate creates the tables used by BunStore when they do not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*ContentItem)(nil),
		(*Revision)(nil),
		(*Translation)(nil),
		(*CanonicalRow)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("revisions: create table: %w", err)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
