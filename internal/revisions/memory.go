package revisions

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore keeps content items and their revisions in-memory.
type MemoryStore struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]*ContentItem
	revisions map[uuid.UUID][]*Revision
	canonical map[uuid.UUID]map[string]*CanonicalRow
	now       func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock overrides the clock used for timestamps.
func WithMemoryClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		items:     make(map[uuid.UUID]*ContentItem),
		revisions: make(map[uuid.UUID][]*Revision),
		canonical: make(map[uuid.UUID]map[string]*CanonicalRow),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) CreateItem(_ context.Context, input CreateItemInput) (*ContentItem, error) {
	item, revision, row, err := planCreate(input, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return nil, ErrItemExists
	}
	s.items[item.ID] = item
	s.revisions[item.ID] = []*Revision{revision}
	s.canonical[item.ID] = map[string]*CanonicalRow{row.Langcode: row}
	return cloneItem(item), nil
}

func (s *MemoryStore) GetItem(_ context.Context, contentID uuid.UUID) (*ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[contentID]
	if !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: contentID.String()}
	}
	return cloneItem(item), nil
}

func (s *MemoryStore) ListRevisions(_ context.Context, contentID uuid.UUID) ([]*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.items[contentID]; !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: contentID.String()}
	}
	return s.sortedRevisionsLocked(contentID), nil
}

func (s *MemoryStore) LoadRevision(_ context.Context, contentID uuid.UUID, revisionID int64) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revision := s.findRevisionLocked(contentID, revisionID)
	if revision == nil {
		return nil, &NotFoundError{Resource: "revision", Key: revisionKey(contentID, revisionID)}
	}
	return cloneRevision(revision), nil
}

func (s *MemoryStore) LoadCanonical(ctx context.Context, contentID uuid.UUID) (*Revision, error) {
	item, err := s.GetItem(ctx, contentID)
	if err != nil {
		return nil, err
	}
	return s.LoadRevision(ctx, contentID, item.DefaultRevisionID)
}

func (s *MemoryStore) LatestRevisionFor(_ context.Context, contentID uuid.UUID, langcode string) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.items[contentID]; !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: contentID.String()}
	}
	revision := latestFor(s.sortedRevisionsLocked(contentID), langcode)
	if revision == nil {
		return nil, &NotFoundError{Resource: "translation", Key: contentID.String() + ":" + domain.NormalizeLangcode(langcode)}
	}
	return revision, nil
}

func (s *MemoryStore) SaveTranslation(_ context.Context, input SaveTranslationInput) (*SaveResult, error) {
	if input.ContentID == uuid.Nil {
		return nil, ErrContentIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[input.ContentID]
	if !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: input.ContentID.String()}
	}
	baseID := input.RevisionID
	if baseID == 0 {
		baseID = item.LatestRevisionID
	}
	base := s.findRevisionLocked(input.ContentID, baseID)
	if base == nil {
		return nil, &NotFoundError{Resource: "revision", Key: revisionKey(input.ContentID, baseID)}
	}

	plan, err := planSave(item, base, s.canonical[item.ID], input, s.now().UTC())
	if err != nil {
		return nil, err
	}

	result := plan.result
	s.items[item.ID] = cloneItem(result.Item)
	if result.NewRevision {
		s.revisions[item.ID] = append(s.revisions[item.ID], cloneRevision(result.Revision))
	} else {
		list := s.revisions[item.ID]
		for idx, existing := range list {
			if existing.RevisionID == result.Revision.RevisionID {
				list[idx] = cloneRevision(result.Revision)
				break
			}
		}
	}
	rows := s.canonical[item.ID]
	if rows == nil {
		rows = make(map[string]*CanonicalRow)
		s.canonical[item.ID] = rows
	}
	for _, row := range plan.canonical {
		rows[row.Langcode] = cloneCanonical(row)
	}
	return result, nil
}

func (s *MemoryStore) CanonicalRows(_ context.Context, contentID uuid.UUID) ([]*CanonicalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.items[contentID]; !ok {
		return nil, &NotFoundError{Resource: "content_item", Key: contentID.String()}
	}
	rows := make([]*CanonicalRow, 0, len(s.canonical[contentID]))
	for _, row := range s.canonical[contentID] {
		rows = append(rows, cloneCanonical(row))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Langcode < rows[j].Langcode })
	return rows, nil
}

func (s *MemoryStore) findRevisionLocked(contentID uuid.UUID, revisionID int64) *Revision {
	for _, revision := range s.revisions[contentID] {
		if revision.RevisionID == revisionID {
			return revision
		}
	}
	return nil
}

func (s *MemoryStore) sortedRevisionsLocked(contentID uuid.UUID) []*Revision {
	list := s.revisions[contentID]
	out := make([]*Revision, 0, len(list))
	for _, revision := range list {
		out = append(out, cloneRevision(revision))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RevisionID > out[j].RevisionID })
	return out
}

func revisionKey(contentID uuid.UUID, revisionID int64) string {
	return contentID.String() + "@" + strconv.FormatInt(revisionID, 10)
}
