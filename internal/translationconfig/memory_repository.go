package translationconfig

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps translation settings in process.
type MemoryRepository struct {
	mu          sync.RWMutex
	settings    *Settings
	now         func() time.Time
	broadcaster *changeBroadcaster
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:         time.Now,
		broadcaster: newChangeBroadcaster(),
	}
}

func (r *MemoryRepository) Get(context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return Settings{}, ErrSettingsNotFound
	}
	return *r.settings, nil
}

func (r *MemoryRepository) Upsert(_ context.Context, settings Settings) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evt := ChangeEvent{Type: ChangeCreated, Settings: settings, OccurredAt: r.now()}
	if r.settings != nil {
		if *r.settings == settings {
			return settings, nil
		}
		evt.Type = ChangeUpdated
		evt.Previous = *r.settings
	}
	stored := settings
	r.settings = &stored
	r.broadcaster.Broadcast(evt)
	return settings, nil
}

func (r *MemoryRepository) Delete(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return ErrSettingsNotFound
	}
	previous := *r.settings
	r.settings = nil
	r.broadcaster.Broadcast(ChangeEvent{Type: ChangeDeleted, Previous: previous, OccurredAt: r.now()})
	return nil
}

func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}
