package translationconfig

import (
	"context"
	"sync/atomic"
)

// State provides a concurrency-safe view of translation toggles.
type State struct {
	sync     atomic.Bool
	fallback atomic.Bool
}

// NewState constructs a new state seeded with settings. The seed also acts as
// the fallback applied when persisted settings are deleted.
func NewState(settings Settings) *State {
	st := &State{}
	st.sync.Store(settings.SyncModerationStateTranslations)
	st.fallback.Store(settings.SyncModerationStateTranslations)
	return st
}

// SyncEnabled reports whether moderation states are synchronised across translations.
func (s *State) SyncEnabled() bool {
	if s == nil {
		return false
	}
	return s.sync.Load()
}

// SetSyncEnabled updates the moderation sync toggle.
func (s *State) SetSyncEnabled(enabled bool) {
	if s == nil {
		return
	}
	s.sync.Store(enabled)
}

// Settings returns a snapshot of the current toggles.
func (s *State) Settings() Settings {
	return Settings{SyncModerationStateTranslations: s.SyncEnabled()}
}

// Apply updates the state from a repository change event.
func (s *State) Apply(evt ChangeEvent) {
	if s == nil {
		return
	}
	switch evt.Type {
	case ChangeDeleted:
		s.sync.Store(s.fallback.Load())
	default:
		s.sync.Store(evt.Settings.SyncModerationStateTranslations)
	}
}

// Follow subscribes to repository changes and applies them to the state until
// the context is cancelled. Observers run after each event is applied. The
// returned channel closes once the subscription ends.
func (s *State) Follow(ctx context.Context, repo Repository, observers ...func(ChangeEvent)) (<-chan struct{}, error) {
	done := make(chan struct{})
	if s == nil || repo == nil {
		close(done)
		return done, nil
	}
	events, err := repo.Subscribe(ctx)
	if err != nil {
		close(done)
		return done, err
	}
	go func() {
		defer close(done)
		for evt := range events {
			s.Apply(evt)
			for _, observe := range observers {
				observe(evt)
			}
		}
	}()
	return done, nil
}
