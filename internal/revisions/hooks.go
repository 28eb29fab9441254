package revisions

import (
	"context"
	"errors"
	"sync"
)

// SaveHook observes committed translation saves. Returned errors are
// reported alongside the save result; the save itself is never undone.
type SaveHook interface {
	OnSave(ctx context.Context, result *SaveResult) error
}

// SaveHookFunc adapts a function into a SaveHook.
type SaveHookFunc func(ctx context.Context, result *SaveResult) error

// OnSave implements SaveHook.
func (fn SaveHookFunc) OnSave(ctx context.Context, result *SaveResult) error {
	return fn(ctx, result)
}

// HookedStore decorates a Store so every successful SaveTranslation invokes
// the registered hooks in registration order.
type HookedStore struct {
	Store

	mu    sync.RWMutex
	hooks []SaveHook
}

// NewHookedStore wraps base with the provided hooks.
func NewHookedStore(base Store, hooks ...SaveHook) *HookedStore {
	store := &HookedStore{Store: base}
	for _, hook := range hooks {
		store.Register(hook)
	}
	return store
}

// Register appends a hook.
func (s *HookedStore) Register(hook SaveHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// SaveTranslation persists through the wrapped store and then runs the hooks.
// When hooks fail the result is still returned together with the joined error.
func (s *HookedStore) SaveTranslation(ctx context.Context, input SaveTranslationInput) (*SaveResult, error) {
	result, err := s.Store.SaveTranslation(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	hooks := make([]SaveHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.RUnlock()

	var hookErrs []error
	for _, hook := range hooks {
		if err := hook.OnSave(ctx, result); err != nil {
			hookErrs = append(hookErrs, err)
		}
	}
	return result, errors.Join(hookErrs...)
}
