package moderation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type propagationKey struct{}

// propagation marks the content items a call chain is currently
// synchronising. It lives on the request context only.
type propagation struct {
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

// enterPropagation marks contentID as propagating on ctx. ok is false when
// the chain is already propagating for the item; release must run on every
// exit path otherwise.
func enterPropagation(ctx context.Context, contentID uuid.UUID) (next context.Context, release func(), ok bool) {
	marker, _ := ctx.Value(propagationKey{}).(*propagation)
	if marker == nil {
		marker = &propagation{active: make(map[uuid.UUID]struct{})}
		ctx = context.WithValue(ctx, propagationKey{}, marker)
	}

	marker.mu.Lock()
	defer marker.mu.Unlock()
	if _, busy := marker.active[contentID]; busy {
		return ctx, func() {}, false
	}
	marker.active[contentID] = struct{}{}

	var once sync.Once
	release = func() {
		once.Do(func() {
			marker.mu.Lock()
			delete(marker.active, contentID)
			marker.mu.Unlock()
		})
	}
	return ctx, release, true
}

// Propagating reports whether ctx belongs to a sync call chain for contentID.
func Propagating(ctx context.Context, contentID uuid.UUID) bool {
	if ctx == nil {
		return false
	}
	marker, _ := ctx.Value(propagationKey{}).(*propagation)
	if marker == nil {
		return false
	}
	marker.mu.Lock()
	defer marker.mu.Unlock()
	_, busy := marker.active[contentID]
	return busy
}
