package translationconfig

import (
	"context"
	"sync"
)

// changeBroadcaster fans settings events out to subscribers. Each subscriber
// holds at most one pending event; a newer event replaces an unread one so
// slow readers always converge on the latest settings.
type changeBroadcaster struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

type subscriber struct {
	ch chan ChangeEvent
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{subscribers: map[*subscriber]struct{}{}}
}

func (b *changeBroadcaster) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sub := &subscriber{ch: make(chan ChangeEvent, 1)}
	if ctx.Err() != nil {
		close(sub.ch)
		return sub.ch, nil
	}

	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, sub)
		close(sub.ch)
	})
	return sub.ch, nil
}

func (b *changeBroadcaster) Broadcast(evt ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		sub.offer(evt)
	}
}

// offer must be called with the broadcaster lock held.
func (s *subscriber) offer(evt ChangeEvent) {
	for {
		select {
		case s.ch <- evt:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}
