package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes something an actor did to an object.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives activity events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

// Notify implements Hook.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// Hooks fans an event out to every hook and joins their errors.
type Hooks []Hook

// Notify implements Hook.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emitter stamps events with defaults before handing them to a hook.
type Emitter struct {
	hook    Hook
	channel string
	now     func() time.Time
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithChannel sets the channel applied to events without one.
func WithChannel(channel string) EmitterOption {
	return func(e *Emitter) {
		e.channel = strings.TrimSpace(channel)
	}
}

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) EmitterOption {
	return func(e *Emitter) {
		if clock != nil {
			e.now = clock
		}
	}
}

// NewEmitter constructs an emitter. A nil hook yields a no-op emitter.
func NewEmitter(hook Hook, opts ...EmitterOption) *Emitter {
	emitter := &Emitter{hook: hook, now: time.Now}
	for _, opt := range opts {
		opt(emitter)
	}
	return emitter
}

// Enabled reports whether events go anywhere.
func (e *Emitter) Enabled() bool {
	return e != nil && e.hook != nil
}

// Emit sends the event. Events without a verb are dropped.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	return e.hook.Notify(ctx, event)
}
