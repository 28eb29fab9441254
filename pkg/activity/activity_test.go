package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitterStampsDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	var got []Event
	emitter := NewEmitter(HookFunc(func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	}), WithChannel("revisions"), WithClock(func() time.Time { return now }))

	if err := emitter.Emit(context.Background(), Event{Verb: "moderation_synced", ObjectID: "fr"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := emitter.Emit(context.Background(), Event{}); err != nil {
		t.Fatalf("emit without verb: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Channel != "revisions" || !got[0].OccurredAt.Equal(now) {
		t.Fatalf("unexpected defaults: %+v", got[0])
	}
}

func TestHooksJoinErrors(t *testing.T) {
	first := errors.New("first")
	calls := 0
	hooks := Hooks{
		HookFunc(func(context.Context, Event) error { calls++; return first }),
		nil,
		HookFunc(func(context.Context, Event) error { calls++; return nil }),
	}

	err := hooks.Notify(context.Background(), Event{Verb: "x"})
	if !errors.Is(err, first) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both hooks to run, got %d", calls)
	}
}

func TestNilEmitterIsNoop(t *testing.T) {
	var emitter *Emitter
	if emitter.Enabled() {
		t.Fatalf("nil emitter must be disabled")
	}
	if err := NewEmitter(nil).Emit(context.Background(), Event{Verb: "x"}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
