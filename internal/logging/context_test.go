package logging

import (
	"context"
	"reflect"
	"testing"
)

func TestContextWithRevisionMergesNonZeroValues(t *testing.T) {
	ctx := ContextWithRevision(context.Background(), LogContext{ContentID: "item-1", ActorID: "editor"})
	ctx = ContextWithRevision(ctx, LogContext{RevisionID: 3, Langcode: "fr"})

	got := RevisionFromContext(ctx)
	want := LogContext{ContentID: "item-1", RevisionID: 3, Langcode: "fr", ActorID: "editor"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestRevisionFromContextWithoutValue(t *testing.T) {
	if got := RevisionFromContext(context.Background()); got != (LogContext{}) {
		t.Fatalf("expected empty log context, got %+v", got)
	}
}

func TestFromContextAttachesRevisionFields(t *testing.T) {
	rec := &recordingLogger{}
	ctx := ContextWithRevision(context.Background(), LogContext{ContentID: "item-1", RevisionID: 2})

	_ = FromContext(rec, ctx)

	if len(rec.contexts) != 1 || rec.contexts[0] != ctx {
		t.Fatalf("expected context to be bound once, got %v", rec.contexts)
	}
	want := map[string]any{fieldContentID: "item-1", fieldRevisionID: int64(2)}
	if len(rec.fields) != 1 || !reflect.DeepEqual(rec.fields[0], want) {
		t.Fatalf("expected fields %v, got %v", want, rec.fields)
	}
}

func TestFromContextSkipsEmptyFields(t *testing.T) {
	rec := &recordingLogger{}
	_ = FromContext(rec, context.Background())
	if len(rec.fields) != 0 {
		t.Fatalf("expected no fields to be attached, got %v", rec.fields)
	}
}
