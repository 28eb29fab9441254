package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-content-revisions/internal/logging"
)

type retryCommand struct {
	ContentID string
}

func (retryCommand) Type() string { return "revisions.test.dispatch_retry" }

func (retryCommand) Validate() error { return nil }

func (m retryCommand) LogContext() logging.LogContext {
	return logging.LogContext{ContentID: m.ContentID}
}

type exhaustCommand struct{}

func (exhaustCommand) Type() string { return "revisions.test.dispatch_exhaust" }

func (exhaustCommand) Validate() error { return nil }

func TestDispatcherRetriesTransientStoreFailure(t *testing.T) {
	var attempts int
	var scopes []string
	handler := NewHandler(func(ctx context.Context, _ retryCommand) error {
		attempts++
		scopes = append(scopes, logging.RevisionFromContext(ctx).ContentID)
		if attempts == 1 {
			return errors.New("database is locked")
		}
		return nil
	}, WithTimeout[retryCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), retryCommand{ContentID: "item-1"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	for i, scope := range scopes {
		if scope != "item-1" {
			t.Fatalf("attempt %d: expected revision scope item-1, got %q", i+1, scope)
		}
	}
}

func TestDispatcherRetryExhaustionPropagatesError(t *testing.T) {
	var attempts int
	handler := NewHandler(func(ctx context.Context, _ exhaustCommand) error {
		attempts++
		return errors.New("revision store unavailable")
	}, WithTimeout[exhaustCommand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), exhaustCommand{}); err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}
