package translationconfig

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-content-revisions/pkg/testsupport"
	"github.com/uptrace/bun"
)

func TestBunRepository_CRUDEvents(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := repo.Upsert(ctx, Settings{SyncModerationStateTranslations: true}); err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	assertEvent(t, events, ChangeCreated)

	if _, err := repo.Upsert(ctx, Settings{SyncModerationStateTranslations: false}); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	assertEvent(t, events, ChangeUpdated)

	fetched, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched.SyncModerationStateTranslations {
		t.Fatalf("Get() returned %+v", fetched)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)

	if _, err := repo.Get(ctx); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func TestBunRepository_DeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)

	if err := repo.Delete(context.Background()); !errors.Is(err, ErrSettingsNotFound) {
		t.Fatalf("expected ErrSettingsNotFound, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := NewBunRepository(db).Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestBunRepository_UnchangedUpsertIsSilent(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := repo.Upsert(ctx, Settings{SyncModerationStateTranslations: true}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if _, err := repo.Upsert(ctx, Settings{SyncModerationStateTranslations: true}); err != nil {
		t.Fatalf("Upsert() repeat error = %v", err)
	}
	select {
	case evt := <-events:
		t.Fatalf("expected no event, got %+v", evt)
	default:
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}
