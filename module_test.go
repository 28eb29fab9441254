package contentrevisions_test

import (
	"context"
	"reflect"
	"testing"

	contentrevisions "github.com/goliatone/go-content-revisions"
	"github.com/goliatone/go-content-revisions/internal/commands/fixtures"
	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/testsupport"
	"github.com/google/uuid"
)

var _ func(*contentrevisions.Module) contentrevisions.Store = (*contentrevisions.Module).Store
var _ func(*contentrevisions.Module) contentrevisions.OverviewService = (*contentrevisions.Module).Overview
var _ func(*contentrevisions.Module) contentrevisions.SyncEngine = (*contentrevisions.Module).Sync
var _ func(*contentrevisions.Module) contentrevisions.SettingsService = (*contentrevisions.Module).Settings

type matrixGolden struct {
	Rows []matrixRow `json:"rows"`
}

type matrixRow struct {
	RevisionID int64             `json:"revision_id"`
	Default    bool              `json:"default"`
	Current    bool              `json:"current"`
	Statuses   map[string]string `json:"statuses"`
}

func project(result *contentrevisions.Overview) matrixGolden {
	out := matrixGolden{}
	for _, row := range result.Rows {
		projected := matrixRow{
			RevisionID: row.RevisionID,
			Default:    row.Default,
			Current:    row.Current,
			Statuses:   map[string]string{},
		}
		for _, cell := range row.Cells {
			projected.Statuses[cell.Langcode] = cell.Status
		}
		out.Rows = append(out.Rows, projected)
	}
	return out
}

func newModule(t *testing.T, opts ...contentrevisions.Option) *contentrevisions.Module {
	t.Helper()
	cfg := contentrevisions.DefaultConfig()
	cfg.Languages = append(cfg.Languages,
		contentrevisions.LanguageConfig{Code: "fr", Name: "French"},
		contentrevisions.LanguageConfig{Code: "de", Name: "German"},
	)
	cfg.Sync.ModerationStateTranslations = true

	module, err := contentrevisions.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func seedTranslatedItem(t *testing.T, module *contentrevisions.Module) (uuid.UUID, contentrevisions.CommandHandlers) {
	t.Helper()
	ctx := context.Background()

	handlers, err := module.Commands(fixtures.NewRecordingRegistry())
	if err != nil {
		t.Fatalf("Commands() error = %v", err)
	}
	item, err := module.Store().CreateItem(ctx, revisions.CreateItemInput{
		ContentType: "article",
		Langcode:    "en",
		Label:       "Launch",
	})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if err := handlers.AddTranslation.Execute(ctx, contentrevisions.AddTranslationCommand{
		ContentID: item.ID,
		Source:    "en",
		Target:    "fr",
	}); err != nil {
		t.Fatalf("add translation: %v", err)
	}
	return item.ID, handlers
}

func TestModuleOverviewMatchesGolden(t *testing.T) {
	module := newModule(t)
	contentID, handlers := seedTranslatedItem(t, module)
	ctx := context.Background()

	if err := handlers.ChangeState.Execute(ctx, contentrevisions.ChangeModerationStateCommand{
		ContentID: contentID,
		Langcode:  "en",
		State:     string(domain.ModerationStatePublished),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	viewCtx := permissions.WithPermissions(ctx, permissions.TranslateAnyEntity)
	result, err := module.BuildOverview(viewCtx, contentID)
	if err != nil {
		t.Fatalf("BuildOverview() error = %v", err)
	}

	var want matrixGolden
	if err := testsupport.LoadGolden("overview_matrix.json", &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if got := project(result); !reflect.DeepEqual(got, want) {
		t.Fatalf("overview mismatch\nwant: %+v\ngot:  %+v", want, got)
	}
}

func TestModuleSettingsToggleStopsSync(t *testing.T) {
	module := newModule(t)
	contentID, handlers := seedTranslatedItem(t, module)
	ctx := context.Background()

	if _, err := module.Settings().SetSyncModerationState(ctx, false); err != nil {
		t.Fatalf("SetSyncModerationState() error = %v", err)
	}
	if module.SyncEnabled() {
		t.Fatalf("expected sync to be disabled")
	}

	if err := handlers.ChangeState.Execute(ctx, contentrevisions.ChangeModerationStateCommand{
		ContentID: contentID,
		Langcode:  "fr",
		State:     string(domain.ModerationStatePublished),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	result, err := module.BuildOverview(permissions.WithPermissions(ctx, permissions.TranslateAnyEntity), contentID)
	if err != nil {
		t.Fatalf("BuildOverview() error = %v", err)
	}
	statuses := project(result).Rows[0].Statuses
	if statuses["fr"] != "Published" || statuses["en"] != "Draft" {
		t.Fatalf("expected fr Published and en Draft, got %v", statuses)
	}
}

func TestModuleReportsPartialSync(t *testing.T) {
	module := newModule(t)
	contentID, handlers := seedTranslatedItem(t, module)
	ctx := context.Background()

	if _, err := module.Settings().SetSyncModerationState(ctx, false); err != nil {
		t.Fatalf("disable sync: %v", err)
	}
	for _, step := range []domain.ModerationState{domain.ModerationStatePublished, domain.ModerationStateArchived} {
		if err := handlers.ChangeState.Execute(ctx, contentrevisions.ChangeModerationStateCommand{
			ContentID: contentID,
			Langcode:  "en",
			State:     string(step),
		}); err != nil {
			t.Fatalf("move en to %s: %v", step, err)
		}
	}
	if _, err := module.Settings().SetSyncModerationState(ctx, true); err != nil {
		t.Fatalf("enable sync: %v", err)
	}

	err := handlers.ChangeState.Execute(ctx, contentrevisions.ChangeModerationStateCommand{
		ContentID: contentID,
		Langcode:  "fr",
		State:     string(domain.ModerationStatePublished),
	})
	if !contentrevisions.IsPartialSync(err) {
		t.Fatalf("expected partial sync error, got %v", err)
	}

	result, err := module.BuildOverview(permissions.WithPermissions(ctx, permissions.TranslateAnyEntity), contentID)
	if err != nil {
		t.Fatalf("BuildOverview() error = %v", err)
	}
	statuses := project(result).Rows[0].Statuses
	if statuses["fr"] != "Published" || statuses["en"] != "Archived" {
		t.Fatalf("expected fr Published and en Archived, got %v", statuses)
	}
}

func TestModuleWithSQLiteDatabase(t *testing.T) {
	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	module := newModule(t, contentrevisions.WithBunDB(db))
	contentID, handlers := seedTranslatedItem(t, module)
	ctx := context.Background()

	if err := handlers.ChangeState.Execute(ctx, contentrevisions.ChangeModerationStateCommand{
		ContentID: contentID,
		Langcode:  "fr",
		State:     string(domain.ModerationStateNeedsReview),
	}); err != nil {
		t.Fatalf("request review: %v", err)
	}

	result, err := module.BuildOverview(permissions.WithPermissions(ctx, permissions.TranslateAnyEntity), contentID)
	if err != nil {
		t.Fatalf("BuildOverview() error = %v", err)
	}
	statuses := project(result).Rows[0].Statuses
	if statuses["en"] != "Needs Review" || statuses["fr"] != "Needs Review" {
		t.Fatalf("expected both translations in review, got %v", statuses)
	}
}
