package moderationcmd

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	admintranslations "github.com/goliatone/go-content-revisions/internal/admin/translations"
	"github.com/goliatone/go-content-revisions/internal/commands/fixtures"
	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/jobs"
	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/internal/moderation"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
	"github.com/goliatone/go-content-revisions/internal/workflow/simple"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

var commandTime = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	store *revisions.HookedStore
	state *translationconfig.State
	item  *revisions.ContentItem
}

func newHarness(t *testing.T, original domain.ModerationState) *harness {
	t.Helper()
	clock := func() time.Time { return commandTime }
	base := revisions.NewMemoryStore(revisions.WithMemoryClock(clock))
	state := translationconfig.NewState(translationconfig.Settings{SyncModerationStateTranslations: true})
	store := revisions.NewHookedStore(base)
	store.Register(moderation.NewEngine(store, state,
		moderation.WithWorkflowEngine(simple.New()),
		moderation.WithClock(clock),
	))

	item, err := store.CreateItem(context.Background(), revisions.CreateItemInput{
		ContentType:     "article",
		Langcode:        "en",
		Label:           "Spring release notes",
		ModerationState: original,
		AuthorID:        "author-en",
		CreatedBy:       "editor",
	})
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	return &harness{store: store, state: state, item: item}
}

func (h *harness) addTranslation(t *testing.T, langcode string) {
	t.Helper()
	handler := NewAddTranslationHandler(h.store, Guard{}, logging.NoOp())
	err := handler.Execute(context.Background(), AddTranslationCommand{
		ContentID: h.item.ID,
		Source:    "en",
		Target:    langcode,
		State:     string(domain.ModerationStateDraft),
		ActorID:   "translator",
	})
	if err != nil {
		t.Fatalf("add %s translation: %v", langcode, err)
	}
}

func (h *harness) latestState(t *testing.T, langcode string) domain.ModerationState {
	t.Helper()
	revision, err := h.store.LatestRevisionFor(context.Background(), h.item.ID, langcode)
	if err != nil {
		t.Fatalf("LatestRevisionFor(%s) error = %v", langcode, err)
	}
	tr, ok := revision.Translation(langcode)
	if !ok {
		t.Fatalf("revision %d has no %s translation", revision.RevisionID, langcode)
	}
	return tr.ModerationState
}

func TestChangeModerationStateSyncsSiblings(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	h.addTranslation(t, "fr")

	handler := NewChangeModerationStateHandler(h.store, Guard{Workflow: simple.New()}, logging.NoOp())
	err := handler.Execute(context.Background(), ChangeModerationStateCommand{
		ContentID: h.item.ID,
		Langcode:  "FR",
		State:     "Published",
		ActorID:   "editor",
	})
	if err != nil {
		t.Fatalf("execute change state: %v", err)
	}

	for _, langcode := range []string{"en", "fr"} {
		if got := h.latestState(t, langcode); got != domain.ModerationStatePublished {
			t.Fatalf("expected %s published, got %q", langcode, got)
		}
	}

	rows, err := h.store.CanonicalRows(context.Background(), h.item.ID)
	if err != nil {
		t.Fatalf("CanonicalRows() error = %v", err)
	}
	for _, row := range rows {
		if row.Status != 1 {
			t.Fatalf("expected canonical %s row published, got status %d", row.Langcode, row.Status)
		}
	}
}

func TestChangeModerationStateValidation(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	handler := NewChangeModerationStateHandler(h.store, Guard{}, logging.NoOp())

	cases := []struct {
		name string
		msg  ChangeModerationStateCommand
	}{
		{name: "missing content", msg: ChangeModerationStateCommand{Langcode: "en", State: "published"}},
		{name: "missing langcode", msg: ChangeModerationStateCommand{ContentID: h.item.ID, State: "published"}},
		{name: "missing state", msg: ChangeModerationStateCommand{ContentID: h.item.ID, Langcode: "en"}},
		{name: "negative revision", msg: ChangeModerationStateCommand{ContentID: h.item.ID, RevisionID: -1, Langcode: "en", State: "published"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := handler.Execute(context.Background(), tc.msg)
			if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestChangeModerationStateDeniedByOracle(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	oracle := permissions.NewOracle(permissions.WithStaticPermissions("edit any article content"))
	handler := NewChangeModerationStateHandler(h.store, Guard{Oracle: oracle}, logging.NoOp())

	err := handler.Execute(context.Background(), ChangeModerationStateCommand{
		ContentID: h.item.ID,
		Langcode:  "en",
		State:     "published",
	})
	if !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if got := h.latestState(t, "en"); got != domain.ModerationStateDraft {
		t.Fatalf("expected en to stay draft, got %q", got)
	}

	ctx := permissions.WithPermissions(context.Background(), permissions.ContentTypePermissions("article").Translate)
	if err := handler.Execute(ctx, ChangeModerationStateCommand{
		ContentID: h.item.ID,
		Langcode:  "en",
		State:     "published",
	}); err != nil {
		t.Fatalf("expected translate permission to allow the change, got %v", err)
	}
}

func TestChangeModerationStateRejectsIllegalTransition(t *testing.T) {
	h := newHarness(t, domain.ModerationStateArchived)
	handler := NewChangeModerationStateHandler(h.store, Guard{Workflow: simple.New()}, logging.NoOp())

	err := handler.Execute(context.Background(), ChangeModerationStateCommand{
		ContentID: h.item.ID,
		Langcode:  "en",
		State:     "published",
	})
	if !errors.Is(err, simple.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if got := h.latestState(t, "en"); got != domain.ModerationStateArchived {
		t.Fatalf("expected en to stay archived, got %q", got)
	}
}

func TestChangeModerationStateReportsPartialSync(t *testing.T) {
	h := newHarness(t, domain.ModerationStateArchived)
	h.state.SetSyncEnabled(false)
	h.addTranslation(t, "fr")
	h.state.SetSyncEnabled(true)

	handler := NewChangeModerationStateHandler(h.store, Guard{}, logging.NoOp())
	err := handler.Execute(context.Background(), ChangeModerationStateCommand{
		ContentID: h.item.ID,
		Langcode:  "fr",
		State:     "published",
	})
	if !moderation.IsPartialSync(err) {
		t.Fatalf("expected partial sync error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if got := h.latestState(t, "fr"); got != domain.ModerationStatePublished {
		t.Fatalf("expected fr save to stay committed, got %q", got)
	}
	if got := h.latestState(t, "en"); got != domain.ModerationStateArchived {
		t.Fatalf("expected en to stay archived, got %q", got)
	}
}

func TestChangeModerationStateMissingTranslation(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	handler := NewChangeModerationStateHandler(h.store, Guard{}, logging.NoOp())

	err := handler.Execute(context.Background(), ChangeModerationStateCommand{
		ContentID:  h.item.ID,
		RevisionID: 1,
		Langcode:   "de",
		State:      "published",
	})
	if !errors.Is(err, ErrTranslationMissing) {
		t.Fatalf("expected missing translation error, got %v", err)
	}
}

func TestAddTranslationDefaultsFromSource(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	h.addTranslation(t, "de")

	revision, err := h.store.LoadRevision(context.Background(), h.item.ID, 1)
	if err != nil {
		t.Fatalf("LoadRevision() error = %v", err)
	}
	tr, ok := revision.Translation("de")
	if !ok {
		t.Fatal("expected de translation on revision 1")
	}
	if tr.Label != "Spring release notes" {
		t.Fatalf("expected label copied from source, got %q", tr.Label)
	}
	if tr.SourceLangcode != "en" {
		t.Fatalf("expected source en, got %q", tr.SourceLangcode)
	}
	if tr.AuthorID != "translator" {
		t.Fatalf("expected translator author, got %q", tr.AuthorID)
	}
	if got := revision.Langcodes(); !reflect.DeepEqual(got, []string{"de", "en"}) {
		t.Fatalf("unexpected langcodes %v", got)
	}
}

func TestAddTranslationErrors(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	h.addTranslation(t, "fr")
	handler := NewAddTranslationHandler(h.store, Guard{}, logging.NoOp())

	cases := []struct {
		name string
		msg  AddTranslationCommand
		want error
	}{
		{
			name: "existing target",
			msg:  AddTranslationCommand{ContentID: h.item.ID, Source: "en", Target: "fr"},
			want: ErrTranslationExists,
		},
		{
			name: "missing source",
			msg:  AddTranslationCommand{ContentID: h.item.ID, Source: "es", Target: "de"},
			want: ErrSourceMissing,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := handler.Execute(context.Background(), tc.msg); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	err := handler.Execute(context.Background(), AddTranslationCommand{ContentID: h.item.ID, Source: "en", Target: "EN"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for same source and target, got %v", err)
	}

	err = handler.Execute(context.Background(), AddTranslationCommand{ContentID: uuid.New(), Source: "en", Target: "de"})
	if !revisions.IsNotFound(err) {
		t.Fatalf("expected not found for unknown content, got %v", err)
	}
}

func TestApplySyncSettingRequiresAdminister(t *testing.T) {
	state := translationconfig.NewState(translationconfig.Settings{})
	recorder := jobs.NewInMemoryAuditRecorder()
	service := admintranslations.NewService(translationconfig.NewMemoryRepository(), recorder, admintranslations.WithState(state))
	handler := NewApplySyncSettingHandler(service, logging.NoOp())

	denied := permissions.WithPermissions(context.Background(), "translate any entity")
	if err := handler.Execute(denied, ApplySyncSettingCommand{Enabled: true}); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if state.SyncEnabled() {
		t.Fatal("expected sync to stay disabled")
	}

	allowed := permissions.WithPermissions(context.Background(), permissions.AdministerContent)
	if err := handler.Execute(allowed, ApplySyncSettingCommand{Enabled: true}); err != nil {
		t.Fatalf("apply sync setting: %v", err)
	}
	if !state.SyncEnabled() {
		t.Fatal("expected sync to be enabled")
	}
	if events := recorder.Filter("translation_revision_settings", admintranslations.ActionSettingsCreated); len(events) != 1 {
		t.Fatalf("expected one settings audit event, got %d", len(events))
	}
}

func TestApplySyncSettingWithoutService(t *testing.T) {
	handler := NewApplySyncSettingHandler(nil, logging.NoOp())
	if err := handler.Execute(context.Background(), ApplySyncSettingCommand{Enabled: true}); !errors.Is(err, ErrSettingsUnavailable) {
		t.Fatalf("expected settings unavailable, got %v", err)
	}
}

func TestRegisterModerationCommands(t *testing.T) {
	h := newHarness(t, domain.ModerationStateDraft)
	registry := fixtures.NewRecordingRegistry()
	service := admintranslations.NewService(translationconfig.NewMemoryRepository(), nil)

	set, err := RegisterModerationCommands(registry, Dependencies{Store: h.store, Settings: service}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := []string{
		"*moderationcmd.ChangeModerationStateHandler",
		"*moderationcmd.AddTranslationHandler",
		"*moderationcmd.ApplySyncSettingHandler",
	}
	if got := registry.TypeNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected registered handlers %v", got)
	}
	if set.SyncSetting == nil {
		t.Fatal("expected settings handler when a service is provided")
	}

	withoutSettings, err := RegisterModerationCommands(nil, Dependencies{Store: h.store}, nil)
	if err != nil {
		t.Fatalf("register without settings: %v", err)
	}
	if got := len(withoutSettings.Handlers()); got != 2 {
		t.Fatalf("expected 2 handlers without settings, got %d", got)
	}

	if _, err := RegisterModerationCommands(registry, Dependencies{}, nil); err == nil {
		t.Fatal("expected error without store")
	}

	failing := &fixtures.RecordingRegistry{FailAfter: 1}
	if _, err := RegisterModerationCommands(failing, Dependencies{Store: h.store}, nil); !errors.Is(err, fixtures.ErrRegistryFull) {
		t.Fatalf("expected registry error, got %v", err)
	}
}
