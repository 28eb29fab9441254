package contentrevisions

import (
	"context"

	admintranslations "github.com/goliatone/go-content-revisions/internal/admin/translations"
	moderationcmd "github.com/goliatone/go-content-revisions/internal/commands/moderation"
	"github.com/goliatone/go-content-revisions/internal/di"
	"github.com/goliatone/go-content-revisions/internal/moderation"
	"github.com/goliatone/go-content-revisions/internal/overview"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

// Store exports the revision store contract.
type Store = revisions.Store

// OverviewService exports the translation overview service.
type OverviewService = *overview.Service

// Overview exports the revision by language status matrix.
type Overview = overview.Overview

// OverviewRow exports a single revision row of the matrix.
type OverviewRow = overview.Row

// OverviewCell exports a single language cell of the matrix.
type OverviewCell = overview.Cell

// Operation exports a resolved cell or row operation.
type Operation = overview.Operation

// SyncEngine exports the moderation sync engine.
type SyncEngine = *moderation.Engine

// SyncConflictError exports the per sibling sync failure.
type SyncConflictError = moderation.SyncConflictError

// PartialSyncError exports the aggregate sync failure.
type PartialSyncError = moderation.PartialSyncError

// SettingsService exports the translation settings admin service.
type SettingsService = *admintranslations.Service

// Settings exports the persisted translation settings.
type Settings = translationconfig.Settings

// CommandRegistry exports the registry accepted by Commands.
type CommandRegistry = moderationcmd.CommandRegistry

// CommandHandlers exports the registered moderation command handlers.
type CommandHandlers = *moderationcmd.HandlerSet

// Command messages accepted by the moderation handlers.
type (
	ChangeModerationStateCommand = moderationcmd.ChangeModerationStateCommand
	AddTranslationCommand        = moderationcmd.AddTranslationCommand
	ApplySyncSettingCommand      = moderationcmd.ApplySyncSettingCommand
)

// Option exports container overrides.
type Option = di.Option

var (
	WithLoggerProvider     = di.WithLoggerProvider
	WithBunDB              = di.WithBunDB
	WithStore              = di.WithStore
	WithSettingsRepository = di.WithSettingsRepository
	WithActivitySink       = di.WithActivitySink
	WithCapabilityOracle   = di.WithCapabilityOracle
	WithLanguageRegistry   = di.WithLanguageRegistry
	WithWorkflowEngine     = di.WithWorkflowEngine
	WithURLResolver        = di.WithURLResolver
	WithContentTypes       = di.WithContentTypes
	WithClock              = di.WithClock
)

// IsPartialSync reports whether err carries a PartialSyncError.
func IsPartialSync(err error) bool {
	return moderation.IsPartialSync(err)
}

// IsDataIntegrity reports whether err carries an overview data integrity error.
func IsDataIntegrity(err error) bool {
	return overview.IsDataIntegrity(err)
}

// Module represents the top level revisions runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a revisions module using the provided configuration and
// optional container overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Store returns the hooked revision store. Saves through it trigger the
// moderation sync.
func (m *Module) Store() Store {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Store()
}

// Overview returns the overview service.
func (m *Module) Overview() OverviewService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.OverviewService()
}

// BuildOverview renders the status matrix for a content item.
func (m *Module) BuildOverview(ctx context.Context, contentID uuid.UUID) (*Overview, error) {
	return m.Overview().BuildOverview(ctx, contentID)
}

// Sync returns the moderation sync engine.
func (m *Module) Sync() SyncEngine {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.SyncEngine()
}

// Settings returns the translation settings admin service.
func (m *Module) Settings() SettingsService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.SettingsService()
}

// SyncEnabled reports the live moderation sync setting.
func (m *Module) SyncEnabled() bool {
	if m == nil || m.container == nil {
		return false
	}
	return m.container.SyncState().SyncEnabled()
}

// Commands registers the moderation command handlers with reg.
func (m *Module) Commands(reg CommandRegistry) (CommandHandlers, error) {
	return m.container.RegisterCommands(reg)
}

// WorkflowEngine returns the configured workflow engine.
func (m *Module) WorkflowEngine() interfaces.WorkflowEngine {
	return m.container.WorkflowEngine()
}

// Languages returns the configured language registry.
func (m *Module) Languages() interfaces.LanguageRegistry {
	return m.container.LanguageRegistry()
}

// Close releases the settings subscription and any owned database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
