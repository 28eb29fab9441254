package moderationcmd

import (
	"errors"

	"github.com/goliatone/go-content-revisions/internal/commands"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterModerationCommands.
type HandlerSet struct {
	ChangeState    *ChangeModerationStateHandler
	AddTranslation *AddTranslationHandler
	SyncSetting    *ApplySyncSettingHandler
}

// Handlers lists the constructed handlers in registration order.
func (s *HandlerSet) Handlers() []any {
	if s == nil {
		return nil
	}
	handlers := []any{s.ChangeState, s.AddTranslation}
	if s.SyncSetting != nil {
		handlers = append(handlers, s.SyncSetting)
	}
	return handlers
}

// Dependencies lists the collaborators shared by the moderation handlers.
type Dependencies struct {
	Store    revisions.Store
	Guard    Guard
	Settings SettingsService
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	changeStateOpts    []commands.HandlerOption[ChangeModerationStateCommand]
	addTranslationOpts []commands.HandlerOption[AddTranslationCommand]
	syncSettingOpts    []commands.HandlerOption[ApplySyncSettingCommand]
}

// WithChangeStateOptions forwards options to the ChangeModerationStateHandler constructor.
func WithChangeStateOptions(opts ...commands.HandlerOption[ChangeModerationStateCommand]) Option {
	return func(cfg *options) {
		cfg.changeStateOpts = append(cfg.changeStateOpts, opts...)
	}
}

// WithAddTranslationOptions forwards options to the AddTranslationHandler constructor.
func WithAddTranslationOptions(opts ...commands.HandlerOption[AddTranslationCommand]) Option {
	return func(cfg *options) {
		cfg.addTranslationOpts = append(cfg.addTranslationOpts, opts...)
	}
}

// WithSyncSettingOptions forwards options to the ApplySyncSettingHandler constructor.
func WithSyncSettingOptions(opts ...commands.HandlerOption[ApplySyncSettingCommand]) Option {
	return func(cfg *options) {
		cfg.syncSettingOpts = append(cfg.syncSettingOpts, opts...)
	}
}

// RegisterModerationCommands builds the moderation command handlers and registers them with
// the provided registry. The settings handler is only built when deps.Settings is set.
func RegisterModerationCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if deps.Store == nil {
		return nil, errors.New("moderation command registration: store is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "moderation")

	set := &HandlerSet{
		ChangeState:    NewChangeModerationStateHandler(deps.Store, deps.Guard, logger, cfg.changeStateOpts...),
		AddTranslation: NewAddTranslationHandler(deps.Store, deps.Guard, logger, cfg.addTranslationOpts...),
	}
	if deps.Settings != nil {
		set.SyncSetting = NewApplySyncSettingHandler(deps.Settings, logger, cfg.syncSettingOpts...)
	}

	if reg != nil {
		for _, handler := range set.Handlers() {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
