package moderationcmd

import (
	"context"

	"github.com/goliatone/go-content-revisions/internal/commands"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

const applySyncSettingMessageType = "revisions.moderation.apply_sync_setting"

// SettingsService toggles moderation state synchronisation.
type SettingsService interface {
	SetSyncModerationState(ctx context.Context, enabled bool) (translationconfig.Settings, error)
}

// ApplySyncSettingCommand enables or disables moderation state synchronisation.
type ApplySyncSettingCommand struct {
	Enabled bool `json:"enabled"`
}

// Type implements command.Message.
func (ApplySyncSettingCommand) Type() string { return applySyncSettingMessageType }

// Validate has nothing to check: both values are legal.
func (ApplySyncSettingCommand) Validate() error { return nil }

// ApplySyncSettingHandler persists the sync toggle. Callers need the
// administer permission when the context carries a permission checker.
type ApplySyncSettingHandler struct {
	inner *commands.Handler[ApplySyncSettingCommand]
}

// NewApplySyncSettingHandler constructs a handler bound to service.
func NewApplySyncSettingHandler(service SettingsService, logger interfaces.Logger, opts ...commands.HandlerOption[ApplySyncSettingCommand]) *ApplySyncSettingHandler {
	exec := func(ctx context.Context, msg ApplySyncSettingCommand) error {
		if service == nil {
			return ErrSettingsUnavailable
		}
		if err := permissions.Require(ctx, permissions.AdministerContent); err != nil {
			return err
		}
		_, err := service.SetSyncModerationState(ctx, msg.Enabled)
		return err
	}

	handlerOpts := []commands.HandlerOption[ApplySyncSettingCommand]{
		commands.WithLogger[ApplySyncSettingCommand](logger),
		commands.WithOperation[ApplySyncSettingCommand]("moderation.apply_sync_setting"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ApplySyncSettingHandler{
		inner: commands.NewHandler[ApplySyncSettingCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ApplySyncSettingCommand].Execute.
func (h *ApplySyncSettingHandler) Execute(ctx context.Context, msg ApplySyncSettingCommand) error {
	return h.inner.Execute(ctx, msg)
}
