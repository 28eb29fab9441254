package translations

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-content-revisions/internal/jobs"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
)

// ErrRepositoryRequired indicates the service was constructed without a repository.
var ErrRepositoryRequired = errors.New("admintranslations: repository is required")

// Audit actions recorded for settings changes.
const (
	ActionSettingsCreated = "sync_settings_created"
	ActionSettingsUpdated = "sync_settings_updated"
	ActionSettingsDeleted = "sync_settings_deleted"

	auditEntityType = "translation_revision_settings"
	auditEntityID   = "global"
)

// Option mutates the service configuration.
type Option func(*Service)

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithState keeps the runtime state in step with applied settings.
func WithState(state *translationconfig.State) Option {
	return func(s *Service) {
		s.state = state
	}
}

// WithAuditRecorder overrides the audit recorder dependency.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(s *Service) {
		s.audit = recorder
	}
}

// Service persists revision translation settings and emits audit records.
type Service struct {
	repo  translationconfig.Repository
	audit jobs.AuditRecorder
	state *translationconfig.State
	clock func() time.Time
}

// NewService constructs a translations admin service.
func NewService(repo translationconfig.Repository, recorder jobs.AuditRecorder, opts ...Option) *Service {
	svc := &Service{
		repo:  repo,
		audit: recorder,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// GetSettings returns the stored translation settings.
func (s *Service) GetSettings(ctx context.Context) (translationconfig.Settings, error) {
	if s.repo == nil {
		return translationconfig.Settings{}, ErrRepositoryRequired
	}
	return s.repo.Get(ctx)
}

// ApplySettings stores translation settings and records an audit entry.
func (s *Service) ApplySettings(ctx context.Context, settings translationconfig.Settings) error {
	_, err := s.apply(ctx, settings)
	return err
}

// SetSyncModerationState toggles moderation state synchronisation across translations.
func (s *Service) SetSyncModerationState(ctx context.Context, enabled bool) (translationconfig.Settings, error) {
	return s.apply(ctx, translationconfig.Settings{SyncModerationStateTranslations: enabled})
}

func (s *Service) apply(ctx context.Context, settings translationconfig.Settings) (translationconfig.Settings, error) {
	if s.repo == nil {
		return translationconfig.Settings{}, ErrRepositoryRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	action := ActionSettingsUpdated
	previous, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, translationconfig.ErrSettingsNotFound) {
			action = ActionSettingsCreated
		} else {
			return translationconfig.Settings{}, err
		}
	}

	stored, err := s.repo.Upsert(ctx, settings)
	if err != nil {
		return translationconfig.Settings{}, err
	}
	s.state.SetSyncEnabled(stored.SyncModerationStateTranslations)

	metadata := map[string]any{
		"sync_moderation_state_translations": stored.SyncModerationStateTranslations,
	}
	if action == ActionSettingsUpdated {
		metadata["previous"] = previous.SyncModerationStateTranslations
	}
	s.recordAudit(ctx, jobs.AuditEvent{
		EntityType: auditEntityType,
		EntityID:   auditEntityID,
		Action:     action,
		OccurredAt: s.clock(),
		Metadata:   metadata,
	})
	return stored, nil
}

// Reset clears translation settings from the repository.
func (s *Service) Reset(ctx context.Context) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.repo.Delete(ctx); err != nil {
		return err
	}
	s.state.Apply(translationconfig.ChangeEvent{Type: translationconfig.ChangeDeleted})

	s.recordAudit(ctx, jobs.AuditEvent{
		EntityType: auditEntityType,
		EntityID:   auditEntityID,
		Action:     ActionSettingsDeleted,
		OccurredAt: s.clock(),
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, event jobs.AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.clock()
	}
	_ = s.audit.Record(ctx, event)
}
