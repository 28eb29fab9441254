package translationconfig

import (
	"context"
	"errors"
	"time"
)

// ErrSettingsNotFound indicates that translation settings have not been configured yet.
var ErrSettingsNotFound = errors.New("translationconfig: settings not found")

// Settings capture the revision translation toggles editable at runtime.
type Settings struct {
	// SyncModerationStateTranslations propagates a moderation state change on
	// one translation to every sibling translation of the same content.
	SyncModerationStateTranslations bool
}

// Repository persists translation settings and emits change notifications.
// Upserting unchanged settings emits nothing.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, settings Settings) (Settings, error)
	Delete(ctx context.Context) error
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent reports a settings mutation. Previous is the zero value for
// ChangeCreated; Settings is the zero value for ChangeDeleted.
type ChangeEvent struct {
	Type       ChangeType
	Settings   Settings
	Previous   Settings
	OccurredAt time.Time
}

// SyncToggled reports whether the event flipped the moderation sync flag.
func (e ChangeEvent) SyncToggled() bool {
	return e.Settings.SyncModerationStateTranslations != e.Previous.SyncModerationStateTranslations
}
