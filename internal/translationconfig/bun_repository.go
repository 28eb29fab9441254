package translationconfig

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var errBunDatabaseRequired = errors.New("translationconfig: bun repository requires a database")

// BunRepository persists translation settings using a Bun-backed database.
type BunRepository struct {
	db          *bun.DB
	broadcaster *changeBroadcaster
	now         func() time.Time
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{
		db:          db,
		broadcaster: newChangeBroadcaster(),
		now:         time.Now,
	}
}

// Migrate creates the settings table when missing.
func (r *BunRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errBunDatabaseRequired
	}
	_, err := r.db.NewCreateTable().Model((*settingsModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Get returns the persisted translation settings.
func (r *BunRepository) Get(ctx context.Context) (Settings, error) {
	if r.db == nil {
		return Settings{}, errBunDatabaseRequired
	}
	var model settingsModel
	if err := r.db.NewSelect().Model(&model).Where("id = ?", 1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrSettingsNotFound
		}
		return Settings{}, err
	}
	return modelToSettings(&model), nil
}

// Upsert creates or updates the persisted translation settings.
func (r *BunRepository) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if r.db == nil {
		return Settings{}, errBunDatabaseRequired
	}

	var existing settingsModel
	err := r.db.NewSelect().Model(&existing).Where("id = ?", 1).Scan(ctx)
	created := false
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			created = true
		} else {
			return Settings{}, err
		}
	}

	if !created && modelToSettings(&existing) == settings {
		return settings, nil
	}

	now := r.now().UTC()
	model := modelFromSettings(settings)
	model.ID = 1
	model.UpdatedAt = now

	if created {
		if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
			return Settings{}, err
		}
	} else {
		if _, err := r.db.NewUpdate().
			Model(&model).
			Column("sync_moderation_state_translations", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return Settings{}, err
		}
	}

	stored, err := r.Get(ctx)
	if err != nil {
		return Settings{}, err
	}

	evt := ChangeEvent{Type: ChangeCreated, Settings: stored, OccurredAt: now}
	if !created {
		evt.Type = ChangeUpdated
		evt.Previous = modelToSettings(&existing)
	}
	r.broadcaster.Broadcast(evt)
	return stored, nil
}

// Delete clears persisted settings.
func (r *BunRepository) Delete(ctx context.Context) error {
	if r.db == nil {
		return errBunDatabaseRequired
	}
	var model settingsModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", 1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettingsNotFound
		}
		return err
	}
	if _, err := r.db.NewDelete().Model(&model).WherePK().Exec(ctx); err != nil {
		return err
	}
	r.broadcaster.Broadcast(ChangeEvent{
		Type:       ChangeDeleted,
		Previous:   modelToSettings(&model),
		OccurredAt: r.now().UTC(),
	})
	return nil
}

// Subscribe delivers change events until the context is cancelled.
func (r *BunRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.broadcaster.Subscribe(ctx)
}

type settingsModel struct {
	bun.BaseModel `bun:"table:translation_revision_settings"`

	ID                              int       `bun:",pk"`
	SyncModerationStateTranslations bool      `bun:"sync_moderation_state_translations,notnull"`
	UpdatedAt                       time.Time `bun:"updated_at"`
}

func modelFromSettings(settings Settings) settingsModel {
	return settingsModel{
		SyncModerationStateTranslations: settings.SyncModerationStateTranslations,
	}
}

func modelToSettings(model *settingsModel) Settings {
	if model == nil {
		return Settings{}
	}
	return Settings{
		SyncModerationStateTranslations: model.SyncModerationStateTranslations,
	}
}
