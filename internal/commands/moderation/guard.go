package moderationcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/internal/workflow"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrTranslationMissing indicates the base revision does not carry the language.
	ErrTranslationMissing = errors.New("moderation command: translation missing on base revision")
	// ErrTranslationExists indicates the target language is already present.
	ErrTranslationExists = errors.New("moderation command: translation already exists")
	// ErrSourceMissing indicates the source language is absent from the base revision.
	ErrSourceMissing = errors.New("moderation command: source translation missing")
	// ErrSettingsUnavailable indicates the sync settings command was wired without a service.
	ErrSettingsUnavailable = errors.New("moderation command: settings service unavailable")
)

// Guard carries the optional collaborators consulted before a save. A zero
// Guard allows every change.
type Guard struct {
	Oracle     interfaces.CapabilityOracle
	Workflow   interfaces.WorkflowEngine
	EntityType string
}

func (g Guard) authorize(ctx context.Context, capability interfaces.Capability, item *revisions.ContentItem, revisionID int64, langcode string) error {
	if g.Oracle == nil {
		return nil
	}
	decision := g.Oracle.Can(ctx, capability, interfaces.CapabilitySubject{
		ContentID:   item.ID,
		ContentType: item.ContentType,
		RevisionID:  revisionID,
	}, langcode)
	if decision.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s on %s (%s)", permissions.ErrPermissionDenied, capability, item.ID, langcode)
}

func (g Guard) transition(ctx context.Context, item *revisions.ContentItem, revisionID int64, tr *revisions.Translation, target domain.ModerationState, actorID string) error {
	if g.Workflow == nil || tr == nil || tr.ModerationState == target {
		return nil
	}
	entityType := g.EntityType
	if entityType == "" {
		entityType = workflow.EntityTypeTranslation
	}
	entityID := tr.ID
	if entityID == uuid.Nil {
		entityID = item.ID
	}
	_, err := g.Workflow.Transition(ctx, interfaces.TransitionInput{
		EntityID:     entityID,
		EntityType:   entityType,
		CurrentState: interfaces.WorkflowState(tr.ModerationState),
		TargetState:  interfaces.WorkflowState(target),
		ActorID:      parseActor(actorID),
		Metadata: workflow.TranslationContext{
			ContentID:       item.ID,
			ContentType:     item.ContentType,
			RevisionID:      revisionID,
			Langcode:        tr.Langcode,
			SourceLangcode:  tr.SourceLangcode,
			ModerationState: tr.ModerationState,
			Outdated:        tr.Outdated,
			TriggeredBy:     actorID,
		}.Metadata(),
	})
	return err
}

func parseActor(actorID string) uuid.UUID {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil
	}
	return id
}
