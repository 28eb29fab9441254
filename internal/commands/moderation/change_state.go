package moderationcmd

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-revisions/internal/commands"
	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

const changeStateMessageType = "revisions.moderation.change_state"

// ChangeModerationStateCommand moves one translation to a new moderation state.
type ChangeModerationStateCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	// RevisionID is the revision being edited. Zero selects the latest
	// revision of the language.
	RevisionID  int64  `json:"revision_id,omitempty"`
	Langcode    string `json:"langcode"`
	State       string `json:"state"`
	NewRevision bool   `json:"new_revision,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
	LogMessage  string `json:"log_message,omitempty"`
}

// Type implements command.Message.
func (ChangeModerationStateCommand) Type() string { return changeStateMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m ChangeModerationStateCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentID == uuid.Nil {
		errs["content_id"] = validation.NewError("revisions.moderation.change_state.content_id_required", "content_id is required")
	}
	if m.RevisionID < 0 {
		errs["revision_id"] = validation.NewError("revisions.moderation.change_state.revision_invalid", "revision_id cannot be negative")
	}
	if strings.TrimSpace(m.Langcode) == "" {
		errs["langcode"] = validation.NewError("revisions.moderation.change_state.langcode_required", "langcode is required")
	}
	if strings.TrimSpace(m.State) == "" {
		errs["state"] = validation.NewError("revisions.moderation.change_state.state_required", "state is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LogContext implements commands.RevisionScoped.
func (m ChangeModerationStateCommand) LogContext() logging.LogContext {
	return logging.LogContext{
		ContentID:  m.ContentID.String(),
		RevisionID: m.RevisionID,
		Langcode:   m.Langcode,
		ActorID:    m.ActorID,
	}
}

// ChangeModerationStateHandler saves the new state through the store. When
// the store carries the moderation sync hook, siblings follow the change.
type ChangeModerationStateHandler struct {
	inner *commands.Handler[ChangeModerationStateCommand]
}

// NewChangeModerationStateHandler constructs a handler bound to store.
func NewChangeModerationStateHandler(store revisions.Store, guard Guard, logger interfaces.Logger, opts ...commands.HandlerOption[ChangeModerationStateCommand]) *ChangeModerationStateHandler {
	exec := func(ctx context.Context, msg ChangeModerationStateCommand) error {
		_, err := changeState(ctx, store, guard, msg)
		return err
	}

	handlerOpts := []commands.HandlerOption[ChangeModerationStateCommand]{
		commands.WithLogger[ChangeModerationStateCommand](logger),
		commands.WithOperation[ChangeModerationStateCommand]("moderation.change_state"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ChangeModerationStateHandler{
		inner: commands.NewHandler[ChangeModerationStateCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ChangeModerationStateCommand].Execute.
func (h *ChangeModerationStateHandler) Execute(ctx context.Context, msg ChangeModerationStateCommand) error {
	return h.inner.Execute(ctx, msg)
}

func changeState(ctx context.Context, store revisions.Store, guard Guard, msg ChangeModerationStateCommand) (*revisions.SaveResult, error) {
	langcode := domain.NormalizeLangcode(msg.Langcode)
	item, err := store.GetItem(ctx, msg.ContentID)
	if err != nil {
		return nil, err
	}

	var base *revisions.Revision
	if msg.RevisionID > 0 {
		base, err = store.LoadRevision(ctx, msg.ContentID, msg.RevisionID)
	} else {
		base, err = store.LatestRevisionFor(ctx, msg.ContentID, langcode)
	}
	if err != nil {
		return nil, err
	}
	tr, ok := base.Translation(langcode)
	if !ok {
		return nil, fmt.Errorf("%w: %s revision %d", ErrTranslationMissing, langcode, base.RevisionID)
	}

	if err := guard.authorize(ctx, interfaces.CapabilityUpdateTranslation, item, base.RevisionID, langcode); err != nil {
		return nil, err
	}
	target := domain.NormalizeModerationState(msg.State)
	if err := guard.transition(ctx, item, base.RevisionID, tr, target, msg.ActorID); err != nil {
		return nil, err
	}

	return store.SaveTranslation(ctx, revisions.SaveTranslationInput{
		ContentID:  msg.ContentID,
		RevisionID: base.RevisionID,
		Langcode:   langcode,
		Fields: revisions.TranslationFields{
			ModerationState: revisions.StatePtr(target),
		},
		CreateNewRevision: msg.NewRevision,
		CreatedBy:         msg.ActorID,
		LogMessage:        msg.LogMessage,
	})
}
