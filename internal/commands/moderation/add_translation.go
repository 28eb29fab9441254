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

const addTranslationMessageType = "revisions.moderation.add_translation"

// AddTranslationCommand creates the Target translation from Source.
type AddTranslationCommand struct {
	ContentID uuid.UUID `json:"content_id"`
	// RevisionID is the base revision. Zero selects the newest revision.
	RevisionID  int64  `json:"revision_id,omitempty"`
	Source      string `json:"source"`
	Target      string `json:"target"`
	Label       string `json:"label,omitempty"`
	State       string `json:"state,omitempty"`
	NewRevision bool   `json:"new_revision,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
}

// Type implements command.Message.
func (AddTranslationCommand) Type() string { return addTranslationMessageType }

// Validate ensures the message carries the required fields before reaching handlers.
func (m AddTranslationCommand) Validate() error {
	errs := validation.Errors{}
	if m.ContentID == uuid.Nil {
		errs["content_id"] = validation.NewError("revisions.moderation.add_translation.content_id_required", "content_id is required")
	}
	if m.RevisionID < 0 {
		errs["revision_id"] = validation.NewError("revisions.moderation.add_translation.revision_invalid", "revision_id cannot be negative")
	}
	source := domain.NormalizeLangcode(m.Source)
	target := domain.NormalizeLangcode(m.Target)
	if source == "" {
		errs["source"] = validation.NewError("revisions.moderation.add_translation.source_required", "source is required")
	}
	if target == "" {
		errs["target"] = validation.NewError("revisions.moderation.add_translation.target_required", "target is required")
	} else if target == source {
		errs["target"] = validation.NewError("revisions.moderation.add_translation.target_same_as_source", "target must differ from source")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LogContext implements commands.RevisionScoped.
func (m AddTranslationCommand) LogContext() logging.LogContext {
	return logging.LogContext{
		ContentID:  m.ContentID.String(),
		RevisionID: m.RevisionID,
		Langcode:   m.Target,
		ActorID:    m.ActorID,
	}
}

// AddTranslationHandler adds a translation to a content item.
type AddTranslationHandler struct {
	inner *commands.Handler[AddTranslationCommand]
}

// NewAddTranslationHandler constructs a handler bound to store.
func NewAddTranslationHandler(store revisions.Store, guard Guard, logger interfaces.Logger, opts ...commands.HandlerOption[AddTranslationCommand]) *AddTranslationHandler {
	exec := func(ctx context.Context, msg AddTranslationCommand) error {
		_, err := addTranslation(ctx, store, guard, msg)
		return err
	}

	handlerOpts := []commands.HandlerOption[AddTranslationCommand]{
		commands.WithLogger[AddTranslationCommand](logger),
		commands.WithOperation[AddTranslationCommand]("moderation.add_translation"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AddTranslationHandler{
		inner: commands.NewHandler[AddTranslationCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[AddTranslationCommand].Execute.
func (h *AddTranslationHandler) Execute(ctx context.Context, msg AddTranslationCommand) error {
	return h.inner.Execute(ctx, msg)
}

func addTranslation(ctx context.Context, store revisions.Store, guard Guard, msg AddTranslationCommand) (*revisions.SaveResult, error) {
	source := domain.NormalizeLangcode(msg.Source)
	target := domain.NormalizeLangcode(msg.Target)

	item, err := store.GetItem(ctx, msg.ContentID)
	if err != nil {
		return nil, err
	}
	revisionID := msg.RevisionID
	if revisionID == 0 {
		revisionID = item.LatestRevisionID
	}
	base, err := store.LoadRevision(ctx, msg.ContentID, revisionID)
	if err != nil {
		return nil, err
	}
	from, ok := base.Translation(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s revision %d", ErrSourceMissing, source, base.RevisionID)
	}
	if _, exists := base.Translation(target); exists {
		return nil, fmt.Errorf("%w: %s revision %d", ErrTranslationExists, target, base.RevisionID)
	}

	if err := guard.authorize(ctx, interfaces.CapabilityCreateTranslation, item, base.RevisionID, target); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(msg.Label)
	if label == "" {
		label = from.Label
	}
	state := domain.NormalizeModerationState(msg.State)

	return store.SaveTranslation(ctx, revisions.SaveTranslationInput{
		ContentID:  msg.ContentID,
		RevisionID: base.RevisionID,
		Langcode:   target,
		Fields: revisions.TranslationFields{
			Label:           revisions.StringPtr(label),
			SourceLangcode:  revisions.StringPtr(source),
			ModerationState: revisions.StatePtr(state),
			AuthorID:        revisions.StringPtr(msg.ActorID),
		},
		CreateNewRevision: msg.NewRevision,
		CreatedBy:         msg.ActorID,
		LogMessage:        fmt.Sprintf("Added %s translation from %s", target, source),
	})
}
