package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/internal/jobs"
	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
	"github.com/goliatone/go-content-revisions/internal/workflow"
	"github.com/goliatone/go-content-revisions/pkg/activity"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	// ActionModerationSynced is the audit and activity verb for a synchronised sibling.
	ActionModerationSynced = "moderation_synced"

	definitionCode = workflow.EntityTypeTranslation + ":" + ActionModerationSynced
)

// ChangedTranslation identifies the translation whose moderation state changed.
type ChangedTranslation struct {
	ContentID  uuid.UUID
	RevisionID int64
	Langcode   string
	// State is the new moderation state. Empty loads it from the store.
	State   domain.ModerationState
	ActorID string
}

// SiblingUpdate records one synchronised sibling translation.
type SiblingUpdate struct {
	Langcode       string
	FromState      domain.ModerationState
	BaseRevisionID int64
	RevisionID     int64
	NewRevision    bool
}

// Outcome summarises a propagation.
type Outcome struct {
	ContentID   uuid.UUID
	Langcode    string
	TargetState domain.ModerationState
	Updated     []SiblingUpdate
	// Skipped lists siblings already in the target state.
	Skipped []string
	Failed  []string
	// Disabled is set when synchronisation is switched off.
	Disabled bool
	// Reentrant is set when the call happened inside a running propagation for the same item.
	Reentrant bool
}

// Option configures the engine.
type Option func(*Engine)

// WithWorkflowEngine validates sibling transitions against the workflow engine.
func WithWorkflowEngine(engine interfaces.WorkflowEngine) Option {
	return func(e *Engine) {
		e.workflow = engine
	}
}

// WithEntityType overrides the workflow entity type used for sibling transitions.
func WithEntityType(entityType string) Option {
	return func(e *Engine) {
		if trimmed := strings.TrimSpace(entityType); trimmed != "" {
			e.entityType = trimmed
		}
	}
}

// WithAuditRecorder records an audit event per synchronised sibling.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(e *Engine) {
		e.audit = recorder
	}
}

// WithActivityEmitter emits an activity event per synchronised sibling.
func WithActivityEmitter(emitter *activity.Emitter) Option {
	return func(e *Engine) {
		e.activity = emitter
	}
}

// WithLogger overrides the engine logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the clock used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// Engine propagates a translation's moderation state to its sibling translations.
type Engine struct {
	store      revisions.Store
	state      *translationconfig.State
	workflow   interfaces.WorkflowEngine
	entityType string
	audit      jobs.AuditRecorder
	activity   *activity.Emitter
	logger     interfaces.Logger
	now        func() time.Time
}

var _ revisions.SaveHook = (*Engine)(nil)

// NewEngine constructs a sync engine. The state is read on every call so
// settings changes apply without rebuilding the engine.
func NewEngine(store revisions.Store, state *translationconfig.State, opts ...Option) *Engine {
	engine := &Engine{
		store:      store,
		state:      state,
		entityType: workflow.EntityTypeTranslation,
		logger:     logging.NoOp(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Enabled reports whether synchronisation is switched on.
func (e *Engine) Enabled() bool {
	return e != nil && e.state.SyncEnabled()
}

// OnSave is the store hook entry point. Saves that did not change the
// moderation state, and saves issued by a running propagation, are ignored.
func (e *Engine) OnSave(ctx context.Context, result *revisions.SaveResult) error {
	if result == nil || result.Item == nil || result.Revision == nil {
		return nil
	}
	if Propagating(ctx, result.Item.ID) {
		return nil
	}
	if !e.Enabled() || !result.StateChanged() {
		return nil
	}
	_, err := e.OnModerationStateChanged(ctx, ChangedTranslation{
		ContentID:  result.Item.ID,
		RevisionID: result.Revision.RevisionID,
		Langcode:   result.Langcode,
		State:      result.CurrentState,
		ActorID:    actorFor(result),
	})
	return err
}

// OnModerationStateChanged applies the changed translation's state to every
// sibling translation. Sibling failures are collected into a PartialSyncError;
// updates that succeeded stay committed.
func (e *Engine) OnModerationStateChanged(ctx context.Context, changed ChangedTranslation) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e.store == nil {
		return nil, ErrStoreRequired
	}
	if changed.ContentID == uuid.Nil {
		return nil, ErrContentIDRequired
	}
	langcode := domain.NormalizeLangcode(changed.Langcode)
	if langcode == "" {
		return nil, ErrLangcodeRequired
	}

	outcome := &Outcome{ContentID: changed.ContentID, Langcode: langcode}
	if !e.Enabled() {
		outcome.Disabled = true
		return outcome, nil
	}

	ctx, release, ok := enterPropagation(ctx, changed.ContentID)
	if !ok {
		outcome.Reentrant = true
		return outcome, nil
	}
	defer release()

	logger := logging.WithRevisionContext(e.logger.WithContext(ctx), changed.ContentID.String(), changed.RevisionID, langcode)

	item, err := e.store.GetItem(ctx, changed.ContentID)
	if err != nil {
		return nil, err
	}

	target, err := e.resolveTarget(ctx, changed, langcode)
	if err != nil {
		return nil, err
	}
	outcome.TargetState = target

	newest, err := e.store.LoadRevision(ctx, item.ID, item.LatestRevisionID)
	if err != nil {
		return nil, err
	}

	siblings := make([]string, 0, len(newest.Translations))
	for _, code := range newest.Langcodes() {
		if code != langcode {
			siblings = append(siblings, code)
		}
	}
	logger.Debug("moderation.sync.start", "moderation_state", target, "sibling_count", len(siblings))

	plans, failures := e.plan(ctx, item, siblings, target, changed.ActorID, outcome)

	// Siblings needing a new revision share the first one this call creates.
	var syncRevisionID int64
	for _, plan := range orderPlans(plans) {
		input := revisions.SaveTranslationInput{
			ContentID: item.ID,
			Langcode:  plan.langcode,
			Fields: revisions.TranslationFields{
				ModerationState: revisions.StatePtr(target),
			},
			CreatedBy:  changed.ActorID,
			LogMessage: fmt.Sprintf("Moderation state synchronised from %s", langcode),
		}
		switch {
		case !plan.newRevision:
			input.RevisionID = plan.base.RevisionID
		case syncRevisionID != 0:
			input.RevisionID = syncRevisionID
			input.Fields = plan.carriedFields(target)
		default:
			input.CreateNewRevision = true
			input.Fields = plan.carriedFields(target)
		}

		result, err := e.store.SaveTranslation(ctx, input)
		if err != nil && result == nil {
			failures = append(failures, e.conflict(item.ID, plan, target, err))
			outcome.Failed = append(outcome.Failed, plan.langcode)
			logger.Warn("moderation.sync.sibling_failed", "sibling", plan.langcode, "error", err)
			continue
		}
		if err != nil {
			logger.Warn("moderation.sync.sibling_hook_failed", "sibling", plan.langcode, "error", err)
		}
		if result.NewRevision {
			syncRevisionID = result.Revision.RevisionID
		}

		update := SiblingUpdate{
			Langcode:       plan.langcode,
			FromState:      plan.translation.ModerationState,
			BaseRevisionID: plan.base.RevisionID,
			RevisionID:     result.Revision.RevisionID,
			NewRevision:    plan.newRevision,
		}
		outcome.Updated = append(outcome.Updated, update)
		e.record(ctx, logger, item, changed, target, update)
	}

	logger.Info("moderation.sync.completed",
		"moderation_state", target,
		"updated", len(outcome.Updated),
		"skipped", len(outcome.Skipped),
		"failed", len(failures),
	)

	if len(failures) > 0 {
		return outcome, &PartialSyncError{ContentID: item.ID, Failures: failures}
	}
	return outcome, nil
}

type siblingPlan struct {
	langcode    string
	base        *revisions.Revision
	translation *revisions.Translation
	newRevision bool
}

// carriedFields moves the sibling's own latest content onto a newer revision.
func (p siblingPlan) carriedFields(target domain.ModerationState) revisions.TranslationFields {
	tr := p.translation
	return revisions.TranslationFields{
		Label:           revisions.StringPtr(tr.Label),
		SourceLangcode:  revisions.StringPtr(tr.SourceLangcode),
		ModerationState: revisions.StatePtr(target),
		Outdated:        revisions.BoolPtr(tr.Outdated),
		AuthorID:        revisions.StringPtr(tr.AuthorID),
	}
}

func (e *Engine) plan(ctx context.Context, item *revisions.ContentItem, siblings []string, target domain.ModerationState, actorID string, outcome *Outcome) ([]siblingPlan, []*SyncConflictError) {
	plans := make([]siblingPlan, 0, len(siblings))
	var failures []*SyncConflictError

	for _, code := range siblings {
		latest, err := e.store.LatestRevisionFor(ctx, item.ID, code)
		if err != nil {
			failures = append(failures, &SyncConflictError{ContentID: item.ID, Langcode: code, To: target, Err: err})
			outcome.Failed = append(outcome.Failed, code)
			continue
		}
		tr, ok := latest.Translation(code)
		if !ok {
			err := &revisions.NotFoundError{Resource: "translation", Key: code}
			failures = append(failures, &SyncConflictError{ContentID: item.ID, Langcode: code, To: target, Err: err})
			outcome.Failed = append(outcome.Failed, code)
			continue
		}
		if domain.NormalizeModerationState(string(tr.ModerationState)) == target {
			outcome.Skipped = append(outcome.Skipped, code)
			continue
		}

		plan := siblingPlan{
			langcode:    code,
			base:        latest,
			translation: tr,
			newRevision: latest.RevisionID != item.LatestRevisionID,
		}
		if err := e.validateTransition(ctx, item, plan, target, actorID); err != nil {
			failures = append(failures, e.conflict(item.ID, plan, target, err))
			outcome.Failed = append(outcome.Failed, code)
			continue
		}
		plans = append(plans, plan)
	}
	return plans, failures
}

// orderPlans puts in-place updates first so a revision created for the
// remaining siblings copies them forward.
func orderPlans(plans []siblingPlan) []siblingPlan {
	ordered := make([]siblingPlan, 0, len(plans))
	for _, plan := range plans {
		if !plan.newRevision {
			ordered = append(ordered, plan)
		}
	}
	for _, plan := range plans {
		if plan.newRevision {
			ordered = append(ordered, plan)
		}
	}
	return ordered
}

func (e *Engine) validateTransition(ctx context.Context, item *revisions.ContentItem, plan siblingPlan, target domain.ModerationState, actorID string) error {
	if e.workflow == nil {
		return nil
	}
	meta := workflow.TranslationContext{
		ContentID:       item.ID,
		ContentType:     item.ContentType,
		RevisionID:      plan.base.RevisionID,
		Langcode:        plan.langcode,
		SourceLangcode:  plan.translation.SourceLangcode,
		ModerationState: plan.translation.ModerationState,
		Outdated:        plan.translation.Outdated,
		TriggeredBy:     actorID,
	}.Metadata()
	entityID := plan.translation.ID
	if entityID == uuid.Nil {
		entityID = item.ID
	}
	_, err := e.workflow.Transition(ctx, interfaces.TransitionInput{
		EntityID:     entityID,
		EntityType:   e.entityType,
		CurrentState: interfaces.WorkflowState(plan.translation.ModerationState),
		TargetState:  interfaces.WorkflowState(target),
		ActorID:      parseActor(actorID),
		Metadata:     meta,
	})
	return err
}

func (e *Engine) resolveTarget(ctx context.Context, changed ChangedTranslation, langcode string) (domain.ModerationState, error) {
	if strings.TrimSpace(string(changed.State)) != "" {
		return domain.NormalizeModerationState(string(changed.State)), nil
	}
	revision, err := e.store.LoadRevision(ctx, changed.ContentID, changed.RevisionID)
	if err != nil {
		return "", err
	}
	tr, ok := revision.Translation(langcode)
	if !ok {
		return "", &revisions.NotFoundError{Resource: "translation", Key: langcode}
	}
	return domain.NormalizeModerationState(string(tr.ModerationState)), nil
}

func (e *Engine) conflict(contentID uuid.UUID, plan siblingPlan, target domain.ModerationState, err error) *SyncConflictError {
	return &SyncConflictError{
		ContentID: contentID,
		Langcode:  plan.langcode,
		From:      plan.translation.ModerationState,
		To:        target,
		Err:       err,
	}
}

func (e *Engine) record(ctx context.Context, logger interfaces.Logger, item *revisions.ContentItem, changed ChangedTranslation, target domain.ModerationState, update SiblingUpdate) {
	now := e.now()
	metadata := map[string]any{
		"content_id":       item.ID.String(),
		"content_type":     item.ContentType,
		"langcode":         update.Langcode,
		"triggered_by":     domain.NormalizeLangcode(changed.Langcode),
		"from_state":       string(update.FromState),
		"moderation_state": string(target),
		"revision_id":      update.RevisionID,
		"new_revision":     update.NewRevision,
	}

	logger.Info("moderation.sync.sibling_updated",
		"sibling", update.Langcode,
		"from_state", update.FromState,
		"sibling_revision_id", update.RevisionID,
		"new_revision", update.NewRevision,
	)

	if e.audit != nil {
		if err := e.audit.Record(ctx, jobs.AuditEvent{
			EntityType: workflow.EntityTypeTranslation,
			EntityID:   item.ID.String() + ":" + update.Langcode,
			Action:     ActionModerationSynced,
			OccurredAt: now,
			Metadata:   metadata,
		}); err != nil {
			logger.Warn("moderation.sync.audit_failed", "sibling", update.Langcode, "error", err)
		}
	}

	if err := e.activity.Emit(ctx, activity.Event{
		Verb:           ActionModerationSynced,
		ActorID:        changed.ActorID,
		ObjectType:     workflow.EntityTypeTranslation,
		ObjectID:       item.ID.String() + ":" + update.Langcode,
		DefinitionCode: definitionCode,
		Metadata:       metadata,
		OccurredAt:     now,
	}); err != nil {
		logger.Warn("moderation.sync.activity_failed", "sibling", update.Langcode, "error", err)
	}
}

func actorFor(result *revisions.SaveResult) string {
	if tr := result.Translation(); tr != nil && tr.AuthorID != "" {
		return tr.AuthorID
	}
	return result.Revision.CreatedBy
}

func parseActor(actorID string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(actorID))
	if err != nil {
		return uuid.Nil
	}
	return id
}
