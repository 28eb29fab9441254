package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

type logContextKey struct{}

// LogContext identifies the translation a unit of work operates on.
type LogContext struct {
	ContentID  string
	RevisionID int64
	Langcode   string
	ActorID    string
}

// Fields renders the non-zero values as structured logging fields.
func (lc LogContext) Fields() map[string]any {
	fields := map[string]any{}
	if v := strings.TrimSpace(lc.ContentID); v != "" {
		fields[fieldContentID] = v
	}
	if lc.RevisionID > 0 {
		fields[fieldRevisionID] = lc.RevisionID
	}
	if v := strings.TrimSpace(lc.Langcode); v != "" {
		fields[fieldLangcode] = v
	}
	if v := strings.TrimSpace(lc.ActorID); v != "" {
		fields[fieldActorID] = v
	}
	return fields
}

func (lc LogContext) merge(next LogContext) LogContext {
	if strings.TrimSpace(next.ContentID) != "" {
		lc.ContentID = next.ContentID
	}
	if next.RevisionID > 0 {
		lc.RevisionID = next.RevisionID
	}
	if strings.TrimSpace(next.Langcode) != "" {
		lc.Langcode = next.Langcode
	}
	if strings.TrimSpace(next.ActorID) != "" {
		lc.ActorID = next.ActorID
	}
	return lc
}

// ContextWithRevision annotates ctx with lc. Zero values keep whatever an
// outer caller already recorded.
func ContextWithRevision(ctx context.Context, lc LogContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, logContextKey{}, RevisionFromContext(ctx).merge(lc))
}

// RevisionFromContext returns the LogContext stored on ctx, if any.
func RevisionFromContext(ctx context.Context) LogContext {
	if ctx == nil {
		return LogContext{}
	}
	lc, _ := ctx.Value(logContextKey{}).(LogContext)
	return lc
}

// FromContext binds ctx to logger and attaches the revision fields it carries.
func FromContext(logger interfaces.Logger, ctx context.Context) interfaces.Logger {
	if logger == nil {
		logger = NoOp()
	}
	if ctx == nil {
		return logger
	}
	return WithFields(logger.WithContext(ctx), RevisionFromContext(ctx).Fields())
}

// WithFields attaches fields when the logger implements FieldsLogger.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}
