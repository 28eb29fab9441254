package logging

import (
	"context"

	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

const (
	rootModule       = "revisions"
	storageModule    = "revisions.storage"
	overviewModule   = "revisions.overview"
	moderationModule = "revisions.moderation"
	settingsModule   = "revisions.settings"
)

const (
	fieldContentID  = "content_id"
	fieldRevisionID = "revision_id"
	fieldLangcode   = "langcode"
	fieldActorID    = "actor_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// StorageLogger returns the logger namespace reserved for revision stores.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// OverviewLogger returns the logger namespace reserved for the revision overview.
func OverviewLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, overviewModule)
}

// ModerationLogger returns the logger namespace reserved for moderation sync.
func ModerationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, moderationModule)
}

// SettingsLogger returns the logger namespace reserved for settings changes.
func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

// WithRevisionContext enriches the logger with content, revision and language
// fields. Zero values are skipped.
func WithRevisionContext(logger interfaces.Logger, contentID string, revisionID int64, langcode string) interfaces.Logger {
	return WithFields(logger, LogContext{ContentID: contentID, RevisionID: revisionID, Langcode: langcode}.Fields())
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
