package commands

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command when no timeout option is given.
const DefaultCommandTimeout = 30 * time.Second

const commandModuleRoot = "revisions.commands"

// RevisionScoped is implemented by messages that act on a single translation.
// Handlers copy the scope onto the execution context so every log entry
// emitted downstream carries it.
type RevisionScoped interface {
	LogContext() logging.LogContext
}

// CommandLogger returns the logger for a command group, named
// revisions.commands.<group>.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.TrimSpace(group)
	name := commandModuleRoot
	if group != "" {
		name += "." + group
	}
	return logging.WithFields(logging.ModuleLogger(provider, name), map[string]any{
		"command_group": group,
	})
}

func prepareContext(ctx context.Context, msg any, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if scoped, ok := msg.(RevisionScoped); ok {
		ctx = logging.ContextWithRevision(ctx, scoped.LogContext())
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
