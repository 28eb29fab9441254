package moderation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/google/uuid"
)

var (
	// ErrStoreRequired indicates the engine was constructed without a revision store.
	ErrStoreRequired = errors.New("moderation: revision store required")
	// ErrContentIDRequired indicates the changed translation lacks a content id.
	ErrContentIDRequired = errors.New("moderation: content id required")
	// ErrLangcodeRequired indicates the changed translation lacks a language.
	ErrLangcodeRequired = errors.New("moderation: langcode required")
)

// SyncConflictError reports a sibling translation that could not be moved to
// the target state.
type SyncConflictError struct {
	ContentID uuid.UUID
	Langcode  string
	From      domain.ModerationState
	To        domain.ModerationState
	Err       error
}

func (e *SyncConflictError) Error() string {
	msg := fmt.Sprintf("moderation: sync %s translation of %s from %s to %s", e.Langcode, e.ContentID, e.From, e.To)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SyncConflictError) Unwrap() error {
	return e.Err
}

// PartialSyncError is returned when some siblings were not synchronised. The
// triggering save and any successful sibling updates stay committed.
type PartialSyncError struct {
	ContentID uuid.UUID
	Failures  []*SyncConflictError
}

func (e *PartialSyncError) Error() string {
	langcodes := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		langcodes = append(langcodes, failure.Langcode)
	}
	return fmt.Sprintf("moderation: partial sync for %s, failed languages: %s", e.ContentID, strings.Join(langcodes, ", "))
}

func (e *PartialSyncError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, failure := range e.Failures {
		errs = append(errs, failure)
	}
	return errs
}

// IsPartialSync reports whether err carries a PartialSyncError.
func IsPartialSync(err error) bool {
	var target *PartialSyncError
	return errors.As(err, &target)
}
