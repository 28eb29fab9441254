package overview

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrStoreRequired     = errors.New("overview: revision store required")
	ErrLanguagesRequired = errors.New("overview: language registry required")
	ErrContentIDRequired = errors.New("overview: content id required")
)

// Integrity failure reasons.
const (
	ReasonMissingOriginal   = "missing original language translation"
	ReasonMultipleOriginals = "multiple original language translations"
	ReasonUnknownSource     = "unresolvable source language"
	ReasonDuplicateRevision = "duplicate revision id"
)

// DataIntegrityError reports a revision that cannot be rendered faithfully.
type DataIntegrityError struct {
	ContentID  uuid.UUID
	RevisionID int64
	Langcode   string
	Reason     string
}

func (e *DataIntegrityError) Error() string {
	if e.Langcode != "" {
		return fmt.Sprintf("overview: revision %d of %s: %s (%s)", e.RevisionID, e.ContentID, e.Reason, e.Langcode)
	}
	return fmt.Sprintf("overview: revision %d of %s: %s", e.RevisionID, e.ContentID, e.Reason)
}

// IsDataIntegrity reports whether err wraps a DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var target *DataIntegrityError
	return errors.As(err, &target)
}
