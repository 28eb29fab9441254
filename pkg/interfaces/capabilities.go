package interfaces

import (
	"context"

	"github.com/google/uuid"
)

// Capability names an action checked against the capability oracle.
type Capability string

const (
	CapabilityCreateTranslation Capability = "translation.create"
	CapabilityUpdateTranslation Capability = "translation.update"
	CapabilityDeleteTranslation Capability = "translation.delete"
	CapabilityUpdateEntity      Capability = "entity.update"
	CapabilityDeleteEntity      Capability = "entity.delete"
	CapabilityRevertRevisions   Capability = "revisions.revert"
	CapabilityDeleteRevisions   Capability = "revisions.delete"
)

// CapabilitySubject identifies the content the capability is evaluated against.
type CapabilitySubject struct {
	ContentID   uuid.UUID
	ContentType string
	RevisionID  int64
}

// Decision is the oracle answer. CacheTags are opaque cacheability markers
// that callers propagate without interpretation.
type Decision struct {
	Allowed   bool
	CacheTags []string
}

// CapabilityOracle answers permission questions for the current actor.
type CapabilityOracle interface {
	Can(ctx context.Context, capability Capability, subject CapabilitySubject, langcode string) Decision
}

// CapabilityOracleFunc adapts a function into a CapabilityOracle.
type CapabilityOracleFunc func(ctx context.Context, capability Capability, subject CapabilitySubject, langcode string) Decision

// Can implements CapabilityOracle.
func (fn CapabilityOracleFunc) Can(ctx context.Context, capability Capability, subject CapabilitySubject, langcode string) Decision {
	return fn(ctx, capability, subject, langcode)
}
