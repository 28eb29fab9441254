package permissions

import (
	"context"
	"sort"

	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

// CacheTagPermissions marks decisions that vary with the actor's permissions.
const CacheTagPermissions = "user.permissions"

// OracleOption configures an Oracle.
type OracleOption func(*Oracle)

// WithFallbackChecker is consulted when the context carries no checker.
func WithFallbackChecker(checker Checker) OracleOption {
	return func(o *Oracle) {
		o.fallback = checker
	}
}

// WithStaticPermissions grants perms when the context carries no checker.
func WithStaticPermissions(perms ...string) OracleOption {
	return func(o *Oracle) {
		o.fallback = NewSet(perms...)
	}
}

// Oracle is a CapabilityOracle backed by permission tokens. Without a
// checker every capability is denied.
type Oracle struct {
	fallback Checker
}

var _ interfaces.CapabilityOracle = (*Oracle)(nil)

// NewOracle constructs a permission based oracle.
func NewOracle(opts ...OracleOption) *Oracle {
	oracle := &Oracle{}
	for _, opt := range opts {
		opt(oracle)
	}
	return oracle
}

// Can implements interfaces.CapabilityOracle.
func (o *Oracle) Can(ctx context.Context, capability interfaces.Capability, subject interfaces.CapabilitySubject, _ string) interfaces.Decision {
	decision := interfaces.Decision{CacheTags: cacheTags(subject)}
	checker := CheckerFromContext(ctx)
	if checker == nil && o != nil {
		checker = o.fallback
	}
	if checker == nil {
		return decision
	}

	perms := ContentTypePermissions(subject.ContentType)
	canUpdate := anyAllowed(checker, perms.Edit, AdministerContent)
	canDelete := anyAllowed(checker, perms.Delete, AdministerContent)

	switch capability {
	case interfaces.CapabilityUpdateEntity:
		decision.Allowed = canUpdate
	case interfaces.CapabilityDeleteEntity:
		decision.Allowed = canDelete
	case interfaces.CapabilityRevertRevisions:
		decision.Allowed = canUpdate && anyAllowed(checker, perms.RevertRevisions, RevertAllRevisions, AdministerContent)
	case interfaces.CapabilityDeleteRevisions:
		decision.Allowed = canDelete && anyAllowed(checker, perms.DeleteRevisions, DeleteAllRevisions, AdministerContent)
	case interfaces.CapabilityCreateTranslation:
		decision.Allowed = anyAllowed(checker, TranslateAnyEntity, perms.Translate, CreateContentTranslations)
	case interfaces.CapabilityUpdateTranslation:
		decision.Allowed = anyAllowed(checker, TranslateAnyEntity, perms.Translate, UpdateContentTranslations)
	case interfaces.CapabilityDeleteTranslation:
		decision.Allowed = anyAllowed(checker, TranslateAnyEntity, perms.Translate, DeleteContentTranslations)
	}
	return decision
}

func cacheTags(subject interfaces.CapabilitySubject) []string {
	tags := []string{CacheTagPermissions}
	if subject.ContentID != uuid.Nil {
		tags = append(tags, "content:"+subject.ContentID.String())
	}
	sort.Strings(tags)
	return tags
}
