package permissions

import (
	"context"
	"errors"
	"strings"
)

// Permission tokens recognised by the revision overview.
const (
	AdministerContent         = "administer nodes"
	RevertAllRevisions        = "revert all revisions"
	DeleteAllRevisions        = "delete all revisions"
	TranslateAnyEntity        = "translate any entity"
	CreateContentTranslations = "create content translations"
	UpdateContentTranslations = "update content translations"
	DeleteContentTranslations = "delete content translations"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// ContentPermissions captures the per content type permission tokens.
type ContentPermissions struct {
	Edit            string `json:"edit,omitempty"`
	Delete          string `json:"delete,omitempty"`
	RevertRevisions string `json:"revert_revisions,omitempty"`
	DeleteRevisions string `json:"delete_revisions,omitempty"`
	Translate       string `json:"translate,omitempty"`
}

// ContentTypePermissions returns the permission set for a content type.
func ContentTypePermissions(contentType string) ContentPermissions {
	bundle := normalizeToken(contentType)
	if bundle == "" {
		return ContentPermissions{}
	}
	return ContentPermissions{
		Edit:            "edit any " + bundle + " content",
		Delete:          "delete any " + bundle + " content",
		RevertRevisions: "revert " + bundle + " revisions",
		DeleteRevisions: "delete " + bundle + " revisions",
		Translate:       "translate " + bundle + " content",
	}
}

// List returns the non-empty permissions in the set.
func (p ContentPermissions) List() []string {
	out := make([]string, 0, 5)
	for _, perm := range []string{p.Edit, p.Delete, p.RevertRevisions, p.DeleteRevisions, p.Translate} {
		if perm != "" {
			out = append(out, perm)
		}
	}
	return out
}

type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	if _, ok := s["*"]; ok {
		return true
	}
	return false
}

type Permissioner interface {
	HasPermission(permission string) bool
}

type contextKey string

const checkerKey contextKey = "revisions.permissions.checker"

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil || len(perms) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// WithPermissioner stores a permission-capable actor on the context.
func WithPermissioner(ctx context.Context, actor Permissioner) context.Context {
	if ctx == nil || actor == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, actor)
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	value := ctx.Value(checkerKey)
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case Checker:
		return typed
	case Permissioner:
		return CheckerFunc(typed.HasPermission)
	case []string:
		return NewSet(typed...)
	case map[string]struct{}:
		return Set(typed)
	case map[string]bool:
		set := Set{}
		for key, allowed := range typed {
			if !allowed {
				continue
			}
			if normalized := normalizePermission(key); normalized != "" {
				set[normalized] = struct{}{}
			}
		}
		return set
	default:
		return nil
	}
}

// Allowed reports whether the provided permission is allowed for the context.
func Allowed(ctx context.Context, permission string) bool {
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return true
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return true
	}
	return checker.Allowed(normalized)
}

// Require enforces a permission requirement when a checker is available on the context.
func Require(ctx context.Context, permission string) error {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return nil
	}
	if checker.Allowed(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

// RequireAny succeeds when at least one permission is allowed.
func RequireAny(ctx context.Context, perms ...string) error {
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return nil
	}
	if anyAllowed(checker, perms...) {
		return nil
	}
	return Error{Permission: strings.Join(perms, " | ")}
}

func anyAllowed(checker Checker, perms ...string) bool {
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized != "" && checker.Allowed(normalized) {
			return true
		}
	}
	return false
}

func normalizePermission(permission string) string {
	trimmed := strings.TrimSpace(permission)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(trimmed), " "))
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
