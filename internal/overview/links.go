package overview

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	urlkit "github.com/goliatone/go-urlkit"
)

// URLKitResolverOptions configures the go-urlkit backed resolver.
type URLKitResolverOptions struct {
	Manager *urlkit.RouteManager
	// Group is the dotted path of the route group, e.g. "admin.content".
	Group string
	// LocaleGroups maps a langcode to the group used for links in that language.
	LocaleGroups map[string]string
}

// URLKitResolver resolves overview links using a go-urlkit RouteManager.
type URLKitResolver struct {
	manager      *urlkit.RouteManager
	group        string
	localeGroups map[string]string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

var _ interfaces.URLResolver = (*URLKitResolver)(nil)

// NewURLKitResolver constructs a resolver backed by go-urlkit.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	locales := make(map[string]string, len(opts.LocaleGroups))
	for code, path := range opts.LocaleGroups {
		locales[strings.ToLower(strings.TrimSpace(code))] = strings.TrimSpace(path)
	}
	return &URLKitResolver{
		manager:      opts.Manager,
		group:        strings.TrimSpace(opts.Group),
		localeGroups: locales,
		groupCache:   make(map[string]*urlkit.Group),
	}
}

// Resolve builds the URL for route. The langcode parameter, when present,
// selects a locale specific group.
func (r *URLKitResolver) Resolve(_ context.Context, route string, params map[string]string) (string, error) {
	if r == nil || r.manager == nil || strings.TrimSpace(route) == "" {
		return "", nil
	}

	groupPath := r.group
	if path, ok := r.localeGroups[strings.ToLower(params[ParamLangcode])]; ok && path != "" {
		groupPath = path
	}
	if groupPath == "" {
		return "", nil
	}

	group, err := r.groupForPath(groupPath)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}
	return builder.Build()
}

func (r *URLKitResolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("overview: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("overview: route %q not found: %v", route, rec)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("overview: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("overview: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("overview: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}

// NoopURLResolver leaves every link unresolved.
type NoopURLResolver struct{}

// Resolve implements interfaces.URLResolver.
func (NoopURLResolver) Resolve(context.Context, string, map[string]string) (string, error) {
	return "", nil
}
