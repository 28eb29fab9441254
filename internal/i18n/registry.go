package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-content-revisions/internal/domain"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	// ErrNoLocales indicates the registry was configured without languages.
	ErrNoLocales = errors.New("i18n: at least one locale required")
	// ErrInvalidLocale indicates a locale code is not a valid BCP 47 tag.
	ErrInvalidLocale = errors.New("i18n: invalid locale")
	// ErrDuplicateLocale indicates the same locale was configured twice.
	ErrDuplicateLocale = errors.New("i18n: duplicate locale")
	// ErrDefaultLocaleMissing indicates the default locale is not configured.
	ErrDefaultLocaleMissing = errors.New("i18n: default locale not configured")
)

// Option configures the registry.
type Option func(*registryOptions)

type registryOptions struct {
	displayIn language.Tag
}

// WithDisplayLanguage selects the language used for generated display names.
func WithDisplayLanguage(tag language.Tag) Option {
	return func(o *registryOptions) {
		o.displayIn = tag
	}
}

// Registry is a static LanguageRegistry built from configuration.
type Registry struct {
	languages     []interfaces.Language
	index         map[string]int
	defaultLocale string
}

var _ interfaces.LanguageRegistry = (*Registry)(nil)

// NewRegistry validates cfg and builds the registry. Languages keep their
// configured order.
func NewRegistry(cfg Config, opts ...Option) (*Registry, error) {
	options := registryOptions{displayIn: language.English}
	for _, opt := range opts {
		opt(&options)
	}
	if len(cfg.Locales) == 0 {
		return nil, ErrNoLocales
	}

	namer := display.Tags(options.displayIn)
	registry := &Registry{
		languages: make([]interfaces.Language, 0, len(cfg.Locales)),
		index:     make(map[string]int, len(cfg.Locales)),
	}

	for _, locale := range cfg.Locales {
		code := domain.NormalizeLangcode(locale.Code)
		tag, err := language.Parse(code)
		if err != nil || code == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLocale, locale.Code)
		}
		if _, exists := registry.index[code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLocale, code)
		}
		name := strings.TrimSpace(locale.Name)
		if name == "" {
			name = namer.Name(tag)
		}
		if name == "" {
			name = code
		}
		registry.index[code] = len(registry.languages)
		registry.languages = append(registry.languages, interfaces.Language{Code: code, Name: name})
	}

	registry.defaultLocale = domain.NormalizeLangcode(cfg.DefaultLocale)
	if registry.defaultLocale == "" {
		registry.defaultLocale = registry.languages[0].Code
	}
	if _, ok := registry.index[registry.defaultLocale]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrDefaultLocaleMissing, registry.defaultLocale)
	}
	return registry, nil
}

// ConfiguredLanguages implements interfaces.LanguageRegistry.
func (r *Registry) ConfiguredLanguages(context.Context) ([]interfaces.Language, error) {
	out := make([]interfaces.Language, len(r.languages))
	copy(out, r.languages)
	return out, nil
}

// Resolve implements interfaces.LanguageRegistry. Codes are matched case
// insensitively and underscores are accepted as separators.
func (r *Registry) Resolve(_ context.Context, code string) (interfaces.Language, bool) {
	normalized := strings.ReplaceAll(domain.NormalizeLangcode(code), "_", "-")
	if idx, ok := r.index[normalized]; ok {
		return r.languages[idx], true
	}
	return interfaces.Language{}, false
}

// DefaultLocale returns the default language code.
func (r *Registry) DefaultLocale() string {
	return r.defaultLocale
}

// Codes returns the configured codes in order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.languages))
	for i, lang := range r.languages {
		codes[i] = lang.Code
	}
	return codes
}
