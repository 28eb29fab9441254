package runtimeconfig

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	urlkit "github.com/goliatone/go-urlkit"
)

var ErrDefaultLanguageRequired = errors.New("revisions config: default language is required")
var ErrDefaultLanguageNotConfigured = errors.New("revisions config: default language must be one of the configured languages")
var ErrLanguageInvalid = errors.New("revisions config: language is invalid")
var ErrLanguageDuplicate = errors.New("revisions config: duplicate language")
var ErrStorageProviderUnknown = errors.New("revisions config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("revisions config: storage dsn is required for sql providers")
var ErrCacheTTLInvalid = errors.New("revisions config: cache ttl must be zero or positive")
var ErrLoggingProviderRequired = errors.New("revisions config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("revisions config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("revisions config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("revisions config: logging format is invalid")

// Storage providers understood by the container.
const (
	StorageProviderMemory   = "memory"
	StorageProviderSQLite   = "sqlite"
	StorageProviderPostgres = "postgres"
)

var langcodePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]{2,8})*$`)

// Config aggregates feature flags and adapter bindings for the revisions module.
type Config struct {
	DefaultLanguage string
	Languages       []LanguageConfig
	Sync            SyncConfig
	Overview        OverviewConfig
	Workflow        WorkflowConfig
	Storage         StorageConfig
	Cache           CacheConfig
	Routes          RoutesConfig
	Features        Features
	Logging         LoggingConfig
}

// LanguageConfig declares a configured site language. Name is optional; when
// empty the display name is derived from the language tag.
type LanguageConfig struct {
	Code string
	Name string
}

// SyncConfig seeds the moderation synchronisation setting. The persisted
// setting wins once it exists.
type SyncConfig struct {
	ModerationStateTranslations bool
}

// OverviewConfig toggles optional overview columns and links.
type OverviewConfig struct {
	SourceColumn           bool
	DeleteTranslationLinks bool
	DirectEditLinks        bool
	DateLayout             string
}

// WorkflowConfig captures the moderation workflow used to validate sibling
// transitions.
type WorkflowConfig struct {
	EntityType  string
	Definitions []WorkflowDefinitionConfig
}

// WorkflowDefinitionConfig declares a moderation workflow for one entity type.
type WorkflowDefinitionConfig struct {
	Entity      string
	States      []WorkflowStateConfig
	Transitions []WorkflowTransitionConfig
}

// WorkflowStateConfig declares a workflow state.
type WorkflowStateConfig struct {
	Name        string
	Label       string
	Description string
	Initial     bool
	Terminal    bool
	Published   bool
}

// WorkflowTransitionConfig declares an allowed transition.
type WorkflowTransitionConfig struct {
	Name        string
	Description string
	From        string
	To          string
}

// StorageConfig selects the revision store backend.
type StorageConfig struct {
	Provider string
	DSN      string
}

// CacheConfig captures cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RoutesConfig captures routing configuration for overview links.
type RoutesConfig struct {
	RouteConfig  *urlkit.Config
	Group        string
	LocaleGroups map[string]string
}

// Features toggles module functionality.
type Features struct {
	Logger bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns defaults for a single language, in-memory setup.
func DefaultConfig() Config {
	return Config{
		DefaultLanguage: "en",
		Languages: []LanguageConfig{
			{Code: "en", Name: "English"},
		},
		Overview: OverviewConfig{
			SourceColumn:    true,
			DirectEditLinks: true,
			DateLayout:      "01/02/2006 - 15:04",
		},
		Workflow: WorkflowConfig{
			EntityType: "content_translation",
		},
		Storage: StorageConfig{
			Provider: StorageProviderMemory,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	defaultLanguage := normalizeLangcode(cfg.DefaultLanguage)
	if defaultLanguage == "" {
		return ErrDefaultLanguageRequired
	}

	seen := make(map[string]struct{}, len(cfg.Languages))
	for idx, lang := range cfg.Languages {
		code := normalizeLangcode(lang.Code)
		if err := validation.Validate(code, validation.Required, validation.Match(langcodePattern)); err != nil {
			return fmt.Errorf("%w at index %d: %v", ErrLanguageInvalid, idx, err)
		}
		if _, exists := seen[code]; exists {
			return fmt.Errorf("%w: %s", ErrLanguageDuplicate, code)
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[defaultLanguage]; !ok {
		return fmt.Errorf("%w: %s", ErrDefaultLanguageNotConfigured, defaultLanguage)
	}

	switch provider := normalizeProvider(cfg.Storage.Provider); provider {
	case StorageProviderMemory, "":
	case StorageProviderSQLite, StorageProviderPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// LanguageCodes returns the configured language codes in configuration order.
func (cfg Config) LanguageCodes() []string {
	codes := make([]string, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		codes = append(codes, normalizeLangcode(lang.Code))
	}
	return codes
}

func normalizeLangcode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
