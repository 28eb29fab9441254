package runtimeconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by LoadFromEnv.
const EnvPrefix = "REVTRANS_"

type envOverrides struct {
	DefaultLanguage        string         `env:"DEFAULT_LANGUAGE"`
	Languages              []string       `env:"LANGUAGES" envSeparator:","`
	SyncModerationState    *bool          `env:"SYNC_MODERATION_STATE_TRANSLATIONS"`
	SourceColumn           *bool          `env:"OVERVIEW_SOURCE_COLUMN"`
	DeleteTranslationLinks *bool          `env:"OVERVIEW_DELETE_TRANSLATION_LINKS"`
	DirectEditLinks        *bool          `env:"OVERVIEW_DIRECT_EDIT_LINKS"`
	DateLayout             string         `env:"OVERVIEW_DATE_LAYOUT"`
	StorageProvider        string         `env:"STORAGE_PROVIDER"`
	StorageDSN             string         `env:"STORAGE_DSN"`
	CacheEnabled           *bool          `env:"CACHE_ENABLED"`
	CacheTTL               *time.Duration `env:"CACHE_TTL"`
	LoggerEnabled          *bool          `env:"LOGGER_ENABLED"`
	LogProvider            string         `env:"LOG_PROVIDER"`
	LogLevel               string         `env:"LOG_LEVEL"`
	LogFormat              string         `env:"LOG_FORMAT"`
}

// LoadFromEnv overlays REVTRANS_* environment variables onto cfg. Languages
// use the form "en=English,fr" where the display name is optional.
func LoadFromEnv(cfg Config) (Config, error) {
	var overrides envOverrides
	if err := env.ParseWithOptions(&overrides, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return overrides.apply(cfg), nil
}

func (o envOverrides) apply(cfg Config) Config {
	setString(&cfg.DefaultLanguage, o.DefaultLanguage)
	if len(o.Languages) > 0 {
		languages := make([]LanguageConfig, 0, len(o.Languages))
		for _, raw := range o.Languages {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			code, name, _ := strings.Cut(raw, "=")
			languages = append(languages, LanguageConfig{Code: strings.TrimSpace(code), Name: strings.TrimSpace(name)})
		}
		cfg.Languages = languages
	}
	setBool(&cfg.Sync.ModerationStateTranslations, o.SyncModerationState)
	setBool(&cfg.Overview.SourceColumn, o.SourceColumn)
	setBool(&cfg.Overview.DeleteTranslationLinks, o.DeleteTranslationLinks)
	setBool(&cfg.Overview.DirectEditLinks, o.DirectEditLinks)
	setString(&cfg.Overview.DateLayout, o.DateLayout)
	setString(&cfg.Storage.Provider, o.StorageProvider)
	setString(&cfg.Storage.DSN, o.StorageDSN)
	setBool(&cfg.Cache.Enabled, o.CacheEnabled)
	if o.CacheTTL != nil {
		cfg.Cache.DefaultTTL = *o.CacheTTL
	}
	setBool(&cfg.Features.Logger, o.LoggerEnabled)
	setString(&cfg.Logging.Provider, o.LogProvider)
	setString(&cfg.Logging.Level, o.LogLevel)
	setString(&cfg.Logging.Format, o.LogFormat)
	return cfg
}

func setString(target *string, value string) {
	if strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
