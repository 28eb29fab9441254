package runtimeconfig_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-content-revisions/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_Languages(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*runtimeconfig.Config)
		expected error
	}{
		{
			name:     "missing default language",
			mutate:   func(cfg *runtimeconfig.Config) { cfg.DefaultLanguage = " " },
			expected: runtimeconfig.ErrDefaultLanguageRequired,
		},
		{
			name:     "default language not configured",
			mutate:   func(cfg *runtimeconfig.Config) { cfg.DefaultLanguage = "fr" },
			expected: runtimeconfig.ErrDefaultLanguageNotConfigured,
		},
		{
			name: "invalid code",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Languages = append(cfg.Languages, runtimeconfig.LanguageConfig{Code: "french!"})
			},
			expected: runtimeconfig.ErrLanguageInvalid,
		},
		{
			name: "duplicate code",
			mutate: func(cfg *runtimeconfig.Config) {
				cfg.Languages = append(cfg.Languages, runtimeconfig.LanguageConfig{Code: "EN"})
			},
			expected: runtimeconfig.ErrLanguageDuplicate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestConfigValidate_Storage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "sqlite"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}

	cfg.Storage.DSN = "file:revisions?mode=memory&cache=shared"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}

	cfg.Storage.Provider = "mongo"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeCacheTTL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REVTRANS_DEFAULT_LANGUAGE", "en")
	t.Setenv("REVTRANS_LANGUAGES", "en=English, fr ,de=Deutsch")
	t.Setenv("REVTRANS_SYNC_MODERATION_STATE_TRANSLATIONS", "true")
	t.Setenv("REVTRANS_OVERVIEW_SOURCE_COLUMN", "false")
	t.Setenv("REVTRANS_STORAGE_PROVIDER", "sqlite")
	t.Setenv("REVTRANS_STORAGE_DSN", "file:revisions.db")
	t.Setenv("REVTRANS_CACHE_TTL", "30s")

	cfg, err := runtimeconfig.LoadFromEnv(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	expected := []runtimeconfig.LanguageConfig{
		{Code: "en", Name: "English"},
		{Code: "fr"},
		{Code: "de", Name: "Deutsch"},
	}
	if !reflect.DeepEqual(cfg.Languages, expected) {
		t.Fatalf("unexpected languages %+v", cfg.Languages)
	}
	if !cfg.Sync.ModerationStateTranslations {
		t.Fatal("expected sync to be enabled")
	}
	if cfg.Overview.SourceColumn {
		t.Fatal("expected source column to be disabled")
	}
	if !cfg.Overview.DirectEditLinks {
		t.Fatal("expected unset variables to keep defaults")
	}
	if cfg.Storage.Provider != "sqlite" || cfg.Storage.DSN != "file:revisions.db" {
		t.Fatalf("unexpected storage config %+v", cfg.Storage)
	}
	if cfg.Cache.DefaultTTL != 30*time.Second {
		t.Fatalf("unexpected cache ttl %v", cfg.Cache.DefaultTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if got := cfg.LanguageCodes(); !reflect.DeepEqual(got, []string{"en", "fr", "de"}) {
		t.Fatalf("unexpected language codes %v", got)
	}
}

func TestLoadFromEnv_RejectsMalformedValues(t *testing.T) {
	t.Setenv("REVTRANS_CACHE_ENABLED", "maybe")
	if _, err := runtimeconfig.LoadFromEnv(runtimeconfig.DefaultConfig()); err == nil {
		t.Fatal("expected parse error for malformed boolean")
	}
}
