package contentrevisions

import "github.com/goliatone/go-content-revisions/internal/runtimeconfig"

var (
	ErrDefaultLanguageRequired      = runtimeconfig.ErrDefaultLanguageRequired
	ErrDefaultLanguageNotConfigured = runtimeconfig.ErrDefaultLanguageNotConfigured
	ErrLanguageInvalid              = runtimeconfig.ErrLanguageInvalid
	ErrLanguageDuplicate            = runtimeconfig.ErrLanguageDuplicate
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid              = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                   = runtimeconfig.Config
	LanguageConfig           = runtimeconfig.LanguageConfig
	SyncConfig               = runtimeconfig.SyncConfig
	OverviewConfig           = runtimeconfig.OverviewConfig
	WorkflowConfig           = runtimeconfig.WorkflowConfig
	WorkflowDefinitionConfig = runtimeconfig.WorkflowDefinitionConfig
	WorkflowStateConfig      = runtimeconfig.WorkflowStateConfig
	WorkflowTransitionConfig = runtimeconfig.WorkflowTransitionConfig
	StorageConfig            = runtimeconfig.StorageConfig
	CacheConfig              = runtimeconfig.CacheConfig
	RoutesConfig             = runtimeconfig.RoutesConfig
	Features                 = runtimeconfig.Features
	LoggingConfig            = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfigFromEnv overlays REVTRANS_* environment variables on cfg.
func LoadConfigFromEnv(cfg Config) (Config, error) {
	return runtimeconfig.LoadFromEnv(cfg)
}
