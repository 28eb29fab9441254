package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	admintranslations "github.com/goliatone/go-content-revisions/internal/admin/translations"
	moderationcmd "github.com/goliatone/go-content-revisions/internal/commands/moderation"
	"github.com/goliatone/go-content-revisions/internal/i18n"
	"github.com/goliatone/go-content-revisions/internal/jobs"
	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/internal/logging/gologger"
	"github.com/goliatone/go-content-revisions/internal/moderation"
	"github.com/goliatone/go-content-revisions/internal/overview"
	"github.com/goliatone/go-content-revisions/internal/permissions"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/internal/runtimeconfig"
	"github.com/goliatone/go-content-revisions/internal/translationconfig"
	"github.com/goliatone/go-content-revisions/internal/workflow"
	"github.com/goliatone/go-content-revisions/internal/workflow/simple"
	"github.com/goliatone/go-content-revisions/pkg/activity"
	"github.com/goliatone/go-content-revisions/pkg/activity/usersink"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// ActivityChannel tags activity events emitted by the moderation sync engine.
const ActivityChannel = "revisions"

// Container wires module dependencies.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	now            func() time.Time

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	baseStore revisions.Store
	store     *revisions.HookedStore

	settingsRepo translationconfig.Repository
	syncState    *translationconfig.State
	settingsSvc  *admintranslations.Service

	audit        jobs.AuditRecorder
	activitySink interfaces.ActivitySink
	emitter      *activity.Emitter

	workflow     interfaces.WorkflowEngine
	languages    interfaces.LanguageRegistry
	oracle       interfaces.CapabilityOracle
	guardOracle  interfaces.CapabilityOracle
	urls         interfaces.URLResolver
	contentTypes interfaces.ContentTypeRegistry
	routeManager *urlkit.RouteManager

	syncEngine  *moderation.Engine
	overviewSvc *overview.Service

	followCancel context.CancelFunc
	followDone   <-chan struct{}
	closeOnce    sync.Once
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider built from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithBunDB binds the bun stores to db. The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithStore overrides the revision store. Save hooks still wrap it.
func WithStore(store revisions.Store) Option {
	return func(c *Container) {
		c.baseStore = store
	}
}

// WithSettingsRepository overrides the translation settings repository.
func WithSettingsRepository(repo translationconfig.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithAuditRecorder overrides the in-memory audit recorder.
func WithAuditRecorder(recorder jobs.AuditRecorder) Option {
	return func(c *Container) {
		c.audit = recorder
	}
}

// WithActivitySink forwards moderation sync activity to sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithWorkflowEngine overrides the workflow engine compiled from configuration.
func WithWorkflowEngine(engine interfaces.WorkflowEngine) Option {
	return func(c *Container) {
		c.workflow = engine
	}
}

// WithLanguageRegistry overrides the registry built from configured languages.
func WithLanguageRegistry(registry interfaces.LanguageRegistry) Option {
	return func(c *Container) {
		c.languages = registry
	}
}

// WithCapabilityOracle overrides the permission based oracle. The oracle is
// also consulted by the moderation command handlers.
func WithCapabilityOracle(oracle interfaces.CapabilityOracle) Option {
	return func(c *Container) {
		c.oracle = oracle
		c.guardOracle = oracle
	}
}

// WithURLResolver overrides the resolver built from the route configuration.
func WithURLResolver(resolver interfaces.URLResolver) Option {
	return func(c *Container) {
		c.urls = resolver
	}
}

// WithContentTypes reports which content types carry translatable fields.
func WithContentTypes(registry interfaces.ContentTypeRegistry) Option {
	return func(c *Container) {
		c.contentTypes = registry
	}
}

// WithClock overrides the clock shared by stores, engines and services.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "")

	c.configureCacheDefaults()
	if err := c.configureStorage(context.Background()); err != nil {
		c.closeDB()
		return nil, err
	}
	if err := c.configureSettings(context.Background()); err != nil {
		c.closeDB()
		return nil, err
	}
	if err := c.configureWorkflow(context.Background()); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.configureLanguages(); err != nil {
		c.Close()
		return nil, err
	}
	c.configureRoutes()
	c.configureServices()

	c.logger.Info("container.configured",
		"storage", c.storageProvider(),
		"languages", len(cfg.Languages),
		"sync_enabled", c.syncState.SyncEnabled(),
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("configure go-logger provider: %w", err)
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = gologger.NewConsoleProvider(c.Config.Logging.Level)
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			c.logger.Warn("container.cache.disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.baseStore != nil && c.bunDB == nil {
		return nil
	}

	if c.bunDB == nil {
		db, err := openDatabase(c.Config.Storage)
		if err != nil {
			return err
		}
		if db != nil {
			c.bunDB = db
			c.ownsDB = true
		}
	}

	if c.bunDB == nil {
		c.baseStore = revisions.NewMemoryStore(revisions.WithMemoryClock(c.now))
		return nil
	}

	if err := revisions.Migrate(ctx, c.bunDB); err != nil {
		return fmt.Errorf("migrate revision tables: %w", err)
	}
	logging.StorageLogger(c.loggerProvider).Info("storage.configured",
		"dialect", c.storageProvider(),
		"cache", c.cacheService != nil,
		"owned", c.ownsDB,
	)
	if c.baseStore == nil {
		if c.cacheService != nil {
			c.baseStore = revisions.NewBunStoreWithCache(c.bunDB, c.cacheService, c.keySerializer, revisions.WithBunClock(c.now))
		} else {
			c.baseStore = revisions.NewBunStore(c.bunDB, revisions.WithBunClock(c.now))
		}
	}
	return nil
}

func (c *Container) configureSettings(ctx context.Context) error {
	if c.settingsRepo == nil {
		if c.bunDB != nil {
			repo := translationconfig.NewBunRepository(c.bunDB)
			if err := repo.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate translation settings: %w", err)
			}
			c.settingsRepo = repo
		} else {
			c.settingsRepo = translationconfig.NewMemoryRepository()
		}
	}

	c.syncState = translationconfig.NewState(translationconfig.Settings{
		SyncModerationStateTranslations: c.Config.Sync.ModerationStateTranslations,
	})
	stored, err := c.settingsRepo.Get(ctx)
	switch {
	case err == nil:
		c.syncState.SetSyncEnabled(stored.SyncModerationStateTranslations)
	case errors.Is(err, translationconfig.ErrSettingsNotFound):
	default:
		return fmt.Errorf("load translation settings: %w", err)
	}

	followCtx, cancel := context.WithCancel(context.Background())
	settingsLogger := logging.SettingsLogger(c.loggerProvider)
	done, err := c.syncState.Follow(followCtx, c.settingsRepo, func(evt translationconfig.ChangeEvent) {
		if !evt.SyncToggled() {
			return
		}
		settingsLogger.Info("settings.sync.changed",
			"change", string(evt.Type),
			"sync_moderation_state_translations", c.syncState.SyncEnabled(),
		)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("follow translation settings: %w", err)
	}
	c.followCancel = cancel
	c.followDone = done
	settingsLogger.Debug("settings.follow.started",
		"sync_moderation_state_translations", c.syncState.SyncEnabled(),
	)

	if c.audit == nil {
		c.audit = jobs.NewInMemoryAuditRecorder()
	}
	c.settingsSvc = admintranslations.NewService(c.settingsRepo, c.audit,
		admintranslations.WithState(c.syncState),
		admintranslations.WithClock(c.now),
	)
	return nil
}

func (c *Container) configureWorkflow(ctx context.Context) error {
	if c.workflow != nil {
		return nil
	}
	engine := simple.New(simple.WithClock(c.now))
	definitions, err := workflow.CompileDefinitionConfigs(c.Config.Workflow.Definitions)
	if err != nil {
		return fmt.Errorf("compile workflow definitions: %w", err)
	}
	for _, definition := range definitions {
		if err := engine.RegisterWorkflow(ctx, definition); err != nil {
			return fmt.Errorf("register workflow %s: %w", definition.EntityType, err)
		}
	}
	c.workflow = engine
	return nil
}

func (c *Container) configureLanguages() error {
	if c.languages != nil {
		return nil
	}
	locales := make([]i18n.LocaleConfig, 0, len(c.Config.Languages))
	for _, lang := range c.Config.Languages {
		locales = append(locales, i18n.LocaleConfig{Code: lang.Code, Name: lang.Name})
	}
	registry, err := i18n.NewRegistry(i18n.FromModuleConfig(c.Config.DefaultLanguage, locales))
	if err != nil {
		return fmt.Errorf("configure languages: %w", err)
	}
	c.languages = registry
	return nil
}

func (c *Container) configureRoutes() {
	if c.urls != nil {
		return
	}
	routes := c.Config.Routes
	if routes.RouteConfig == nil {
		c.urls = overview.NoopURLResolver{}
		return
	}
	c.routeManager = urlkit.NewRouteManager(routes.RouteConfig)
	c.urls = overview.NewURLKitResolver(overview.URLKitResolverOptions{
		Manager:      c.routeManager,
		Group:        strings.TrimSpace(routes.Group),
		LocaleGroups: routes.LocaleGroups,
	})
}

func (c *Container) configureServices() {
	if c.oracle == nil {
		c.oracle = permissions.NewOracle()
	}
	if c.activitySink != nil {
		c.emitter = activity.NewEmitter(usersink.Hook{Sink: c.activitySink},
			activity.WithChannel(ActivityChannel),
			activity.WithClock(c.now),
		)
	}

	c.store = revisions.NewHookedStore(c.baseStore)
	engineOpts := []moderation.Option{
		moderation.WithWorkflowEngine(c.workflow),
		moderation.WithAuditRecorder(c.audit),
		moderation.WithLogger(logging.ModerationLogger(c.loggerProvider)),
		moderation.WithClock(c.now),
	}
	if entityType := strings.TrimSpace(c.Config.Workflow.EntityType); entityType != "" {
		engineOpts = append(engineOpts, moderation.WithEntityType(entityType))
	}
	if c.emitter != nil {
		engineOpts = append(engineOpts, moderation.WithActivityEmitter(c.emitter))
	}
	c.syncEngine = moderation.NewEngine(c.store, c.syncState, engineOpts...)
	c.store.Register(c.syncEngine)

	overviewOpts := []overview.Option{
		overview.WithSourceColumn(c.Config.Overview.SourceColumn),
		overview.WithDeleteTranslationLinks(c.Config.Overview.DeleteTranslationLinks),
		overview.WithDirectEditLinks(c.Config.Overview.DirectEditLinks),
		overview.WithDateLayout(c.Config.Overview.DateLayout),
		overview.WithURLResolver(c.urls),
		overview.WithLogger(logging.OverviewLogger(c.loggerProvider)),
		overview.WithClock(c.now),
	}
	if c.contentTypes != nil {
		overviewOpts = append(overviewOpts, overview.WithContentTypes(c.contentTypes))
	}
	c.overviewSvc = overview.NewService(c.store, c.languages, c.oracle, overviewOpts...)
}

// RegisterCommands builds the moderation command handlers and records them with reg.
func (c *Container) RegisterCommands(reg moderationcmd.CommandRegistry, opts ...moderationcmd.Option) (*moderationcmd.HandlerSet, error) {
	return moderationcmd.RegisterModerationCommands(reg, moderationcmd.Dependencies{
		Store: c.store,
		Guard: moderationcmd.Guard{
			Oracle:     c.guardOracle,
			Workflow:   c.workflow,
			EntityType: c.Config.Workflow.EntityType,
		},
		Settings: c.settingsSvc,
	}, c.loggerProvider, opts...)
}

// Close stops the settings subscription and closes a database opened by the container.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.followCancel != nil {
			c.followCancel()
			<-c.followDone
		}
		err = c.closeDB()
	})
	return err
}

func (c *Container) closeDB() error {
	if c.bunDB == nil || !c.ownsDB {
		return nil
	}
	return c.bunDB.Close()
}

func (c *Container) storageProvider() string {
	if c.bunDB == nil {
		return runtimeconfig.StorageProviderMemory
	}
	return c.bunDB.Dialect().Name().String()
}

// LoggerProvider exposes the configured logger provider. It is nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Store returns the revision store with the moderation sync hook attached.
func (c *Container) Store() revisions.Store {
	return c.store
}

// BunDB exposes the database backing the stores, nil for in-memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// OverviewService returns the revision overview service.
func (c *Container) OverviewService() *overview.Service {
	return c.overviewSvc
}

// SyncEngine returns the moderation sync engine.
func (c *Container) SyncEngine() *moderation.Engine {
	return c.syncEngine
}

// SettingsService returns the translation settings admin service.
func (c *Container) SettingsService() *admintranslations.Service {
	return c.settingsSvc
}

// SyncState returns the runtime moderation sync toggle.
func (c *Container) SyncState() *translationconfig.State {
	return c.syncState
}

// WorkflowEngine returns the workflow engine validating transitions.
func (c *Container) WorkflowEngine() interfaces.WorkflowEngine {
	return c.workflow
}

// LanguageRegistry returns the configured language registry.
func (c *Container) LanguageRegistry() interfaces.LanguageRegistry {
	return c.languages
}

// CapabilityOracle returns the oracle used by the overview.
func (c *Container) CapabilityOracle() interfaces.CapabilityOracle {
	return c.oracle
}

// AuditRecorder returns the audit recorder shared by sync and settings.
func (c *Container) AuditRecorder() jobs.AuditRecorder {
	return c.audit
}

func openDatabase(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case runtimeconfig.StorageProviderSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case runtimeconfig.StorageProviderPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, nil
	}
}
