package overview

import (
	"context"
	"time"

	"github.com/goliatone/go-content-revisions/internal/logging"
	"github.com/goliatone/go-content-revisions/internal/revisions"
	"github.com/goliatone/go-content-revisions/pkg/interfaces"
	"github.com/google/uuid"
)

// Service assembles the revision overview of a content item.
type Service struct {
	store     revisions.Store
	languages interfaces.LanguageRegistry
	oracle    interfaces.CapabilityOracle
	urls      interfaces.URLResolver
	types     interfaces.ContentTypeRegistry
	formatter interfaces.ModerationStateFormatter
	logger    interfaces.Logger
	now       func() time.Time

	routes            Routes
	dateLayout        string
	sourceColumn      bool
	directEdit        bool
	translationDelete bool

	builder  *StatusMatrixBuilder
	resolver *OperationResolver
}

// Option customises the overview service.
type Option func(*Service)

// WithSourceColumn toggles the source language column.
func WithSourceColumn(enabled bool) Option {
	return func(s *Service) {
		s.sourceColumn = enabled
	}
}

// WithDeleteTranslationLinks exposes per-language delete operations.
func WithDeleteTranslationLinks(enabled bool) Option {
	return func(s *Service) {
		s.translationDelete = enabled
	}
}

// WithDirectEditLinks points Edit operations at the entity edit form when the
// actor may update the whole item.
func WithDirectEditLinks(enabled bool) Option {
	return func(s *Service) {
		s.directEdit = enabled
	}
}

// WithClock overrides the clock used to stamp overviews.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithDateLayout overrides the layout of row titles.
func WithDateLayout(layout string) Option {
	return func(s *Service) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithURLResolver resolves operation and row links to URLs.
func WithURLResolver(resolver interfaces.URLResolver) Option {
	return func(s *Service) {
		if resolver != nil {
			s.urls = resolver
		}
	}
}

// WithContentTypes gates Add operations on translatable content types.
func WithContentTypes(registry interfaces.ContentTypeRegistry) Option {
	return func(s *Service) {
		s.types = registry
	}
}

// WithFormatter overrides the moderation status formatter.
func WithFormatter(formatter interfaces.ModerationStateFormatter) Option {
	return func(s *Service) {
		if formatter != nil {
			s.formatter = formatter
		}
	}
}

// WithRoutes overrides the route names.
func WithRoutes(routes Routes) Option {
	return func(s *Service) {
		s.routes = routes.withDefaults()
	}
}

// NewService constructs an overview service.
func NewService(store revisions.Store, languages interfaces.LanguageRegistry, oracle interfaces.CapabilityOracle, opts ...Option) *Service {
	svc := &Service{
		store:        store,
		languages:    languages,
		oracle:       oracle,
		urls:         NoopURLResolver{},
		formatter:    NewStatusFormatter(),
		logger:       logging.NoOp(),
		now:          time.Now,
		routes:       DefaultRoutes(),
		dateLayout:   DefaultDateLayout,
		sourceColumn: true,
		directEdit:   true,
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.builder = NewStatusMatrixBuilder(
		WithStatusFormatter(svc.formatter),
		WithBuilderRoutes(svc.routes),
		WithRowDateLayout(svc.dateLayout),
		WithSourceColumnEnabled(svc.sourceColumn),
	)
	svc.resolver = NewOperationResolver(oracle,
		WithContentTypeRegistry(svc.types),
		WithResolverRoutes(svc.routes),
		WithDirectEdit(svc.directEdit),
		WithTranslationDelete(svc.translationDelete),
	)
	return svc
}

// BuildOverview returns the revision matrix for contentID. Storage failures
// are returned unchanged. Revisions that fail integrity checks are kept as
// unavailable rows so no revision disappears from the listing.
func (s *Service) BuildOverview(ctx context.Context, contentID uuid.UUID) (*Overview, error) {
	if s.store == nil {
		return nil, ErrStoreRequired
	}
	if s.languages == nil {
		return nil, ErrLanguagesRequired
	}
	if contentID == uuid.Nil {
		return nil, ErrContentIDRequired
	}
	logger := logging.WithRevisionContext(s.logger.WithContext(ctx), contentID.String(), 0, "")

	item, err := s.store.GetItem(ctx, contentID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.ListRevisions(ctx, contentID)
	if err != nil {
		return nil, err
	}
	languages, err := s.languages.ConfiguredLanguages(ctx)
	if err != nil {
		return nil, err
	}

	rows, buildErr := s.builder.Build(item, history, languages)
	if buildErr != nil {
		logger.Warn("overview.build.integrity", "error", buildErr)
	}

	byID := make(map[int64]*revisions.Revision, len(history))
	for _, revision := range history {
		if revision != nil {
			byID[revision.RevisionID] = revision
		}
	}
	translationCount := 0
	if canonical, ok := byID[item.DefaultRevisionID]; ok {
		translationCount = len(canonical.Translations)
	}

	tags := OperationSet{}.Tag("content:" + item.ID.String())
	for i := range rows {
		row := &rows[i]
		if row.Unavailable {
			logger.Warn("overview.row.unavailable", "revision_id", row.RevisionID, "error", row.Err)
			s.resolveLink(ctx, logger, &row.Link)
			continue
		}
		revision := byID[row.RevisionID]
		for j := range row.Cells {
			set := s.resolver.ResolveCell(ctx, row.Cells[j], revision, item)
			tags = tags.Tag(set.CacheTags()...)
			row.Cells[j].Operations = set.Operations()
		}
		set := s.resolver.ResolveRevision(ctx, revision, item, translationCount)
		tags = tags.Tag(set.CacheTags()...)
		row.Operations = set.Operations()
		s.resolveRowLinks(ctx, logger, row)
	}

	logger.Debug("overview.build.completed", "rows", len(rows), "languages", len(languages))
	return &Overview{
		ContentID:         item.ID,
		ContentType:       item.ContentType,
		DefaultRevisionID: item.DefaultRevisionID,
		CurrentRevisionID: item.CurrentRevisionID(),
		Rows:              rows,
		CacheTags:         tags.CacheTags(),
		GeneratedAt:       s.now().UTC(),
	}, nil
}

func (s *Service) resolveRowLinks(ctx context.Context, logger interfaces.Logger, row *Row) {
	s.resolveLink(ctx, logger, &row.Link)
	for i := range row.Operations {
		s.resolveLink(ctx, logger, &row.Operations[i].Link)
	}
	for i := range row.Cells {
		cell := &row.Cells[i]
		if cell.Link != nil {
			s.resolveLink(ctx, logger, cell.Link)
		}
		for j := range cell.Operations {
			s.resolveLink(ctx, logger, &cell.Operations[j].Link)
		}
	}
}

func (s *Service) resolveLink(ctx context.Context, logger interfaces.Logger, link *Link) {
	if link == nil || link.Route == "" {
		return
	}
	url, err := s.urls.Resolve(ctx, link.Route, link.Params)
	if err != nil {
		logger.Debug("overview.link.unresolved", "route", link.Route, "error", err)
		return
	}
	link.URL = url
}
