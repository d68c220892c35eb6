package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/event-catalog/internal/cache"
	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/metrics"
	"github.com/pkordes/event-catalog/internal/query"
	"github.com/pkordes/event-catalog/internal/repo"
)

// SearchService answers every read of the catalog. All returned events carry
// their tags, and list results are never nil.
type SearchService struct {
	store   repo.Store
	facets  cache.Facets
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewSearchService constructs a SearchService. facets, m and log may be nil;
// without facets the distinct lists are read from storage every time.
func NewSearchService(store repo.Store, facets cache.Facets, m *metrics.Metrics, log *slog.Logger) *SearchService {
	return &SearchService{store: store, facets: facets, metrics: m, log: orDiscard(log)}
}

// Search returns every event matching all supplied criteria, in the order
// selected by c.SortBy. A tag filter naming an unknown tag yields an empty
// result, not an error.
// Returns domain.ErrBadFormat if a date bound cannot be parsed.
func (s *SearchService) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.Event, error) {
	r := s.store.Repos()

	var tag *domain.Tag
	if c.HasTagFilter() {
		t, err := r.Tags.GetByName(ctx, c.TagName)
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Event{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("service.SearchService.Search: %w", err)
		}
		tag = &t
	}

	preds, err := query.Build(c, tag)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}

	events, err := r.Events.Find(ctx, preds, query.ParseSort(c.SortBy).OrderBy())
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.Search: %w", err)
	}
	return nonNil(events), nil
}

// GetByTag returns the events linked to the named tag, unsorted.
// Returns domain.ErrNotFound if the tag does not exist.
func (s *SearchService) GetByTag(ctx context.Context, name string) ([]domain.Event, error) {
	r := s.store.Repos()

	tag, err := r.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.GetByTag: %w", err)
	}

	events, err := r.Events.ListByTag(ctx, tag.ID)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.GetByTag: %w", err)
	}
	return nonNil(events), nil
}

// GetByID returns a single event.
// Returns domain.ErrNotFound if it does not exist.
func (s *SearchService) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	e, err := s.store.Repos().Events.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.SearchService.GetByID: %w", err)
	}
	return e, nil
}

// ListAll returns every event ordered by id.
func (s *SearchService) ListAll(ctx context.Context) ([]domain.Event, error) {
	events, err := s.store.Repos().Events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ListAll: %w", err)
	}
	return nonNil(events), nil
}

// ListAuthoredBy returns the events written by one author ordered by id.
// An unknown author simply has no events.
func (s *SearchService) ListAuthoredBy(ctx context.Context, authorID int64) ([]domain.Event, error) {
	events, err := s.store.Repos().Events.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ListAuthoredBy: %w", err)
	}
	return nonNil(events), nil
}

// ListTagsForEvent returns the tags of one event ordered by name.
// Returns domain.ErrNotFound if the event does not exist.
func (s *SearchService) ListTagsForEvent(ctx context.Context, id int64) ([]domain.Tag, error) {
	e, err := s.store.Repos().Events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ListTagsForEvent: %w", err)
	}
	if e.Tags == nil {
		return []domain.Tag{}, nil
	}
	return e.Tags, nil
}

// ListLocations returns the distinct non-empty locations sorted
// case-insensitively.
func (s *SearchService) ListLocations(ctx context.Context) ([]string, error) {
	values, err := s.facet(ctx, "locations", cache.KeyLocations, s.store.Repos().Events.DistinctLocations)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ListLocations: %w", err)
	}
	return values, nil
}

// ListClubs returns the distinct non-empty clubs sorted case-insensitively.
func (s *SearchService) ListClubs(ctx context.Context) ([]string, error) {
	values, err := s.facet(ctx, "clubs", cache.KeyClubs, s.store.Repos().Events.DistinctClubs)
	if err != nil {
		return nil, fmt.Errorf("service.SearchService.ListClubs: %w", err)
	}
	return values, nil
}

// facet reads a distinct list through the cache. Cache errors are logged and
// treated as misses, so a cache outage only costs a storage round trip.
// A miss is filled under the generation seen before the load, so a write
// that commits in between hides the fill instead of being masked by it.
func (s *SearchService) facet(ctx context.Context, name, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	var (
		gen  int64
		fill bool
	)
	if s.facets != nil {
		values, g, ok, err := s.facets.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.ObserveFacet(name, "error")
			s.log.WarnContext(ctx, "facet cache read failed", "facet", name, "error", err)
		case ok:
			s.metrics.ObserveFacet(name, "hit")
			return values, nil
		default:
			s.metrics.ObserveFacet(name, "miss")
			gen, fill = g, true
		}
	}

	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	values = nonNil(values)

	if fill {
		if err := s.facets.Set(ctx, key, gen, values); err != nil {
			s.log.WarnContext(ctx, "facet cache write failed", "facet", name, "error", err)
		}
	}
	return values, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
