package services

import (
	"context"
	"fmt"
	"sort"

	"catalog/models"
	"catalog/repository"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// Facet names a predefined slice of the catalog
type Facet string

// Catalog facets
const (
	FacetTrending      Facet = "trending"
	FacetMovies        Facet = "movies"
	FacetSeries        Facet = "series"
	FacetComingSoon    Facet = "coming_soon"
	FacetRecentlyAdded Facet = "recently_added"
	FacetBadge         Facet = "badge"
	FacetGenre         Facet = "genre"
)

const (
	// RelatedLimit caps the related-content list on detail pages
	RelatedLimit = 12
	// HeroLimit caps the hero slice of the home page
	HeroLimit = 6
)

// Home is the composite home page view
type Home struct {
	Trending      []models.Content `json:"trending"`
	Movies        []models.Content `json:"movies"`
	Series        []models.Content `json:"series"`
	ComingSoon    []models.Content `json:"coming_soon"`
	RecentlyAdded []models.Content `json:"recently_added"`
	Hero          []models.Content `json:"hero"`
	Badges        []string         `json:"badges"`
}

// CatalogService answers read queries over the content store
type CatalogService struct {
	store    repository.ContentStore
	pageSize int
	log      *logrus.Entry
}

// NewCatalogService creates a catalog service. pageSize bounds each home
// page row.
func NewCatalogService(store repository.ContentStore, pageSize int, log *logrus.Entry) *CatalogService {
	return &CatalogService{store: store, pageSize: pageSize, log: log}
}

// FacetFilter returns the store filter for a facet. value is the badge or
// genre for the valued facets.
func FacetFilter(facet Facet, value string) (repository.Filter, error) {
	switch facet {
	case FacetTrending:
		return repository.Filter{TrendingOnly: true, ComingSoon: repository.ComingSoonExclude}, nil
	case FacetMovies:
		return repository.Filter{Kind: models.KindMovie, ComingSoon: repository.ComingSoonExclude}, nil
	case FacetSeries:
		return repository.Filter{Kind: models.KindSeries, ComingSoon: repository.ComingSoonExclude}, nil
	case FacetComingSoon:
		return repository.Filter{ComingSoon: repository.ComingSoonOnly}, nil
	case FacetRecentlyAdded:
		return repository.Filter{ComingSoon: repository.ComingSoonExclude}, nil
	case FacetBadge:
		return repository.Filter{Badge: value}, nil
	case FacetGenre:
		return repository.Filter{Genre: value}, nil
	default:
		return repository.Filter{}, fmt.Errorf("unknown facet %q", facet)
	}
}

// ListByFacet lists a facet newest first. A limit of zero is unbounded.
func (s *CatalogService) ListByFacet(ctx context.Context, facet Facet, value string, limit int) ([]models.Content, error) {
	filter, err := FacetFilter(facet, value)
	if err != nil {
		return nil, err
	}
	return s.store.Find(ctx, filter, limit)
}

// Search matches titles containing query, ignoring case. An empty query
// matches nothing.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Content, error) {
	if query == "" {
		return []models.Content{}, nil
	}
	return s.store.Find(ctx, repository.Filter{TitleContains: query}, 0)
}

// Get returns a single record
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Content, error) {
	return s.store.Get(ctx, id)
}

// RelatedTo returns records sharing a genre with the reference record. When
// none do, it falls back to the newest records that are not coming soon.
// The reference record is never included.
func (s *CatalogService) RelatedTo(ctx context.Context, content *models.Content) ([]models.Content, error) {
	if len(content.Genres) > 0 {
		related, err := s.store.Find(ctx, repository.Filter{
			AnyGenres: content.Genres,
			ExcludeID: content.ID,
		}, RelatedLimit)
		if err != nil {
			return nil, err
		}
		if len(related) > 0 {
			return related, nil
		}
	}

	s.log.WithField("content_id", content.ID).Debug("No genre matches, using recent content")
	return s.store.Find(ctx, repository.Filter{
		ComingSoon: repository.ComingSoonExclude,
		ExcludeID:  content.ID,
	}, RelatedLimit)
}

// DistinctBadges returns the sorted set of non-empty poster badges
func (s *CatalogService) DistinctBadges(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, repository.FieldPosterBadge)
}

// DistinctGenres returns the sorted set of non-empty genres
func (s *CatalogService) DistinctGenres(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, repository.FieldGenres)
}

func (s *CatalogService) distinct(ctx context.Context, field string) ([]string, error) {
	values, err := s.store.Distinct(ctx, field)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// Home runs the home page queries concurrently. The first failure cancels
// the rest.
func (s *CatalogService) Home(ctx context.Context) (*Home, error) {
	home := &Home{}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()

	rows := []struct {
		facet Facet
		limit int
		dst   *[]models.Content
	}{
		{FacetTrending, s.pageSize, &home.Trending},
		{FacetMovies, s.pageSize, &home.Movies},
		{FacetSeries, s.pageSize, &home.Series},
		{FacetComingSoon, s.pageSize, &home.ComingSoon},
		{FacetRecentlyAdded, s.pageSize, &home.RecentlyAdded},
		{FacetRecentlyAdded, HeroLimit, &home.Hero},
	}
	for _, row := range rows {
		row := row
		p.Go(func(ctx context.Context) error {
			contents, err := s.ListByFacet(ctx, row.facet, "", row.limit)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", row.facet, err)
			}
			*row.dst = contents
			return nil
		})
	}

	p.Go(func(ctx context.Context) error {
		badges, err := s.DistinctBadges(ctx)
		if err != nil {
			return fmt.Errorf("failed to load badges: %w", err)
		}
		home.Badges = badges
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}
