package metadata

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/cache"
	"github.com/skyflixer/skyflixer/internal/config"
)

// Service serves catalog data with a read-through cache in front of the
// provider. List pages and detail records share one cache with a common TTL.
type Service struct {
	client *Client
	cache  *cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewService creates a new metadata service.
func NewService(client *Client, catalogCache *cache.Cache, cfg config.MetadataConfig, logger zerolog.Logger) *Service {
	ttl := time.Duration(cfg.CacheTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 60 * time.Minute
	}
	return &Service{
		client: client,
		cache:  catalogCache,
		ttl:    ttl,
		logger: logger.With().Str("component", "metadata-service").Logger(),
	}
}

// IsConfigured reports whether the provider is usable.
func (s *Service) IsConfigured() bool {
	return s.client.IsConfigured()
}

// Trending returns this week's trending titles.
func (s *Service) Trending(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:trending:%s:%d", mediaType, page)
	return s.cachedPage(ctx, key, func() (*CatalogPage, error) {
		return s.client.Trending(ctx, mediaType, page)
	})
}

// Popular returns the popular list.
func (s *Service) Popular(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:popular:%s:%d", mediaType, page)
	return s.cachedPage(ctx, key, func() (*CatalogPage, error) {
		return s.client.Popular(ctx, mediaType, page)
	})
}

// TopRated returns the top-rated list.
func (s *Service) TopRated(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:toprated:%s:%d", mediaType, page)
	return s.cachedPage(ctx, key, func() (*CatalogPage, error) {
		return s.client.TopRated(ctx, mediaType, page)
	})
}

// Discover returns a filtered discover page.
func (s *Service) Discover(ctx context.Context, mediaType string, filters DiscoverFilters) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:discover:%s:%s:%d:%s:%d",
		mediaType, filters.Genre, filters.Year, filters.SortBy, filters.Page)
	return s.cachedPage(ctx, key, func() (*CatalogPage, error) {
		return s.client.Discover(ctx, mediaType, filters)
	})
}

// Search returns a search result page. Searches are cached briefly; queries
// repeat far less than list pages.
func (s *Service) Search(ctx context.Context, mediaType, query string, page int) (*CatalogPage, error) {
	key := fmt.Sprintf("catalog:search:%s:%s:%d", mediaType, query, page)
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*CatalogPage); ok {
			return result, nil
		}
	}

	result, err := s.client.Search(ctx, mediaType, query, page)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(key, result, s.ttl/4)
	return result, nil
}

// Detail returns a single title's detail record.
func (s *Service) Detail(ctx context.Context, mediaType string, id int) (*CatalogItem, error) {
	key := fmt.Sprintf("catalog:detail:%s:%d", mediaType, id)
	if cached, ok := s.cache.Get(key); ok {
		if item, ok := cached.(*CatalogItem); ok {
			return item, nil
		}
	}

	var item *CatalogItem
	var err error
	if mediaType == "series" {
		item, err = s.client.GetSeries(ctx, id)
	} else {
		item, err = s.client.GetMovie(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(key, item, s.ttl)
	return item, nil
}

func (s *Service) cachedPage(ctx context.Context, key string, fetch func() (*CatalogPage, error)) (*CatalogPage, error) {
	if cached, ok := s.cache.Get(key); ok {
		if result, ok := cached.(*CatalogPage); ok {
			s.logger.Debug().Str("key", key).Msg("catalog page served from cache")
			return result, nil
		}
	}

	result, err := fetch()
	if err != nil {
		return nil, err
	}

	s.cache.SetWithTTL(key, result, s.ttl)
	return result, nil
}
