package search

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/stuverflow/stuverflow-go/internal/models"
)

// Trending returns the named trending feed ("tags", "questions", ...),
// serving a cached copy while it is fresh and refetching once the freshness
// window has passed. Entries accumulate per distinct feed name for the life
// of the service; the only eviction is the time window.
func (s *Service) Trending(ctx context.Context, feed string) ([]models.TrendingItem, error) {
	if cached, ok := s.trending.Get(feed); ok {
		s.log.Debug(ctx, "trending cache hit", "feed", feed)
		return cached.([]models.TrendingItem), nil
	}

	items, err := s.client.Trending(ctx, feed)
	if err != nil {
		return nil, err
	}

	s.trending.Set(feed, items, gocache.DefaultExpiration)
	return items, nil
}

// ClearTrendingCache drops every cached trending feed. Intended for tests and
// explicit invalidation flows.
func (s *Service) ClearTrendingCache() {
	s.trending.Flush()
}
