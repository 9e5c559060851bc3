// Package search implements the client-side search/aggregation layer: the
// concurrent multi-resource fan-out, autocomplete suggestions, debounced
// querying, the trending-feed cache, and the recent-searches history.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/stuverflow/stuverflow-go/internal/api"
	"github.com/stuverflow/stuverflow-go/internal/logging"
	"github.com/stuverflow/stuverflow-go/internal/models"
	"github.com/stuverflow/stuverflow-go/internal/storage"
)

const (
	defaultLimit  = 20
	defaultSortBy = "relevance"

	// minQueryLen guards the suggestion endpoint against noisy
	// single-character queries. Hard precondition, not an optimization.
	minQueryLen = 2

	// DefaultTrendingTTL is the freshness window of the trending cache.
	DefaultTrendingTTL = 5 * time.Minute
)

// Options tunes a Service.
type Options struct {
	// TrendingTTL overrides the trending cache freshness window.
	TrendingTTL time.Duration
	// Logger defaults to a discard logger.
	Logger logging.Logger
}

// Service aggregates the resource-specific search endpoints behind one API.
// The trending cache and search history are owned by the service instance
// (one shared instance per running application, injected where needed) rather
// than package globals.
type Service struct {
	client   api.Client
	store    storage.Repository
	trending *gocache.Cache
	log      logging.Logger
	seq      atomic.Uint64

	// histMu serializes read-modify-write cycles on the history record.
	histMu sync.Mutex
}

// NewService builds a search service over the API client and the durable
// store (used for search history).
func NewService(client api.Client, store storage.Repository, opts Options) *Service {
	if opts.TrendingTTL <= 0 {
		opts.TrendingTTL = DefaultTrendingTTL
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewDiscard()
	}
	return &Service{
		client:   client,
		store:    store,
		trending: gocache.New(opts.TrendingTTL, 2*opts.TrendingTTL),
		log:      opts.Logger,
	}
}

// subLimit is the weight given to the secondary (user/community) sub-queries:
// ceil(limit/3).
func subLimit(limit int) int {
	return (limit + 2) / 3
}

// SearchAll fans out to the four resource queries concurrently and assembles
// a fresh envelope once all of them settle.
//
// The failure policy is asymmetric: question and user search are required and
// abort the whole call; community search and suggestions are best-effort
// enrichment and degrade to empty results. Questions and users are the
// primary result types, communities and suggestions secondary.
//
// The returned envelope always has non-nil collections, carries a
// monotonically increasing Seq assigned when the call is initiated, and is
// never mutated afterwards. Callers racing multiple in-flight searches must
// treat the highest Seq as authoritative and discard the rest; a slow
// earlier search can never outrank a later one.
func (s *Service) SearchAll(ctx context.Context, query string, opts models.SearchOptions) (*models.SearchResultEnvelope, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &models.ValidationError{Field: "query", Reason: "required"}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = defaultSortBy
	}

	// Seq is taken before the fan-out so overlapping calls rank by
	// initiation order, not by which one happens to finish last.
	seq := s.seq.Add(1)

	env := &models.SearchResultEnvelope{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		questions, total, err := s.client.SearchQuestions(gctx, query, limit, sortBy)
		if err != nil {
			return fmt.Errorf("question search: %w", err)
		}
		env.Questions = questions
		env.Meta.QuestionsTotal = total
		return nil
	})

	g.Go(func() error {
		users, total, err := s.client.SearchUsers(gctx, query, subLimit(limit))
		if err != nil {
			return fmt.Errorf("user search: %w", err)
		}
		env.Users = users
		env.Meta.UsersTotal = total
		return nil
	})

	g.Go(func() error {
		communities, total, err := s.client.SearchCommunities(gctx, query, subLimit(limit))
		if err != nil {
			// best-effort: degrade to empty, keep the aggregate alive
			s.log.Warn(gctx, "community search degraded", "query", query, "error", err)
			env.Communities = []models.CommunitySummary{}
			env.Meta.CommunitiesTotal = 0
			return nil
		}
		env.Communities = communities
		env.Meta.CommunitiesTotal = total
		return nil
	})

	g.Go(func() error {
		bundle, err := s.Suggestions(gctx, query, limit)
		if err != nil {
			s.log.Warn(gctx, "suggestions degraded", "query", query, "error", err)
			env.Suggestions = models.EmptySuggestions()
			return nil
		}
		env.Suggestions = bundle
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	env.Normalize()
	env.Seq = seq

	if err := s.recordSearch(ctx, query); err != nil {
		s.log.Warn(ctx, "failed to record search history", "error", err)
	}

	return env, nil
}

// Suggestions fetches autocomplete suggestions. Queries shorter than two
// characters short-circuit to an empty bundle without any network call.
// The result always has all four fields present.
func (s *Service) Suggestions(ctx context.Context, query string, limit int) (models.SuggestionBundle, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return models.EmptySuggestions(), nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	bundle, err := s.client.Suggest(ctx, query, limit)
	if err != nil {
		return models.EmptySuggestions(), err
	}
	return bundle.Normalize(), nil
}
