// Package api implements the REST client for the StuVerFlow backend.
//
// The wire contract: requests and responses are JSON (multipart when a
// request carries a file attachment), success payloads arrive under "data"
// (some endpoints nest once more under "data.data"), error bodies are
// normalized to a {message} shape, and authenticated requests carry an
// "Authorization: Bearer <token>" header.
package api

import (
	"context"

	"github.com/stuverflow/stuverflow-go/internal/models"
)

// Client is the remote API surface consumed by the session manager, the
// search layer, and the CLI. Implementations must normalize every failure to
// a *APIError (optionally wrapping the common sentinels) and never leak raw
// transport errors.
type Client interface {
	// LoginUser authenticates and returns the resulting Identity, token included.
	LoginUser(ctx context.Context, req models.LoginRequest) (*models.Identity, error)
	// SignupUser creates an account and returns the resulting Identity.
	SignupUser(ctx context.Context, req models.SignupRequest) (*models.Identity, error)
	// UpdateProfile applies a partial profile edit and returns the updated Identity.
	UpdateProfile(ctx context.Context, req models.ProfileUpdateRequest) (*models.Identity, error)

	// SearchQuestions runs a full question search. Returns hits and the total count.
	SearchQuestions(ctx context.Context, query string, limit int, sortBy string) ([]models.Question, int, error)
	// SearchUsers runs a user search.
	SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSummary, int, error)
	// SearchCommunities runs a community search.
	SearchCommunities(ctx context.Context, query string, limit int) ([]models.CommunitySummary, int, error)
	// Suggest fetches autocomplete suggestions for query.
	Suggest(ctx context.Context, query string, limit int) (models.SuggestionBundle, error)
	// Trending fetches one trending feed ("tags", "questions", ...).
	Trending(ctx context.Context, feed string) ([]models.TrendingItem, error)

	// Ping checks backend liveness.
	Ping(ctx context.Context) error
	// Close releases underlying transport resources.
	Close() error
}

// TokenProvider supplies the current bearer token, or "" when anonymous.
// The session manager implements it; injecting the narrow interface keeps the
// dependency order transport → session → search acyclic.
type TokenProvider interface {
	Token() string
}
