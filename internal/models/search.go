package models

import "time"

// Question is a single question search hit.
type Question struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Author      string    `json:"author,omitempty"`
	Upvotes     int       `json:"upvotes"`
	AnswerCount int       `json:"answer_count"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// UserSummary is the compact user record returned by user search.
type UserSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Institution string `json:"institution,omitempty"`
	Reputation  int    `json:"reputation"`
}

// CommunitySummary is the compact community record returned by community search.
type CommunitySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int    `json:"member_count"`
}

// SuggestionBundle groups autocomplete suggestions by resource type.
// All four fields are always non-nil so UI code never needs nil checks.
type SuggestionBundle struct {
	Questions   []string `json:"questions"`
	Tags        []string `json:"tags"`
	Users       []string `json:"users"`
	Communities []string `json:"communities"`
}

// Normalize replaces nil fields with empty slices and returns the bundle.
func (b SuggestionBundle) Normalize() SuggestionBundle {
	if b.Questions == nil {
		b.Questions = []string{}
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.Users == nil {
		b.Users = []string{}
	}
	if b.Communities == nil {
		b.Communities = []string{}
	}
	return b
}

// EmptySuggestions returns a bundle with all fields present and empty.
func EmptySuggestions() SuggestionBundle {
	return SuggestionBundle{}.Normalize()
}

// SearchMeta carries per-resource totals for a search.
type SearchMeta struct {
	QuestionsTotal   int `json:"questions_total"`
	UsersTotal       int `json:"users_total"`
	CommunitiesTotal int `json:"communities_total"`
}

// SearchResultEnvelope is the unified multi-resource search result. It is
// constructed fresh per query and never mutated afterwards; a new query
// produces a new envelope that supersedes the previous one. Seq is a
// monotonically increasing per-service sequence number: when two envelopes
// race, the one with the higher Seq is authoritative and the other must be
// discarded.
type SearchResultEnvelope struct {
	Questions   []Question         `json:"questions"`
	Users       []UserSummary      `json:"users"`
	Communities []CommunitySummary `json:"communities"`
	Suggestions SuggestionBundle   `json:"suggestions"`
	Meta        SearchMeta         `json:"meta"`
	Seq         uint64             `json:"-"`
}

// Normalize replaces nil collections with empty ones so downstream consumers
// never see null fields, even under partial degradation.
func (e *SearchResultEnvelope) Normalize() {
	if e.Questions == nil {
		e.Questions = []Question{}
	}
	if e.Users == nil {
		e.Users = []UserSummary{}
	}
	if e.Communities == nil {
		e.Communities = []CommunitySummary{}
	}
	e.Suggestions = e.Suggestions.Normalize()
}

// SearchOptions tunes a SearchAll call.
type SearchOptions struct {
	// Limit is the maximum number of question results. User and community
	// sub-queries receive ceil(Limit/3) each. Defaults to 20.
	Limit int
	// SortBy selects the backend sort order ("relevance", "newest", "votes").
	// Defaults to "relevance".
	SortBy string
}

// TrendingItem is one entry of a trending feed (tags, topics, questions).
type TrendingItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
