// Package storage implements the client's durable key-value store. It is the
// Go counterpart of the browser original's localStorage: a single `state`
// table in a local SQLite database, written through a small Repository
// interface so callers can be tested against fakes or an in-memory DB.
package storage

import "context"

// Well-known keys persisted by the client.
const (
	KeyUser          = "user"            // JSON-serialized Identity record
	KeyTokenIssuedAt = "token_issued_at" // stringified epoch-millisecond timestamp
	KeySearchHistory = "searchHistory"   // JSON array of recent query strings
)

// Repository is the durable key-value contract. Get returns (nil, nil) when
// the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
