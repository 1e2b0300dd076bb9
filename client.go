package mongostore

import (
	"context"
)

// Client is the database capability the store consumes. It is satisfied by
// the MongoDB driver adapter in this package and by fakes in tests, keeping
// the store testable without a running database.
type Client interface {
	// Collection returns a handle to the named collection.
	Collection(database, name string) Collection

	// Ping verifies the connection is usable.
	Ping(ctx context.Context) error

	// Disconnect releases the underlying connection.
	Disconnect(ctx context.Context) error
}

// Collection is the subset of document-collection operations the store maps
// its session operations onto.
type Collection interface {
	// FindOne returns the record for the given session id,
	// or (nil, nil) when no document matches.
	FindOne(ctx context.Context, id string) (*Record, error)

	// Upsert inserts or overwrites the record keyed by its session id.
	Upsert(ctx context.Context, rec *Record) error

	// DeleteOne removes the record for the given session id.
	// Absence of a match is not an error.
	DeleteOne(ctx context.Context, id string) error

	// DeleteMany removes every record in the collection.
	DeleteMany(ctx context.Context) error

	// FindAll returns every stored record. Diagnostics only.
	FindAll(ctx context.Context) ([]Record, error)

	// EnsureTTLIndex creates the TTL index on the expires field with the
	// given expiration cutoff, if it does not already exist.
	EnsureTTLIndex(ctx context.Context, expireAfterSeconds int32) error
}

// Connector establishes the database connection for a store. The default
// connector dials MongoDB with the configured URI and client options.
type Connector func(ctx context.Context, cfg Config) (Client, error)
