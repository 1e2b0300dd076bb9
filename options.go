package mongostore

import (
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Option is a functional option for configuring the session store.
type Option func(*storeOptions)

// storeOptions collects construction-time settings before validation.
type storeOptions struct {
	cfg       Config
	connector Connector
	logger    *slog.Logger
}

// WithConfig replaces the whole configuration, typically one produced by
// LoadConfig. Later options still apply on top of it.
func WithConfig(cfg Config) Option {
	return func(o *storeOptions) {
		o.cfg = cfg
	}
}

// WithURI sets the MongoDB connection string.
func WithURI(uri string) Option {
	return func(o *storeOptions) {
		o.cfg.URI = uri
	}
}

// WithCollection sets the collection sessions are stored in.
func WithCollection(name string) Option {
	return func(o *storeOptions) {
		o.cfg.Collection = name
	}
}

// WithDatabase sets an explicit target database, overriding the one implied
// by the connection URI.
func WithDatabase(name string) Option {
	return func(o *storeOptions) {
		o.cfg.Database = name
	}
}

// WithTTL sets the session lifetime used when the payload carries no cookie expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *storeOptions) {
		o.cfg.TTL = ttl
	}
}

// WithIDField sets the document field holding the session identifier.
func WithIDField(field string) Option {
	return func(o *storeOptions) {
		o.cfg.IDField = field
	}
}

// WithExpiresField sets the document field holding the expiry timestamp.
func WithExpiresField(field string) Option {
	return func(o *storeOptions) {
		o.cfg.ExpiresField = field
	}
}

// WithExpireAfterSeconds sets the grace period added to the TTL index cutoff.
func WithExpireAfterSeconds(seconds int) Option {
	return func(o *storeOptions) {
		o.cfg.ExpireAfterSeconds = seconds
	}
}

// WithConnectTimeout bounds the initial connect and ping.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *storeOptions) {
		if timeout > 0 {
			o.cfg.ConnectTimeout = timeout
		}
	}
}

// WithClientOptions passes driver options through untouched.
func WithClientOptions(opts *options.ClientOptions) Option {
	return func(o *storeOptions) {
		o.cfg.ClientOptions = opts
	}
}

// WithConnector replaces the database capability used by the store.
// Primarily useful for substituting a fake implementation in tests.
func WithConnector(connector Connector) Option {
	return func(o *storeOptions) {
		if connector != nil {
			o.connector = connector
		}
	}
}

// WithLogger sets the logger for connection lifecycle and operation failures.
// Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
