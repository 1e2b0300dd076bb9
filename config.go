package mongostore

import (
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	// DefaultURI points at a local test database, matching the store's
	// zero-configuration behavior.
	DefaultURI = "mongodb://localhost:27017/connect_mongodb_session_test"

	// DefaultCollection is the collection sessions are stored in.
	DefaultCollection = "sessions"

	// DefaultTTL is applied to sessions whose payload carries no cookie expiry.
	DefaultTTL = 14 * 24 * time.Hour

	// DefaultIDField is the document field holding the session identifier.
	DefaultIDField = "_id"

	// DefaultExpiresField is the document field holding the expiry timestamp
	// and carrying the TTL index.
	DefaultExpiresField = "expires"

	// fallbackDatabase is used when neither the config nor the URI names a database.
	fallbackDatabase = "test"
)

// Config provides environment-based configuration for the session store.
// Every field has a default; an empty Config resolves to a usable store
// pointed at a local test database.
type Config struct {
	// URI is the MongoDB connection string.
	URI string `env:"MONGOSTORE_URI" envDefault:"mongodb://localhost:27017/connect_mongodb_session_test"`

	// Collection is the collection sessions are stored in.
	Collection string `env:"MONGOSTORE_COLLECTION" envDefault:"sessions"`

	// Database overrides the database implied by the URI path.
	Database string `env:"MONGOSTORE_DATABASE" envDefault:""`

	// TTL is the session lifetime used when the payload carries no cookie expiry.
	TTL time.Duration `env:"MONGOSTORE_TTL" envDefault:"336h"`

	// IDField is the document field holding the session identifier.
	IDField string `env:"MONGOSTORE_ID_FIELD" envDefault:"_id"`

	// ExpiresField is the document field holding the expiry timestamp.
	ExpiresField string `env:"MONGOSTORE_EXPIRES_FIELD" envDefault:"expires"`

	// ExpireAfterSeconds is the grace period added to the TTL index cutoff.
	ExpireAfterSeconds int `env:"MONGOSTORE_EXPIRE_AFTER_SECONDS" envDefault:"0"`

	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration `env:"MONGOSTORE_CONNECT_TIMEOUT" envDefault:"10s"`

	// ClientOptions is passed through to the MongoDB driver untouched,
	// letting callers tune pooling, timeouts and auth without the store
	// growing knobs for every driver feature.
	ClientOptions *options.ClientOptions `env:"-"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() Config {
	return Config{
		URI:                DefaultURI,
		Collection:         DefaultCollection,
		TTL:                DefaultTTL,
		IDField:            DefaultIDField,
		ExpiresField:       DefaultExpiresField,
		ExpireAfterSeconds: 0,
		ConnectTimeout:     10 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast on malformed configuration so problems surface at
// construction time instead of as opaque driver errors later.
func (c Config) Validate() error {
	if c.URI == "" {
		return ErrMissingURI
	}
	if c.Collection == "" {
		return ErrMissingCollection
	}
	if c.IDField == "" || c.ExpiresField == "" {
		return ErrMissingField
	}
	if c.TTL <= 0 {
		return ErrInvalidTTL
	}
	if c.ExpireAfterSeconds < 0 {
		return ErrInvalidExpireAfterSeconds
	}
	return nil
}

// databaseName resolves the target database: an explicit Database wins,
// then the database named by the URI path, then the driver's conventional
// "test" fallback.
func (c Config) databaseName() string {
	if c.Database != "" {
		return c.Database
	}
	if u, err := url.Parse(c.URI); err == nil {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			return name
		}
	}
	return fallbackDatabase
}

// normalize fills zero-valued fields with defaults so a partially specified
// Config never produces an undefined runtime value.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.URI == "" {
		c.URI = def.URI
	}
	if c.Collection == "" {
		c.Collection = def.Collection
	}
	if c.TTL == 0 {
		c.TTL = def.TTL
	}
	if c.IDField == "" {
		c.IDField = def.IDField
	}
	if c.ExpiresField == "" {
		c.ExpiresField = def.ExpiresField
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	return c
}
