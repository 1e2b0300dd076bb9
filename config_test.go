package mongostore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mongostore"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := mongostore.DefaultConfig()

	assert.Equal(t, "mongodb://localhost:27017/connect_mongodb_session_test", cfg.URI)
	assert.Equal(t, "sessions", cfg.Collection)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, 14*24*time.Hour, cfg.TTL)
	assert.Equal(t, "_id", cfg.IDField)
	assert.Equal(t, "expires", cfg.ExpiresField)
	assert.Equal(t, 0, cfg.ExpireAfterSeconds)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies documented defaults", func(t *testing.T) {
		cfg, err := mongostore.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, mongostore.DefaultURI, cfg.URI)
		assert.Equal(t, mongostore.DefaultCollection, cfg.Collection)
		assert.Equal(t, mongostore.DefaultTTL, cfg.TTL)
		assert.Equal(t, mongostore.DefaultIDField, cfg.IDField)
		assert.Equal(t, mongostore.DefaultExpiresField, cfg.ExpiresField)
	})

	t.Run("reads environment overrides", func(t *testing.T) {
		t.Setenv("MONGOSTORE_URI", "mongodb://db.internal:27017/prod")
		t.Setenv("MONGOSTORE_COLLECTION", "web_sessions")
		t.Setenv("MONGOSTORE_TTL", "1h")
		t.Setenv("MONGOSTORE_EXPIRE_AFTER_SECONDS", "30")

		cfg, err := mongostore.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "mongodb://db.internal:27017/prod", cfg.URI)
		assert.Equal(t, "web_sessions", cfg.Collection)
		assert.Equal(t, time.Hour, cfg.TTL)
		assert.Equal(t, 30, cfg.ExpireAfterSeconds)
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		t.Setenv("MONGOSTORE_TTL", "fortnight")

		_, err := mongostore.LoadConfig()

		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := mongostore.DefaultConfig()

	cases := []struct {
		name   string
		mutate func(*mongostore.Config)
		want   error
	}{
		{"missing uri", func(c *mongostore.Config) { c.URI = "" }, mongostore.ErrMissingURI},
		{"missing collection", func(c *mongostore.Config) { c.Collection = "" }, mongostore.ErrMissingCollection},
		{"missing id field", func(c *mongostore.Config) { c.IDField = "" }, mongostore.ErrMissingField},
		{"missing expires field", func(c *mongostore.Config) { c.ExpiresField = "" }, mongostore.ErrMissingField},
		{"negative ttl", func(c *mongostore.Config) { c.TTL = -time.Minute }, mongostore.ErrInvalidTTL},
		{"negative grace period", func(c *mongostore.Config) { c.ExpireAfterSeconds = -5 }, mongostore.ErrInvalidExpireAfterSeconds},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)

			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}
