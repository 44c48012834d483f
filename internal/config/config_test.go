package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	cfg := fromViper()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "pharmacare", cfg.Mongo.Database)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 60, cfg.Cache.AnalyticsTTLSeconds)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "10 0 * * *", cfg.Jobs.AlertSweepSpec)
}

func TestFromViperEnvOverrides(t *testing.T) {
	viper.Reset()
	setDefaults()
	viper.AutomaticEnv()
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_ANALYTICS_TTL_SECONDS", "120")
	t.Setenv("JWT_TTL", "2h")

	cfg := fromViper()

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 120, cfg.Cache.AnalyticsTTLSeconds)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestServerLocation(t *testing.T) {
	assert.Equal(t, time.Local, ServerConfig{}.Location())
	assert.Equal(t, time.Local, ServerConfig{Timezone: "Not/AZone"}.Location())
	assert.Equal(t, "Asia/Kolkata", ServerConfig{Timezone: "Asia/Kolkata"}.Location().String())
}
