// Package config loads this service's runtime configuration via Viper:
// defaults, a config file, and environment variable overrides, in that
// precedence order. Grounded on the ambient configuration pattern used
// across the retrieved example corpus's Viper-based services.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the full set of runtime-tunable values the server needs.
type Config struct {
	HTTP     HTTPConfig
	GeoIP    GeoIPConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Bundles  BundleConfig
	Scoring  ScoringConfig
	LogLevel string
}

// HTTPConfig configures the gin server.
type HTTPConfig struct {
	Addr          string
	APIKey        string // required value of the X-Api-Key header; empty disables auth
	RequestsPerMin int
}

// GeoIPConfig points at the MaxMind City database file.
type GeoIPConfig struct {
	CityDBPath string
}

// RedisConfig configures the shared cache/rate-limit backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// MongoConfig configures the audit sink.
type MongoConfig struct {
	URI           string
	Database      string
	Collection    string
	RetentionDays int32
	Enabled       bool
}

// BundleConfig locates the per-factor trained model artifacts (C8).
type BundleConfig struct {
	Dir string
}

// ScoringConfig tunes the engine's request budget.
type ScoringConfig struct {
	EnrichmentTimeout time.Duration
	DetectorTimeout   time.Duration
}

// Load reads configuration from built-in defaults, configPath (if
// non-empty), and RISKGUARD_-prefixed environment variables, in
// increasing precedence order.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RISKGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrap(err, "read config file")
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			APIKey:         v.GetString("http.apiKey"),
			RequestsPerMin: v.GetInt("http.requestsPerMin"),
		},
		GeoIP: GeoIPConfig{
			CityDBPath: v.GetString("geoip.cityDbPath"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Enabled:  v.GetBool("redis.enabled"),
		},
		Mongo: MongoConfig{
			URI:           v.GetString("mongo.uri"),
			Database:      v.GetString("mongo.database"),
			Collection:    v.GetString("mongo.collection"),
			RetentionDays: int32(v.GetInt("mongo.retentionDays")),
			Enabled:       v.GetBool("mongo.enabled"),
		},
		Bundles: BundleConfig{
			Dir: v.GetString("bundles.dir"),
		},
		Scoring: ScoringConfig{
			EnrichmentTimeout: v.GetDuration("scoring.enrichmentTimeout"),
			DetectorTimeout:   v.GetDuration("scoring.detectorTimeout"),
		},
		LogLevel: v.GetString("logLevel"),
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.apiKey", "")
	v.SetDefault("http.requestsPerMin", 100)
	v.SetDefault("geoip.cityDbPath", "./data/GeoLite2-City.mmdb")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "riskguard")
	v.SetDefault("mongo.collection", "audit")
	v.SetDefault("mongo.retentionDays", 90)
	v.SetDefault("mongo.enabled", false)
	v.SetDefault("bundles.dir", "./bundles")
	v.SetDefault("scoring.enrichmentTimeout", 100*time.Millisecond)
	v.SetDefault("scoring.detectorTimeout", 200*time.Millisecond)
	v.SetDefault("logLevel", "info")
}
