package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gokaycavdar/riskguard/pkg/adapters"
	"github.com/gokaycavdar/riskguard/pkg/anomaly"
	"github.com/gokaycavdar/riskguard/pkg/bundle"
	"github.com/gokaycavdar/riskguard/pkg/config"
	"github.com/gokaycavdar/riskguard/pkg/detector"
	"github.com/gokaycavdar/riskguard/pkg/engine"
	"github.com/gokaycavdar/riskguard/pkg/features"
	"github.com/gokaycavdar/riskguard/pkg/httpapi"
)

var factorNames = []string{"network", "temporal", "agent", "geography"}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP scoring server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg.LogLevel)

	lookup, err := adapters.NewGeoIPLookup(cfg.GeoIP.CityDBPath)
	if err != nil {
		log.Warn().Err(err).Msg("geoip database unavailable, location enrichment disabled")
	}

	cache := buildCache(cfg, log)
	audit := buildAudit(ctx, cfg, log)

	models := loadModels(cfg.Bundles.Dir, log)
	eng := engine.New(
		detector.NewNetwork(models["network"], nil),
		detector.NewTemporal(models["temporal"]),
		detector.NewAgent(models["agent"]),
		detector.NewGeography(models["geography"]),
		lookupOrNil(lookup),
		audit,
		cache,
		log,
	)
	eng.Deadlines = engine.Deadlines{
		Enrichment: cfg.Scoring.EnrichmentTimeout,
		Detector:   cfg.Scoring.DetectorTimeout,
	}

	server := &httpapi.Server{
		Engine:         eng,
		Log:            log,
		APIKey:         cfg.HTTP.APIKey,
		BundleStatus:   httpapi.LoadBundleStatuses(cfg.Bundles.Dir, factorNames),
		Cache:          cache,
		RequestsPerMin: cfg.HTTP.RequestsPerMin,
	}

	router := server.NewRouter()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting server")
		errCh <- router.Run(cfg.HTTP.Addr)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-sigCtx.Done():
		log.Info().Msg("shutting down")
		return nil
	}
}

func lookupOrNil(lookup *adapters.GeoIPLookup) adapters.GeoLookup {
	if lookup == nil {
		return nil
	}
	return lookup
}

func buildCache(cfg config.Config, log zerolog.Logger) adapters.Cache {
	if !cfg.Redis.Enabled {
		return adapters.NewFallbackCounter()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, falling back to in-process cache")
		return adapters.NewFallbackCounter()
	}
	return adapters.NewRedisCache(client)
}

func buildAudit(ctx context.Context, cfg config.Config, log zerolog.Logger) adapters.AuditSink {
	if !cfg.Mongo.Enabled {
		return nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Warn().Err(err).Msg("mongo unreachable, audit logging disabled")
		return nil
	}
	collection := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	if err := adapters.EnsureIndexes(ctx, collection, cfg.Mongo.RetentionDays); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}
	return adapters.NewMongoAuditSink(collection)
}

// loadModels loads every factor's bundle from dir, logging and leaving
// the map entry nil (rules-only) for any factor whose bundle is missing
// or fails its mismatch check, per spec.md §4.3.5.
func loadModels(dir string, log zerolog.Logger) map[string]anomaly.Model {
	expectations := map[string]struct {
		algorithm    string
		featureCount int
	}{
		"network":   {"one_class_svm", features.NetworkLen},
		"temporal":  {"isolation_forest", features.TemporalLen},
		"agent":     {"autoencoder", features.AgentLen},
		"geography": {"dbscan", features.GeoLen},
	}

	out := make(map[string]anomaly.Model, len(expectations))
	for factor, want := range expectations {
		path := bundle.FactorFilename(dir, factor)
		artifact, err := bundle.Load(path, want.algorithm, want.featureCount)
		if err != nil {
			log.Warn().Err(err).Str("factor", factor).Msg("bundle unavailable, falling back to rules-only scoring")
			out[factor] = nil
			continue
		}
		m, err := bundle.BuildModel(artifact)
		if err != nil {
			log.Warn().Err(err).Str("factor", factor).Msg("bundle failed to build, falling back to rules-only scoring")
			out[factor] = nil
			continue
		}
		out[factor] = m
	}
	return out
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
