package mcp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/alert"
	"github.com/honeycarbs/jobscout/internal/domain/duplicate"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	adzunaprovider "github.com/honeycarbs/jobscout/internal/domain/job/providers/adzuna"
	indeedprovider "github.com/honeycarbs/jobscout/internal/domain/job/providers/indeed"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
	"github.com/honeycarbs/jobscout/internal/scheduler"
	"github.com/honeycarbs/jobscout/internal/storage/neo4j"
	"github.com/honeycarbs/jobscout/internal/storage/postgres"
	"github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/httpclient"
	"github.com/honeycarbs/jobscout/pkg/indeed"
	"github.com/honeycarbs/jobscout/pkg/logging"
	pkgneo4j "github.com/honeycarbs/jobscout/pkg/neo4j"
	pkgpostgres "github.com/honeycarbs/jobscout/pkg/postgres"
	pkgredis "github.com/honeycarbs/jobscout/pkg/redis"
	"github.com/honeycarbs/jobscout/pkg/sheets"
)

// Optional integrations return a nil value without error when they are not
// configured. Interface results are returned as untyped nil in that case.

func providePool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, func(), error) {
	pool, err := pkgpostgres.NewPool(ctx, pkgpostgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

func provideStore(ctx context.Context, pool *pgxpool.Pool) (*postgres.Store, error) {
	store := postgres.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func provideHTTPClient(cfg config.Config, logger *logging.Logger) *http.Client {
	return httpclient.New(httpclient.Config{
		MaxRetries: cfg.HTTP.MaxRetries,
		Timeout:    cfg.HTTP.Timeout,
	}, logger.With("component", "httpclient"))
}

func provideIndeedClient(cfg config.Config, hc *http.Client) (*indeed.Client, error) {
	if !cfg.IndeedEnabled() {
		return nil, nil
	}
	return indeed.NewClient(indeed.Config{
		APIKey:      cfg.Indeed.APIKey,
		PublisherID: cfg.Indeed.PublisherID,
		GraphQLURL:  cfg.Indeed.GraphQLURL,
		LegacyURL:   cfg.Indeed.LegacyURL,
		HTTPClient:  hc,
	})
}

func provideAdzunaClient(cfg config.Config, hc *http.Client) (*adzuna.Client, error) {
	if !cfg.AdzunaEnabled() {
		return nil, nil
	}
	return adzuna.NewClient(adzuna.Config{
		AppID:      cfg.Adzuna.AppID,
		AppKey:     cfg.Adzuna.AppKey,
		Country:    cfg.Adzuna.Country,
		HTTPClient: hc,
	})
}

func provideFetchers(cfg config.Config, indeedClient *indeed.Client, adzunaClient *adzuna.Client, logger *logging.Logger) ([]job.Fetcher, error) {
	var fetchers []job.Fetcher

	if indeedClient != nil {
		flavor, err := indeedprovider.ParseFlavor(cfg.Indeed.Flavor)
		if err != nil {
			return nil, err
		}
		p, err := indeedprovider.NewProvider(indeedClient, flavor, cfg.Indeed.DefaultDomain, logger.With("provider", indeedprovider.ProviderName))
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, p)
	}

	if adzunaClient != nil {
		p, err := adzunaprovider.NewProvider(adzunaClient, adzunaprovider.CurrencyFor(cfg.Adzuna.Country), logger.With("provider", adzunaprovider.ProviderName))
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, p)
	}

	if len(fetchers) == 0 {
		return nil, fmt.Errorf("mcp: no job provider configured")
	}
	return fetchers, nil
}

func provideEnrichers(indeedClient *indeed.Client, logger *logging.Logger) ([]job.Enricher, error) {
	if indeedClient == nil {
		return nil, nil
	}
	e, err := indeedprovider.NewEnricher(indeedClient, logger.With("component", "enricher"))
	if err != nil {
		return nil, err
	}
	return []job.Enricher{e}, nil
}

func provideDuplicateChecker(store *postgres.Store, cfg config.Config, logger *logging.Logger) job.DuplicateChecker {
	return duplicate.NewService(store, duplicate.Config{
		Enabled:              cfg.Duplicates.Enabled,
		TitleThreshold:       cfg.Duplicates.TitleThreshold,
		DescriptionThreshold: cfg.Duplicates.DescriptionThreshold,
		Window:               cfg.Duplicates.Window,
	}, logger.With("component", "duplicates"))
}

func provideRedis(ctx context.Context, cfg config.Config) (*redis.Client, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}
	client, err := pkgredis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideAlertSink(store *postgres.Store, redisClient *redis.Client, cfg config.Config, logger *logging.Logger) (job.AlertSink, error) {
	var broadcasters []alert.Broadcaster

	if redisClient != nil {
		broadcasters = append(broadcasters, alert.NewRedisBroadcaster(redisClient))
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := alert.NewTelegramBroadcaster(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		broadcasters = append(broadcasters, tg)
	}

	return alert.NewSink(store, logger.With("component", "alerts"), broadcasters...), nil
}

func provideNeo4j(ctx context.Context, cfg config.Config) (*pkgneo4j.Client, func(), error) {
	if cfg.Neo4j.URI == "" {
		return nil, func() {}, nil
	}
	client, err := pkgneo4j.NewClient(ctx, pkgneo4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close(context.Background()) }, nil
}

func provideMirror(client *pkgneo4j.Client) job.Mirror {
	if client == nil {
		return nil
	}
	return neo4j.NewMirror(client)
}

func provideSettings(cfg config.Config) job.Settings {
	return job.Settings{BaseURL: cfg.BaseURL}
}

func provideScheduler(svc job.Service, cfg config.Config, logger *logging.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(svc, scheduler.Config{
		Spec:       cfg.Schedule.Spec,
		Providers:  cfg.Schedule.Providers,
		RunOnStart: cfg.Schedule.RunOnStart,
	}, logger.With("component", "scheduler"))
}

func provideExporter(ctx context.Context, cfg config.Config) (tools.RunExporter, error) {
	if cfg.SheetsCredentialsPath == "" {
		return nil, nil
	}
	client, err := sheets.NewClient(ctx, sheets.Config{CredentialsPath: cfg.SheetsCredentialsPath})
	if err != nil {
		return nil, err
	}
	return newRunExporter(client), nil
}

func newResources(svc job.Service, store *postgres.Store, exporter tools.RunExporter, sched *scheduler.Scheduler) *Resources {
	return &Resources{
		JobService: svc,
		Runs:       store,
		Exporter:   exporter,
		Scheduler:  sched,
	}
}
