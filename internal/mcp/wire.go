//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/storage/postgres"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// InitializeResources builds Resources from config. The returned cleanup
// closes every connection that was opened.
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure - Postgres
		providePool,
		provideStore,
		wire.Bind(new(job.Repository), new(*postgres.Store)),

		// Infrastructure - providers
		provideHTTPClient,
		provideIndeedClient,
		provideAdzunaClient,
		provideFetchers,
		provideEnrichers,

		// Infrastructure - optional fan-out
		provideRedis,
		provideAlertSink,
		provideNeo4j,
		provideMirror,

		// Services
		provideDuplicateChecker,
		provideSettings,
		job.NewServiceWithDeps,
		provideScheduler,

		// Tool resources
		provideExporter,
		newResources,
	)

	return nil, nil, nil
}
