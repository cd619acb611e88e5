package mcp

import (
	"context"

	"github.com/honeycarbs/jobscout/internal/config"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Bootstrap wires Resources and logs which optional integrations are active
func Bootstrap(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Resources, func(), error) {
	res, cleanup, err := InitializeResources(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize resources", "err", err)
		return nil, nil, err
	}

	logger.Info("resources initialized",
		"indeed", cfg.IndeedEnabled(),
		"indeed_flavor", cfg.Indeed.Flavor,
		"adzuna", cfg.AdzunaEnabled(),
		"adzuna_country", cfg.Adzuna.Country,
		"redis", cfg.RedisURL != "",
		"neo4j", cfg.Neo4j.URI != "",
		"telegram", cfg.Telegram.BotToken != "",
		"sheets_export", res.Exporter != nil,
		"duplicates", cfg.Duplicates.Enabled,
	)

	return res, cleanup, nil
}
