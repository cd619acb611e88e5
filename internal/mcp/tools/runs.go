package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// RunSearchParams defines the arguments for the run_search tool
type RunSearchParams struct {
	SearchID string `json:"search_id" jsonschema:"Identifier of the saved search to run"`
}

// RunSearchResult summarizes one search run
type RunSearchResult struct {
	SearchID       string   `json:"search_id"`
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	NewJobs        int      `json:"new_jobs"`
	NewCompanies   int      `json:"new_companies"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
	Pages          int      `json:"pages" jsonschema:"Provider pages fetched"`
	FetchState     string   `json:"fetch_state" jsonschema:"How fetching ended, e.g. early_exit or exhausted"`
	ExistingFound  bool     `json:"existing_found" jsonschema:"Whether fetching stopped at an already stored job"`
	Cancelled      bool     `json:"cancelled"`
	NewJobIDs      []string `json:"new_job_ids"`
}

// RunProviderParams defines the arguments for the run_provider tool
type RunProviderParams struct {
	Provider string `json:"provider" jsonschema:"Provider key, e.g. indeed or adzuna"`
}

// RunProviderResult summarizes a provider sweep
type RunProviderResult struct {
	Provider  string `json:"provider"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

type runTools struct {
	svc    job.Service
	logger *logging.Logger
}

// WithRunTools registers run_search and run_provider. Both run synchronously;
// closing the request cancels the run at its next page boundary.
func WithRunTools(svc job.Service, logger *logging.Logger) Option {
	if svc == nil {
		return nil
	}
	t := runTools{svc: svc, logger: orNop(logger)}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "run_search",
			Description: "Fetch, enrich and store new jobs for one saved search",
		}, t.runSearch)

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "run_provider",
			Description: "Run every enabled saved search of one provider, one after another",
		}, t.runProvider)
	}
}

func (t runTools) runSearch(ctx context.Context, _ *sdkmcp.CallToolRequest, params RunSearchParams) (*sdkmcp.CallToolResult, RunSearchResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(params.SearchID))
	if err != nil {
		return nil, RunSearchResult{}, fmt.Errorf("invalid search_id %q: %w", params.SearchID, err)
	}

	t.logger.Info("run_search called", "search_id", id)

	res, err := t.svc.RunSearch(ctx, id)
	if errors.Is(err, job.ErrSearchNotFound) {
		return nil, RunSearchResult{}, fmt.Errorf("search %s not found", id)
	}
	if err != nil {
		t.logger.Error("run_search failed", "search_id", id, "err", err)
		return nil, RunSearchResult{}, fmt.Errorf("run search %s: %w", id, err)
	}

	out := RunSearchResult{
		SearchID:       id.String(),
		Success:        res.Run.Success,
		Message:        res.Run.Message,
		NewJobs:        res.Run.NewJobs,
		NewCompanies:   res.Run.NewCompanies,
		ElapsedSeconds: res.Run.ElapsedSeconds,
		Pages:          res.Pages,
		FetchState:     string(res.FetchState),
		ExistingFound:  res.ExistingFound,
		Cancelled:      res.Cancelled,
		NewJobIDs:      make([]string, 0, len(res.NewJobIDs)),
	}
	for _, jid := range res.NewJobIDs {
		out.NewJobIDs = append(out.NewJobIDs, jid.String())
	}

	return textResult("[run_search] %s", out.Message), out, nil
}

func (t runTools) runProvider(ctx context.Context, _ *sdkmcp.CallToolRequest, params RunProviderParams) (*sdkmcp.CallToolResult, RunProviderResult, error) {
	provider := strings.ToLower(strings.TrimSpace(params.Provider))
	if provider == "" {
		return nil, RunProviderResult{}, fmt.Errorf("provider is required")
	}

	t.logger.Info("run_provider called", "provider", provider)

	res, err := t.svc.RunProvider(ctx, provider)
	if err != nil {
		t.logger.Error("run_provider failed", "provider", provider, "err", err)
		return nil, RunProviderResult{}, fmt.Errorf("run provider %s: %w", provider, err)
	}

	out := RunProviderResult{Provider: res.Provider, Succeeded: res.Succeeded, Failed: res.Failed}
	return textResult("[run_provider] %s: %d succeeded, %d failed", provider, out.Succeeded, out.Failed), out, nil
}
