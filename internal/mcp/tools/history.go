package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const maxRunsLimit = 200

// RunLister reads the run audit trail of a search
type RunLister interface {
	ListRuns(ctx context.Context, searchID domain.SearchID, limit int) ([]domain.SearchRun, error)
}

// RunExporter appends runs to a spreadsheet and returns the rows written
type RunExporter interface {
	ExportRuns(ctx context.Context, spreadsheetID, tab string, runs []domain.SearchRun) (int, error)
}

// ListRunsParams defines the arguments for the list_runs tool
type ListRunsParams struct {
	SearchID string `json:"search_id" jsonschema:"Identifier of the saved search"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Maximum runs to return, newest first"`
}

// RunRecord is one audit entry
type RunRecord struct {
	ID             string  `json:"id"`
	Timestamp      string  `json:"timestamp"`
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	NewJobs        int     `json:"new_jobs"`
	NewCompanies   int     `json:"new_companies"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// ListRunsResult lists recent runs
type ListRunsResult struct {
	SearchID string      `json:"search_id"`
	Runs     []RunRecord `json:"runs"`
}

// ExportRunsParams defines the arguments for the export_runs tool
type ExportRunsParams struct {
	SearchID      string `json:"search_id" jsonschema:"Identifier of the saved search"`
	SpreadsheetID string `json:"spreadsheet_id" jsonschema:"Google Sheets document ID"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab to append to, Sheet1 when empty"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Maximum runs to export, newest first"`
}

// ExportRunsResult summarizes an export
type ExportRunsResult struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Tab           string `json:"tab"`
	WrittenRows   int    `json:"written_rows"`
	CompletedAt   string `json:"completed_at"`
}

type historyTools struct {
	runs     RunLister
	exporter RunExporter
	logger   *logging.Logger
}

// WithListRuns registers list_runs
func WithListRuns(runs RunLister, logger *logging.Logger) Option {
	if runs == nil {
		return nil
	}
	t := historyTools{runs: runs, logger: orNop(logger)}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "list_runs",
			Description: "List the most recent runs of a saved search",
		}, t.listRuns)
	}
}

// WithExportRuns registers export_runs; it is skipped when no exporter is configured
func WithExportRuns(runs RunLister, exporter RunExporter, logger *logging.Logger) Option {
	if runs == nil || exporter == nil {
		return nil
	}
	t := historyTools{runs: runs, exporter: exporter, logger: orNop(logger)}
	return func(reg *registry) {
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "export_runs",
			Description: "Append the recent runs of a saved search to a Google Sheet",
		}, t.exportRuns)
	}
}

func (t historyTools) listRuns(ctx context.Context, _ *sdkmcp.CallToolRequest, params ListRunsParams) (*sdkmcp.CallToolResult, ListRunsResult, error) {
	id, runs, err := t.load(ctx, params.SearchID, params.Limit)
	if err != nil {
		return nil, ListRunsResult{}, err
	}

	out := ListRunsResult{SearchID: id.String(), Runs: make([]RunRecord, 0, len(runs))}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunRecord{
			ID:             r.ID.String(),
			Timestamp:      r.Timestamp.UTC().Format(time.RFC3339),
			Success:        r.Success,
			Message:        r.Message,
			NewJobs:        r.NewJobs,
			NewCompanies:   r.NewCompanies,
			ElapsedSeconds: r.ElapsedSeconds,
		})
	}

	return textResult("[list_runs] %d run(s) for %s", len(out.Runs), id), out, nil
}

func (t historyTools) exportRuns(ctx context.Context, _ *sdkmcp.CallToolRequest, params ExportRunsParams) (*sdkmcp.CallToolResult, ExportRunsResult, error) {
	if strings.TrimSpace(params.SpreadsheetID) == "" {
		return nil, ExportRunsResult{}, fmt.Errorf("spreadsheet_id is required")
	}

	_, runs, err := t.load(ctx, params.SearchID, params.Limit)
	if err != nil {
		return nil, ExportRunsResult{}, err
	}

	tab := params.Tab
	if tab == "" {
		tab = "Sheet1"
	}

	written, err := t.exporter.ExportRuns(ctx, params.SpreadsheetID, tab, runs)
	if err != nil {
		t.logger.Error("export_runs failed", "spreadsheet_id", params.SpreadsheetID, "err", err)
		return nil, ExportRunsResult{}, fmt.Errorf("export runs: %w", err)
	}

	out := ExportRunsResult{
		SpreadsheetID: params.SpreadsheetID,
		Tab:           tab,
		WrittenRows:   written,
		CompletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	return textResult("[export_runs] wrote %d row(s) to %s", written, tab), out, nil
}

func (t historyTools) load(ctx context.Context, rawID string, limit int) (domain.SearchID, []domain.SearchRun, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid search_id %q: %w", rawID, err)
	}
	limit = min(limit, maxRunsLimit)

	runs, err := t.runs.ListRuns(ctx, id, limit)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("list runs for %s: %w", id, err)
	}
	return id, runs, nil
}

func orNop(logger *logging.Logger) *logging.Logger {
	if logger == nil {
		return logging.NewNop()
	}
	return logger
}
