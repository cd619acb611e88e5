package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
)

var _ tools.RunExporter = (*runExporter)(nil)

type valuesAppender interface {
	AppendValues(ctx context.Context, spreadsheetID, range_ string, values [][]any) error
}

// runExporter writes SearchRuns as spreadsheet rows
type runExporter struct {
	client valuesAppender
}

func newRunExporter(client valuesAppender) *runExporter {
	return &runExporter{client: client}
}

func (e *runExporter) ExportRuns(ctx context.Context, spreadsheetID, tab string, runs []domain.SearchRun) (int, error) {
	if len(runs) == 0 {
		return 0, nil
	}

	if err := e.client.AppendValues(ctx, spreadsheetID, fmt.Sprintf("%s!A1", tab), runRows(runs)); err != nil {
		return 0, err
	}
	return len(runs), nil
}

// runRows orders columns as: timestamp, search, success, new jobs,
// new companies, elapsed seconds, message
func runRows(runs []domain.SearchRun) [][]any {
	values := make([][]any, len(runs))
	for i, r := range runs {
		values[i] = []any{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.SearchID.String(),
			r.Success,
			r.NewJobs,
			r.NewCompanies,
			r.ElapsedSeconds,
			r.Message,
		}
	}
	return values
}
