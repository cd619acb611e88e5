package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/mcp/tools"
	"github.com/honeycarbs/jobscout/internal/scheduler"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Resources are the long-lived collaborators built at startup
type Resources struct {
	JobService job.Service
	Runs       tools.RunLister
	Exporter   tools.RunExporter // nil without Sheets credentials
	Scheduler  *scheduler.Scheduler
}

// ToolRegistry installs the MCP tools backed by Resources
type ToolRegistry struct {
	logger *logging.Logger
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) {
	tools.Register(server,
		tools.WithRunTools(res.JobService, r.logger),
		tools.WithListRuns(res.Runs, r.logger),
		tools.WithExportRuns(res.Runs, res.Exporter, r.logger),
	)
}
