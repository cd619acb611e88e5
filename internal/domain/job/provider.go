package job

import (
	"context"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// PageSize is the number of results requested per provider page
const PageSize = 25

// Page is one provider response worth of results, newest first
type Page struct {
	Number  int
	Results []domain.JobResult
}

// Pager walks a provider's result pages. It is single use.
type Pager interface {
	// Next fetches the next page. ok is false once results are exhausted;
	// err is non-nil only for transport or payload failures.
	Next(ctx context.Context) (page Page, ok bool, err error)
}

// Fetcher is an external job source (Indeed, Adzuna, ...)
type Fetcher interface {
	// Name is the provider key stored on searches and jobs, e.g. "indeed"
	Name() string

	// Pages starts a new pagination over the search's results
	Pages(search domain.Search) Pager
}

// Enricher fills in descriptions and salaries the search endpoint omits
type Enricher interface {
	// Provider is the provider key whose results this enricher understands
	Provider() string

	// Enrich updates results in place and reports whether it finished
	// without a reportable error. Missing data is not an error.
	Enrich(ctx context.Context, results []domain.JobResult) bool
}

// AlertSink receives alerts; delivery is best effort
type AlertSink interface {
	Create(ctx context.Context, alert domain.Alert)
}

// DuplicateChecker links new jobs to existing near-identical jobs
type DuplicateChecker interface {
	Enabled() bool
	Check(ctx context.Context, jobs []domain.Job) ([]domain.Job, error)
}

// Mirror receives a copy of every persisted batch, e.g. a graph projection
type Mirror interface {
	MirrorBatch(ctx context.Context, jobs []domain.Job, companies []domain.Company) error
}
