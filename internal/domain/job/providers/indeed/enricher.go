package indeed

import (
	"context"
	"fmt"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/indeed"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const (
	jobDataChunkSize = 50

	// consecutive salary failures on one domain before it is skipped for the run
	domainFailureLimit = 10
)

// detailsClient describes the subset of the Indeed client used for enrichment
type detailsClient interface {
	JobData(ctx context.Context, keys []string) ([]indeed.Posting, error)
	LegacyJobs(ctx context.Context, keys []string) ([]indeed.Posting, error)
	LegacySalary(ctx context.Context, domain, key string) (indeed.LegacySalary, error)
}

// Enricher fills descriptions and salaries the search endpoints leave out.
// It prefers the bulk GraphQL job data call and falls back to the legacy
// per-job salary and bulk description lookups.
type Enricher struct {
	client       detailsClient
	logger       *logging.Logger
	chunkSize    int
	failureLimit int
}

// NewEnricher builds an Indeed enricher
func NewEnricher(client detailsClient, logger *logging.Logger) (*Enricher, error) {
	if client == nil {
		return nil, fmt.Errorf("indeed enricher: client is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Enricher{
		client:       client,
		logger:       logger,
		chunkSize:    jobDataChunkSize,
		failureLimit: domainFailureLimit,
	}, nil
}

// Provider returns provider identifier
func (e *Enricher) Provider() string {
	return ProviderName
}

// Enrich updates results in place. Only missing fields are filled.
func (e *Enricher) Enrich(ctx context.Context, results []domain.JobResult) bool {
	pending := pendingIndexes(results)
	if len(pending) == 0 {
		return true
	}

	succeeded, failed := e.viaJobData(ctx, results, pending)
	if succeeded > 0 {
		return failed == 0
	}

	e.logger.Warn("bulk job data unavailable, using legacy lookups", "jobs", len(pending))

	salariesOK := e.legacySalaries(ctx, results)
	descriptionsOK := e.legacyDescriptions(ctx, results)
	return salariesOK && descriptionsOK
}

// viaJobData counts chunks answered with data and chunks that failed or came
// back empty
func (e *Enricher) viaJobData(ctx context.Context, results []domain.JobResult, pending []int) (succeeded, failed int) {
	for _, chunk := range chunks(pending, e.chunkSize) {
		if ctx.Err() != nil {
			return succeeded, failed
		}

		keys := make([]string, len(chunk))
		for i, idx := range chunk {
			keys[i] = results[idx].ProviderID
		}

		postings, err := e.client.JobData(ctx, keys)
		if err != nil {
			e.logger.Warn("job data lookup failed", "keys", len(keys), "err", err)
			failed++
			continue
		}
		if len(postings) == 0 {
			e.logger.Warn("job data lookup returned nothing", "keys", len(keys))
			failed++
			continue
		}
		succeeded++

		byKey := make(map[string]indeed.Posting, len(postings))
		for _, p := range postings {
			byKey[p.Key] = p
		}
		for _, idx := range chunk {
			p, ok := byKey[results[idx].ProviderID]
			if !ok {
				continue
			}
			r := &results[idx]
			if r.NeedsDescription() {
				r.HTMLDescription = p.Description
			}
			if p.Compensation != nil {
				applySalary(r, compensationSalary(*p.Compensation))
			}
		}
	}
	return succeeded, failed
}

func (e *Enricher) legacySalaries(ctx context.Context, results []domain.JobResult) bool {
	var order []string
	byDomain := make(map[string][]int)
	for i, r := range results {
		if !r.NeedsSalary() {
			continue
		}
		if _, ok := byDomain[r.Domain]; !ok {
			order = append(order, r.Domain)
		}
		byDomain[r.Domain] = append(byDomain[r.Domain], i)
	}

	ok := true
	b := newBreaker(e.failureLimit)
	for _, d := range order {
		for _, idx := range byDomain[d] {
			if ctx.Err() != nil {
				return ok
			}
			if !b.allow(d) {
				break
			}

			s, err := e.client.LegacySalary(ctx, d, results[idx].ProviderID)
			if err != nil {
				ok = false
				if b.failure(d) {
					e.logger.Warn("salary lookups disabled for domain",
						"domain", d,
						"consecutive_failures", e.failureLimit,
						"err", err,
					)
				}
				continue
			}
			b.success(d)
			applySalary(&results[idx], legacySalary(s))
		}
	}
	return ok
}

func (e *Enricher) legacyDescriptions(ctx context.Context, results []domain.JobResult) bool {
	var pending []int
	for i, r := range results {
		if r.NeedsDescription() {
			pending = append(pending, i)
		}
	}

	ok := true
	for _, chunk := range chunks(pending, e.chunkSize) {
		if ctx.Err() != nil {
			return ok
		}

		keys := make([]string, len(chunk))
		for i, idx := range chunk {
			keys[i] = results[idx].ProviderID
		}

		postings, err := e.client.LegacyJobs(ctx, keys)
		if err != nil {
			e.logger.Warn("legacy description lookup failed", "keys", len(keys), "err", err)
			ok = false
			continue
		}

		byKey := make(map[string]string, len(postings))
		for _, p := range postings {
			byKey[p.Key] = p.Description
		}
		for _, idx := range chunk {
			if d := byKey[results[idx].ProviderID]; d != "" && results[idx].NeedsDescription() {
				results[idx].HTMLDescription = d
			}
		}
	}
	return ok
}

func pendingIndexes(results []domain.JobResult) []int {
	var out []int
	for i, r := range results {
		if r.NeedsDescription() || r.NeedsSalary() {
			out = append(out, i)
		}
	}
	return out
}

func chunks(idx []int, size int) [][]int {
	var out [][]int
	for len(idx) > 0 {
		n := min(size, len(idx))
		out = append(out, idx[:n])
		idx = idx[n:]
	}
	return out
}

var _ jobdomain.Enricher = (*Enricher)(nil)
