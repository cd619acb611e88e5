package adzuna

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/domain/salary"
	"github.com/honeycarbs/jobscout/pkg/adzuna"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// ProviderName is the provider key of Adzuna searches and jobs
const ProviderName = "adzuna"

const maxPages = 40

// searchClient describes the subset of the Adzuna client used by the provider.
type searchClient interface {
	SearchJobs(ctx context.Context, params adzuna.SearchParams) (adzuna.SearchPage, error)
	PageSize() int
}

// Provider implements job.Fetcher using Adzuna API. Adzuna does not mark
// recruiter listings, so EmployerOnly searches return every result.
type Provider struct {
	client   searchClient
	currency string
	logger   *logging.Logger

	// warned holds ids of EmployerOnly searches already reported
	warned sync.Map
}

var currencies = map[string]string{
	"gb": "GBP", "us": "USD", "au": "AUD", "ca": "CAD", "nz": "NZD",
	"in": "INR", "za": "ZAR", "sg": "SGD", "pl": "PLN", "br": "BRL",
	"mx": "MXN", "ch": "CHF",
	"at": "EUR", "be": "EUR", "de": "EUR", "es": "EUR", "fr": "EUR", "it": "EUR", "nl": "EUR",
}

// CurrencyFor returns the ISO currency of an Adzuna country code, GBP when unknown
func CurrencyFor(country string) string {
	if c, ok := currencies[strings.ToLower(country)]; ok {
		return c
	}
	return "GBP"
}

// NewProvider builds an Adzuna provider. currency is the ISO code salaries of
// the configured country are quoted in.
func NewProvider(client searchClient, currency string, logger *logging.Logger) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("adzuna provider: client is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Provider{client: client, currency: currency, logger: logger}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return ProviderName
}

// Pages starts paginating a search by page number
func (p *Provider) Pages(search domain.Search) jobdomain.Pager {
	if search.EmployerOnly {
		if _, seen := p.warned.LoadOrStore(search.ID, struct{}{}); !seen {
			p.logger.Warn("employer-only filter is not supported by adzuna, recruiter listings are included",
				"search_id", search.ID.String(),
			)
		}
	}

	params := adzuna.SearchParams{
		Query:    search.Query,
		Country:  search.Country,
		Location: search.Location,
		JobType:  search.JobType,
	}
	if search.Radius != nil {
		params.DistanceKM = *search.Radius
	}
	if search.MaxAgeDays != nil {
		params.MaxDaysOld = *search.MaxAgeDays
	}
	return &pager{p: p, params: params}
}

type pager struct {
	p      *Provider
	params adzuna.SearchParams
	page   int
	seen   int
	done   bool
}

func (g *pager) Next(ctx context.Context) (jobdomain.Page, bool, error) {
	if g.done || g.page >= maxPages {
		return jobdomain.Page{}, false, nil
	}

	g.params.Page = g.page + 1
	res, err := g.p.client.SearchJobs(ctx, g.params)
	if err != nil {
		return jobdomain.Page{}, false, err
	}
	if len(res.Jobs) == 0 {
		g.done = true
		return jobdomain.Page{}, false, nil
	}

	g.page++
	g.seen += g.p.client.PageSize()
	if g.seen >= res.Count {
		g.done = true
	}

	out := make([]domain.JobResult, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		out = append(out, g.p.toResult(j))
	}
	return jobdomain.Page{Number: g.page, Results: out}, true, nil
}

func (p *Provider) toResult(j adzuna.Job) domain.JobResult {
	r := domain.JobResult{
		Provider:        ProviderName,
		ProviderID:      j.ID,
		Title:           j.Title,
		URL:             j.URL,
		HTMLDescription: j.Description,
		Remote:          strings.Contains(strings.ToLower(j.Location+" "+j.Title), "remote"),
		Location:        j.Location,
		Latitude:        j.Latitude,
		Longitude:       j.Longitude,
		EmployerName:    strings.TrimSpace(j.CompanyName),
		PostedAt:        j.PostedAt,
	}

	for _, tag := range []string{j.Category, j.ContractTime, j.ContractType} {
		if tag != "" {
			r.Tags = append(r.Tags, tag)
		}
	}

	if !j.SalaryPredicted {
		s := salary.Normalize(salary.Between(j.SalaryMin, j.SalaryMax), salary.UnitYear, p.currency, "")
		r.FormattedSalary = s.Formatted
		r.AvgYearlySalary = s.AvgYearly
	}

	return r
}

var _ jobdomain.Fetcher = (*Provider)(nil)
