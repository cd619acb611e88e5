// Package indeed adapts the Indeed APIs to the job fetcher and enricher contracts.
package indeed

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/indeed"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// ProviderName is the provider key of Indeed searches and jobs
const ProviderName = "indeed"

const (
	defaultDomain = "www.indeed.com"

	// providers stop serving results past 1000
	maxPages = 1000 / jobdomain.PageSize
)

// Flavor selects which Indeed API a process talks to
type Flavor string

const (
	FlavorGraphQL Flavor = "graphql"
	FlavorLegacy  Flavor = "legacy"
)

// ParseFlavor validates a configured flavor; empty means GraphQL
func ParseFlavor(s string) (Flavor, error) {
	switch Flavor(strings.ToLower(strings.TrimSpace(s))) {
	case "", FlavorGraphQL:
		return FlavorGraphQL, nil
	case FlavorLegacy:
		return FlavorLegacy, nil
	default:
		return "", fmt.Errorf("indeed: unknown api flavor %q", s)
	}
}

// searchClient describes the subset of the Indeed client used for searching
type searchClient interface {
	Search(ctx context.Context, params indeed.SearchParams, cursor string) (indeed.SearchPage, error)
	LegacySearch(ctx context.Context, params indeed.SearchParams, start int) (indeed.LegacyPage, error)
}

// Provider implements job.Fetcher using the Indeed search APIs
type Provider struct {
	client        searchClient
	flavor        Flavor
	defaultDomain string
	logger        *logging.Logger
}

// NewProvider builds an Indeed provider for one API flavor
func NewProvider(client searchClient, flavor Flavor, defaultDomainHost string, logger *logging.Logger) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("indeed provider: client is required")
	}
	if flavor == "" {
		flavor = FlavorGraphQL
	}
	if defaultDomainHost == "" {
		defaultDomainHost = defaultDomain
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Provider{
		client:        client,
		flavor:        flavor,
		defaultDomain: defaultDomainHost,
		logger:        logger,
	}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return ProviderName
}

// Pages starts paginating a search with the configured flavor
func (p *Provider) Pages(search domain.Search) jobdomain.Pager {
	params := paramsFor(search)
	if p.flavor == FlavorLegacy {
		return &legacyPager{p: p, params: params}
	}
	return &graphqlPager{p: p, params: params}
}

type graphqlPager struct {
	p      *Provider
	params indeed.SearchParams
	cursor string
	page   int
	done   bool
}

func (g *graphqlPager) Next(ctx context.Context) (jobdomain.Page, bool, error) {
	if g.done || g.page >= maxPages {
		return jobdomain.Page{}, false, nil
	}

	res, err := g.p.client.Search(ctx, g.params, g.cursor)
	if err != nil {
		return jobdomain.Page{}, false, err
	}
	if len(res.Postings) == 0 {
		g.done = true
		return jobdomain.Page{}, false, nil
	}

	g.page++
	g.cursor = res.NextCursor
	if g.cursor == "" {
		g.done = true
	}

	return jobdomain.Page{Number: g.page, Results: g.p.results(res.Postings)}, true, nil
}

type legacyPager struct {
	p      *Provider
	params indeed.SearchParams
	start  int
	page   int
	done   bool
}

func (l *legacyPager) Next(ctx context.Context) (jobdomain.Page, bool, error) {
	if l.done || l.page >= maxPages {
		return jobdomain.Page{}, false, nil
	}

	res, err := l.p.client.LegacySearch(ctx, l.params, l.start)
	if err != nil {
		return jobdomain.Page{}, false, err
	}
	if len(res.Postings) == 0 && l.start >= res.TotalResults {
		l.done = true
		return jobdomain.Page{}, false, nil
	}

	l.page++
	l.start += jobdomain.PageSize
	if l.start >= res.TotalResults {
		l.done = true
	}

	return jobdomain.Page{Number: l.page, Results: l.p.results(res.Postings)}, true, nil
}

func (p *Provider) results(postings []indeed.Posting) []domain.JobResult {
	out := make([]domain.JobResult, 0, len(postings))
	for _, posting := range postings {
		out = append(out, toResult(posting, p.defaultDomain))
	}
	return out
}

func paramsFor(search domain.Search) indeed.SearchParams {
	params := indeed.SearchParams{
		Query:        search.Query,
		Country:      search.Country,
		Location:     search.Location,
		JobType:      search.JobType,
		EmployerOnly: search.EmployerOnly,
		Limit:        jobdomain.PageSize,
	}
	if search.Radius != nil {
		params.Radius = *search.Radius
	}
	if search.MaxAgeDays != nil {
		params.MaxAgeDays = *search.MaxAgeDays
	}
	return params
}

var _ jobdomain.Fetcher = (*Provider)(nil)
