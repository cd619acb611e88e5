// Package neo4j projects persisted jobs into a graph of jobs, companies,
// keywords and duplicate links.
package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	pkgneo4j "github.com/honeycarbs/jobscout/pkg/neo4j"
)

var _ jobdomain.Mirror = (*Mirror)(nil)

const mergeCompaniesQuery = `
	UNWIND $companies AS company
	MERGE (c:Company {id: company.id})
	SET c.name = company.name,
	    c.location = company.location,
	    c.watched = company.watched,
	    c.blacklisted = company.blacklisted,
	    c.recruiter = company.recruiter,
	    c.alternateNames = company.alternateNames
`

const mergeJobsQuery = `
	UNWIND $jobs AS job
	MERGE (j:Job {provider: job.provider, providerId: job.providerId})
	SET j.id = job.id,
	    j.title = job.title,
	    j.location = job.location,
	    j.remote = job.remote,
	    j.url = job.url,
	    j.salary = job.salary,
	    j.avgYearlySalary = job.avgYearlySalary,
	    j.archived = job.archived,
	    j.postedAt = datetime({epochMillis: job.postedAt})
	WITH j, job
	FOREACH (_ IN CASE WHEN job.companyId IS NULL THEN [] ELSE [1] END |
		MERGE (c:Company {id: job.companyId})
		MERGE (j)-[:POSTED_BY]->(c)
	)
	WITH j, job
	FOREACH (_ IN CASE WHEN job.searchId IS NULL THEN [] ELSE [1] END |
		MERGE (s:Search {id: job.searchId})
		MERGE (j)-[:FOUND_BY]->(s)
	)
`

const mergeDuplicatesQuery = `
	UNWIND $links AS link
	MATCH (j:Job {id: link.id})
	MERGE (d:Job {id: link.duplicateOf})
	MERGE (j)-[:DUPLICATE_OF]->(d)
`

// Mirror implements job.Mirror with Neo4j
type Mirror struct {
	client *pkgneo4j.Client
}

// NewMirror creates a Mirror over a connected client
func NewMirror(client *pkgneo4j.Client) *Mirror {
	return &Mirror{client: client}
}

// MirrorBatch merges one persisted batch in a single write transaction
func (m *Mirror) MirrorBatch(ctx context.Context, jobs []domain.Job, companies []domain.Company) error {
	if len(jobs) == 0 && len(companies) == 0 {
		return nil
	}

	statements := []struct {
		name   string
		query  string
		key    string
		params []map[string]any
	}{
		{"companies", mergeCompaniesQuery, "companies", companyParams(companies)},
		{"jobs", mergeJobsQuery, "jobs", jobParams(jobs)},
		{"keywords", mergeKeywordsQuery, "records", keywordParams(jobs)},
		{"duplicates", mergeDuplicatesQuery, "links", duplicateParams(jobs)},
	}

	err := m.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range statements {
			if len(st.params) == 0 {
				continue
			}
			result, err := tx.Run(ctx, st.query, map[string]any{st.key: st.params})
			if err != nil {
				return nil, fmt.Errorf("merge %s: %w", st.name, err)
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, fmt.Errorf("merge %s: %w", st.name, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j: mirror batch: %w", err)
	}
	return nil
}

func companyParams(companies []domain.Company) []map[string]any {
	out := make([]map[string]any, 0, len(companies))
	for _, c := range companies {
		alt := c.AlternateNames
		if alt == nil {
			alt = []string{}
		}
		out = append(out, map[string]any{
			"id":             c.ID.String(),
			"name":           c.Name,
			"location":       c.Location,
			"watched":        c.Watched,
			"blacklisted":    c.Blacklisted,
			"recruiter":      c.Recruiter,
			"alternateNames": alt,
		})
	}
	return out
}

func jobParams(jobs []domain.Job) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, j := range jobs {
		p := map[string]any{
			"id":              j.ID.String(),
			"provider":        j.Provider,
			"providerId":      j.ProviderID,
			"title":           j.Title,
			"location":        j.Location,
			"remote":          j.Remote,
			"url":             j.URL,
			"salary":          j.FormattedSalary,
			"avgYearlySalary": nil,
			"archived":        j.Archived,
			"postedAt":        j.PostedAt.UnixMilli(),
			"companyId":       nil,
			"searchId":        nil,
		}
		if j.AvgYearlySalary != nil {
			p["avgYearlySalary"] = int64(*j.AvgYearlySalary)
		}
		if j.CompanyID != nil {
			p["companyId"] = j.CompanyID.String()
		}
		if j.SourceSearchID != nil {
			p["searchId"] = j.SourceSearchID.String()
		}
		out = append(out, p)
	}
	return out
}

func duplicateParams(jobs []domain.Job) []map[string]any {
	var out []map[string]any
	for _, j := range jobs {
		if j.DuplicateJobID == nil {
			continue
		}
		out = append(out, map[string]any{
			"id":          j.ID.String(),
			"duplicateOf": j.DuplicateJobID.String(),
		})
	}
	return out
}
