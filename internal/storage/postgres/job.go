package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

// JobExists reports whether a provider job is already stored
func (s *Store) JobExists(ctx context.Context, provider, providerID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE provider = $1 AND provider_id = $2)`,
		provider, providerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: job exists %s/%s: %w", provider, providerID, err)
	}
	return exists, nil
}

// FindCompanyByName matches the company name or an alternate name, ignoring case
func (s *Store) FindCompanyByName(ctx context.Context, name string) (domain.Company, error) {
	name = strings.Join(strings.Fields(name), " ")

	var c domain.Company
	err := s.pool.QueryRow(ctx, `
		SELECT c.id, c.name, c.location, c.latitude, c.longitude,
		       c.watched, c.blacklisted, c.recruiter,
		       COALESCE(array_agg(a.name ORDER BY a.name) FILTER (WHERE a.name IS NOT NULL), '{}')
		FROM companies c
		LEFT JOIN company_alternate_names a ON a.company_id = c.id
		WHERE lower(c.name) = lower($1)
		   OR EXISTS (
		       SELECT 1 FROM company_alternate_names x
		       WHERE x.company_id = c.id AND lower(x.name) = lower($1))
		GROUP BY c.id
		ORDER BY (lower(c.name) = lower($1)) DESC, c.name
		LIMIT 1`, name).Scan(
		&c.ID, &c.Name, &c.Location, &c.Latitude, &c.Longitude,
		&c.Watched, &c.Blacklisted, &c.Recruiter, &c.AlternateNames,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Company{}, fmt.Errorf("postgres: find company %q: %w", name, err)
	}
	return c, nil
}

// Begin opens a transaction-backed unit of work
func (s *Store) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &unitOfWork{tx: tx}, nil
}

type unitOfWork struct {
	tx pgx.Tx
}

func (u *unitOfWork) InsertCompanies(ctx context.Context, companies []domain.Company) error {
	batch := &pgx.Batch{}
	for _, c := range companies {
		batch.Queue(`
			INSERT INTO companies (id, name, location, latitude, longitude, watched, blacklisted, recruiter)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Location, c.Latitude, c.Longitude, c.Watched, c.Blacklisted, c.Recruiter)
		for _, alt := range c.AlternateNames {
			batch.Queue(`
				INSERT INTO company_alternate_names (company_id, name) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, c.ID, alt)
		}
	}

	if err := u.tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert companies: %w", err)
	}
	return nil
}

// InsertJobs skips jobs whose (provider, provider_id) is already taken, which
// happens when a concurrent run stored the same posting first
func (u *unitOfWork) InsertJobs(ctx context.Context, jobs []domain.Job) ([]domain.Job, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, j := range jobs {
		tags := j.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(`
			INSERT INTO jobs (
				id, title, description, formatted_salary, avg_yearly_salary,
				location, latitude, longitude, remote, url, company_id, posted_at,
				provider, provider_id, source_search_id, archived, tags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (provider, provider_id) DO NOTHING
			RETURNING id`,
			j.ID, j.Title, j.Description, j.FormattedSalary, j.AvgYearlySalary,
			j.Location, j.Latitude, j.Longitude, j.Remote, j.URL, j.CompanyID, j.PostedAt,
			j.Provider, j.ProviderID, j.SourceSearchID, j.Archived, tags, j.CreatedAt)
	}

	results := u.tx.SendBatch(ctx, batch)

	inserted := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		var id domain.JobID
		err := results.QueryRow().Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("postgres: insert job %s/%s: %w", j.Provider, j.ProviderID, err)
		}
		inserted = append(inserted, j)
	}

	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("postgres: insert jobs: %w", err)
	}
	return inserted, nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
