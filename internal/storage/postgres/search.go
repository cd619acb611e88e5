package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

const defaultRunLimit = 20

const searchColumns = `id, provider, query, country, location, radius, max_age_days,
	job_type, employer_only, enabled, last_run, last_run_success`

// FindSearch loads one search
func (s *Store) FindSearch(ctx context.Context, id domain.SearchID) (domain.Search, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+searchColumns+` FROM searches WHERE id = $1`, id)

	search, err := scanSearch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Search{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Search{}, fmt.Errorf("postgres: find search %s: %w", id, err)
	}
	return search, nil
}

// ListEnabledSearches returns enabled searches of a provider, oldest run first
func (s *Store) ListEnabledSearches(ctx context.Context, provider string) ([]domain.Search, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+searchColumns+`
		FROM searches
		WHERE enabled AND lower(provider) = lower($1)
		ORDER BY last_run ASC NULLS FIRST, id`, provider)
	if err != nil {
		return nil, fmt.Errorf("postgres: list searches: %w", err)
	}
	defer rows.Close()

	var out []domain.Search
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan search: %w", err)
		}
		out = append(out, search)
	}
	return out, rows.Err()
}

// UpdateLastRun stores run bookkeeping on the search
func (s *Store) UpdateLastRun(ctx context.Context, id domain.SearchID, at time.Time, success bool) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE searches SET last_run = $2, last_run_success = $3 WHERE id = $1`,
		id, at, success)
	if err != nil {
		return fmt.Errorf("postgres: update last run %s: %w", id, err)
	}
	return nil
}

// RecordRun inserts a run audit record
func (s *Store) RecordRun(ctx context.Context, run domain.SearchRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_runs (id, search_id, ran_at, success, message, new_jobs, new_companies, elapsed_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.SearchID, run.Timestamp, run.Success, run.Message,
		run.NewJobs, run.NewCompanies, run.ElapsedSeconds)
	if err != nil {
		return fmt.Errorf("postgres: record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs of a search, newest first
func (s *Store) ListRuns(ctx context.Context, searchID domain.SearchID, limit int) ([]domain.SearchRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, search_id, ran_at, success, message, new_jobs, new_companies, elapsed_seconds
		FROM search_runs
		WHERE search_id = $1
		ORDER BY ran_at DESC
		LIMIT $2`, searchID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs: %w", err)
	}
	defer rows.Close()

	var out []domain.SearchRun
	for rows.Next() {
		var r domain.SearchRun
		if err := rows.Scan(&r.ID, &r.SearchID, &r.Timestamp, &r.Success, &r.Message,
			&r.NewJobs, &r.NewCompanies, &r.ElapsedSeconds); err != nil {
			return nil, fmt.Errorf("postgres: scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanSearch(row pgx.Row) (domain.Search, error) {
	var s domain.Search
	err := row.Scan(
		&s.ID, &s.Provider, &s.Query, &s.Country, &s.Location, &s.Radius, &s.MaxAgeDays,
		&s.JobType, &s.EmployerOnly, &s.Enabled, &s.LastRun, &s.LastRunSuccess,
	)
	s.Provider = strings.ToLower(s.Provider)
	return s, err
}
