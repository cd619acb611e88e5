package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
)

// FindSimilarJobs uses pg_trgm title similarity to pick candidates. Ties are
// broken by age so the original posting wins.
func (s *Store) FindSimilarJobs(ctx context.Context, q repository.SimilarityQuery) ([]repository.SimilarJob, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT j.id, j.title, j.description, similarity(j.title, $1) AS score,
		       COALESCE(array_agg(c.category_id) FILTER (WHERE c.category_id IS NOT NULL), '{}')
		FROM jobs j
		LEFT JOIN job_categories c ON c.job_id = j.id
		WHERE j.id <> $2
		  AND j.duplicate_job_id IS NULL
		  AND j.created_at >= $3
		  AND similarity(j.title, $1) >= $4
		GROUP BY j.id
		ORDER BY score DESC, j.created_at ASC
		LIMIT $5`,
		q.Title, q.ExcludeID, q.Since, q.TitleThreshold, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: find similar jobs: %w", err)
	}
	defer rows.Close()

	var out []repository.SimilarJob
	for rows.Next() {
		var j repository.SimilarJob
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.TitleScore, &j.Categories); err != nil {
			return nil, fmt.Errorf("postgres: scan similar job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkDuplicate links a job to its original and copies the original's categories
func (s *Store) MarkDuplicate(ctx context.Context, jobID, duplicateOf domain.JobID, categories []int64) (bool, error) {
	var updated bool
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE jobs SET duplicate_job_id = $2, checked_for_duplicate = true
			WHERE id = $1 AND NOT checked_for_duplicate`, jobID, duplicateOf)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		updated = true

		if len(categories) == 0 {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO job_categories (job_id, category_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING`, jobID, categories)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("postgres: mark duplicate %s: %w", jobID, err)
	}
	return updated, nil
}

// MarkChecked flags a job as examined by duplicate detection
func (s *Store) MarkChecked(ctx context.Context, jobID domain.JobID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET checked_for_duplicate = true WHERE id = $1 AND NOT checked_for_duplicate`, jobID)
	if err != nil {
		return false, fmt.Errorf("postgres: mark checked %s: %w", jobID, err)
	}
	return tag.RowsAffected() > 0, nil
}
