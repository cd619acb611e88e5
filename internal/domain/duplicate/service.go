// Package duplicate links newly ingested jobs to near-identical existing ones.
package duplicate

import (
	"context"
	"fmt"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
	"github.com/honeycarbs/jobscout/internal/repository"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

const candidateLimit = 10

// Config tunes duplicate detection
type Config struct {
	Enabled              bool
	TitleThreshold       float64
	DescriptionThreshold float64
	Window               time.Duration
}

// DefaultConfig returns the thresholds used when none are configured
func DefaultConfig() Config {
	return Config{
		Enabled:              true,
		TitleThreshold:       0.7,
		DescriptionThreshold: 0.6,
		Window:               30 * 24 * time.Hour,
	}
}

// Service finds and links duplicate postings
type Service struct {
	repo   repository.DuplicateRepository
	cfg    Config
	clock  func() time.Time
	logger *logging.Logger
}

// NewService creates a duplicate detection service
func NewService(repo repository.DuplicateRepository, cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{repo: repo, cfg: cfg, clock: time.Now, logger: logger}
}

// Enabled reports whether detection runs at all
func (s *Service) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// Check examines each job that has not been checked yet and returns the jobs
// with duplicate links and checked flags updated. Jobs already checked are
// left untouched.
func (s *Service) Check(ctx context.Context, jobs []domain.Job) ([]domain.Job, error) {
	out := make([]domain.Job, len(jobs))
	copy(out, jobs)

	if !s.Enabled() {
		return out, nil
	}

	since := s.clock().Add(-s.cfg.Window)

	for i := range out {
		job := &out[i]
		if job.CheckedForDuplicate {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		candidates, err := s.repo.FindSimilarJobs(ctx, repository.SimilarityQuery{
			Title:          job.Title,
			ExcludeID:      job.ID,
			Since:          since,
			TitleThreshold: s.cfg.TitleThreshold,
			Limit:          candidateLimit,
		})
		if err != nil {
			return out, fmt.Errorf("duplicate: find similar to %s: %w", job.ID, err)
		}

		match, ok := s.best(*job, candidates)
		if !ok {
			if _, err := s.repo.MarkChecked(ctx, job.ID); err != nil {
				return out, fmt.Errorf("duplicate: mark checked %s: %w", job.ID, err)
			}
			job.CheckedForDuplicate = true
			continue
		}

		updated, err := s.repo.MarkDuplicate(ctx, job.ID, match.ID, match.Categories)
		if err != nil {
			return out, fmt.Errorf("duplicate: mark %s duplicate of %s: %w", job.ID, match.ID, err)
		}
		job.CheckedForDuplicate = true
		if !updated {
			continue
		}

		dupOf := match.ID
		job.DuplicateJobID = &dupOf
		job.Categories = mergeCategories(job.Categories, match.Categories)

		s.logger.Debug("duplicate job linked",
			"job_id", job.ID,
			"duplicate_of", match.ID,
			"title", job.Title,
		)
	}

	return out, nil
}

func (s *Service) best(job domain.Job, candidates []repository.SimilarJob) (repository.SimilarJob, bool) {
	var (
		best      repository.SimilarJob
		bestScore float64
		found     bool
	)

	for _, c := range candidates {
		if c.ID == job.ID {
			continue
		}

		titleScore := Similarity(job.Title, c.Title)
		if titleScore < s.cfg.TitleThreshold {
			continue
		}

		score := titleScore
		if job.Description != "" && c.Description != "" {
			descScore := Similarity(job.Description, c.Description)
			if descScore < s.cfg.DescriptionThreshold {
				continue
			}
			score += descScore
		}

		if !found || score > bestScore {
			best, bestScore, found = c, score, true
		}
	}

	return best, found
}

func mergeCategories(own, copied []int64) []int64 {
	seen := make(map[int64]struct{}, len(own)+len(copied))
	out := make([]int64, 0, len(own)+len(copied))
	for _, list := range [][]int64{own, copied} {
		for _, c := range list {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
