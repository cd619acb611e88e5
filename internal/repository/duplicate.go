package repository

import (
	"context"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// SimilarityQuery describes a fuzzy lookup for near-identical postings
type SimilarityQuery struct {
	Title          string
	ExcludeID      domain.JobID
	Since          time.Time
	TitleThreshold float64
	Limit          int
}

// SimilarJob is a candidate duplicate
type SimilarJob struct {
	ID          domain.JobID
	Title       string
	Description string
	TitleScore  float64
	Categories  []int64
}

// DuplicateRepository defines the storage operations of duplicate detection
type DuplicateRepository interface {
	// FindSimilarJobs returns candidates whose title is similar, best first.
	// Jobs that are themselves duplicates are not candidates.
	FindSimilarJobs(ctx context.Context, q SimilarityQuery) ([]SimilarJob, error)

	// MarkDuplicate links jobID to duplicateOf, copies categories and sets the
	// checked flag. Returns false if the job was already checked.
	MarkDuplicate(ctx context.Context, jobID, duplicateOf domain.JobID, categories []int64) (bool, error)

	// MarkChecked sets the checked flag. Returns false if it was already set.
	MarkChecked(ctx context.Context, jobID domain.JobID) (bool, error)
}
