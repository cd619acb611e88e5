package repository

import (
	"context"
	"errors"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("repository: not found")

// JobRepository defines the job lookups and the unit of work used by ingestion
type JobRepository interface {
	// JobExists reports whether a job with this provider key is already stored
	JobExists(ctx context.Context, provider, providerID string) (bool, error)

	// Begin opens a unit of work; nothing is visible to others until Commit
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork batches inserts of one ingestion run
type UnitOfWork interface {
	InsertCompanies(ctx context.Context, companies []domain.Company) error

	// InsertJobs stores jobs and returns the ones actually inserted. A job whose
	// (provider, providerID) already exists is skipped, not an error.
	InsertJobs(ctx context.Context, jobs []domain.Job) ([]domain.Job, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
