package job

import (
	"github.com/honeycarbs/jobscout/internal/repository"
)

// Repository is the storage the orchestrator works against
type Repository interface {
	repository.SearchRepository
	repository.RunRepository
	repository.JobRepository
	repository.CompanyRepository
}
