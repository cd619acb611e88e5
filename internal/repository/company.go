package repository

import (
	"context"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// CompanyRepository resolves employer names against stored companies
type CompanyRepository interface {
	// FindCompanyByName matches the primary name or any alternate name,
	// case-insensitively. Returns ErrNotFound when nothing matches.
	FindCompanyByName(ctx context.Context, name string) (domain.Company, error)
}
