package repository

import (
	"context"
	"time"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// SearchRepository loads saved searches and maintains their bookkeeping
type SearchRepository interface {
	FindSearch(ctx context.Context, id domain.SearchID) (domain.Search, error)
	ListEnabledSearches(ctx context.Context, provider string) ([]domain.Search, error)
	UpdateLastRun(ctx context.Context, id domain.SearchID, at time.Time, success bool) error
}

// RunRepository stores immutable run audit records
type RunRepository interface {
	RecordRun(ctx context.Context, run domain.SearchRun) error
	ListRuns(ctx context.Context, searchID domain.SearchID, limit int) ([]domain.SearchRun, error)
}

// AlertRepository persists alerts
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert domain.Alert) error
}
