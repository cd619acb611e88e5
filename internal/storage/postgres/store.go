// Package postgres implements the repository interfaces on PostgreSQL via pgx.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/repository"
)

//go:embed schema.sql
var schema string

var (
	_ jobdomain.Repository           = (*Store)(nil)
	_ repository.DuplicateRepository = (*Store)(nil)
	_ repository.AlertRepository     = (*Store)(nil)
)

// Store implements every repository on a single pgx pool
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over an open pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates missing tables and indexes. It is safe to run on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}
