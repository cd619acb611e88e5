package postgres

import (
	"context"
	"fmt"

	"github.com/honeycarbs/jobscout/internal/domain"
)

// CreateAlert stores an alert
func (s *Store) CreateAlert(ctx context.Context, alert domain.Alert) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alerts (id, type, title, message, url, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		alert.ID, string(alert.Type), alert.Title, alert.Message, alert.URL, alert.Read, alert.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create alert: %w", err)
	}
	return nil
}
