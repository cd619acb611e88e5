// Package alert stores alerts and fans them out to live channels.
package alert

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/honeycarbs/jobscout/internal/domain"
	jobdomain "github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/internal/repository"
	"github.com/honeycarbs/jobscout/pkg/logging"
)

// Broadcaster pushes an alert to a live channel
type Broadcaster interface {
	Name() string
	Broadcast(ctx context.Context, alert domain.Alert) error
}

// Sink persists alerts, then broadcasts them. Every failure is logged and
// swallowed so alerting never fails a run.
type Sink struct {
	repo         repository.AlertRepository
	broadcasters []Broadcaster
	logger       *logging.Logger
	clock        func() time.Time
}

// NewSink creates a Sink. Nil broadcasters are ignored.
func NewSink(repo repository.AlertRepository, logger *logging.Logger, broadcasters ...Broadcaster) *Sink {
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Sink{repo: repo, logger: logger, clock: time.Now}
	for _, b := range broadcasters {
		if b != nil {
			s.broadcasters = append(s.broadcasters, b)
		}
	}
	return s
}

// Create stores and broadcasts an alert
func (s *Sink) Create(ctx context.Context, alert domain.Alert) {
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = s.clock()
	}

	if s.repo != nil {
		if err := s.repo.CreateAlert(ctx, alert); err != nil {
			s.logger.Error("store alert failed", "type", string(alert.Type), "title", alert.Title, "err", err)
		}
	}

	for _, b := range s.broadcasters {
		if err := b.Broadcast(ctx, alert); err != nil {
			s.logger.Warn("broadcast alert failed", "channel", b.Name(), "title", alert.Title, "err", err)
		}
	}
}

var _ jobdomain.AlertSink = (*Sink)(nil)
