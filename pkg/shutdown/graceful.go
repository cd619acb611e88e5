package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/honeycarbs/jobscout/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain stop function to Stoppable
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error {
	return f(ctx)
}

// Graceful blocks until one of signals arrives, then stops each Stoppable in
// order. All of them share one timeout.
func Graceful(signals []os.Signal, timeout time.Duration, log *logging.Logger, stoppables ...Stoppable) {
	sigCtx, stop := signal.NotifyContext(context.Background(), signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	failed := false
	for _, s := range stoppables {
		if err := s.Shutdown(ctx); err != nil {
			failed = true
			log.Warn("graceful shutdown step failed", "err", err)
		}
	}

	if failed {
		log.Warn("graceful shutdown completed with errors")
	} else {
		log.Info("graceful shutdown completed successfully")
	}
}
