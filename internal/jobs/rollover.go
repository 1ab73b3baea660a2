package jobs

import (
	"context"
	"time"

	"github.com/mroshb/quizbot/pkg/logger"
)

// Roller is anything that can reset itself when a new period begins.
type Roller interface {
	RolloverIfNeeded(ctx context.Context) (bool, error)
	Period() string
}

// RolloverJob checks for a new scoring period on startup and then on a
// fixed interval. Checking is idempotent, so any interval shorter than a
// month resets the ledger within one interval of the boundary.
type RolloverJob struct {
	roller   Roller
	interval time.Duration
}

func NewRolloverJob(roller Roller, interval time.Duration) *RolloverJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RolloverJob{
		roller:   roller,
		interval: interval,
	}
}

// Run blocks until ctx is done.
func (j *RolloverJob) Run(ctx context.Context) error {
	logger.Info("Rollover job started", "interval", j.interval.String(), "period", j.roller.Period())
	j.check(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Rollover job stopped")
			return nil
		case <-ticker.C:
			j.check(ctx)
		}
	}
}

func (j *RolloverJob) check(ctx context.Context) {
	rolled, err := j.roller.RolloverIfNeeded(ctx)
	if err != nil {
		// The in-memory reset already happened; the ledger logged the write failure.
		logger.Warn("Rollover completed with persistence error", "period", j.roller.Period(), "error", err)
		return
	}
	if rolled {
		logger.Info("Scoring period advanced", "period", j.roller.Period())
	}
}
