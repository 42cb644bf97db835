// Package reconcile runs the periodic sweep over detection records that
// never received a terminal status. Uploaded assets themselves are not
// reconciled; the storage contract has no listing primitive, so an
// orphaned object is an accepted inconsistency handled operationally.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deepsift/deepsift/internal/history"
)

// Sweeper flips stale pending records to error on a cron schedule.
type Sweeper struct {
	records  *history.Service
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSweeper creates a sweeper marking pending records older than maxAge.
func NewSweeper(log *slog.Logger, records *history.Service, schedule string, maxAge time.Duration) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	if schedule == "" {
		schedule = "@every 10m"
	}
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}
	return &Sweeper{
		records:  records,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   log.With(slog.String("service", "reconcile")),
	}
}

// Start schedules the sweep. Returns an error only for a bad schedule.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reconcile sweep scheduled", slog.String("schedule", s.schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	marked, err := s.records.MarkStalePending(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("stale pending sweep failed", slog.Any("error", err))
		return
	}
	if marked > 0 {
		s.logger.Info("marked stale pending records", slog.Int64("count", marked))
	}
}
