package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/semmidev/custos/internal/domain"
)

// Scheduler walks all registered databases once per tick and starts a
// dump for every one that is due. Dumps run concurrently; one database's
// failure never touches another, and a dump still in flight from an
// earlier tick makes the new attempt fail fast on the guard.
type Scheduler struct {
	databases domain.DatabaseStore
	dump      *Dump
	logger    Logger
	now       func() time.Time
}

func NewScheduler(databases domain.DatabaseStore, dump *Dump, logger Logger) *Scheduler {
	return &Scheduler{
		databases: databases,
		dump:      dump,
		logger:    logger,
		now:       time.Now,
	}
}

// Tick runs one scheduling pass and returns once every dump it started
// has finished. Per-database failures are logged and never fail the
// tick; there are no retries within it, a failed database stays due and
// is picked up again on the next one.
func (s *Scheduler) Tick(ctx context.Context) error {
	conns, err := s.databases.List(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, conn := range conns {
		due, err := domain.IsDue(conn.LastBackupAt, conn.Interval, s.now())
		if err != nil {
			s.logger.Warnf("[%s] Skipping: %v", conn.Name, err)
			continue
		}
		if !due {
			continue
		}

		wg.Add(1)
		go func(conn domain.DatabaseConnection) {
			defer wg.Done()
			s.runOne(ctx, conn)
		}(conn)
	}
	wg.Wait()
	return nil
}

func (s *Scheduler) runOne(ctx context.Context, conn domain.DatabaseConnection) {
	_, err := s.dump.Execute(ctx, conn.ID, DumpOptions{})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyInProgress):
		s.logger.Warnf("[%s] Previous backup still running, skipping", conn.Name)
	case errors.Is(err, domain.ErrNotDue):
		// Another trigger got there between the due check and the run.
	case errors.Is(err, domain.ErrUnsupportedEngine):
		s.logger.Warnf("[%s] Engine %s has no dump support yet", conn.Name, conn.Engine)
	default:
		s.logger.Errorf("[%s] Scheduled backup failed: %v", conn.Name, err)
	}
}
