package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 10 * time.Minute

type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// Scheduler rebuilds the search index on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	reindexer Reindexer
	onIndexed func(int)
	logger    *zap.Logger
}

// New schedules the reindex job. onIndexed may be nil.
func New(spec string, reindexer Reindexer, onIndexed func(int), logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		reindexer: reindexer,
		onIndexed: onIndexed,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(spec, s.RunReindex); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) RunReindex() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.logger.Info("Running scheduled reindex job...")
	count, err := s.reindexer.Reindex(ctx)
	if err != nil {
		s.logger.Error("Reindex job failed", zap.Error(err))
		return
	}
	s.logger.Info("Reindex job completed", zap.Int("documents", count))
	if s.onIndexed != nil {
		s.onIndexed(count)
	}
}
