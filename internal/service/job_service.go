package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

type JobService struct {
	maestri *MaestroService
	log     *zap.Logger
}

func NewJobService(maestri *MaestroService, log *zap.Logger) *JobService {
	return &JobService{maestri: maestri, log: log}
}

// SyncMaestroPayments is the body of the periodic reconciliation job.
func (s *JobService) SyncMaestroPayments() error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := s.maestri.Sync(ctx)
	if err != nil {
		return fmt.Errorf("cron job: maestro payment sync failed: %w", err)
	}
	s.log.Debug("cron job: maestro payments checked", zap.Int("inserted", res.Inserted), zap.Int("removed", res.Removed))
	return nil
}

// Start schedules the jobs on spec and starts the scheduler. The caller
// stops it on shutdown.
func (s *JobService) Start(spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := s.SyncMaestroPayments(); err != nil {
			s.log.Error("scheduled job failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c.Start()
	s.log.Info("job scheduler started", zap.String("spec", spec))
	return c, nil
}
