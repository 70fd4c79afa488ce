package worker

import (
	"context"
	"errors"
	"time"

	"github.com/edukart-next/internal/config"
	"github.com/edukart-next/internal/logger"
	"github.com/edukart-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	sweepInterval      = time.Minute
	followUpSweepLimit = 100
)

// Service is the async queue service.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService creates the queue service.
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer plus a periodic session sweep.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.SettlementService != nil {
		go s.runSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the consumer down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runSweepLoop is a safety net behind the queued tasks: sessions still
// expire and pending sub-orders still recover even when their task was
// lost or never enqueued.
func (s *Service) runSweepLoop(ctx context.Context) {
	runOnce := func() {
		expired, err := s.consumer.SettlementService.ExpireSessions(time.Now())
		if err != nil {
			logger.Warnw("worker_session_sweep_failed", "error", err)
		} else if expired > 0 {
			logger.Infow("worker_session_sweep_expired", "count", expired)
		}

		recovered, err := s.consumer.SettlementService.RetryFollowUps(ctx, followUpSweepLimit)
		if err != nil {
			logger.Warnw("worker_follow_up_sweep_failed", "error", err)
		} else if recovered > 0 {
			logger.Infow("worker_follow_up_sweep_recovered", "count", recovered)
		}
	}
	runOnce()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
