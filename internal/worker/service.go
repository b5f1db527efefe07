package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/logger"
	"github.com/storekart/storekart/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = 15 * time.Minute

// Service runs the asynq consumer plus the periodic abandoned-cart sweep.
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, recoveryCfg *config.RecoveryConfig, consumer *Consumer) (*Service, error) {
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

	sweepInterval := defaultSweepInterval
	if recoveryCfg != nil && recoveryCfg.SweepIntervalMinutes > 0 {
		sweepInterval = time.Duration(recoveryCfg.SweepIntervalMinutes) * time.Minute
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweepInterval,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the consumer and the sweep loop; blocks until shutdown.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.AbandonedCartService != nil {
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

func (s *Service) runSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.AbandonedCartService == nil {
		return
	}
	runOnce := func() {
		result := s.consumer.AbandonedCartService.Sweep(time.Now())
		if len(result.Errors) > 0 {
			logger.Warnw("worker_sweep_partial_failure",
				"carts_checked", result.CartsChecked,
				"errors", len(result.Errors))
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
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
