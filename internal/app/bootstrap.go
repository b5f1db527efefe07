package app

import (
	"errors"

	"github.com/storekart/storekart/internal/config"
	"github.com/storekart/storekart/internal/events"
	"github.com/storekart/storekart/internal/provider"
	"github.com/storekart/storekart/internal/router"
	"github.com/storekart/storekart/internal/worker"
)

// BuildRunner assembles the services for the requested mode.
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.Setup(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, &cfg.Recovery, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)

		if cfg.Events.Enabled {
			orderConsumer, err := events.NewConsumer(&cfg.Events, container.AbandonedCartService, container.CouponService)
			if err != nil {
				return nil, err
			}
			services = append(services, orderConsumer)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run is the application entry point.
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
