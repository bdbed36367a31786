package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/schedule"
	"github.com/and161185/sysfs-stats/internal/sysfs"
)

// collector is the per-source reader invoked once per cycle.
type collector interface {
	Collect(ctx context.Context, sink sysfs.Sink)
}

// Dispatcher drives the wait-for-tick, run-cycle loop. One goroutine,
// no cross-cycle state: every cycle acquires a fresh sink handle and
// releases it before the next tick.
type Dispatcher struct {
	config    *config.AgentConfig
	provider  *SinkProvider
	collector collector
	logger    *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher over the given provider and
// collector.
func NewDispatcher(cfg *config.AgentConfig, provider *SinkProvider, col collector) *Dispatcher {
	return &Dispatcher{
		config:    cfg,
		provider:  provider,
		collector: col,
		logger:    cfg.Logger,
	}
}

// Run blocks until ctx is cancelled, collecting once per trigger tick.
// A schedule that cannot be armed is returned as an error and the
// daemon must terminate; everything below that is logged and retried on
// the next scheduled tick.
func (d *Dispatcher) Run(ctx context.Context) error {
	trigger, err := schedule.New(d.config.WarmupDelay, d.config.ReportPeriod)
	if err != nil {
		return fmt.Errorf("arm collection timer: %w", err)
	}
	defer trigger.Stop()

	for {
		if err := trigger.Wait(ctx); err != nil {
			return err
		}
		d.RunCycle(ctx)
	}
}

// RunCycle performs one all-or-nothing collection pass. If the
// collector cannot be acquired no source files are touched; the next
// cycle runs on schedule regardless.
func (d *Dispatcher) RunCycle(ctx context.Context) {
	sink, err := d.provider.Acquire(ctx)
	if err != nil {
		d.logger.Errorf("skipping collection cycle: %v", err)
		return
	}
	defer sink.Release()

	d.collector.Collect(ctx, sink)
}
