// The agent is a background daemon: once per day (after a 30s warm-up
// on launch) it reads a fixed set of sysfs hardware counters and
// forwards the parsed values to the telemetry collector.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/sysfs-stats/internal/buildinfo"
	"github.com/and161185/sysfs-stats/internal/client"
	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/sysfs"
)

func main() {
	buildinfo.PrintBuildInfo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.NewAgentConfig()

	cfg.Logger.Infof("Agent config: Addr=%s, ClientTimeout=%d, ProbeTimeout=%d, Key set=%t",
		cfg.ServerAddr, cfg.ClientTimeout, cfg.ProbeTimeout, cfg.Key != "")

	collector := sysfs.NewCollector(sysfs.DefaultSources(), cfg.Logger)
	provider := client.NewSinkProvider(cfg)
	dispatcher := client.NewDispatcher(cfg, provider, collector)

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Logger.Fatal(err)
	}
}
