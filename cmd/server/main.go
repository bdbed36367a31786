// The server is the telemetry collection service: it receives report
// calls from the agent over HTTP and stores them in memory or
// PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/sysfs-stats/internal/buildinfo"
	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/server"
	"github.com/and161185/sysfs-stats/storage/inmemory"
	"github.com/and161185/sysfs-stats/storage/postgres"
)

func main() {
	buildinfo.PrintBuildInfo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewServerConfig()

	var (
		storage      server.Storage
		closeStorage = func() {}
	)
	if config.DatabaseDsn != "" {
		pg, err := postgres.NewPostgresStorage(ctx, config.DatabaseDsn)
		if err != nil {
			config.Logger.Fatal(err)
		}
		storage = pg
		closeStorage = pg.Close
	} else {
		storage = inmemory.NewMemStorage(ctx)
	}

	config.Logger.Infof("Server config: Addr=%s, DatabaseDSN set=%t, Key set=%t",
		config.Addr,
		config.DatabaseDsn != "",
		config.Key != "",
	)

	srv := server.NewServer(storage, config)
	err := srv.Run(ctx)
	closeStorage()
	if err != nil {
		config.Logger.Fatal(err)
	}
}
