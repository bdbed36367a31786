package config

import (
	"flag"
	"os"

	"go.uber.org/zap"
)

// ServerConfig holds the configuration settings for the collector server.
type ServerConfig struct {
	Addr        string // HTTP listen address.
	Logger      *zap.SugaredLogger
	DatabaseDsn string // Data Source Name for PostgreSQL; empty keeps reports in memory.
	Key         string // Key for hash verification.
}

// NewServerConfig creates and returns a new ServerConfig by parsing flags,
// an optional JSON config file, and environment variables.
func NewServerConfig() *ServerConfig {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout", "server.log"}
	logger := zap.Must(logCfg.Build())

	cfg := &ServerConfig{
		Addr:   "localhost:8080",
		Logger: logger.Sugar(),
	}

	var fAddr, fDsn, fKey, fConf strFlag
	flag.Var(&fAddr, "a", "HTTP server address")
	flag.Var(&fDsn, "d", "DB connection string")
	flag.Var(&fKey, "k", "Hash key string")
	flag.Var(&fConf, "c", "Path to JSON config file")
	flag.Var(&fConf, "config", "Path to JSON config file (alias)")
	flag.Parse()

	if fAddr.set {
		cfg.Addr = fAddr.v
	}
	if fDsn.set {
		cfg.DatabaseDsn = fDsn.v
	}
	if fKey.set {
		cfg.Key = fKey.v
	}

	if fConf.v == "" {
		if v := os.Getenv("CONFIG"); v != "" {
			fConf.v = v
		}
	}
	if fConf.v != "" {
		if js, err := loadServerJSON(fConf.v); err == nil {
			if js.Address != nil && !fAddr.set {
				cfg.Addr = *js.Address
			}
			if js.DatabaseDSN != nil && !fDsn.set {
				cfg.DatabaseDsn = *js.DatabaseDSN
			}
		}
	}

	readServerEnvironment(cfg)

	return cfg
}

func readServerEnvironment(cfg *ServerConfig) {
	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.Addr = addr
	}

	if dbDsn := os.Getenv("DATABASE_DSN"); dbDsn != "" {
		cfg.DatabaseDsn = dbDsn
	}

	if key := os.Getenv("KEY"); key != "" {
		cfg.Key = key
	}
}
