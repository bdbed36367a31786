// Package config provides application configuration structures and helpers.
package config

import (
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Collection schedule. Fixed deployment policy, deliberately not
// configurable: the monitored sysfs nodes accumulate over a day and the
// codec driver needs time to load after boot.
const (
	WarmupDelay  = 30 * time.Second
	ReportPeriod = 24 * time.Hour
)

// AgentConfig holds the configuration settings for the agent.
type AgentConfig struct {
	ServerAddr    string // Collector address (must include http(s)://).
	ClientTimeout int    // HTTP client timeout for report calls (in seconds).
	ProbeTimeout  int    // Timeout for the collector liveness probe (in seconds).
	Key           string // Key for hash generation.
	WarmupDelay   time.Duration
	ReportPeriod  time.Duration
	Logger        *zap.SugaredLogger
}

// NewAgentConfig creates and returns a new AgentConfig by parsing flags,
// an optional JSON config file, and environment variables. The collection
// schedule itself is constant and not part of the configuration surface.
func NewAgentConfig() *AgentConfig {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout", "agent.log"}
	logger := zap.Must(logCfg.Build())

	cfg := &AgentConfig{
		ServerAddr:    "http://localhost:8080",
		ClientTimeout: 10,
		ProbeTimeout:  2,
		WarmupDelay:   WarmupDelay,
		ReportPeriod:  ReportPeriod,
		Logger:        logger.Sugar(),
	}

	var fAddr, fKey, fConf strFlag
	var fTO, fProbe intFlag
	flag.Var(&fAddr, "a", "collector address (must include http(s)://)")
	flag.Var(&fTO, "t", "client timeout (seconds)")
	flag.Var(&fProbe, "probe-timeout", "collector liveness probe timeout (seconds)")
	flag.Var(&fKey, "k", "Hash key string")
	flag.Var(&fConf, "c", "Path to JSON config file")
	flag.Var(&fConf, "config", "Path to JSON config file (alias)")
	flag.Parse()

	if fAddr.set {
		cfg.ServerAddr = fAddr.v
	}
	if fTO.set {
		cfg.ClientTimeout = fTO.v
	}
	if fProbe.set {
		cfg.ProbeTimeout = fProbe.v
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
		if js, err := loadAgentJSON(fConf.v); err == nil {
			if js.Address != nil && !fAddr.set {
				cfg.ServerAddr = *js.Address
			}
			if js.ClientTimeout != nil && !fTO.set {
				if sec, err := parseDurationSeconds(*js.ClientTimeout); err == nil {
					cfg.ClientTimeout = sec
				}
			}
			if js.ProbeTimeout != nil && !fProbe.set {
				if sec, err := parseDurationSeconds(*js.ProbeTimeout); err == nil {
					cfg.ProbeTimeout = sec
				}
			}
		}
	}

	readAgentEnvironment(cfg)

	// normalize address
	if !strings.HasPrefix(cfg.ServerAddr, "http://") && !strings.HasPrefix(cfg.ServerAddr, "https://") {
		cfg.ServerAddr = "http://" + cfg.ServerAddr
	}
	return cfg
}

func readAgentEnvironment(cfg *AgentConfig) {
	if addr := os.Getenv("ADDRESS"); addr != "" {
		cfg.ServerAddr = addr
	}

	clientTimeoutEnv := os.Getenv("CLIENT_TIMEOUT")
	if clientTimeoutEnv != "" {
		v, err := strconv.Atoi(clientTimeoutEnv)
		if err == nil {
			cfg.ClientTimeout = v
		} else {
			log.Printf("invalid CLIENT_TIMEOUT env var: %v", err)
		}
	}

	probeTimeoutEnv := os.Getenv("PROBE_TIMEOUT")
	if probeTimeoutEnv != "" {
		v, err := strconv.Atoi(probeTimeoutEnv)
		if err == nil {
			cfg.ProbeTimeout = v
		} else {
			log.Printf("invalid PROBE_TIMEOUT env var: %v", err)
		}
	}

	if key := os.Getenv("KEY"); key != "" {
		cfg.Key = key
	}
}
