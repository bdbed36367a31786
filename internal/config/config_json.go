package config

import (
	"encoding/json"
	"os"
	"time"
)

type serverJSON struct {
	Address     *string `json:"address"`
	DatabaseDSN *string `json:"database_dsn"`
}

type agentJSON struct {
	Address       *string `json:"address"`
	ClientTimeout *string `json:"client_timeout"` // "10s"
	ProbeTimeout  *string `json:"probe_timeout"`  // "2s"
}

func loadServerJSON(path string) (*serverJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg serverJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadAgentJSON(path string) (*agentJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c agentJSON
	return &c, json.Unmarshal(b, &c)
}

func parseDurationSeconds(s string) (int, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return int(d / time.Second), nil
}
