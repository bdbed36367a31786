// Package client implements the agent side of the telemetry collector
// protocol: per-cycle sink acquisition and the report calls.
package client

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/errs"
	"github.com/and161185/sysfs-stats/internal/sysfs"
	"github.com/and161185/sysfs-stats/internal/utils"
	"github.com/and161185/sysfs-stats/model"
)

// SinkProvider performs the best-effort lookup of a running collector.
type SinkProvider struct {
	config     *config.AgentConfig
	httpClient *http.Client
}

// NewSinkProvider creates a provider with its own HTTP client.
func NewSinkProvider(cfg *config.AgentConfig) *SinkProvider {
	return NewSinkProviderWithHTTP(cfg, &http.Client{
		Timeout: time.Duration(cfg.ClientTimeout) * time.Second,
	})
}

// DI: ready http.Client
func NewSinkProviderWithHTTP(cfg *config.AgentConfig, hc *http.Client) *SinkProvider {
	return &SinkProvider{config: cfg, httpClient: hc}
}

// Acquire probes the collector's liveness endpoint and returns a handle
// for one cycle's reports. The probe is bounded by the probe timeout: a
// collector that is not currently running fails the whole cycle instead
// of queueing reports.
func (p *SinkProvider) Acquire(ctx context.Context) (*Sink, error) {
	probeTimeout := time.Duration(p.config.ProbeTimeout) * time.Second
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.config.ServerAddr+"/ping", nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSinkUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", errs.ErrSinkUnavailable, resp.StatusCode)
	}

	return &Sink{config: p.config, httpClient: p.httpClient}, nil
}

// Sink is the report handle for one collection cycle. It is never
// shared across cycles.
type Sink struct {
	config     *config.AgentConfig
	httpClient *http.Client
	released   bool
}

var _ sysfs.Sink = (*Sink)(nil)

// Release relinquishes the handle. Idempotent.
func (s *Sink) Release() {
	if s.released {
		return
	}
	s.released = true
	s.httpClient.CloseIdleConnections()
}

// ReportChargeCycles forwards the normalized charge-cycle histogram.
func (s *Sink) ReportChargeCycles(ctx context.Context, histogram string) error {
	return s.post(ctx, &model.Report{
		Kind:      model.ChargeCycles,
		Histogram: histogram,
	})
}

// ReportHardwareFailed reports a failed component.
func (s *Sink) ReportHardwareFailed(ctx context.Context, hw model.HardwareType, subIndex, code int) error {
	return s.post(ctx, &model.Report{
		Kind:     model.HardwareFailure,
		Hardware: hw,
		SubIndex: utils.IntPtr(subIndex),
		Code:     utils.IntPtr(code),
	})
}

// ReportSlowIO reports the slow-I/O count for one operation kind.
func (s *Sink) ReportSlowIO(ctx context.Context, op model.IoOperation, count int) error {
	return s.post(ctx, &model.Report{
		Kind:      model.SlowIO,
		Operation: op,
		Count:     utils.IntPtr(count),
	})
}

// ReportSpeakerImpedance reports one channel's impedance in milliohms.
func (s *Sink) ReportSpeakerImpedance(ctx context.Context, channel int, milliohms float64) error {
	return s.post(ctx, &model.Report{
		Kind:    model.SpeakerImpedance,
		Channel: utils.IntPtr(channel),
		Value:   utils.F64Ptr(milliohms),
	})
}

func (s *Sink) post(ctx context.Context, report *model.Report) error {
	code, err := s.postGzipJSON(ctx, "/report", report)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", code)
	}
	return nil
}

// postGzipJSON sends one report. Fire-and-forget: no retry, the
// response body is discarded.
func (s *Sink) postGzipJSON(ctx context.Context, path string, payload any) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal: %w", err)
	}

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	if _, err = zw.Write(raw); err != nil {
		return 0, fmt.Errorf("gzip write: %w", err)
	}
	if err = zw.Close(); err != nil {
		return 0, fmt.Errorf("gzip close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.ServerAddr+path, &body)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	if s.config.Key != "" {
		req.Header.Set("HashSHA256", utils.CalculateHash(body.Bytes(), s.config.Key))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
