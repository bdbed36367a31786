// Package server implements the telemetry collector service: it accepts
// report calls from the agent, validates them, and hands them to
// storage.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/and161185/sysfs-stats/cmd/server/reports"
	"github.com/and161185/sysfs-stats/internal/config"
	"github.com/and161185/sysfs-stats/internal/server/middleware"
	"github.com/and161185/sysfs-stats/model"
)

// Storage persists received reports.
type Storage interface {
	Save(ctx context.Context, report *model.Report) error
	List(ctx context.Context) ([]model.Report, error)
	Ping(ctx context.Context) error
}

// Server is the collector's HTTP surface.
type Server struct {
	storage Storage
	config  *config.ServerConfig
}

// NewServer creates a server over the given storage.
func NewServer(storage Storage, config *config.ServerConfig) *Server {
	return &Server{
		storage: storage,
		config:  config,
	}
}

// Router builds the collector's route table.
func (srv *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.LogMiddleware(srv.config.Logger))
	router.Use(middleware.VerifyHashMiddleware(srv.config))
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.CompressMiddleware)
	router.Post("/report", srv.SaveReportHandler)
	router.Get("/ping", srv.PingHandler)
	router.Get("/", srv.ListReportsHandler)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{Addr: srv.config.Addr, Handler: srv.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SaveReportHandler accepts one JSON report from the agent.
func (srv *Server) SaveReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	var report model.Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if err := reports.CheckReport(&report); err != nil {
		srv.config.Logger.Errorf("rejected report [kind=%s]: %v", report.Kind, err)
		http.Error(w, "invalid report", http.StatusBadRequest)
		return
	}

	if err := srv.storage.Save(r.Context(), &report); err != nil {
		srv.config.Logger.Errorf("failed to save report [kind=%s]: %v", report.Kind, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		srv.config.Logger.Errorf("failed to write response JSON: %v", err)
	}
}

// PingHandler reports collector liveness. This is the endpoint the
// agent probes before each collection cycle.
func (srv *Server) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := srv.storage.Ping(r.Context()); err != nil {
		srv.config.Logger.Errorf("storage ping failed: %v", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListReportsHandler renders the stored reports as plain text, one per
// line, in arrival order.
func (srv *Server) ListReportsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := srv.storage.List(r.Context())
	if err != nil {
		srv.config.Logger.Errorf("failed to list reports: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, report := range all {
		fmt.Fprintln(w, formatReport(&report))
	}
}

func formatReport(r *model.Report) string {
	switch r.Kind {
	case model.ChargeCycles:
		return fmt.Sprintf("%s histogram=%s", r.Kind, r.Histogram)
	case model.HardwareFailure:
		return fmt.Sprintf("%s hardware=%s sub_index=%d code=%d", r.Kind, r.Hardware, deref(r.SubIndex), deref(r.Code))
	case model.SlowIO:
		return fmt.Sprintf("%s operation=%s count=%d", r.Kind, r.Operation, deref(r.Count))
	case model.SpeakerImpedance:
		return fmt.Sprintf("%s channel=%d value=%g", r.Kind, deref(r.Channel), derefF(r.Value))
	}
	return string(r.Kind)
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefF(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
