package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autopeer-io/sensoragent/internal/pkg/metrics"
	"github.com/autopeer-io/sensoragent/pkg/log"
	"github.com/autopeer-io/sensoragent/pkg/options"
)

// ReadyFunc reports whether the agent can publish readings, and why not.
type ReadyFunc func() (bool, string)

// Server exposes liveness, readiness and prometheus metrics.
type Server struct {
	server *http.Server
	ready  ReadyFunc
}

func NewServer(opts *options.MetricsOptions, ready ReadyFunc) *Server {
	s := &Server{ready: ready}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: opts.Timeout,
		ReadTimeout:       opts.Timeout,
		WriteTimeout:      opts.Timeout,
	}
	return s
}

// Handler returns the router serving every endpoint.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Basic Liveness Probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Readiness Probe: the link is up and the session is live.
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ok, reason := s.ready(); !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(reason))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// Start serves until ctx ends, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
