// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// healthProbeTimeout bounds the upstream check behind /healthz so a stuck
// tracker cannot hang the endpoint.
const healthProbeTimeout = 10 * time.Second

// Server serves /metrics and /healthz in serve mode.
type Server struct {
	manager *Manager
	server  *http.Server
}

// NewServer builds the metrics listener. health, when non-nil, is probed by
// /healthz; a failing probe turns the endpoint into a 503.
func NewServer(manager *Manager, host string, port int, health func(context.Context) error) *Server {
	s := &Server{manager: manager}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(manager.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(req.Context(), healthProbeTimeout)
			defer cancel()

			if err := health(ctx); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start serves until Shutdown is called. It blocks.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting metrics server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
