// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/autobrr/seedpull/internal/reconcile"
)

// Manager owns the prometheus registry and the pass-level metrics exposed
// in serve mode.
type Manager struct {
	registry *prometheus.Registry

	passesTotal   *prometheus.CounterVec
	jobsTotal     *prometheus.CounterVec
	passDuration  prometheus.Histogram
	lastPassStamp prometheus.Gauge
}

func NewManager() *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		passesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedpull_passes_total",
			Help: "Number of reconciliation passes by result",
		}, []string{"result"}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seedpull_jobs_total",
			Help: "Number of jobs handled by outcome",
		}, []string{"outcome"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "seedpull_pass_duration_seconds",
			Help:    "Duration of reconciliation passes",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		lastPassStamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seedpull_last_pass_timestamp_seconds",
			Help: "Unix timestamp of the last completed pass",
		}),
	}

	registry.MustRegister(m.passesTotal, m.jobsTotal, m.passDuration, m.lastPassStamp)
	return m
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}

// RecordPass updates the pass metrics after a reconciliation pass. passErr
// is the error returned by the pass itself, not a per-job failure.
func (m *Manager) RecordPass(result reconcile.Result, duration time.Duration, passErr error) {
	if passErr != nil {
		m.passesTotal.WithLabelValues("error").Inc()
	} else {
		m.passesTotal.WithLabelValues("ok").Inc()
	}

	m.jobsTotal.WithLabelValues(string(reconcile.OutcomeCopied)).Add(float64(result.Copied))
	m.jobsTotal.WithLabelValues(string(reconcile.OutcomeAlreadyPulled)).Add(float64(result.AlreadyPulled))
	m.jobsTotal.WithLabelValues(string(reconcile.OutcomeFailed)).Add(float64(result.Failed))

	m.passDuration.Observe(duration.Seconds())
	m.lastPassStamp.SetToCurrentTime()
}
