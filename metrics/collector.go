// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/failure"
	"github.com/gogama/fetchx/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// A Collector records metrics for every attempt it observes. It is safe
// for concurrent use.
//
// Superseded attempts are counted as started but never as settled.
type Collector struct {
	attemptsTotal *prometheus.CounterVec
	settledTotal  *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	timeoutsTotal *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
}

// NewCollector creates a collector whose metrics are registered with
// reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		attemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchx_attempts_total",
				Help: "Total number of fetch attempts started",
			},
			[]string{"method"},
		),
		settledTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchx_requests_total",
				Help: "Total number of fetch attempts settled, by outcome",
			},
			[]string{"method", "outcome", "status_code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetchx_request_duration_seconds",
				Help:    "Duration of settled fetch attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		timeoutsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchx_timeouts_total",
				Help: "Total number of fetch attempts which timed out",
			},
			[]string{"method"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchx_errors_total",
				Help: "Total number of failed fetch attempts, by failure category",
			},
			[]string{"method", "category"},
		),
	}
}

// Install adds c to the handler chains of g for every event it records.
func (c *Collector) Install(g *fetchx.HandlerGroup) {
	g.PushBack(fetchx.AttemptStart, c)
	g.PushBack(fetchx.AfterAttemptTimeout, c)
	g.PushBack(fetchx.FetchError, c)
	g.PushBack(fetchx.FetchFinally, c)
}

// methodKey stores the method label chosen at AttemptStart, so that all
// of an attempt's metrics carry the same label even if an interceptor
// changes the method.
type methodKey struct{}

// Handle records evt. It implements fetchx.Handler.
func (c *Collector) Handle(evt fetchx.Event, e *request.Execution) {
	if c == nil {
		return
	}

	m, ok := e.Value(methodKey{}).(string)
	if !ok {
		m = method(e)
		e.SetValue(methodKey{}, m)
	}
	switch evt {
	case fetchx.AttemptStart:
		c.attemptsTotal.WithLabelValues(m).Inc()
	case fetchx.AfterAttemptTimeout:
		c.timeoutsTotal.WithLabelValues(m).Inc()
	case fetchx.FetchError:
		c.errorsTotal.WithLabelValues(m, failure.Categorize(e.Err).String()).Inc()
	case fetchx.FetchFinally:
		o := outcome(e)
		c.settledTotal.WithLabelValues(m, o, strconv.Itoa(e.StatusCode())).Inc()
		c.duration.WithLabelValues(m, o).Observe(e.Duration().Seconds())
	}
}

func method(e *request.Execution) string {
	switch {
	case e.Method != "":
		return e.Method
	case e.Request != nil:
		return e.Request.Method
	case e.Init != nil && e.Init.Method != "":
		return e.Init.Method
	default:
		return "unknown"
	}
}

func outcome(e *request.Execution) string {
	switch {
	case e.Err != nil:
		return OutcomeError
	case e.Aborted:
		return OutcomeCancelled
	default:
		return OutcomeSuccess
	}
}
