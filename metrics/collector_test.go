// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gogama/fetchx"
	"github.com/gogama/fetchx/failure"
	"github.com/gogama/fetchx/request"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("handle", testCollectorHandle)
	t.Run("fetch", testCollectorFetch)
	t.Run("method label", testCollectorMethodLabel)
	t.Run("nil", testCollectorNil)
}

func testCollectorHandle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	start := time.Now()
	ok := &request.Execution{
		Init:     &request.Init{Method: "GET"},
		Response: &http.Response{StatusCode: 200},
		Start:    start,
		End:      start.Add(time.Second),
	}
	bad := &request.Execution{
		Init:     &request.Init{Method: "POST"},
		Response: &http.Response{StatusCode: 404},
		Err:      &failure.StatusError{StatusCode: 404},
		Start:    start,
		End:      start.Add(time.Second),
	}
	cancelled := &request.Execution{Aborted: true, Start: start, End: start}

	c.Handle(fetchx.AttemptStart, ok)
	c.Handle(fetchx.FetchFinally, ok)
	c.Handle(fetchx.AttemptStart, bad)
	c.Handle(fetchx.FetchError, bad)
	c.Handle(fetchx.FetchFinally, bad)
	c.Handle(fetchx.FetchFinally, cancelled)
	c.Handle(fetchx.BeforeSend, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("POST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("GET", OutcomeSuccess, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("POST", OutcomeError, "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("unknown", OutcomeCancelled, "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("POST", "Status")))
	assert.Equal(t, 3, testutil.CollectAndCount(c.duration))
}

func testCollectorFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	handlers := &fetchx.HandlerGroup{}
	c.Install(handlers)

	responses := []int{200, 503}
	var i int
	doer := fetchx.DoerFunc(func(r *http.Request) (*http.Response, error) {
		if i >= len(responses) {
			<-r.Context().Done()
			return nil, r.Context().Err()
		}
		status := responses[i]
		i++
		return &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("body")),
		}, nil
	})
	h := fetchx.New("https://example.com", request.Config{}, fetchx.Options{
		Deferred:  true,
		Transport: doer,
		Handlers:  handlers,
		Timeout:   20 * time.Millisecond,
	})
	for range responses {
		_, _ = h.Execute(context.Background(), false)
	}
	_, err := h.Execute(context.Background(), true)
	require.True(t, errors.Is(err, failure.ErrTimeout))

	assert.Equal(t, 3.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("GET", OutcomeSuccess, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("GET", OutcomeError, "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("GET", OutcomeError, "0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.timeoutsTotal.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("GET", "Status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("GET", "Timeout")))

	expected := `
# HELP fetchx_timeouts_total Total number of fetch attempts which timed out
# TYPE fetchx_timeouts_total counter
fetchx_timeouts_total{method="GET"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fetchx_timeouts_total"))
}

func testCollectorMethodLabel(t *testing.T) {
	t.Run("stable across events", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)
		e := &request.Execution{Method: "GET"}
		c.Handle(fetchx.AttemptStart, e)
		e.Init = &request.Init{Method: "PATCH"}
		e.Request = &http.Request{Method: "PATCH"}
		e.Response = &http.Response{StatusCode: 200}
		c.Handle(fetchx.FetchFinally, e)

		assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("GET")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("GET", OutcomeSuccess, "200")))
		assert.Equal(t, 1, testutil.CollectAndCount(c.settledTotal))
	})
	t.Run("configured method", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := NewCollector(reg)
		handlers := &fetchx.HandlerGroup{}
		c.Install(handlers)
		doer := fetchx.DoerFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: 201,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader("")),
			}, nil
		})
		h := fetchx.New("https://example.com", request.Config{Method: "POST"}, fetchx.Options{
			Transport: doer,
			Handlers:  handlers,
		})
		_, err := h.Wait(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("POST")))
		assert.Equal(t, 0.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("unknown")))
		assert.Equal(t, 1.0, testutil.ToFloat64(c.settledTotal.WithLabelValues("POST", OutcomeSuccess, "201")))
	})
}

func testCollectorNil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Handle(fetchx.FetchFinally, &request.Execution{})
	})
}
