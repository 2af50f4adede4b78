// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/fetchx/request"
	"github.com/stretchr/testify/mock"
)

type mockHTTPDoer struct {
	mock.Mock
}

func newMockHTTPDoer(t *testing.T) *mockHTTPDoer {
	m := &mockHTTPDoer{}
	m.Test(t)
	return m
}

func (m *mockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	err := args.Error(1)
	if resp, ok := args.Get(0).(*http.Response); ok {
		return resp, err
	}
	return nil, err
}

type mockTimeoutPolicy struct {
	mock.Mock
}

func newMockTimeoutPolicy(t *testing.T) *mockTimeoutPolicy {
	m := &mockTimeoutPolicy{}
	m.Test(t)
	return m
}

func (m *mockTimeoutPolicy) Timeout(e *request.Execution) time.Duration {
	args := m.Called(e)
	return args.Get(0).(time.Duration)
}

type mockHandler struct {
	mock.Mock
}

func newMockHandler(t *testing.T) *mockHandler {
	m := &mockHandler{}
	m.Test(t)
	return m
}

func (m *mockHandler) Handle(evt Event, e *request.Execution) {
	m.Called(evt, e)
}

// blockingDoer holds every request until it is released or its context
// is cancelled.
type blockingDoer struct {
	entered chan *http.Request
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingDoer() *blockingDoer {
	return &blockingDoer{
		entered: make(chan *http.Request, 64),
		release: make(chan struct{}),
	}
}

func (d *blockingDoer) Do(r *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	d.entered <- r
	select {
	case <-r.Context().Done():
		return nil, r.Context().Err()
	case <-d.release:
		return newResponse(200, jsonMessage), nil
	}
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// countingDoer responds to every request with a fresh response built by
// respond.
func countingDoer(count *atomic.Int32, respond func(r *http.Request) (*http.Response, error)) DoerFunc {
	return func(r *http.Request) (*http.Response, error) {
		count.Add(1)
		return respond(r)
	}
}

type badBody struct {
	err error
}

func (b badBody) Read(_ []byte) (int, error) {
	return 0, b.err
}

func (b badBody) Close() error {
	return nil
}
