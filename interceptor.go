// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/gogama/fetchx/request"
)

// A BeforeFetchContext is the outgoing request of an attempt, as seen by
// the BeforeFetch interceptor. The interceptor may change the URL and
// any part of Init.
type BeforeFetchContext struct {
	// URL is the resolved request URL.
	URL string
	// Init is the resolved request method, headers and encoded body.
	Init *request.Init

	cancelled atomic.Bool
}

// Cancel prevents the request from being sent. It may be called from
// any goroutine, but only takes effect if it is called before the
// BeforeFetch interceptor returns.
func (c *BeforeFetchContext) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (c *BeforeFetchContext) Cancelled() bool {
	return c.cancelled.Load()
}

// An AfterFetchContext is the result of a successful attempt, as seen by
// the AfterFetch interceptor. The interceptor may replace Data.
type AfterFetchContext struct {
	// Data is the parsed response body.
	Data interface{}
	// Response is the HTTP response. Its body has already been read.
	Response *http.Response
	// Context is the request which was sent.
	Context *BeforeFetchContext

	h *Handle
}

// Execute starts a new attempt on the handle which produced c. The new
// attempt supersedes the current one and runs on its own goroutine, so
// Execute never blocks the interceptor.
func (c *AfterFetchContext) Execute() {
	if c.h != nil {
		c.h.Start(context.Background())
	}
}

// A FetchErrorContext is the result of a failed attempt, as seen by the
// OnFetchError interceptor. The interceptor may replace Error and Data.
//
// A replaced Data is only stored in the handle if
// Options.UpdateDataOnError is set.
type FetchErrorContext struct {
	// Error is the error which ended the attempt.
	Error error
	// Data is the parsed body of a failed response, or nil.
	Data interface{}
	// Response is the HTTP response, or nil if none was received.
	Response *http.Response
	// Context is the request which was sent, or nil if the attempt
	// failed before the BeforeFetch interceptor finished.
	Context *BeforeFetchContext

	h *Handle
}

// Execute starts a new attempt on the handle which produced c. See
// AfterFetchContext.Execute.
func (c *FetchErrorContext) Execute() {
	if c.h != nil {
		c.h.Start(context.Background())
	}
}

// BeforeFetchFunc is the signature of the BeforeFetch interceptor. It
// runs before the request is sent and may block. Returning a non-nil
// error fails the attempt without sending the request.
type BeforeFetchFunc func(ctx context.Context, c *BeforeFetchContext) error

// AfterFetchFunc is the signature of the AfterFetch interceptor. It runs
// after a successful response has been parsed. Returning a non-nil error
// fails the attempt.
type AfterFetchFunc func(ctx context.Context, c *AfterFetchContext) error

// FetchErrorFunc is the signature of the OnFetchError interceptor. It
// runs after an attempt fails. Returning a non-nil error replaces the
// error stored in the handle.
type FetchErrorFunc func(ctx context.Context, c *FetchErrorContext) error

// Interceptors is a set of optional hooks run at fixed points of every
// attempt. A nil hook is skipped.
type Interceptors struct {
	BeforeFetch  BeforeFetchFunc
	AfterFetch   AfterFetchFunc
	OnFetchError FetchErrorFunc
}

// A Combination selects how a Factory combines its own interceptors
// with the interceptors given to each handle it creates.
type Combination int

const (
	// Chain runs both hooks, the factory hook first, on the same
	// context. An error from the factory hook stops the chain.
	Chain Combination = iota
	// Overwrite runs the handle's hook if it has one, and the factory
	// hook otherwise. The decision is made separately for each hook.
	Overwrite
)

var combinationNames = []string{"Chain", "Overwrite"}

// String returns the name of the combination.
func (c Combination) String() string {
	if c < 0 || int(c) >= len(combinationNames) {
		return "Unknown"
	}
	return combinationNames[c]
}

// Combine combines factory-level and call-level interceptors according
// to c.
func Combine(factory, call Interceptors, c Combination) Interceptors {
	out := call
	if c == Overwrite {
		if out.BeforeFetch == nil {
			out.BeforeFetch = factory.BeforeFetch
		}
		if out.AfterFetch == nil {
			out.AfterFetch = factory.AfterFetch
		}
		if out.OnFetchError == nil {
			out.OnFetchError = factory.OnFetchError
		}
		return out
	}

	out.BeforeFetch = chainBeforeFetch(factory.BeforeFetch, call.BeforeFetch)
	out.AfterFetch = chainAfterFetch(factory.AfterFetch, call.AfterFetch)
	out.OnFetchError = chainFetchError(factory.OnFetchError, call.OnFetchError)
	return out
}

func chainBeforeFetch(first, second BeforeFetchFunc) BeforeFetchFunc {
	if first == nil || second == nil {
		if first != nil {
			return first
		}
		return second
	}
	return func(ctx context.Context, c *BeforeFetchContext) error {
		if err := first(ctx, c); err != nil {
			return err
		}
		return second(ctx, c)
	}
}

func chainAfterFetch(first, second AfterFetchFunc) AfterFetchFunc {
	if first == nil || second == nil {
		if first != nil {
			return first
		}
		return second
	}
	return func(ctx context.Context, c *AfterFetchContext) error {
		if err := first(ctx, c); err != nil {
			return err
		}
		return second(ctx, c)
	}
}

func chainFetchError(first, second FetchErrorFunc) FetchErrorFunc {
	if first == nil || second == nil {
		if first != nil {
			return first
		}
		return second
	}
	return func(ctx context.Context, c *FetchErrorContext) error {
		if err := first(ctx, c); err != nil {
			return err
		}
		return second(ctx, c)
	}
}
