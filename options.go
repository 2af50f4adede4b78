// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"net/http"
	"time"

	"github.com/gogama/fetchx/failure"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
	"go.uber.org/zap"
)

// Options configures a fetch handle. Its zero value is a valid
// configuration: the handle executes immediately, does not refetch,
// never times out, treats every non-2XX status as a failure, parses
// response bodies as text and sends requests with http.DefaultClient.
type Options struct {
	// Interceptors are run at fixed points of every attempt.
	Interceptors

	// Deferred prevents the handle from starting its first attempt when
	// it is created. A deferred handle waits for Execute or Start. When
	// set on a Factory, it cannot be unset for a single handle.
	Deferred bool

	// Refetch starts a new attempt whenever the URL source or a reactive
	// payload changes. A change of the URL is detected by string
	// comparison; a change of the payload by comparing the fingerprints
	// of its JSON encodings.
	Refetch bool

	// Timeout is a fixed timeout for every attempt. Zero means no
	// timeout. It is ignored if TimeoutPolicy is set.
	Timeout time.Duration

	// TimeoutPolicy specifies how to set timeouts on individual
	// attempts. An attempt which times out is aborted with
	// failure.ErrTimeout.
	//
	// If TimeoutPolicy is nil, timeout.Fixed(Timeout) is used.
	TimeoutPolicy timeout.Policy

	// UpdateDataOnError stores the data of a failed attempt, as left by
	// the OnFetchError interceptor, in the Data cell. Otherwise the Data
	// cell is reset to InitialData when an attempt fails.
	UpdateDataOnError bool

	// InitialData is the value of the Data cell before the first
	// successful attempt.
	InitialData interface{}

	// Transport specifies the mechanics of sending HTTP requests and
	// receiving responses.
	//
	// If Transport is nil, http.DefaultClient from the standard net/http
	// package is used.
	Transport HTTPDoer

	// FailurePolicy decides whether a response is a failure.
	//
	// If FailurePolicy is nil, failure.DefaultDecider is used.
	FailurePolicy failure.Decider

	// ResponseType selects how the response body is parsed. If empty,
	// request.ResponseText is used.
	ResponseType request.ResponseType

	// Handlers allows custom handler chains to be invoked when
	// designated events occur during an attempt.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup

	// Logger receives structured debug logs of the handle's attempts.
	//
	// If Logger is nil, nothing is logged.
	Logger *zap.Logger
}

// mergeOptions merges factory-level options with call-level options.
// Call-level values win when they are set, boolean flags are ORed, and
// interceptors are combined according to c.
func mergeOptions(factory, call Options, c Combination) Options {
	out := call
	out.Interceptors = Combine(factory.Interceptors, call.Interceptors, c)
	out.Deferred = factory.Deferred || call.Deferred
	out.Refetch = factory.Refetch || call.Refetch
	out.UpdateDataOnError = factory.UpdateDataOnError || call.UpdateDataOnError
	if out.Timeout == 0 {
		out.Timeout = factory.Timeout
	}
	if out.TimeoutPolicy == nil {
		out.TimeoutPolicy = factory.TimeoutPolicy
	}
	if out.InitialData == nil {
		out.InitialData = factory.InitialData
	}
	if out.Transport == nil {
		out.Transport = factory.Transport
	}
	if out.FailurePolicy == nil {
		out.FailurePolicy = factory.FailurePolicy
	}
	if out.ResponseType == "" {
		out.ResponseType = factory.ResponseType
	}
	if out.Handlers == nil {
		out.Handlers = factory.Handlers
	}
	if out.Logger == nil {
		out.Logger = factory.Logger
	}
	return out
}

var emptyHandlers = HandlerGroup{}

func (o *Options) doer() HTTPDoer {
	if o.Transport == nil {
		return http.DefaultClient
	}

	return o.Transport
}

func (o *Options) timeoutPolicy() timeout.Policy {
	if o.TimeoutPolicy != nil {
		return o.TimeoutPolicy
	}
	if o.Timeout > 0 {
		return timeout.Fixed(o.Timeout)
	}

	return timeout.None
}

func (o *Options) failurePolicy() failure.Decider {
	if o.FailurePolicy == nil {
		return failure.DefaultDecider
	}

	return o.FailurePolicy
}

func (o *Options) handlers() *HandlerGroup {
	if o.Handlers == nil {
		return &emptyHandlers
	}

	return o.Handlers
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}

	return o.Logger
}
