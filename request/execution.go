// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"
)

// An Execution represents the state of a single fetch attempt.
//
// When a fetch handle starts an attempt, an Execution is created for it.
// The Execution is updated as the attempt progresses (for example when
// the HTTP response becomes available) and is handed to the failure
// decider, the timeout policy and event handlers.
//
// Policies and event handlers may set values on an Execution using its
// SetValue method and read them back using the Value method. They should
// treat the exported fields as read-only.
type Execution struct {
	// ID uniquely identifies the attempt, for example in log output.
	ID string

	// Seq is the one-based sequence number of the attempt within its
	// handle. Every call to execute, whether explicit or triggered by a
	// reactive change, takes the next number.
	Seq int

	// Timeouts is the number of consecutive attempts on the same handle,
	// immediately before this one, which were aborted by their timeout.
	Timeouts int

	// URL is the resolved request URL. Interceptors may have changed it.
	URL string

	// Method is the request method configured on the handle when the
	// attempt started, GET if none was set. It is set before the
	// AttemptStart event. The BeforeFetch interceptor may send a
	// different method, which is found in Init and Request.
	Method string

	// Init is the resolved request which was sent, after interceptors
	// ran. It is nil until the interceptors have run.
	Init *Init

	// Request is the HTTP request sent for the attempt. It is nil until
	// the request has been built.
	Request *http.Request

	// Response is the HTTP response received, or nil if none was
	// received.
	Response *http.Response

	// Body is the complete response body. It is nil if no response was
	// received or the body could not be read.
	Body []byte

	// Err is the error which ended the attempt, or nil if the attempt
	// succeeded or was cancelled before any request was sent.
	Err error

	// Aborted indicates the attempt was aborted, by an explicit abort,
	// by its timeout, or by cancellation before the request was sent.
	Aborted bool

	// Start is the time the attempt started. It is assigned a non-zero
	// value when the attempt starts and is constant thereafter.
	Start time.Time

	// End is the time the attempt ended. It contains the zero value
	// until the attempt ends.
	End time.Time

	data context.Context
}

// StatusCode returns the status code of the HTTP response. If there is
// no HTTP response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Duration returns the duration of the attempt.
//
// If the attempt has not yet started, the duration is zero. If the
// attempt has ended, the duration returned is equal to End minus Start.
// Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the attempt has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the attempt has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// SetValue allows event handlers to store arbitrary data in the
// attempt.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different event handlers putting data into the
// same attempt.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this attempt for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
