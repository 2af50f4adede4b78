// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"github.com/gogama/fetchx/request"
)

// A Decider decides whether the HTTP response received by an attempt is
// a failure. It is only consulted when a response was received.
//
// Implementations of Decider must be safe for concurrent use by
// multiple goroutines.
type Decider interface {
	Failed(e *request.Execution) bool
}

// The DeciderFunc type is an adapter to allow the use of ordinary
// functions as failure deciders. It implements the Decider interface,
// and also provides the logical composition methods And, Or, and Not.
type DeciderFunc func(e *request.Execution) bool

// DefaultDecider is the failure decider used when none is configured.
// It reports every response with a status code outside 200-299 as a
// failure.
var DefaultDecider Decider = NotOK

// NotOK is a decider that reports a failure if the response status code
// is outside the 2XX range.
var NotOK DeciderFunc = notOK

// Never is a decider that never reports a failure, so every response,
// whatever its status, is treated as a success.
var Never DeciderFunc = func(_ *request.Execution) bool { return false }

// Failed returns true if the response in e is a failure.
func (f DeciderFunc) Failed(e *request.Execution) bool {
	return f(e)
}

// And composes two deciders into a new decider which returns true if
// both sub-deciders return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// false.
func (f DeciderFunc) And(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) && g(e)
	}
}

// Or composes two deciders into a new decider which returns true if
// either of the two sub-deciders returns true, but false if they both
// return false.
//
// Short-circuit logic is used, so g will not be evaluated if f returns
// true.
func (f DeciderFunc) Or(g DeciderFunc) DeciderFunc {
	return func(e *request.Execution) bool {
		return f(e) || g(e)
	}
}

// Not returns a decider with the opposite result of f.
func (f DeciderFunc) Not() DeciderFunc {
	return func(e *request.Execution) bool {
		return !f(e)
	}
}

// StatusCode constructs a decider reporting a failure if the response
// status code is contained in the list ss.
func StatusCode(ss ...int) DeciderFunc {
	ss2 := make([]int, len(ss))
	copy(ss2, ss)
	return func(e *request.Execution) bool {
		for _, s := range ss2 {
			if e.StatusCode() == s {
				return true
			}
		}
		return false
	}
}

func notOK(e *request.Execution) bool {
	s := e.StatusCode()
	return s < 200 || s > 299
}
