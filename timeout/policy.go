// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/fetchx/request"
)

// A Policy defines a timeout policy which may be plugged into a fetch
// handle (fetchx.Options) to direct how to set the timeout for each
// attempt the handle makes.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the attempt described by e.
	// A return value of zero or less means the attempt has no timeout.
	//
	// Parameter e has been assigned its sequence number and its count of
	// preceding timed-out attempts, but no request has been sent yet.
	Timeout(e *request.Execution) time.Duration
}

// None is a built-in timeout policy which never times out. It is the
// default policy of a fetch handle.
var None Policy = Fixed(0)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout. The return value is a timeout policy that
// always returns the value d. A value of zero or less disables the
// timeout.
func Fixed(d time.Duration) Policy {
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the timeout value if
// the attempts immediately preceding it on the same handle timed out.
//
// Use Adaptive if the remote service often exhibits one-off slow
// response times, so that a refetch after a timeout should wait longer
// than a first attempt, without giving every attempt a long timeout.
//
// Parameter usual is the timeout for an attempt whose immediately
// preceding attempt did not time out.
//
// Parameter after contains timeout values for an attempt whose
// predecessors timed out. If one consecutive attempt timed out, after[0]
// is returned; if two, after[1], and so on. If more attempts have timed
// out in a row than after has elements, the last element of after is
// returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout, but if the
// previous attempt timed out it will use 1 second, and if the previous
// two or more attempts timed out it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	return policy(append(p, after...))
}

type policy []time.Duration

func (p policy) Timeout(e *request.Execution) time.Duration {
	i := e.Timeouts
	if i < 0 {
		i = 0
	}
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
