// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAborted is the default abort reason, used when a handle is
	// aborted without an explicit reason.
	ErrAborted = errors.New("fetchx: aborted")

	// ErrSuperseded is the cancellation cause of an attempt that was
	// replaced by a newer attempt on the same handle. A superseded
	// attempt never changes handle state.
	ErrSuperseded = errors.New("fetchx: superseded by a newer attempt")

	// ErrTimeout is the abort reason used when an attempt exceeds its
	// timeout. Its Timeout method reports true.
	ErrTimeout error = timeoutError{}
)

type timeoutError struct{}

func (timeoutError) Error() string {
	return "fetchx: attempt timed out"
}

func (timeoutError) Timeout() bool {
	return true
}

// A StatusError reports an HTTP response which the failure policy
// rejected, for example a 404 under DefaultDecider.
type StatusError struct {
	// StatusCode is the HTTP response status code, e.g. 400.
	StatusCode int
	// Status is the HTTP response status line, e.g. "400 Bad Request".
	Status string
}

// Error returns the status text of the response status code, for
// example "Bad Request". If the code has no standard text, the status
// line is used.
func (err *StatusError) Error() string {
	if text := http.StatusText(err.StatusCode); text != "" {
		return text
	}
	if err.Status != "" {
		return err.Status
	}
	return fmt.Sprintf("HTTP status %d", err.StatusCode)
}
