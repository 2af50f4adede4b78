// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package failure

import (
	"context"
	"errors"
	"syscall"

	"github.com/gogama/fetchx/request"
)

// A Category is the failure category of a particular error, as reported
// by function Categorize.
type Category int

const (
	// None indicates a nil error.
	None Category = iota
	// Timeout indicates the attempt was aborted because it ran past its
	// timeout, or the transport reported a timeout of its own.
	//
	// Function Categorize returns Timeout if the error or any of its
	// wrapped causes has a Timeout() function that reports true.
	Timeout
	// Abort indicates the attempt was cancelled, either explicitly or
	// because the caller's context was cancelled.
	Abort
	// Superseded indicates the attempt was replaced by a newer attempt
	// on the same handle.
	Superseded
	// Status indicates a response was received but rejected by the
	// failure policy.
	Status
	// Parse indicates a response body did not match the requested
	// response type.
	Parse
	// Config indicates the HTTP request could not be built from the
	// resolved request configuration.
	Config
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active TCP
	// connection, and corresponds to the POSIX error code ECONNRESET.
	ConnReset
	// Other indicates any other non-nil error, typically a transport
	// failure or an abort reason supplied by the caller.
	Other
)

var categoryNames = []string{
	"None",
	"Timeout",
	"Abort",
	"Superseded",
	"Status",
	"Parse",
	"Config",
	"ConnRefused",
	"ConnReset",
	"Other",
}

// String returns the name of the category.
func (cat Category) String() string {
	if cat < None || int(cat) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[cat]
}

// Categorize returns the failure category of the given error.
//
// In assessing the category, Categorize looks at wrapped cause errors
// contained within err, not just err itself. Supersession is checked
// first, then timeouts, so a timeout that cancelled a context is reported
// as Timeout and not as Abort.
func Categorize(err error) Category {
	if err == nil {
		return None
	}

	if errors.Is(err, ErrSuperseded) {
		return Superseded
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled) {
		return Abort
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return Status
	}

	var parseErr *request.ParseError
	if errors.As(err, &parseErr) {
		return Parse
	}

	var configErr *request.ConfigError
	if errors.As(err, &configErr) {
		return Config
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Other
}

type hasTimeout interface {
	Timeout() bool
}
