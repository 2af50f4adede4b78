// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a HandlerGroup, and the group in
// Options, to extend a fetch handle with custom functionality such as
// metrics.
//
// Once an attempt is superseded by a newer attempt on the same handle,
// no further events fire for it.
type Event int

const (
	// AttemptStart identifies the event that occurs when an attempt
	// starts, before the request configuration is resolved and before
	// the BeforeFetch interceptor runs.
	//
	// When the handle fires AttemptStart, the execution's ID, Seq,
	// Timeouts, URL and Start fields are set.
	AttemptStart Event = iota
	// BeforeSend identifies the event that occurs after the HTTP
	// request has been built, immediately before it is handed to the
	// transport.
	//
	// When the handle fires BeforeSend, the execution's Init and Request
	// fields are set. BeforeSend handlers may modify the request, but
	// should clone reference fields (URL and Header) before changing
	// them.
	//
	// BeforeSend does not fire if the BeforeFetch interceptor cancelled
	// the attempt or failed, or if the request could not be built.
	BeforeSend
	// AfterAttemptTimeout identifies the event that occurs after an
	// attempt was aborted because it ran past the timeout set by the
	// timeout policy.
	//
	// When the handle fires AfterAttemptTimeout, the execution's error
	// field is set to failure.ErrTimeout. AfterAttemptTimeout always
	// fires before FetchError.
	AfterAttemptTimeout
	// FetchResponse identifies the event that occurs after an attempt
	// succeeded and the handle state has been updated with its data.
	FetchResponse
	// FetchError identifies the event that occurs after an attempt
	// failed, for any reason including abort, and the handle state has
	// been updated.
	//
	// When the handle fires FetchError, the execution's error field is
	// set and its response field is set if a response was received.
	FetchError
	// FetchFinally identifies the event that occurs after every attempt
	// that was not superseded, including attempts cancelled by the
	// BeforeFetch interceptor. It always fires last.
	//
	// When the handle fires FetchFinally, the execution's End field is
	// set.
	FetchFinally
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"AttemptStart",
	"BeforeSend",
	"AfterAttemptTimeout",
	"FetchResponse",
	"FetchError",
	"FetchFinally",
}

// Events returns a slice containing all events which can occur during a
// fetch attempt, in the order in which they would occur.
func Events() []Event {
	return []Event{
		AttemptStart,
		BeforeSend,
		AfterAttemptTimeout,
		FetchResponse,
		FetchError,
		FetchFinally,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
