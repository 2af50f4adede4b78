// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"net/http"
	"sync"

	"github.com/gogama/fetchx/failure"
	"github.com/gogama/fetchx/reactive"
	"github.com/gogama/fetchx/request"
	"github.com/gogama/fetchx/timeout"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A Handle is a reusable fetch of one URL. It holds the state of its
// most recent attempt in reactive cells, which observers may read or
// subscribe to, and it can be executed any number of times.
//
// Only the most recently started attempt may change the state of the
// handle: starting an attempt supersedes the attempt in flight, whose
// request is cancelled and whose result is discarded without firing
// any event or listener.
//
// A Handle is safe for concurrent use by multiple goroutines. The cells
// are written while the handle holds an internal lock, so a subscriber
// to one of the handle's cells must not call methods of the handle
// synchronously; it should start a goroutine instead.
type Handle struct {
	// Data holds the parsed response body of the last successful
	// attempt, as left by the AfterFetch interceptor.
	Data *reactive.Cell[interface{}]
	// Error holds the error of the last attempt, or nil.
	Error *reactive.Cell[error]
	// StatusCode holds the status code of the last response, or zero.
	StatusCode *reactive.Cell[int]
	// IsFetching is true while an attempt is in flight.
	IsFetching *reactive.Cell[bool]
	// IsFinished is true once the last attempt has settled.
	IsFinished *reactive.Cell[bool]
	// Aborted is true if the last attempt was aborted.
	Aborted *reactive.Cell[bool]
	// Response holds the last HTTP response, or nil.
	Response *reactive.Cell[*http.Response]
	// Context holds the last outgoing request, as left by the
	// BeforeFetch interceptor.
	Context *reactive.Cell[*BeforeFetchContext]

	url               reactive.Source[string]
	interceptors      Interceptors
	refetch           bool
	updateDataOnError bool
	initialData       interface{}
	doer              HTTPDoer
	timeoutPolicy     timeout.Policy
	decider           failure.Decider
	handlers          *HandlerGroup
	logger            *zap.Logger

	// mu guards the fields below it.
	mu           sync.Mutex
	cfg          request.Config
	responseType request.ResponseType
	current      *attempt
	seq          int
	timeouts     int
	lastURL      string
	unsubURL     func()
	unsubPayload func()
	onResponse   []func(*http.Response)
	onError      []func(error)
	onFinally    []func()

	// applyMu serializes changes of the state cells. When both locks are
	// needed, applyMu is acquired first.
	applyMu sync.Mutex
}

// New creates a fetch handle for url.
//
// Unless opts.Deferred is set, the first attempt is started before New
// returns and runs on its own goroutine. Setters chained onto the new
// handle still apply to that attempt: if it has already taken its
// configuration, it is restarted with the new one. Listeners are only
// called for attempts which settle after they are registered, so to
// observe the first attempt with certainty use opts.Handlers, the cells,
// or a deferred handle and Start.
func New(url string, cfg request.Config, opts Options) *Handle {
	return NewWithSource(reactive.Static(url), cfg, opts)
}

// NewWithSource creates a fetch handle whose URL is read from url each
// time an attempt starts. With opts.Refetch set, every change of the URL
// starts a new attempt.
func NewWithSource(url reactive.Source[string], cfg request.Config, opts Options) *Handle {
	if url == nil {
		panic("fetchx: nil url source")
	}

	h := &Handle{
		Data:       reactive.NewCell[interface{}](opts.InitialData),
		Error:      reactive.NewCell[error](nil),
		StatusCode: reactive.NewCell(0),
		IsFetching: reactive.NewCell(false),
		IsFinished: reactive.NewCell(false),
		Aborted:    reactive.NewCell(false),
		Response:   reactive.NewCell[*http.Response](nil),
		Context:    reactive.NewCell[*BeforeFetchContext](nil),

		url:               url,
		interceptors:      opts.Interceptors,
		refetch:           opts.Refetch,
		updateDataOnError: opts.UpdateDataOnError,
		initialData:       opts.InitialData,
		doer:              opts.doer(),
		timeoutPolicy:     opts.timeoutPolicy(),
		decider:           opts.failurePolicy(),
		handlers:          opts.handlers(),
		logger:            opts.logger(),

		cfg:          cfg.Clone(),
		responseType: opts.ResponseType,
	}

	if h.refetch {
		h.lastURL = url.Get()
		h.unsubURL = url.Subscribe(h.urlChanged)
		h.watchPayload(cfg.Payload)
	}

	if !opts.Deferred {
		h.start(context.Background(), true)
	}

	return h
}

// Execute starts a new attempt, superseding any attempt in flight, and
// waits until it settles. The attempt is cancelled if ctx is cancelled.
//
// The outcome of the attempt is reported through the handle's cells.
// If throwOnFailed is false, Execute returns a nil error even if the
// attempt failed. If throwOnFailed is true, the error which ended the
// attempt is returned; for an aborted attempt this is exactly the abort
// reason, and for an attempt superseded by a newer one it is
// failure.ErrSuperseded.
func (h *Handle) Execute(ctx context.Context, throwOnFailed bool) (*Handle, error) {
	a := h.begin(ctx, false)
	h.run(a)
	if !throwOnFailed {
		return h, nil
	}
	if a.superseded {
		return h, failure.ErrSuperseded
	}
	return h, a.err
}

// Start starts a new attempt, superseding any attempt in flight, and
// returns without waiting for it. The attempt is registered before
// Start returns, so an Abort or Wait which follows applies to it.
func (h *Handle) Start(ctx context.Context) *Handle {
	return h.start(ctx, false)
}

func (h *Handle) start(ctx context.Context, initial bool) *Handle {
	a := h.begin(ctx, initial)
	go h.run(a)
	return h
}

// Wait waits until the current attempt settles and returns the error
// which ended it, or nil if it succeeded. If the attempt is superseded
// while Wait is waiting, Wait waits for the newer attempt instead. If no
// attempt was ever started, Wait returns immediately.
//
// If ctx is done first, Wait returns ctx.Err() without affecting the
// attempt.
func (h *Handle) Wait(ctx context.Context) (*Handle, error) {
	for {
		h.mu.Lock()
		a := h.current
		h.mu.Unlock()
		if a == nil {
			return h, nil
		}

		select {
		case <-a.done:
		case <-ctx.Done():
			return h, ctx.Err()
		}

		if !a.superseded {
			return h, a.err
		}
	}
}

// Abort aborts the attempt in flight. The attempt fails with reason as
// its error, or with failure.ErrAborted if reason is nil, and the
// Aborted cell becomes true.
//
// Only the first call for an attempt has an effect. If no attempt is in
// flight, Abort only sets the Aborted cell.
func (h *Handle) Abort(reason error) {
	if reason == nil {
		reason = failure.ErrAborted
	}

	h.mu.Lock()
	a := h.current
	h.mu.Unlock()
	h.abort(a, reason, false)
}

// Close removes the subscriptions which the handle holds on its URL
// source and reactive payload. It does not abort an attempt in flight,
// and the handle can still be executed explicitly.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unsubURL != nil {
		h.unsubURL()
		h.unsubURL = nil
	}
	if h.unsubPayload != nil {
		h.unsubPayload()
		h.unsubPayload = nil
	}
	h.refetch = false
}

// Get sets the request method to GET and the payload to payload. The
// optional payloadType sets the payload type; if it is omitted, the
// type is detected when the request is sent.
//
// Like all setters, Get takes effect from the next attempt. An attempt
// already in flight keeps the configuration it started with, except the
// first attempt of an immediate handle (see New).
func (h *Handle) Get(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodGet, payload, payloadType)
}

// Post sets the request method to POST and the payload. See Get.
func (h *Handle) Post(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodPost, payload, payloadType)
}

// Put sets the request method to PUT and the payload. See Get.
func (h *Handle) Put(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodPut, payload, payloadType)
}

// Delete sets the request method to DELETE and the payload. See Get.
func (h *Handle) Delete(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodDelete, payload, payloadType)
}

// Patch sets the request method to PATCH and the payload. See Get.
func (h *Handle) Patch(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodPatch, payload, payloadType)
}

// Head sets the request method to HEAD and the payload. See Get.
func (h *Handle) Head(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodHead, payload, payloadType)
}

// Options sets the request method to OPTIONS and the payload. See Get.
func (h *Handle) Options(payload interface{}, payloadType ...request.PayloadType) *Handle {
	return h.setMethod(http.MethodOptions, payload, payloadType)
}

// JSON parses response bodies as JSON. See Get for when setters take
// effect.
func (h *Handle) JSON() *Handle {
	return h.setResponseType(request.ResponseJSON)
}

// Text parses response bodies as text.
func (h *Handle) Text() *Handle {
	return h.setResponseType(request.ResponseText)
}

// Blob returns response bodies as byte slices.
func (h *Handle) Blob() *Handle {
	return h.setResponseType(request.ResponseBlob)
}

// ArrayBuffer returns response bodies as byte slices.
func (h *Handle) ArrayBuffer() *Handle {
	return h.setResponseType(request.ResponseArrayBuffer)
}

// FormData parses response bodies as forms.
func (h *Handle) FormData() *Handle {
	return h.setResponseType(request.ResponseFormData)
}

// OnFetchResponse registers fn to be called with the response of every
// successful attempt, after the cells have been updated.
func (h *Handle) OnFetchResponse(fn func(*http.Response)) *Handle {
	if fn == nil {
		panic("fetchx: nil listener")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onResponse = append(h.onResponse, fn)
	return h
}

// OnFetchError registers fn to be called with the error of every failed
// attempt, after the cells have been updated. The error is the one which
// ended the attempt, before the OnFetchError interceptor ran.
func (h *Handle) OnFetchError(fn func(error)) *Handle {
	if fn == nil {
		panic("fetchx: nil listener")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onError = append(h.onError, fn)
	return h
}

// OnFetchFinally registers fn to be called after every attempt which
// was not superseded, after any response or error listener.
func (h *Handle) OnFetchFinally(fn func()) *Handle {
	if fn == nil {
		panic("fetchx: nil listener")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onFinally = append(h.onFinally, fn)
	return h
}

func (h *Handle) setMethod(method string, payload interface{}, payloadType []request.PayloadType) *Handle {
	h.mu.Lock()
	h.cfg.Method = method
	h.cfg.Payload = payload
	h.cfg.PayloadType = ""
	if len(payloadType) > 0 {
		h.cfg.PayloadType = payloadType[0]
	}
	if h.refetch {
		h.watchPayload(payload)
	}
	restart := h.restartInitial()
	h.mu.Unlock()

	if restart {
		h.start(context.Background(), true)
	}
	return h
}

func (h *Handle) setResponseType(t request.ResponseType) *Handle {
	h.mu.Lock()
	h.responseType = t
	restart := h.restartInitial()
	h.mu.Unlock()

	if restart {
		h.start(context.Background(), true)
	}
	return h
}

// restartInitial reports whether the current attempt is an initial
// attempt which has already bound a configuration that has since
// changed. It must be called with mu held.
func (h *Handle) restartInitial() bool {
	a := h.current
	return a != nil && a.initial && a.bound && !a.finished
}

// watchPayload must be called with mu held, or before the handle is
// shared.
func (h *Handle) watchPayload(payload interface{}) {
	if h.unsubPayload != nil {
		h.unsubPayload()
		h.unsubPayload = nil
	}
	if src, ok := payload.(reactive.AnySource); ok {
		h.unsubPayload = reactive.Watch(src, h.refetchNow)
	}
}

func (h *Handle) urlChanged(u string) {
	h.mu.Lock()
	changed := u != h.lastURL
	h.lastURL = u
	h.mu.Unlock()
	if changed {
		h.refetchNow()
	}
}

func (h *Handle) refetchNow() {
	h.Start(context.Background())
}

// begin registers a new attempt as the current attempt, supersedes the
// previous one, and resets the cells for the new attempt. Unless the
// attempt is initial, it binds the configuration immediately.
func (h *Handle) begin(ctx context.Context, initial bool) *attempt {
	if ctx == nil {
		panic("fetchx: nil context")
	}

	url := h.url.Get()

	h.mu.Lock()
	prev := h.current
	h.seq++
	e := &request.Execution{
		ID:       uuid.NewString(),
		Seq:      h.seq,
		Timeouts: h.timeouts,
		URL:      url,
	}
	a := newAttempt(ctx, e, initial)
	if !initial {
		a.bind(h.cfg, h.responseType)
	}
	h.current = a
	h.mu.Unlock()

	if prev != nil {
		prev.cancel(failure.ErrSuperseded)
	}

	h.applyMu.Lock()
	defer h.applyMu.Unlock()
	if h.isCurrent(a) {
		h.IsFetching.Set(true)
		h.IsFinished.Set(false)
		h.Error.Set(nil)
		h.StatusCode.Set(0)
		h.Aborted.Set(false)
	}
	return a
}

// abort aborts attempt a with reason. If a is not in flight the Aborted
// cell is set anyway, unless onlyInFlight is true.
func (h *Handle) abort(a *attempt, reason error, onlyInFlight bool) {
	h.applyMu.Lock()
	defer h.applyMu.Unlock()

	if a != nil && !h.isCurrent(a) {
		return
	}
	if a == nil || a.settled {
		if !onlyInFlight && !h.Aborted.Get() {
			h.Aborted.Set(true)
		}
		return
	}
	if a.aborted {
		return
	}

	a.aborted = true
	a.cancel(reason)
	h.Aborted.Set(true)
}

func (h *Handle) isCurrent(a *attempt) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current == a
}
