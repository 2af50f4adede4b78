// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gogama/fetchx/failure"
	"github.com/gogama/fetchx/request"
	"go.uber.org/zap"
)

// An attempt is one execution of a handle, from begin to settle.
type attempt struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	exec   *request.Execution
	// initial marks the attempt started by an immediate handle's
	// constructor, or a restart of it. An initial attempt binds the
	// handle's configuration when it starts running, not when it begins.
	initial bool
	done    chan struct{}

	// Guarded by Handle.applyMu.
	aborted bool
	settled bool

	// Guarded by Handle.mu. The configuration is only read by the
	// attempt's own goroutine once bound is true.
	bound        bool
	finished     bool
	cfg          request.Config
	responseType request.ResponseType

	// Written before done is closed.
	err        error
	superseded bool
}

func newAttempt(parent context.Context, e *request.Execution, initial bool) *attempt {
	ctx, cancel := context.WithCancelCause(parent)
	return &attempt{
		ctx:     ctx,
		cancel:  cancel,
		exec:    e,
		initial: initial,
		done:    make(chan struct{}),
	}
}

// bind must be called with Handle.mu held.
func (a *attempt) bind(cfg request.Config, t request.ResponseType) {
	a.cfg = cfg.Clone()
	a.responseType = t
	a.bound = true
	a.exec.Method = a.cfg.Method
	if a.exec.Method == "" {
		a.exec.Method = http.MethodGet
	}
}

// An outcome is the result of the attempt pipeline, before it is
// applied to the handle.
type outcome struct {
	data      interface{}
	resp      *http.Response
	bctx      *BeforeFetchContext
	cancelled bool
	failed    bool
	// cause is the error which ended the attempt.
	cause error
	// err is the error to store, as left by the OnFetchError
	// interceptor.
	err error
}

func (h *Handle) run(a *attempt) {
	defer close(a.done)
	defer a.cancel(nil)

	h.mu.Lock()
	if !a.bound {
		a.bind(h.cfg, h.responseType)
	}
	h.mu.Unlock()

	e := a.exec
	e.Start = time.Now()
	log := h.logger.With(zap.String("attempt", e.ID), zap.Int("seq", e.Seq))
	log.Debug("fetch attempt started", zap.String("url", e.URL))
	h.handlers.run(AttemptStart, e)

	if d := h.timeoutPolicy.Timeout(e); d > 0 {
		timer := time.AfterFunc(d, func() {
			h.abort(a, failure.ErrTimeout, true)
		})
		defer timer.Stop()
	}

	o := h.fetch(a)
	h.settle(a, o, log)
}

func (h *Handle) fetch(a *attempt) outcome {
	e := a.exec
	init, err := a.cfg.Init()
	if err != nil {
		return h.fail(a, outcome{cause: err})
	}

	bctx := &BeforeFetchContext{URL: e.URL, Init: init}
	if h.interceptors.BeforeFetch != nil {
		err = h.interceptors.BeforeFetch(a.ctx, bctx)
	}
	e.URL = bctx.URL
	e.Init = bctx.Init
	if bctx.Cancelled() {
		return outcome{bctx: bctx, cancelled: true}
	}
	if err == nil {
		err = context.Cause(a.ctx)
	}
	if err != nil {
		return h.fail(a, outcome{bctx: bctx, cause: err})
	}

	e.Request, err = request.NewHTTPRequest(a.ctx, bctx.URL, bctx.Init)
	if err != nil {
		return h.fail(a, outcome{bctx: bctx, cause: err})
	}
	h.handlers.run(BeforeSend, e)

	resp, err := h.doer.Do(e.Request)
	if err != nil {
		return h.fail(a, outcome{bctx: bctx, cause: h.transportErr(a, err)})
	}
	e.Response = resp
	e.Body, err = readBody(resp)
	if err != nil {
		return h.fail(a, outcome{bctx: bctx, resp: resp, cause: h.transportErr(a, err)})
	}

	if h.decider.Failed(e) {
		// The body of a failed response is offered to OnFetchError, but
		// a body which does not parse is not an error of its own.
		data, _ := request.Parse(a.responseType, e.Body, resp.Header)
		return h.fail(a, outcome{
			bctx:  bctx,
			resp:  resp,
			data:  data,
			cause: &failure.StatusError{StatusCode: resp.StatusCode, Status: resp.Status},
		})
	}

	data, err := request.Parse(a.responseType, e.Body, resp.Header)
	if err != nil {
		return h.fail(a, outcome{bctx: bctx, resp: resp, cause: err})
	}

	if h.interceptors.AfterFetch != nil {
		actx := &AfterFetchContext{Data: data, Response: resp, Context: bctx, h: h}
		err = h.interceptors.AfterFetch(a.ctx, actx)
		data = actx.Data
		if err != nil {
			return h.fail(a, outcome{bctx: bctx, resp: resp, data: data, cause: err})
		}
	}

	return outcome{bctx: bctx, resp: resp, data: data}
}

// fail routes o to the error path and runs the OnFetchError interceptor.
// The interceptor does not run for a superseded attempt, and it is not
// cancelled when the attempt is.
func (h *Handle) fail(a *attempt, o outcome) outcome {
	o.failed = true
	o.err = o.cause
	if h.interceptors.OnFetchError == nil || !h.isCurrent(a) {
		return o
	}

	ectx := &FetchErrorContext{
		Error:    o.cause,
		Data:     o.data,
		Response: o.resp,
		Context:  o.bctx,
		h:        h,
	}
	if err := h.interceptors.OnFetchError(context.WithoutCancel(a.ctx), ectx); err != nil {
		ectx.Error = err
	}
	o.err = ectx.Error
	o.data = ectx.Data
	return o
}

// transportErr returns the cancellation cause if the attempt was
// cancelled, and err wrapped in a *url.Error otherwise.
func (h *Handle) transportErr(a *attempt, err error) error {
	if cause := context.Cause(a.ctx); cause != nil {
		return cause
	}

	r := a.exec.Request
	return urlErrorWrap(r.Method, r.URL.String(), err)
}

// settle applies o to the handle if a is still the current attempt, then
// fires events and listeners outside the locks.
func (h *Handle) settle(a *attempt, o outcome, log *zap.Logger) {
	e := a.exec
	for {
		h.applyMu.Lock()
		if !h.isCurrent(a) {
			h.applyMu.Unlock()
			a.superseded = true
			log.Debug("fetch attempt superseded")
			return
		}
		if o.failed || o.cancelled {
			break
		}
		cause := context.Cause(a.ctx)
		if cause == nil {
			break
		}
		// Aborted after the response arrived.
		h.applyMu.Unlock()
		o = h.fail(a, outcome{bctx: o.bctx, resp: o.resp, cause: cause})
	}

	aborted := o.cancelled || a.aborted || a.ctx.Err() != nil
	e.End = time.Now()
	e.Err = o.cause
	e.Aborted = aborted
	a.settled = true
	a.err = o.cause

	if o.bctx != nil {
		h.Context.Set(o.bctx)
	}
	switch {
	case o.cancelled:
	case o.failed:
		h.Response.Set(o.resp)
		h.StatusCode.Set(statusCode(o.resp))
		h.Error.Set(o.err)
		if h.updateDataOnError {
			h.Data.Set(o.data)
		} else {
			h.Data.Set(h.initialData)
		}
	default:
		h.Response.Set(o.resp)
		h.StatusCode.Set(o.resp.StatusCode)
		h.Data.Set(o.data)
	}
	if aborted && !h.Aborted.Get() {
		h.Aborted.Set(true)
	}
	h.IsFetching.Set(false)
	h.IsFinished.Set(true)

	timedOut := errors.Is(o.cause, failure.ErrTimeout)
	h.mu.Lock()
	a.finished = true
	if timedOut {
		h.timeouts++
	} else {
		h.timeouts = 0
	}
	onResponse, onError, onFinally := h.onResponse, h.onError, h.onFinally
	h.mu.Unlock()
	h.applyMu.Unlock()

	switch {
	case o.cancelled:
		log.Debug("fetch cancelled before send")
	case o.failed:
		log.Info("fetch failed",
			zap.Error(o.cause),
			zap.Stringer("category", failure.Categorize(o.cause)),
			zap.Int("status", statusCode(o.resp)),
			zap.Bool("aborted", aborted),
			zap.Duration("duration", e.Duration()))
		if timedOut {
			h.handlers.run(AfterAttemptTimeout, e)
		}
		for _, fn := range onError {
			fn(o.cause)
		}
		h.handlers.run(FetchError, e)
	default:
		log.Debug("fetch succeeded",
			zap.Int("status", o.resp.StatusCode),
			zap.Duration("duration", e.Duration()))
		for _, fn := range onResponse {
			fn(o.resp)
		}
		h.handlers.run(FetchResponse, e)
	}

	for _, fn := range onFinally {
		fn()
	}
	h.handlers.run(FetchFinally, e)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}

func statusCode(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
