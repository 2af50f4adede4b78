// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"net/http"
	"net/url"
	"strings"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
//
// A fetch handle sends every request through an HTTPDoer, so tests and
// applications can substitute their own transport.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package. In
	// particular it must honor cancellation of the request context.
	Do(r *http.Request) (*http.Response, error)
}

// The DoerFunc type is an adapter to allow the use of ordinary
// functions as an HTTPDoer.
type DoerFunc func(r *http.Request) (*http.Response, error)

// Do calls f(r).
func (f DoerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

func urlErrorWrap(method, u string, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
