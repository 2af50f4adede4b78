// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package fetchx provides reactive HTTP fetch handles: reusable requests
whose state (data, error, status code, progress flags) is held in
observable cells, with interceptors, abort and refetch support.

Create a Handle with New. Unless it is deferred, the handle starts its
first attempt immediately.

	h := fetchx.New("https://www.example.com/users", request.Config{},
		fetchx.Options{ResponseType: request.ResponseJSON})
	_, err := h.Wait(ctx)
	...
	users := h.Data.Get()

A deferred handle is configured with the chainable setters and executed
explicitly. Execute blocks until the attempt settles; with throwOnFailed
set it returns the error which ended the attempt.

	h := fetchx.New(url, request.Config{}, fetchx.Options{Deferred: true})
	_, err := h.Post(map[string]interface{}{"name": "Gon"}).JSON().
		Execute(ctx, true)

Starting an attempt supersedes the attempt in flight. Only the most
recently started attempt may change the state of the handle.

To observe state changes, subscribe to the cells, or register listeners:

	h.IsFetching.Subscribe(func(busy bool) { ... })
	h.OnFetchError(func(err error) { ... })

With Options.Refetch set, the handle starts a new attempt whenever its URL
source (see NewWithSource and package reactive) or a reactive payload
changes.

Interceptors run at fixed points of every attempt and may modify the
request, cancel it, or rewrite the data or error:

	opts := fetchx.Options{
		Interceptors: fetchx.Interceptors{
			BeforeFetch: func(ctx context.Context, c *fetchx.BeforeFetchContext) error {
				c.Init.Header.Set("Authorization", "Bearer "+token)
				return nil
			},
		},
	}

Use a Factory to share a base URL, a default request configuration and
default options between handles.

For control over how the handle sends HTTP requests and receives HTTP
responses, set a custom HTTPDoer as Options.Transport. Attempt timeouts
are set with Options.Timeout or a timeout.Policy, and the decision of
which responses are failures with a failure.Decider.

To hook into the fine-grained details of every attempt, install a
handler into the appropriate handler chain:

	handlers := &fetchx.HandlerGroup{}
	handlers.PushBack(fetchx.BeforeSend, fetchx.HandlerFunc(
		func(_ fetchx.Event, e *request.Execution) {
			log.Printf("Attempt %d to %s", e.Seq, e.Request.URL.String())
		}),
	)

Package metrics provides a handler which records Prometheus metrics.
*/
package fetchx
