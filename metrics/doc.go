// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package metrics records Prometheus metrics about the attempts made by
fetch handles.

A Collector is an event handler. Install it into the handler group of
the handles to observe:

	handlers := &fetchx.HandlerGroup{}
	metrics.NewCollector(prometheus.DefaultRegisterer).Install(handlers)
	h := fetchx.New(url, request.Config{}, fetchx.Options{Handlers: handlers})
*/
package metrics
