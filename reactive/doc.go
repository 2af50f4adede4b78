// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package reactive provides the small set of observable value containers
that fetchx uses to publish request state and to watch request inputs.

A Cell holds a value. Reading a cell is a plain method call; writing a
cell synchronously notifies every subscriber with the new value:

	url := reactive.NewCell("https://example.com/a")
	unsubscribe := url.Subscribe(func(s string) {
		log.Printf("url is now %s", s)
	})
	defer unsubscribe()
	url.Set("https://example.com/b")

There is no implicit dependency tracking. Anything that wants to react to
a change registers a subscriber explicitly and removes it when done.

Subscribers run on the writer's goroutine after the cell lock has been
released. A subscriber may read the cell, but it must not block waiting
on work that itself needs to write the same cell.
*/
package reactive
