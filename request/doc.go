// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the request-side building blocks of a fetch:
Config (what to send), Init (the resolved, encoded request), Execution
(the record of a single fetch attempt) and the response parsing
functions.

A Config describes a logical request independently of its URL: the
method, the headers, and an optional payload. Configs from different
levels (factory defaults, call site) are combined with Merge, where the
call site wins and header names are compared case-insensitively:

	cfg := request.Merge(defaults, request.Config{
		Method:  "POST",
		Payload: map[string]any{"name": "gopher"},
	})
	init, err := cfg.Init()
	...

Init resolves the payload (reading reactive payload sources), detects
the payload type when none was given, encodes the body and sets the
Content-Type header. Payload type detection is an explicit check over a
closed set of Go types; see DetectPayloadType.

URLs are resolved separately with JoinURL, which joins a base URL and a
relative path and leaves absolute URLs untouched.

The second core type is Execution, which represents the state of one
fetch attempt. Execution is handed to failure deciders, timeout policies
and event handlers. You will typically not allocate Execution instances
yourself.
*/
package request
