// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package failure classifies the ways a fetch attempt can fail and decides
when an HTTP response counts as a failure.

Every failed attempt ends with an error that Categorize maps to exactly
one Category: a timeout, an explicit abort, supersession by a newer
attempt, a rejected HTTP status, a response body that could not be
parsed, a request that could not be built, or a transport problem.

A Decider decides whether a received HTTP response is a failure. The
default, DefaultDecider, fails any response whose status code is outside
the 2XX range. Compose deciders with DeciderFunc.And and DeciderFunc.Or:

	d := failure.NotOK.And(failure.StatusCode(304).Not())
*/
package failure
