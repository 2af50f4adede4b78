// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for setting the timeout of each fetch
// attempt made by a fetch handle. A generic interface for timeout
// policies is provided, Policy, along with policy generating functions
// and a built-in policy that never times out.
package timeout
