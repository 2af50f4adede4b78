// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// A ConfigError reports a request configuration which could not be
// turned into an HTTP request, for example a payload that cannot be
// encoded or a malformed method token.
type ConfigError struct {
	Op  string
	Err error
}

func (err *ConfigError) Error() string {
	return "fetchx/request: " + err.Op + ": " + err.Err.Error()
}

func (err *ConfigError) Unwrap() error {
	return err.Err
}

// A ParseError reports a response body which does not match the
// requested response type.
type ParseError struct {
	Type ResponseType
	Err  error
}

func (err *ParseError) Error() string {
	return "fetchx/request: cannot parse response as " + string(err.Type) + ": " + err.Err.Error()
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
