// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"

	"github.com/gogama/fetchx/reactive"
	"golang.org/x/net/http/httpguts"
)

const nilCtxMsg = "fetchx/request: nil context"

// A Config describes a logical HTTP request apart from its URL.
//
// The zero value is a GET request with no headers and no body.
type Config struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// Header contains the request header fields to be sent.
	Header http.Header

	// Payload is the request body before encoding. It may be nil (no
	// body), one of the types listed under DetectPayloadType, or a
	// reactive.AnySource whose current value is read each time the
	// request is resolved.
	Payload interface{}

	// PayloadType selects how Payload is encoded. If empty, the type is
	// detected from the payload value when the request is resolved.
	PayloadType PayloadType
}

// Clone returns a copy of c whose Header can be modified without
// affecting c. The payload itself is not copied.
func (c Config) Clone() Config {
	c.Header = cloneHeader(c.Header)
	return c
}

// AddCookie adds a cookie to the request. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (c *Config) AddCookie(ck *http.Cookie) {
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	ck2 := &http.Cookie{Name: ck.Name, Value: ck.Value}
	s := ck2.String()
	if h := c.Header.Get("Cookie"); h != "" {
		c.Header.Set("Cookie", h+"; "+s)
	} else {
		c.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the Authorization header to use HTTP Basic
// Authentication with the provided username and password.
func (c *Config) SetBasicAuth(username, password string) {
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	c.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// Merge combines two configs. Method, Payload and PayloadType are taken
// from overrides when set there, and from defaults otherwise. Headers
// are merged key by key: a header named in overrides replaces every
// value of the same header in defaults, comparing names
// case-insensitively.
//
// Neither argument is modified.
func Merge(defaults, overrides Config) Config {
	out := Config{
		Method:      defaults.Method,
		Header:      make(http.Header, len(defaults.Header)+len(overrides.Header)),
		Payload:     defaults.Payload,
		PayloadType: defaults.PayloadType,
	}
	if overrides.Method != "" {
		out.Method = overrides.Method
	}
	if overrides.Payload != nil {
		out.Payload = overrides.Payload
	}
	if overrides.PayloadType != "" {
		out.PayloadType = overrides.PayloadType
	}
	for k, vs := range defaults.Header {
		out.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	for k, vs := range overrides.Header {
		out.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return out
}

// An Init is a resolved request: the method, the headers and the
// encoded body that will be sent. Interceptors may modify an Init
// before the request is issued.
type Init struct {
	Method string
	Header http.Header
	Body   []byte
}

// Init resolves c into an Init.
//
// A reactive payload is read at this point. If PayloadType is empty the
// payload type is detected with DetectPayloadType. The body is encoded
// according to the payload type, and unless the Content-Type header is
// already set, it is set to the content type of the payload type.
//
// An error of type *ConfigError is returned if the payload cannot be
// encoded.
func (c Config) Init() (*Init, error) {
	method := c.Method
	if method == "" {
		method = "GET"
	}
	init := &Init{
		Method: method,
		Header: cloneHeader(c.Header),
	}
	if init.Header == nil {
		init.Header = make(http.Header)
	}

	payload := c.Payload
	if src, ok := payload.(reactive.AnySource); ok {
		payload = src.Any()
	}
	if payload == nil {
		return init, nil
	}

	t := c.PayloadType
	if t == "" {
		t = DetectPayloadType(payload)
	}
	body, contentType, err := EncodePayload(payload, t)
	if err != nil {
		return nil, &ConfigError{Op: "encode " + string(t) + " payload", Err: err}
	}
	init.Body = body
	if contentType != "" && init.Header.Get("Content-Type") == "" {
		init.Header.Set("Content-Type", contentType)
	}
	return init, nil
}

// NewHTTPRequest creates the HTTP request for one attempt to send init
// to url. The context of the request is set to ctx, which may not be
// nil. If init has no body, the request's Body is nil.
//
// An error of type *ConfigError is returned if the method is not a
// valid HTTP token, if a header field is malformed, or if url cannot be
// parsed.
func NewHTTPRequest(ctx context.Context, url string, init *Init) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	method := init.Method
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, &ConfigError{Op: "build request", Err: fmt.Errorf("invalid method %q", method)}
	}
	for k, vs := range init.Header {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, &ConfigError{Op: "build request", Err: fmt.Errorf("invalid header field name %q", k)}
		}
		for _, v := range vs {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, &ConfigError{Op: "build request", Err: fmt.Errorf("invalid header field value for %q", k)}
			}
		}
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, &ConfigError{Op: "build request", Err: err}
	}
	u.Host = removeEmptyPort(u.Host)

	r, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, &ConfigError{Op: "build request", Err: err}
	}
	r.Header = cloneHeader(init.Header)
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if len(init.Body) > 0 {
		body := init.Body
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		r.ContentLength = int64(len(body))
	}
	return r, nil
}

func cloneHeader(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	return h.Clone()
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

func validMethod(method string) bool {
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// hasPort is lifted verbatim from net/http/http.go
//
// Given a string of the form "host", "host:port", or "[ipv6::address]:port",
// return true if the string includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort is lifted verbatim from net/http/http.go
//
// removeEmptyPort strips the empty port in ":port" to ""
// as mandated by RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
