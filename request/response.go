// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// maxFormMemory bounds the memory used when parsing a multipart form
// response. It matches the net/http default for ParseMultipartForm.
const maxFormMemory = 32 << 20

// A ResponseType selects how a response body is parsed into data.
type ResponseType string

const (
	// ResponseText parses the body as a string. It is the default.
	ResponseText ResponseType = "text"
	// ResponseJSON decodes the body with encoding/json into an
	// interface{} (maps, slices, float64, string, bool or nil).
	ResponseJSON ResponseType = "json"
	// ResponseBlob returns the body as a []byte.
	ResponseBlob ResponseType = "blob"
	// ResponseArrayBuffer returns the body as a []byte.
	ResponseArrayBuffer ResponseType = "arrayBuffer"
	// ResponseFormData parses a URL-encoded or multipart body into a
	// *Form.
	ResponseFormData ResponseType = "formData"
)

// Parse parses a response body according to t. The header is consulted
// only for ResponseFormData, to find the multipart boundary.
//
// Any parse failure is reported as a *ParseError and the returned data is
// nil.
func Parse(t ResponseType, body []byte, header http.Header) (interface{}, error) {
	switch t {
	case ResponseText, "":
		return string(body), nil
	case ResponseJSON:
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, &ParseError{Type: t, Err: errors.New("empty body")}
		}
		var v interface{}
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, &ParseError{Type: t, Err: err}
		}
		return v, nil
	case ResponseBlob, ResponseArrayBuffer:
		if body == nil {
			return []byte{}, nil
		}
		return body, nil
	case ResponseFormData:
		f, err := parseForm(body, header.Get("Content-Type"))
		if err != nil {
			return nil, &ParseError{Type: t, Err: err}
		}
		return f, nil
	default:
		return nil, &ParseError{Type: t, Err: errors.New("unsupported response type")}
	}
}

func parseForm(body []byte, contentType string) (*Form, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		return &Form{Fields: values}, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, errors.New("multipart body without boundary")
	}
	mf, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(maxFormMemory)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = mf.RemoveAll()
	}()

	f := &Form{Fields: url.Values(mf.Value)}
	for field, headers := range mf.File {
		for _, fh := range headers {
			data, err := readFormFile(fh)
			if err != nil {
				return nil, err
			}
			f.Files = append(f.Files, FormFile{Field: field, Filename: fh.Filename, Data: data})
		}
	}
	return f, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	r, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return BodyBytes(r)
}
