// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
)

const badBodyTypeMsg = "fetchx/request: invalid type (for body use nil, " +
	"string, []byte, io.Reader or io.ReadCloser)"

// A PayloadType selects how a request payload is encoded and which
// Content-Type is sent with it.
//
// Besides the named constants, any other non-empty value is treated as a
// custom content type: the payload is encoded as for PayloadUnknown and
// the PayloadType itself is sent as the Content-Type.
type PayloadType string

const (
	// PayloadJSON encodes the payload with encoding/json and sends
	// "application/json".
	PayloadJSON PayloadType = "json"
	// PayloadText sends a string or []byte payload as-is with
	// "text/plain".
	PayloadText PayloadType = "text"
	// PayloadFormData sends a url.Values payload URL-encoded, or a *Form
	// payload as multipart/form-data.
	PayloadFormData PayloadType = "formdata"
	// PayloadBlob sends an io.Reader, []byte or string payload as
	// "application/octet-stream".
	PayloadBlob PayloadType = "blob"
	// PayloadArrayBuffer is the same as PayloadBlob.
	PayloadArrayBuffer PayloadType = "arraybuffer"
	// PayloadUnknown sends string, []byte and io.Reader payloads as-is
	// and JSON-encodes anything else, without setting a Content-Type.
	PayloadUnknown PayloadType = "unknown"
)

// ContentType returns the Content-Type header value for t, or the empty
// string if no header should be set.
func (t PayloadType) ContentType() string {
	switch t {
	case PayloadJSON:
		return "application/json"
	case PayloadText:
		return "text/plain"
	case PayloadFormData:
		return "application/x-www-form-urlencoded"
	case PayloadBlob, PayloadArrayBuffer:
		return "application/octet-stream"
	case PayloadUnknown, "":
		return ""
	default:
		return string(t)
	}
}

// A Form is a multipart form payload.
type Form struct {
	// Fields holds the plain form fields.
	Fields url.Values
	// Files holds the file parts, in order.
	Files []FormFile
}

// A FormFile is one file part of a multipart form.
type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// DetectPayloadType returns the payload type for v by checking v against
// a closed set of supported Go types:
//
// • string gives PayloadText;
//
// • []byte gives PayloadArrayBuffer;
//
// • io.Reader gives PayloadBlob;
//
// • url.Values and *Form give PayloadFormData;
//
// • map[string]interface{}, []interface{}, json.RawMessage and any
// json.Marshaler give PayloadJSON;
//
// • any other value gives PayloadUnknown.
//
// To send another type, such as a struct, as JSON, set the payload type
// explicitly to PayloadJSON.
func DetectPayloadType(v interface{}) PayloadType {
	switch v.(type) {
	case string:
		return PayloadText
	case []byte:
		return PayloadArrayBuffer
	case url.Values, *Form:
		return PayloadFormData
	case map[string]interface{}, []interface{}, json.RawMessage, json.Marshaler:
		return PayloadJSON
	case io.Reader:
		return PayloadBlob
	default:
		return PayloadUnknown
	}
}

// EncodePayload encodes v according to t and returns the body together
// with the Content-Type that describes it (which may be empty).
func EncodePayload(v interface{}, t PayloadType) ([]byte, string, error) {
	switch t {
	case PayloadJSON:
		if raw, ok := v.(json.RawMessage); ok {
			return raw, t.ContentType(), nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return b, t.ContentType(), nil
	case PayloadFormData:
		switch x := v.(type) {
		case url.Values:
			return []byte(x.Encode()), t.ContentType(), nil
		case *Form:
			return x.encode()
		}
		return nil, "", errors.New("fetchx/request: formdata payload must be url.Values or *Form")
	case PayloadText, PayloadBlob, PayloadArrayBuffer:
		b, err := BodyBytes(v)
		if err != nil {
			return nil, "", err
		}
		return b, t.ContentType(), nil
	default:
		b, err := BodyBytes(v)
		if err != nil {
			b, err = json.Marshal(v)
		}
		if err != nil {
			return nil, "", err
		}
		return b, t.ContentType(), nil
	}
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range f.Fields {
		for _, v := range vs {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err = part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// BodyBytes converts a generic body parameter to a byte slice.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser. The conversion logic is:
//
// • If body is nil, a nil byte slice and no error is returned.
//
// • If body is a []byte, body itself and no error is returned.
//
// • If body is a string, the built-in conversion from string to byte
// slice, and no error, is returned.
//
// • If body is an io.Reader or io.ReadCloser, the result of reading
// the whole contents of the reader (and closing it if it implements
// Closer) is returned. If reading from the reader (and closing it if
// applicable) causes an error, the return value is a nil byte slice
// and the error.
//
// • If body is any other type than those listed above, a nil byte slice
// and an error is returned.
func BodyBytes(body interface{}) ([]byte, error) {
	switch x := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, err
		}
		err = x.Close()
		if err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(x))
	default:
		return nil, errors.New(badBodyTypeMsg)
	}
}
