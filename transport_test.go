// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoerFunc(t *testing.T) {
	resp := newResponse(200, "")
	var got *http.Request
	f := DoerFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		return resp, nil
	})
	r, err := http.NewRequest("GET", "https://example.com", nil)
	require.NoError(t, err)
	resp2, err := f.Do(r)
	assert.NoError(t, err)
	assert.Same(t, resp, resp2)
	assert.Same(t, r, got)
}

func TestURLErrorWrap(t *testing.T) {
	t.Run("wrap", func(t *testing.T) {
		cause := errors.New("dial failed")
		err := urlErrorWrap("POST", "https://example.com/x", cause)
		var urlErr *url.Error
		require.ErrorAs(t, err, &urlErr)
		assert.Equal(t, "Post", urlErr.Op)
		assert.Equal(t, "https://example.com/x", urlErr.URL)
		assert.Same(t, cause, urlErr.Err)
	})
	t.Run("already wrapped", func(t *testing.T) {
		urlErr := &url.Error{Op: "Get", URL: "foo", Err: errors.New("bar")}
		assert.Same(t, urlErr, urlErrorWrap("PUT", "baz", urlErr))
	})
}

func TestURLErrorOp(t *testing.T) {
	assert.Equal(t, "Get", urlErrorOp(""))
	assert.Equal(t, "Get", urlErrorOp("GET"))
	assert.Equal(t, "G", urlErrorOp("G"))
	assert.Equal(t, "X", urlErrorOp("X"))
	assert.Equal(t, "Xyz", urlErrorOp("XYZ"))
	assert.Equal(t, "Put", urlErrorOp("PUT"))
}
