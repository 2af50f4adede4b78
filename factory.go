// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"github.com/gogama/fetchx/reactive"
	"github.com/gogama/fetchx/request"
)

// A Factory creates fetch handles which share a base URL, a default
// request configuration and default options. Its zero value is a valid
// factory equivalent to calling New directly.
//
// A Factory is safe for concurrent use by multiple goroutines provided
// its fields are not changed.
type Factory struct {
	// BaseURL is prepended to every relative URL. An absolute URL, or
	// any URL if BaseURL is empty, is used unchanged.
	BaseURL string
	// FetchOptions is the default request configuration. It is merged
	// with the configuration given to New with request.Merge.
	FetchOptions request.Config
	// Options are the default options. An option set in the options
	// given to New wins over the same option set here, except boolean
	// flags, which are enabled if either sets them. In particular a
	// Factory with Deferred set only creates deferred handles.
	Options Options
	// Combination selects how the interceptors in Options are combined
	// with the interceptors given to New.
	Combination Combination
}

// New creates a fetch handle for url, resolved against the base URL.
func (f *Factory) New(url string, cfg request.Config, opts Options) *Handle {
	return f.NewWithSource(reactive.Static(url), cfg, opts)
}

// NewWithSource creates a fetch handle whose URL is read from url and
// resolved against the base URL each time an attempt starts.
func (f *Factory) NewWithSource(url reactive.Source[string], cfg request.Config, opts Options) *Handle {
	if url == nil {
		panic("fetchx: nil url source")
	}

	base := f.BaseURL
	if base != "" {
		url = reactive.Map(url, func(u string) string {
			return request.JoinURL(base, u)
		})
	}

	return NewWithSource(url, request.Merge(f.FetchOptions, cfg), mergeOptions(f.Options, opts, f.Combination))
}
