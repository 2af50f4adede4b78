// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fetchx

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gogama/fetchx/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombination_String(t *testing.T) {
	assert.Equal(t, "Chain", Chain.String())
	assert.Equal(t, "Overwrite", Overwrite.String())
	assert.Equal(t, "Unknown", Combination(-1).String())
	assert.Equal(t, "Unknown", Combination(2).String())
}

func TestBeforeFetchContext_Cancel(t *testing.T) {
	c := &BeforeFetchContext{}
	assert.False(t, c.Cancelled())
	c.Cancel()
	assert.True(t, c.Cancelled())
	c.Cancel()
	assert.True(t, c.Cancelled())
}

func TestInterceptorExecute_NoHandle(t *testing.T) {
	assert.NotPanics(t, func() { (&AfterFetchContext{}).Execute() })
	assert.NotPanics(t, func() { (&FetchErrorContext{}).Execute() })
}

func TestCombine(t *testing.T) {
	var order []string
	before := func(name string, err error) BeforeFetchFunc {
		return func(_ context.Context, c *BeforeFetchContext) error {
			order = append(order, name)
			c.Init.Header.Add("X-Order", name)
			return err
		}
	}
	after := func(name string) AfterFetchFunc {
		return func(_ context.Context, c *AfterFetchContext) error {
			order = append(order, name)
			c.Data = name
			return nil
		}
	}
	onError := func(name string) FetchErrorFunc {
		return func(_ context.Context, c *FetchErrorContext) error {
			order = append(order, name)
			c.Error = errors.New(name)
			return nil
		}
	}
	newBCtx := func() *BeforeFetchContext {
		return &BeforeFetchContext{Init: &request.Init{Header: http.Header{}}}
	}

	t.Run("chain", func(t *testing.T) {
		order = nil
		out := Combine(
			Interceptors{BeforeFetch: before("factory", nil), AfterFetch: after("factory"), OnFetchError: onError("factory")},
			Interceptors{BeforeFetch: before("call", nil), AfterFetch: after("call"), OnFetchError: onError("call")},
			Chain)
		bctx := newBCtx()
		require.NoError(t, out.BeforeFetch(context.Background(), bctx))
		actx := &AfterFetchContext{}
		require.NoError(t, out.AfterFetch(context.Background(), actx))
		ectx := &FetchErrorContext{}
		require.NoError(t, out.OnFetchError(context.Background(), ectx))
		assert.Equal(t, []string{"factory", "call", "factory", "call", "factory", "call"}, order)
		assert.Equal(t, []string{"factory", "call"}, bctx.Init.Header["X-Order"])
		assert.Equal(t, "call", actx.Data)
		assert.EqualError(t, ectx.Error, "call")
	})
	t.Run("chain stops on error", func(t *testing.T) {
		order = nil
		boom := errors.New("boom")
		out := Combine(
			Interceptors{BeforeFetch: before("factory", boom)},
			Interceptors{BeforeFetch: before("call", nil)},
			Chain)
		assert.Same(t, boom, out.BeforeFetch(context.Background(), newBCtx()))
		assert.Equal(t, []string{"factory"}, order)
	})
	t.Run("chain with one side", func(t *testing.T) {
		order = nil
		out := Combine(
			Interceptors{AfterFetch: after("factory")},
			Interceptors{OnFetchError: onError("call")},
			Chain)
		assert.Nil(t, out.BeforeFetch)
		require.NotNil(t, out.AfterFetch)
		require.NotNil(t, out.OnFetchError)
		require.NoError(t, out.AfterFetch(context.Background(), &AfterFetchContext{}))
		require.NoError(t, out.OnFetchError(context.Background(), &FetchErrorContext{}))
		assert.Equal(t, []string{"factory", "call"}, order)
	})
	t.Run("overwrite", func(t *testing.T) {
		order = nil
		out := Combine(
			Interceptors{BeforeFetch: before("factory", nil), AfterFetch: after("factory"), OnFetchError: onError("factory")},
			Interceptors{AfterFetch: after("call")},
			Overwrite)
		require.NoError(t, out.BeforeFetch(context.Background(), newBCtx()))
		require.NoError(t, out.AfterFetch(context.Background(), &AfterFetchContext{}))
		require.NoError(t, out.OnFetchError(context.Background(), &FetchErrorContext{}))
		assert.Equal(t, []string{"factory", "call", "factory"}, order)
	})
	t.Run("empty", func(t *testing.T) {
		for _, c := range []Combination{Chain, Overwrite} {
			out := Combine(Interceptors{}, Interceptors{}, c)
			assert.Nil(t, out.BeforeFetch)
			assert.Nil(t, out.AfterFetch)
			assert.Nil(t, out.OnFetchError)
		}
	})
}
