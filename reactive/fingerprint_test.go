// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(map[string]any{"num": 1})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"num": 1})
	require.NoError(t, err)
	c, err := Fingerprint(map[string]any{"num": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = Fingerprint(make(chan int))
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	t.Run("only on change", func(t *testing.T) {
		c := NewCell(map[string]int{"num": 1})
		var n int
		off := Watch(c, func() { n++ })
		c.Set(map[string]int{"num": 1})
		assert.Equal(t, 0, n)
		c.Update(func(m map[string]int) map[string]int {
			return map[string]int{"num": m["num"] + 1}
		})
		assert.Equal(t, 1, n)
		c.Set(map[string]int{"num": 2})
		assert.Equal(t, 1, n)
		off()
		c.Set(map[string]int{"num": 3})
		assert.Equal(t, 1, n)
	})
	t.Run("unencodable always changes", func(t *testing.T) {
		c := NewCell[any](make(chan int))
		var n int
		Watch(c, func() { n++ })
		c.Set(make(chan int))
		c.Set(1)
		assert.Equal(t, 2, n)
	})
	t.Run("bad args", func(t *testing.T) {
		assert.Panics(t, func() { Watch(nil, func() {}) })
		assert.Panics(t, func() { Watch(NewCell(1), nil) })
	})
}
