// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reactive

import (
	"encoding/json"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a 64-bit hash of the JSON encoding of v. Two values
// with equal JSON encodings have equal fingerprints, which makes the
// fingerprint usable as a cheap value-equality check for structured
// values that are not comparable with ==.
//
// An error is returned if v cannot be encoded as JSON.
func Fingerprint(v any) (uint64, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(b), nil
}

// Watch subscribes to src and calls fn only when the fingerprint of the
// new value differs from the fingerprint of the last value seen. The
// first fingerprint is taken from the value src holds when Watch is
// called. Values which cannot be fingerprinted always count as changed.
func Watch(src AnySource, fn func()) func() {
	if src == nil {
		panic("fetchx/reactive: nil source")
	}
	if fn == nil {
		panic("fetchx/reactive: nil watcher")
	}

	last, err := Fingerprint(src.Any())
	valid := err == nil
	var mu sync.Mutex
	return src.SubscribeAny(func() {
		fp, err := Fingerprint(src.Any())
		mu.Lock()
		changed := err != nil || !valid || fp != last
		last, valid = fp, err == nil
		mu.Unlock()
		if changed {
			fn()
		}
	})
}
