// Copyright 2021 The fetchx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"regexp"
	"strings"
)

var absoluteURL = regexp.MustCompile(`(?i)^([a-z][a-z\d+\-.]*:)?//`)

// IsAbsoluteURL reports whether s starts with a URI scheme followed by
// "//", or with a protocol-relative "//".
func IsAbsoluteURL(s string) bool {
	return absoluteURL.MatchString(s)
}

// JoinURL resolves target against base.
//
// If base is empty or target is absolute, target is returned unchanged.
// Otherwise base and target are joined with exactly one slash between
// them. JoinURL never fails: a target that cannot be joined meaningfully
// is passed through for the transport to accept or reject.
func JoinURL(base, target string) string {
	if base == "" || IsAbsoluteURL(target) {
		return target
	}

	baseSlash := strings.HasSuffix(base, "/")
	targetSlash := strings.HasPrefix(target, "/")
	switch {
	case !baseSlash && !targetSlash:
		return base + "/" + target
	case baseSlash && targetSlash:
		return base + target[1:]
	default:
		return base + target
	}
}
