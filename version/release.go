// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"regexp"
	"strconv"
	"strings"
)

// releaseFinder extracts just the release segment of a PEP 440 version
// string (the dotted run of integers after an optional epoch and "v"
// prefix). Adapted from the release-segment group of the PEP 440
// appendix regex, trimmed to what specifier-set wildcard/compatible-
// release matching needs: deps.dev/util/semver.Version does not expose
// an arbitrary-length release tuple through its public API, so this
// fills that one gap rather than re-implementing full version parsing.
var releaseFinder = regexp.MustCompile(`^\s*v?(?:[0-9]+!)?([0-9]+(?:\.[0-9]+)*)`)

// releaseSegments returns the release segment of raw as a slice of
// integers, e.g. "1.2.0a1" -> [1, 2, 0]. Returns nil if raw doesn't
// look like a PEP 440 version at all.
func releaseSegments(raw string) []int64 {
	m := releaseFinder.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ".")
	out := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil
		}
		out[i] = n
	}
	return out
}

// releaseHasPrefix reports whether release starts with prefix, comparing
// missing trailing components in prefix as implicit zeros (so "1.2"
// is a prefix of "1.2.0" and "1.2.1").
func releaseHasPrefix(release, prefix []int64) bool {
	for i, want := range prefix {
		var got int64
		if i < len(release) {
			got = release[i]
		}
		if got != want {
			return false
		}
	}
	return true
}
