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

// Package version implements PEP 440 version parsing, ordering, and
// specifier-set containment for the package-index finder.
package version

import (
	"fmt"

	"deps.dev/util/semver"
)

// Version is a single, total-ordered PEP 440 version.
type Version struct {
	raw string
	v   *semver.Version
}

// Parse parses str as a PEP 440 version.
func Parse(str string) (Version, error) {
	v, err := semver.PyPI.Parse(str)
	if err != nil {
		return Version{}, fmt.Errorf("version: invalid PEP 440 version %q: %w", str, err)
	}
	return Version{raw: str, v: v}, nil
}

// MustParse parses str and panics on failure. Intended for tests and
// literal constants, not for untrusted input.
func MustParse(str string) Version {
	v, err := Parse(str)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the canonical PEP 440 rendering of v.
func (v Version) String() string {
	if v.v == nil {
		return v.raw
	}
	return v.v.Canon(true)
}

// IsPrerelease reports whether v is a pre-release or dev-release.
func (v Version) IsPrerelease() bool {
	return v.v != nil && v.v.IsPrerelease()
}

// IsZero reports whether v is the zero Version (no version parsed; used
// for direct URL/VCS candidates which carry no version per the data
// model).
func (v Version) IsZero() bool {
	return v.v == nil
}

// Compare returns -1, 0, or +1 as v is less than, equal to, or greater
// than w, per PEP 440 ordering (release < pre < release-proper < post,
// dev suppressing whichever it qualifies, local segments breaking ties).
func (v Version) Compare(w Version) int {
	if v.v == nil || w.v == nil {
		// Only meaningful for two real versions; treat missing as equal to
		// avoid panicking on candidates without a version.
		if v.v == w.v {
			return 0
		}
		if v.v == nil {
			return -1
		}
		return 1
	}
	return v.v.Compare(w.v)
}

// Less reports whether v orders strictly before w.
func (v Version) Less(w Version) bool { return v.Compare(w) < 0 }

// Equal reports whether v and w compare as equal versions.
func (v Version) Equal(w Version) bool { return v.Compare(w) == 0 }
