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

// Package names normalizes PyPI project names per PEP 503.
package names

import (
	"regexp"
	"strings"
)

var runFinder = regexp.MustCompile(`[-_.]+`)

// Normalize lowercases name and collapses runs of [-_.] into a single "-",
// per https://peps.python.org/pep-0503/#normalized-names.
//
// Normalization is idempotent: Normalize(Normalize(n)) == Normalize(n).
func Normalize(name string) string {
	return runFinder.ReplaceAllLiteralString(strings.ToLower(name), "-")
}

// Equal reports whether a and b name the same project once normalized.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
