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

package datasource

// Kind identifies which of the three source shapes a Source is.
type Kind int

// The three source shapes the collector enumerates links from.
const (
	// IndexSource is a PEP 503/691 index queried by project name.
	IndexSource Kind = iota
	// FindLinksSource is a flat, name-agnostic HTML page.
	FindLinksSource
	// LocalDirSource is a local filesystem directory.
	LocalDirSource
)

// Source is one configured origin of candidate links.
type Source struct {
	Kind Kind
	// Location is an index base URL, a find-links page URL, or a local
	// directory path, depending on Kind.
	Location string
}
