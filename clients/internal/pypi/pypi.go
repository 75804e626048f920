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

// Package pypi defines the structures to parse a PEP 691 JSON simple-index
// response (https://peps.python.org/pep-0691/).
package pypi

import (
	"encoding/json"
	"fmt"
)

// IndexResponse defines the response of a PEP 691 "GET /simple/{name}/"
// request with Accept: application/vnd.pypi.simple.v1+json.
type IndexResponse struct {
	Name     string   `json:"name"`
	Files    []File   `json:"files"`
	Versions []string `json:"versions"`
}

// File holds the information of a single distribution file in an index
// response.
type File struct {
	Name             string            `json:"filename"`
	URL              string            `json:"url"`
	Hashes           map[string]string `json:"hashes"`
	RequiresPython   string            `json:"requires-python"`
	Yanked           Yanked            `json:"yanked"`
	DistInfoMetadata MetadataField     `json:"dist-info-metadata"`
}

// Yanked represents the "yanked" field in the index response: either
// false (not yanked), true (yanked, no reason given), or a string giving
// the yank reason.
type Yanked struct {
	// Value reports whether the file is yanked at all.
	Value bool
	// Reason is the yank reason string, empty if none was given (which
	// is itself meaningful: yanked without a reason is still yanked).
	Reason string
}

// UnmarshalJSON implements json.Unmarshaler for the bool-or-string shape
// PEP 691 gives "yanked".
func (y *Yanked) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		y.Value = b
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		y.Value = true
		y.Reason = s
		return nil
	}

	return fmt.Errorf("pypi: could not unmarshal %s as yanked", string(data))
}

// MetadataField represents the "dist-info-metadata"/"data-dist-info-metadata"
// PEP 658 field: either a bool (metadata exists, hash unknown) or a map
// of algorithm -> hex digest.
type MetadataField struct {
	Present bool
	Hashes  map[string]string
}

// UnmarshalJSON implements json.Unmarshaler for the bool-or-object shape
// PEP 658 gives "dist-info-metadata".
func (m *MetadataField) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		m.Present = b
		return nil
	}

	var hashes map[string]string
	if err := json.Unmarshal(data, &hashes); err == nil {
		m.Present = true
		m.Hashes = hashes
		return nil
	}

	return fmt.Errorf("pypi: could not unmarshal %s as dist-info-metadata", string(data))
}
