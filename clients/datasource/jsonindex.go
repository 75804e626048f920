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

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/unearth-go/unearth/clients/internal/pypi"
	"github.com/unearth-go/unearth/link"
)

// decodeJSONIndex decodes a PEP 691 JSON simple-index response into
// links.
func decodeJSONIndex(body io.Reader) ([]link.Link, error) {
	var resp pypi.IndexResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("datasource: decode JSON index: %w", err)
	}

	links := make([]link.Link, 0, len(resp.Files))
	for _, f := range resp.Files {
		l := link.New(f.URL)
		l.Hashes = mergeHashes(l.Hashes, f.Hashes)
		l.RequiresPython = f.RequiresPython
		if f.Yanked.Value {
			reason := f.Yanked.Reason
			l.YankReason = &reason
		}
		if f.DistInfoMetadata.Present {
			l.Metadata = &link.Metadata{URL: l.URL + ".metadata", Hashes: f.DistInfoMetadata.Hashes}
		}
		links = append(links, l)
	}
	return links, nil
}

// mergeHashes combines a link's fragment-derived hashes with the JSON
// index's explicit hashes map, the latter winning on conflict since it is
// a dedicated field rather than a piggy-backed URL fragment.
func mergeHashes(fragment, explicit map[string]string) map[string]string {
	if len(explicit) == 0 {
		return fragment
	}
	merged := make(map[string]string, len(fragment)+len(explicit))
	for k, v := range fragment {
		merged[k] = v
	}
	for k, v := range explicit {
		merged[k] = v
	}
	return merged
}
