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
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/unearth-go/unearth/link"
)

// fetchFindLinks GETs a flat find-links page and returns every link on
// it, unfiltered by project name — name filtering happens in the
// evaluator.
func fetchFindLinks(ctx context.Context, session Session, pageURL string) ([]link.Link, error) {
	resp, err := session.Get(ctx, pageURL, http.Header{"Accept": {"text/html"}})
	if err != nil {
		return nil, fmt.Errorf("datasource: GET %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datasource: GET %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "json") {
		return decodeJSONIndex(resp.Body)
	}
	return decodeHTMLIndex(resp.Body, resp.FinalURL)
}
