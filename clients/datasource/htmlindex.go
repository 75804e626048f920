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
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/unearth-go/unearth/link"
)

// acceptIndex is the PEP 503/PEP 691 Accept header that prefers the
// JSON representation when the index offers content negotiation.
const acceptIndex = "application/vnd.pypi.simple.v1+json, application/vnd.pypi.simple.v1+html;q=0.9, text/html;q=0.8"

// fetchIndex GETs "{base}/{name}/" (the trailing slash is mandatory;
// omitting it has broken relative href resolution before) and
// dispatches to the JSON or HTML decoder based on the response's
// Content-Type.
func fetchIndex(ctx context.Context, session Session, base, name string) ([]link.Link, error) {
	indexURL, err := url.JoinPath(base, name)
	if err != nil {
		return nil, fmt.Errorf("datasource: index URL for %q: %w", name, err)
	}
	indexURL = strings.TrimSuffix(indexURL, "/") + "/"

	headers := http.Header{"Accept": {acceptIndex}}
	resp, err := session.Get(ctx, indexURL, headers)
	if err != nil {
		return nil, fmt.Errorf("datasource: GET %s: %w", indexURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("datasource: GET %s: unexpected status %d", indexURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "vnd.pypi.simple.v1+json"):
		return decodeJSONIndex(resp.Body)
	case strings.Contains(contentType, "vnd.pypi.simple.v1+html"), strings.Contains(contentType, "text/html"), contentType == "":
		return decodeHTMLIndex(resp.Body, resp.FinalURL)
	default:
		return nil, fmt.Errorf("datasource: %s: unsupported content type %q", indexURL, contentType)
	}
}

// decodeHTMLIndex parses a PEP 503 simple-index HTML page, extracting
// every <a href> and its PEP 503/658 data attributes, honoring a
// <base> tag for href resolution.
func decodeHTMLIndex(body io.Reader, pageURL string) ([]link.Link, error) {
	z := html.NewTokenizer(body)
	base := pageURL

	var links []link.Link
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "base":
				if href := attr(tok, "href"); href != "" {
					if resolved, err := resolveHref(base, href); err == nil {
						base = resolved
					}
				}
			case "a":
				href := attr(tok, "href")
				if href == "" {
					continue
				}
				resolved, err := resolveHref(base, href)
				if err != nil {
					continue // malformed individual link, silently dropped
				}
				l := link.New(resolved)
				l.ComesFrom = pageURL
				if rp := attr(tok, "data-requires-python"); rp != "" {
					l.RequiresPython = html.UnescapeString(rp)
				}
				if yanked, present := attrPresent(tok, "data-yanked"); present {
					reason := html.UnescapeString(yanked)
					l.YankReason = &reason
				}
				if meta := attr(tok, "data-dist-info-metadata"); meta != "" {
					l.Metadata = parseMetadataAttr(l.URL, meta)
				}
				links = append(links, l)
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrPresent(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func resolveHref(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	hrefURL, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(hrefURL).String(), nil
}

// parseMetadataAttr decodes a data-dist-info-metadata attribute into a
// PEP 658 metadata sub-link. The attribute is either "true" (hash
// unknown) or "alg=hex".
func parseMetadataAttr(artifactURL, value string) *link.Metadata {
	meta := &link.Metadata{URL: artifactURL + ".metadata"}
	if alg, hex, ok := strings.Cut(value, "="); ok && alg != "" && hex != "" {
		meta.Hashes = map[string]string{strings.ToLower(alg): strings.ToLower(hex)}
	}
	return meta
}
