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

	"golang.org/x/sync/errgroup"

	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/log"
)

// maxParallelFetches bounds how many sources the Collector queries
// concurrently.
const maxParallelFetches = 8

// Collector enumerates links for a project name across every configured
// Source, de-duplicating by normalized URL and preserving configuration
// order.
type Collector struct {
	Session Session
	Sources []Source
	cache   *RequestCache[string, []link.Link]
}

// NewCollector builds a Collector over sources, querying through session.
func NewCollector(session Session, sources []Source) *Collector {
	return &Collector{
		Session: session,
		Sources: sources,
		cache:   NewRequestCache[string, []link.Link](),
	}
}

// Collect fetches links for name from every source. Per-source failures
// are returned alongside any successfully collected links, never as a
// fatal error by themselves; promoting errs to a fatal error when
// len(errs) == len(sources) is the caller's job.
func (c *Collector) Collect(ctx context.Context, name string) (links []link.Link, errs []error) {
	type outcome struct {
		links []link.Link
		err   error
	}
	results := make([]outcome, len(c.Sources))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallelFetches)
	for i, src := range c.Sources {
		i, src := i, src
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return nil
			}
			defer func() { <-sem }()

			l, err := c.collectOne(gctx, src, name)
			results[i] = outcome{links: l, err: err}
			return nil // a source error never aborts its siblings
		})
	}
	_ = g.Wait() // g.Go never returns a non-nil error itself

	seen := make(map[string]bool)
	for i, r := range results {
		if r.err != nil {
			log.Warnf("datasource: source failed: %v", r.err)
			errs = append(errs, r.err)
			continue
		}
		for _, l := range r.links {
			key := l.NormalizedURL()
			if seen[key] {
				continue
			}
			seen[key] = true
			l.SourceIndex = i
			links = append(links, l)
		}
	}
	return links, errs
}

func (c *Collector) collectOne(ctx context.Context, src Source, name string) ([]link.Link, error) {
	cacheKey := fmt.Sprintf("%d|%s|%s", src.Kind, src.Location, name)
	return c.cache.Get(cacheKey, func() ([]link.Link, error) {
		switch src.Kind {
		case IndexSource:
			return fetchIndex(ctx, c.Session, src.Location, name)
		case FindLinksSource:
			return fetchFindLinks(ctx, c.Session, src.Location)
		case LocalDirSource:
			return fetchLocalDir(src.Location)
		default:
			return nil, fmt.Errorf("datasource: unknown source kind %d", src.Kind)
		}
	})
}
