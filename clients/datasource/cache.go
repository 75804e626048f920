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

import "sync"

// RequestCache memoizes the result of a keyed, possibly expensive fetch
// function for the lifetime of one Collector/finder instance. It is
// attached to the finder, never to process-wide state: two finders with
// different configurations must not share results. Nothing here is
// persisted — a find invocation is pure beyond the injected session,
// so the cache dies with its finder.
type RequestCache[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// NewRequestCache returns an empty cache.
func NewRequestCache[K comparable, V any]() *RequestCache[K, V] {
	return &RequestCache[K, V]{m: make(map[K]V)}
}

// Get returns the cached value for key, calling fetch and caching its
// result on a miss. A fetch error is not cached.
func (c *RequestCache[K, V]) Get(key K, fetch func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.m[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := fetch()
	if err != nil {
		var zero V
		return zero, err
	}

	c.mu.Lock()
	c.m[key] = v
	c.mu.Unlock()
	return v, nil
}
