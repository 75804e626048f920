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
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/log"
)

// projectMarkerFiles make a subdirectory "look like a project" for the
// one-level recursion into source trees.
var projectMarkerFiles = []string{"setup.py", "pyproject.toml"}

// fetchLocalDir enumerates every regular file in dir as a file:// link,
// and recurses exactly one level into any subdirectory that looks like a
// project.
func fetchLocalDir(dir string) ([]link.Link, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("datasource: read directory %q: %w", dir, err)
	}

	var links []link.Link
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		switch {
		case e.Type().IsRegular():
			links = append(links, fileLink(full))
		case e.IsDir() && looksLikeProject(full):
			sub, err := os.ReadDir(full)
			if err != nil {
				log.Warnf("datasource: skipping %q: %v", full, err)
				continue
			}
			for _, se := range sub {
				if se.Type().IsRegular() {
					links = append(links, fileLink(filepath.Join(full, se.Name())))
				}
			}
		}
	}
	return links, nil
}

// looksLikeProject reports whether dir contains a setup.py, a
// pyproject.toml, or an *.egg-info/*.dist-info entry.
func looksLikeProject(dir string) bool {
	for _, marker := range projectMarkerFiles {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".egg-info") || strings.HasSuffix(name, ".dist-info") {
			return true
		}
	}
	return false
}

// fileLink builds a file:// Link for an absolute local path.
func fileLink(path string) link.Link {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return link.New(u.String())
}
