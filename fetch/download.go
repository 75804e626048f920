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

package fetch

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/unearth-go/unearth/clients/datasource"
	"github.com/unearth-go/unearth/link"
)

func newHasher(alg string) (hash.Hash, bool) {
	switch strings.ToLower(alg) {
	case "md5":
		return md5.New(), true
	case "sha1":
		return sha1.New(), true
	case "sha256":
		return sha256.New(), true
	case "sha512":
		return sha512.New(), true
	default:
		return nil, false
	}
}

// Download fetches l into destDir, verifying its hash, and returns the
// final on-disk path. hashes is the caller's allow-list (algorithm ->
// acceptable lowercase hex digests); pass nil/empty to only verify
// against hashes the source itself declared on l.
//
// A file:// link is never copied: its existing path is returned as-is,
// preserving local wheels exactly as a find-links directory exposed
// them (an earlier incarnation of this contract copied them into
// destDir and broke callers that relied on the original path).
func Download(ctx context.Context, session datasource.Session, l link.Link, destDir string, hashes map[string][]string) (path string, err error) {
	if l.IsFile {
		return fileLinkPath(l)
	}

	resp, err := session.Get(ctx, l.URL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: get %s: %w", l.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: get %s: unexpected status %d", l.URL, resp.StatusCode)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: create %s: %w", destDir, err)
	}

	tmp, err := os.CreateTemp(destDir, ".unearth-"+uuid.NewString()+"-*")
	if err != nil {
		return "", fmt.Errorf("fetch: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	removeTmp := true
	defer func() {
		tmp.Close()
		if removeTmp {
			os.Remove(tmpPath)
		}
	}()

	algorithms := make(map[string]bool)
	for alg := range hashes {
		algorithms[strings.ToLower(alg)] = true
	}
	for alg := range l.Hashes {
		algorithms[strings.ToLower(alg)] = true
	}
	hashers := make(map[string]hash.Hash, len(algorithms))
	writers := []io.Writer{tmp}
	for alg := range algorithms {
		if h, ok := newHasher(alg); ok {
			hashers[alg] = h
			writers = append(writers, h)
		}
	}

	if _, err := io.Copy(io.MultiWriter(writers...), resp.Body); err != nil {
		return "", fmt.Errorf("fetch: download %s: %w", l.URL, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("fetch: close temp file: %w", err)
	}

	computed := make(map[string]string, len(hashers))
	for alg, h := range hashers {
		computed[alg] = hex.EncodeToString(h.Sum(nil))
	}

	if err := verifyHashes(l, hashes, computed); err != nil {
		return "", err
	}

	finalPath := filepath.Join(destDir, l.Basename())
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("fetch: rename into place: %w", err)
	}
	removeTmp = false
	return finalPath, nil
}

// verifyHashes checks the downloaded bytes: every hash the source
// declared on the link must match, and if the caller supplied an
// allow-list, at least one listed (algorithm, hex) pair must match.
func verifyHashes(l link.Link, allowed map[string][]string, computed map[string]string) error {
	for alg, declared := range l.Hashes {
		actual, ok := computed[strings.ToLower(alg)]
		if !ok {
			continue
		}
		if !strings.EqualFold(actual, declared) {
			return fmt.Errorf("%w: %s declared %s=%s, got %s", ErrHashMismatch, l.Basename(), alg, declared, actual)
		}
	}

	if len(allowed) == 0 {
		return nil
	}
	for alg, hexes := range allowed {
		actual, ok := computed[strings.ToLower(alg)]
		if !ok {
			continue
		}
		for _, h := range hexes {
			if strings.EqualFold(h, actual) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s matched no allow-listed hash", ErrHashMismatch, l.Basename())
}

func fileLinkPath(l link.Link) (string, error) {
	u, err := url.Parse(l.URL)
	if err != nil {
		return "", fmt.Errorf("fetch: invalid file URL %q: %w", l.URL, err)
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("fetch: local file %q: %w", p, err)
	}
	return p, nil
}
