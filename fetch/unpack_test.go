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

package fetch_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unearth-go/unearth/fetch"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0o644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestUnpackZipExtractsFiles(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bar-1.0-py3-none-any.whl")
	writeZip(t, archive, map[string]string{
		"bar/__init__.py":            "print('hi')",
		"bar-1.0.dist-info/METADATA": "Name: bar\n",
	})

	target := t.TempDir()
	require.NoError(t, fetch.Unpack(archive, target))

	got, err := os.ReadFile(filepath.Join(target, "bar", "__init__.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", string(got))
}

func TestUnpackTarGzExtractsFiles(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bar-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"bar-1.0/setup.py": "# setup",
	})

	target := t.TempDir()
	require.NoError(t, fetch.Unpack(archive, target))

	got, err := os.ReadFile(filepath.Join(target, "bar-1.0", "setup.py"))
	require.NoError(t, err)
	assert.Equal(t, "# setup", string(got))
}

func TestUnpackRejectsPathTraversalInZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil-1.0-py3-none-any.whl")
	writeZip(t, archive, map[string]string{
		"../../etc/passwd": "pwned",
	})

	target := t.TempDir()
	err := fetch.Unpack(archive, target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetch.ErrUnpack))
}

func TestUnpackRejectsPathTraversalInTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"../../etc/passwd": "pwned",
	})

	target := t.TempDir()
	err := fetch.Unpack(archive, target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetch.ErrUnpack))
}

func TestUnpackUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bar-1.0.exe")
	require.NoError(t, os.WriteFile(archive, []byte("data"), 0o644))

	err := fetch.Unpack(archive, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetch.ErrUnsupportedFormat))
}
