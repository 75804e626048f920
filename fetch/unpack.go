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
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Unpack extracts the archive at path into targetDir, detecting its
// format by extension and rejecting any entry whose resolved path would
// escape targetDir.
func Unpack(path, targetDir string) error {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".whl"), strings.HasSuffix(lower, ".zip"):
		return unpackZip(path, targetDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return unpackTarWith(path, targetDir, func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) })
	case strings.HasSuffix(lower, ".tar.bz2"):
		return unpackTarWith(path, targetDir, func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil })
	case strings.HasSuffix(lower, ".tar.xz"):
		return unpackTarWith(path, targetDir, func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) })
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func unpackZip(path, targetDir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrUnpack, path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		dest, err := safeJoin(targetDir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %v", ErrUnpack, dest, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrUnpack, filepath.Dir(dest), err)
		}
		if err := extractZipEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", ErrUnpack, f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrUnpack, dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrUnpack, dest, err)
	}
	return nil
}

func unpackTarWith(path, targetDir string, decompress func(io.Reader) (io.Reader, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrUnpack, path, err)
	}
	defer f.Close()

	dr, err := decompress(f)
	if err != nil {
		return fmt.Errorf("%w: decompress %s: %v", ErrUnpack, path, err)
	}

	tr := tar.NewReader(dr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read tar entry: %v", ErrUnpack, err)
		}

		dest, err := safeJoin(targetDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %v", ErrUnpack, dest, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return fmt.Errorf("%w: mkdir %s: %v", ErrUnpack, filepath.Dir(dest), err)
			}
			out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return fmt.Errorf("%w: create %s: %v", ErrUnpack, dest, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("%w: write %s: %v", ErrUnpack, dest, err)
			}
			out.Close()
		default:
			// Symlinks, hardlinks, and device entries aren't expected in
			// wheel/sdist archives; skip rather than fail the unpack.
		}
	}
}

// safeJoin resolves name under targetDir, rejecting any entry whose
// cleaned path would land outside it (a zip-slip / tar-slip guard).
func safeJoin(targetDir, name string) (string, error) {
	dest := filepath.Join(targetDir, name)
	cleanTarget := filepath.Clean(targetDir) + string(os.PathSeparator)
	if !strings.HasPrefix(filepath.Clean(dest)+string(os.PathSeparator), cleanTarget) {
		return "", fmt.Errorf("%w: entry %q escapes target directory", ErrUnpack, name)
	}
	return dest, nil
}
