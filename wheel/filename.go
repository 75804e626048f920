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

// Package wheel parses wheel and sdist filenames and models
// (python, abi, platform) tag compatibility for a target interpreter.
package wheel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"deps.dev/util/pypi"

	"github.com/unearth-go/unearth/internal/names"
)

// Tag is a single (python, abi, platform) wheel compatibility tag.
type Tag struct {
	Python   string
	ABI      string
	Platform string
}

func (t Tag) String() string {
	return t.Python + "-" + t.ABI + "-" + t.Platform
}

// Filename is the parsed form of a wheel or sdist filename.
type Filename struct {
	// Distribution is the normalized project name encoded in the
	// filename.
	Distribution string
	// Version is the raw (unparsed) PEP 440 version string encoded in
	// the filename.
	Version string
	// Build is the optional build-tag numeric prefix, -1 if absent.
	Build int
	// Tags is the compatibility tag set a wheel filename expands to
	// (the cartesian product of its dot-separated python/abi/platform
	// compressed tag segments). Empty for sdists.
	Tags []Tag
}

var buildTagFinder = regexp.MustCompile(`^[0-9]+`)

// ParseWheel parses a wheel filename of the form
// "{distribution}-{version}(-{build})?-{python}-{abi}-{platform}.whl",
// per the binary distribution format specification.
func ParseWheel(filename string) (Filename, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".whl") {
		return Filename{}, fmt.Errorf("wheel: %q is not a .whl filename", filename)
	}

	// deps.dev/util/pypi already knows how to correctly un-escape the
	// distribution name and version (including the underscore-for-hyphen
	// substitution wheel filenames use), so defer to it for those two
	// fields rather than re-deriving the escaping rules here.
	info, err := pypi.ParseWheelName(filename)
	if err != nil {
		return Filename{}, fmt.Errorf("wheel: %q: %w", filename, err)
	}

	stem := strings.TrimSuffix(filename, filename[len(filename)-4:]) // strip ".whl"
	segments := strings.Split(stem, "-")
	if len(segments) < 5 {
		return Filename{}, fmt.Errorf("wheel: %q has too few dash-separated segments", filename)
	}

	// The last three segments are always python-abi-platform. A build
	// tag, if present, is the segment immediately before them and must
	// start with a digit.
	platformSeg := segments[len(segments)-1]
	abiSeg := segments[len(segments)-2]
	pythonSeg := segments[len(segments)-3]

	build := -1
	if nameVersionEnd := len(segments) - 3; nameVersionEnd > 2 {
		candidate := segments[nameVersionEnd-1]
		if buildTagFinder.MatchString(candidate) {
			if n, err := strconv.Atoi(buildTagFinder.FindString(candidate)); err == nil {
				build = n
			}
		}
	}

	return Filename{
		Distribution: names.Normalize(info.Name),
		Version:      info.Version,
		Build:        build,
		Tags:         expandTags(pythonSeg, abiSeg, platformSeg),
	}, nil
}

// expandTags expands the dot-compressed python/abi/platform segments of a
// wheel filename into the cartesian product of concrete tags, e.g.
// "cp38.cp39-abi3-manylinux1_x86_64" -> two tags sharing one abi/platform.
func expandTags(pythonSeg, abiSeg, platformSeg string) []Tag {
	pythons := strings.Split(pythonSeg, ".")
	abis := strings.Split(abiSeg, ".")
	platforms := strings.Split(platformSeg, ".")

	var tags []Tag
	for _, p := range pythons {
		for _, a := range abis {
			for _, pl := range platforms {
				tags = append(tags, Tag{Python: p, ABI: a, Platform: pl})
			}
		}
	}
	return tags
}

// ParseSdist parses a source-distribution archive filename
// ("{distribution}-{version}.{ext}") against the distribution name the
// caller expects to find (normally the requirement's normalized name),
// returning the raw version string encoded in the filename.
//
// deps.dev/util/pypi.SdistVersion needs the project name known up
// front rather than recovered from the filename, and it only
// understands .tar.gz archives; the remaining extensions peel the
// version off the final hyphen instead.
func ParseSdist(expectedName, filename string) (version string, err error) {
	if strings.HasSuffix(strings.ToLower(filename), ".tar.gz") {
		_, ver, err := pypi.SdistVersion(expectedName, filename)
		if err != nil {
			return "", fmt.Errorf("wheel: sdist %q: %w", filename, err)
		}
		return ver, nil
	}

	stem := trimSdistExt(filename)
	i := strings.LastIndex(stem, "-")
	if i <= 0 {
		return "", fmt.Errorf("wheel: sdist %q has no name-version separator", filename)
	}
	if names.Normalize(stem[:i]) != names.Normalize(expectedName) {
		return "", fmt.Errorf("wheel: sdist %q does not belong to %q", filename, expectedName)
	}
	return stem[i+1:], nil
}

var sdistExtensions = []string{".tar.gz", ".tgz", ".tar.bz2", ".tar.xz", ".zip"}

func trimSdistExt(filename string) string {
	lower := strings.ToLower(filename)
	for _, ext := range sdistExtensions {
		if strings.HasSuffix(lower, ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}

// IsSdistFilename reports whether filename has a recognized source
// distribution archive extension.
func IsSdistFilename(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range sdistExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
