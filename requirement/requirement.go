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

// Package requirement parses PEP-508-style requirement strings — named,
// direct URL, and version-control variants — into the typed Query the
// rest of the finder operates on.
package requirement

import (
	"errors"
	"fmt"
	"strings"

	"deps.dev/util/pypi"

	"github.com/unearth-go/unearth/internal/names"
	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/version"
)

// ErrInvalid is the sentinel for a syntactically malformed requirement
// string.
var ErrInvalid = errors.New("requirement: invalid requirement string")

// Kind tags which variant a Query is.
type Kind int

// The three requirement variants.
const (
	Named Kind = iota
	URL
	VCS
)

func (k Kind) String() string {
	switch k {
	case Named:
		return "named"
	case URL:
		return "url"
	case VCS:
		return "vcs"
	default:
		return "unknown"
	}
}

// VCSScheme identifies which version-control backend a VCS Query uses.
type VCSScheme string

// The four supported backends.
const (
	Git VCSScheme = "git"
	Hg  VCSScheme = "hg"
	Svn VCSScheme = "svn"
	Bzr VCSScheme = "bzr"
)

// Query is the parsed, tagged-variant form of a requirement string.
type Query struct {
	Kind Kind

	// Name is the PEP 503 normalized project name, set for every kind.
	Name string

	// Specifiers is the parsed specifier set, set only for Named.
	Specifiers version.Set

	// Extras and Marker are carried through unparsed for the caller's
	// benefit; they play no part in which candidates are found.
	Extras string
	Marker string

	// URLValue is the direct-download URL, set for Kind == URL.
	URLValue string
	// Hashes are any hash(es) embedded in the URL's fragment, set for
	// Kind == URL when present.
	Hashes map[string]string

	// VCS fields, set for Kind == VCS.
	VCSScheme VCSScheme
	CloneURL  string
	Ref       string // branch, tag, or revision id; empty means "default branch"
}

// Parse parses s into a Query.
func Parse(s string) (Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, fmt.Errorf("%w: empty requirement", ErrInvalid)
	}

	if namePart, urlPart, ok := strings.Cut(s, " @ "); ok {
		return parseURLOrVCS(namePart, strings.TrimSpace(urlPart))
	}

	return parseNamed(s)
}

var vcsSchemes = map[string]VCSScheme{
	"git": Git,
	"hg":  Hg,
	"svn": Svn,
	"bzr": Bzr,
}

func parseURLOrVCS(namePart, urlPart string) (Query, error) {
	name := strings.TrimSpace(namePart)
	if name == "" || urlPart == "" {
		return Query{}, fmt.Errorf("%w: %q: missing name or URL around \" @ \"", ErrInvalid, namePart+" @ "+urlPart)
	}
	normName := names.Normalize(name)

	for prefix, scheme := range vcsSchemes {
		if rest, ok := strings.CutPrefix(urlPart, prefix+"+"); ok {
			cloneURL, ref := peelRef(rest)
			if cloneURL == "" {
				return Query{}, fmt.Errorf("%w: %q: empty VCS clone URL", ErrInvalid, urlPart)
			}
			return Query{
				Kind:      VCS,
				Name:      normName,
				VCSScheme: scheme,
				CloneURL:  cloneURL,
				Ref:       ref,
			}, nil
		}
	}

	l := link.New(urlPart)
	return Query{
		Kind:     URL,
		Name:     normName,
		URLValue: l.URL,
		Hashes:   l.Hashes,
	}, nil
}

// peelRef strips a trailing "@ref" from a VCS URL. The last "@" after
// the scheme authority separates the ref; an "@" inside the
// "user:pass@host" portion right after "scheme://" belongs to
// userinfo, not a ref.
func peelRef(vcsURL string) (cloneURL, ref string) {
	authorityEnd := 0
	if i := strings.Index(vcsURL, "://"); i >= 0 {
		rest := vcsURL[i+3:]
		if slash := strings.IndexByte(rest, '/'); slash >= 0 {
			authorityEnd = i + 3 + slash
		} else {
			authorityEnd = len(vcsURL)
		}
	}

	last := strings.LastIndexByte(vcsURL, '@')
	if last < authorityEnd {
		return vcsURL, ""
	}
	return vcsURL[:last], vcsURL[last+1:]
}

func parseNamed(s string) (Query, error) {
	d, err := pypi.ParseDependency(s)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %w", ErrInvalid, s, err)
	}

	specs, err := version.ParseSet(d.Constraint)
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %w", ErrInvalid, s, err)
	}

	return Query{
		Kind:       Named,
		Name:       names.Normalize(d.Name),
		Specifiers: specs,
		Extras:     d.Extras,
		Marker:     d.Environment,
	}, nil
}
