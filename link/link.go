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

// Package link defines the immutable candidate-link descriptor shared by
// every link source (HTML index, JSON index, find-links page, local
// directory) and consumed by the evaluator and downloader.
package link

import (
	"net/url"
	"strings"
)

// Link is an immutable descriptor for one candidate distribution file, as
// exposed by an index, a find-links page, or a local directory.
type Link struct {
	// URL is the absolute URL of the artifact, fragment stripped of any
	// hash it carried (the hash itself lives in Hashes).
	URL string

	// ComesFrom is the URL of the page that exposed this link, empty for
	// links synthesized from a JSON index or a local directory.
	ComesFrom string

	// Hashes maps a lowercase algorithm name ("sha256", "md5", ...) to
	// its lowercase hex digest, as declared by the source. Empty if the
	// source made no hash claim.
	Hashes map[string]string

	// YankReason reports this release as yanked when non-nil. A present
	// but empty string means "yanked without a reason given"; a nil
	// pointer (YankReason == nil) means not yanked at all.
	YankReason *string

	// RequiresPython is the raw, undecoded PEP 440 specifier-set string
	// the source declared for this file, or empty if absent.
	RequiresPython string

	// Metadata is the PEP 658 side-channel metadata sub-link, nil if the
	// source declared none.
	Metadata *Metadata

	// IsWheel reports whether URL's basename has a .whl suffix.
	IsWheel bool

	// IsVCS reports whether URL uses a version-control "scheme+transport"
	// form, e.g. "git+https://...".
	IsVCS bool

	// IsFile reports whether URL uses the file:// scheme.
	IsFile bool

	// SourceIndex is the position (0-based) of the configured source
	// this link was collected from, in configuration order. It exists
	// solely so the evaluator can implement respect-source-order
	// ranking; it plays no part in Equal.
	SourceIndex int
}

// Metadata is the PEP 658 metadata sub-link: the same artifact URL with a
// ".metadata" suffix, carrying its own optional hash.
type Metadata struct {
	URL    string
	Hashes map[string]string
}

// New builds a Link from a raw absolute URL, splitting any "#alg=hex"
// fragment into Hashes; a hash carried in the fragment is authoritative.
func New(rawURL string) Link {
	u, hashes := splitHashFragment(rawURL)
	return Link{
		URL:     u,
		Hashes:  hashes,
		IsWheel: strings.HasSuffix(strings.ToLower(basename(u)), ".whl"),
		IsVCS:   isVCSURL(u),
		IsFile:  strings.HasPrefix(u, "file://"),
	}
}

// splitHashFragment extracts a "#sha256=hex" (or other algorithm) fragment
// from rawURL, returning the fragment-stripped URL and a hash map. A
// fragment that isn't of the form "alg=hex" is dropped (not every index
// link fragment is a hash).
func splitHashFragment(rawURL string) (string, map[string]string) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Fragment == "" {
		return rawURL, nil
	}
	alg, hex, ok := strings.Cut(u.Fragment, "=")
	if !ok || alg == "" || hex == "" {
		stripped := *u
		stripped.Fragment = ""
		return stripped.String(), nil
	}
	stripped := *u
	stripped.Fragment = ""
	return stripped.String(), map[string]string{strings.ToLower(alg): strings.ToLower(hex)}
}

func basename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		return u.Path[i+1:]
	}
	return u.Path
}

// Basename returns the final path segment of l.URL, typically the
// distribution filename.
func (l Link) Basename() string {
	return basename(l.URL)
}

var vcsPrefixes = []string{"git+", "hg+", "svn+", "bzr+"}

func isVCSURL(u string) bool {
	for _, p := range vcsPrefixes {
		if strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}

// Yanked reports whether the link is marked yanked at all.
func (l Link) Yanked() bool {
	return l.YankReason != nil
}

// NormalizedURL returns l.URL with its scheme and host lowercased and the
// default port stripped, for de-duplication purposes. The hash fragment
// (already split into Hashes) plays no part in this key.
func (l Link) NormalizedURL() string {
	u, err := url.Parse(l.URL)
	if err != nil {
		return l.URL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "":
		// no explicit port
	case u.Scheme == "http" && port == "80", u.Scheme == "https" && port == "443":
		// default port, drop it
	default:
		host += ":" + port
	}
	u.Host = host
	return u.String()
}

// Equal reports whether l and other refer to the same artifact: links
// compare equal by normalized URL.
func (l Link) Equal(other Link) bool {
	return l.NormalizedURL() == other.NormalizedURL()
}
