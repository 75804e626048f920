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

// Package candidate turns a stream of collected links into a ranked,
// filtered list of installable candidates.
package candidate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unearth-go/unearth/internal/names"
	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/version"
	"github.com/unearth-go/unearth/wheel"
)

// Candidate is one link that survived every filter in the evaluator
// pipeline, carrying the fields its sort key needs.
type Candidate struct {
	// Name is the normalized project name.
	Name string
	// Version is the PEP 440 version parsed from the filename.
	Version version.Version
	// Link is the underlying link this candidate was built from.
	Link link.Link
	// Binary reports whether this candidate is a wheel (as opposed to a
	// source distribution).
	Binary bool
	// TagPriority is the index into the target environment's compatible
	// tag list of this wheel's best-matching tag (lower is better); -1
	// for source distributions, where it plays no part in sorting.
	TagPriority int
	// Build is the wheel build-tag numeric prefix, or -1 if absent.
	Build int
	// Yanked reports whether the underlying release is yanked.
	Yanked bool
}

// RejectReason classifies why a link was excluded from a FindMatches
// result, so callers (and NoMatchesError) can report machine-readable
// diagnostics rather than only a string.
type RejectReason int

// The reasons a link can be rejected, in the order the evaluator applies
// its filters, except that a wheel is checked against no-binary before
// its wheel tags are matched.
const (
	RejectBadFilename RejectReason = iota
	RejectNameMismatch
	RejectBadVersion
	RejectVersionMismatch
	RejectWheelTagMismatch
	RejectOnlyBinary
	RejectNoBinary
	RejectPythonRequires
	RejectYankedExcluded
	RejectHashNotAllowed
)

func (r RejectReason) String() string {
	switch r {
	case RejectBadFilename:
		return "bad-filename"
	case RejectNameMismatch:
		return "name-mismatch"
	case RejectBadVersion:
		return "bad-version"
	case RejectVersionMismatch:
		return "version-mismatch"
	case RejectWheelTagMismatch:
		return "wheel-tag-mismatch"
	case RejectOnlyBinary:
		return "only-binary"
	case RejectNoBinary:
		return "no-binary"
	case RejectPythonRequires:
		return "python-requires"
	case RejectYankedExcluded:
		return "yanked"
	case RejectHashNotAllowed:
		return "hash-not-allowed"
	default:
		return "unknown"
	}
}

// Rejection records why one link did not become a Candidate.
type Rejection struct {
	Link   link.Link
	Reason RejectReason
	Detail string
}

// Options configures the evaluator's filtering and sorting policy.
type Options struct {
	// Environment is the target interpreter candidates are matched
	// against.
	Environment wheel.Environment
	// AllowPrereleases admits pre-release versions unconditionally.
	// Even when false, pre-releases are admitted when the specifier
	// set itself mentions one, or when every version-eligible
	// candidate happens to be a pre-release (the fall-through rule).
	AllowPrereleases bool
	// AllowYanked admits yanked releases in non-pinned queries. A
	// requirement that pins its target version exactly always admits
	// that version even when yanked.
	AllowYanked bool
	// NoBinary and OnlyBinary are sets of normalized project names (or
	// the ":all:" sentinel) restricted to source-only or wheel-only
	// participation. When a name appears in both, OnlyBinary wins.
	NoBinary, OnlyBinary map[string]bool
	// PreferBinary makes wheels beat source distributions even across
	// versions, promoting "binary-preferred" above "version" in the
	// sort key instead of only breaking a same-version tie.
	PreferBinary bool
	// RespectSourceOrder makes the configured source order the primary
	// sort axis after yank status: a candidate from an earlier source
	// beats one from a later source even when the later one has a higher
	// version.
	RespectSourceOrder bool
	// IgnoreCompatibility admits every wheel regardless of tag, for
	// debugging.
	IgnoreCompatibility bool
	// Hashes, when non-empty, is the caller's hash allow-list:
	// algorithm name to a list of acceptable lowercase hex digests. A
	// link whose declared hash for a listed algorithm doesn't match is
	// rejected outright; a link that declares no hash for any listed
	// algorithm falls through to post-download verification.
	Hashes map[string][]string
}

// FindMatches filters links against name and specifiers, returning every
// surviving candidate in best-first order, plus every rejection
// encountered along the way.
func FindMatches(name string, specifiers version.Set, links []link.Link, opts Options) ([]Candidate, []Rejection) {
	normName := names.Normalize(name)

	type parsedLink struct {
		l     link.Link
		fn    wheel.Filename
		ver   version.Version
		wheel bool
	}

	var parsed []parsedLink
	var rejections []Rejection

	for _, l := range links {
		base := l.Basename()
		var fn wheel.Filename
		var err error
		isWheel := l.IsWheel

		switch {
		case isWheel:
			fn, err = wheel.ParseWheel(base)
		case wheel.IsSdistFilename(base):
			var ver string
			ver, err = wheel.ParseSdist(normName, base)
			if err == nil {
				fn = wheel.Filename{Distribution: normName, Version: ver, Build: -1}
			}
		default:
			err = fmt.Errorf("%q is neither a wheel nor a recognized source archive", base)
		}
		if err != nil {
			rejections = append(rejections, Rejection{Link: l, Reason: RejectBadFilename, Detail: err.Error()})
			continue
		}
		if fn.Distribution != normName {
			rejections = append(rejections, Rejection{
				Link: l, Reason: RejectNameMismatch,
				Detail: fmt.Sprintf("filename name %q does not match requirement name %q", fn.Distribution, normName),
			})
			continue
		}
		v, err := version.Parse(fn.Version)
		if err != nil {
			rejections = append(rejections, Rejection{Link: l, Reason: RejectBadVersion, Detail: err.Error()})
			continue
		}
		parsed = append(parsed, parsedLink{l: l, fn: fn, ver: v, wheel: isWheel})
	}

	// Pre-release fall-through: if every candidate whose version would
	// otherwise satisfy the specifier set is itself a pre-release,
	// admit pre-releases for this query.
	admitPre := opts.AllowPrereleases || specifiers.AllowsPrereleases()
	if !admitPre {
		var anyEligible, anyStable bool
		for _, p := range parsed {
			if !specifiers.Contains(p.ver, true) {
				continue
			}
			anyEligible = true
			if !p.ver.IsPrerelease() {
				anyStable = true
			}
		}
		admitPre = anyEligible && !anyStable
	}

	pinned, isPinned := specifiers.PinnedVersion()
	wheelOnly := inSet(opts.OnlyBinary, normName)
	sdistOnly := !wheelOnly && inSet(opts.NoBinary, normName)

	var candidates []Candidate
	for _, p := range parsed {
		if !specifiers.Contains(p.ver, admitPre) {
			rejections = append(rejections, Rejection{
				Link: p.l, Reason: RejectVersionMismatch,
				Detail: fmt.Sprintf("%s does not satisfy %s", p.ver, specifiers),
			})
			continue
		}

		tagPriority := -1
		if p.wheel {
			if sdistOnly {
				rejections = append(rejections, Rejection{Link: p.l, Reason: RejectNoBinary, Detail: "wheels excluded by no-binary"})
				continue
			}
			if opts.IgnoreCompatibility {
				tagPriority = 0
			} else {
				prio, ok := opts.Environment.BestMatch(p.fn.Tags)
				if !ok {
					rejections = append(rejections, Rejection{Link: p.l, Reason: RejectWheelTagMismatch, Detail: "no compatible wheel tag"})
					continue
				}
				tagPriority = prio
			}
		} else if wheelOnly {
			rejections = append(rejections, Rejection{Link: p.l, Reason: RejectOnlyBinary, Detail: "source distributions excluded by only-binary"})
			continue
		}

		if p.l.RequiresPython != "" {
			reqSet, err := version.ParseSet(p.l.RequiresPython)
			if err != nil {
				rejections = append(rejections, Rejection{
					Link: p.l, Reason: RejectPythonRequires,
					Detail: fmt.Sprintf("invalid requires-python %q: %v", p.l.RequiresPython, err),
				})
				continue
			}
			target, _ := version.Parse(fmt.Sprintf("%d.%d", opts.Environment.Major, opts.Environment.Minor))
			if !reqSet.Contains(target, true) {
				rejections = append(rejections, Rejection{
					Link: p.l, Reason: RejectPythonRequires,
					Detail: fmt.Sprintf("requires-python %q excludes target Python %s", p.l.RequiresPython, target),
				})
				continue
			}
		}

		yanked := p.l.Yanked()
		if yanked && !opts.AllowYanked && !(isPinned && pinned.Equal(p.ver)) {
			rejections = append(rejections, Rejection{Link: p.l, Reason: RejectYankedExcluded, Detail: "release is yanked"})
			continue
		}

		if len(opts.Hashes) > 0 {
			if ok, detail := hashAllowed(p.l, opts.Hashes); !ok {
				rejections = append(rejections, Rejection{Link: p.l, Reason: RejectHashNotAllowed, Detail: detail})
				continue
			}
		}

		candidates = append(candidates, Candidate{
			Name:        normName,
			Version:     p.ver,
			Link:        p.l,
			Binary:      p.wheel,
			TagPriority: tagPriority,
			Build:       p.fn.Build,
			Yanked:      yanked,
		})
	}

	sortCandidates(candidates, opts)
	return candidates, rejections
}

// NoMatchesError reports that a query ran to completion but no candidate
// survived filtering, carrying every rejection for diagnostics.
type NoMatchesError struct {
	Name       string
	Rejections []Rejection
}

func (e *NoMatchesError) Error() string {
	return fmt.Sprintf("candidate: no matches for %q (%d candidates considered and rejected)", e.Name, len(e.Rejections))
}

// FindBestMatch returns the highest-ranked candidate plus the remaining
// applicable-but-not-selected candidates, or a *NoMatchesError when
// nothing survives filtering.
func FindBestMatch(name string, specifiers version.Set, links []link.Link, opts Options) (best *Candidate, rest []Candidate, err error) {
	matches, rejections := FindMatches(name, specifiers, links, opts)
	if len(matches) == 0 {
		return nil, nil, &NoMatchesError{Name: names.Normalize(name), Rejections: rejections}
	}
	head := matches[0]
	return &head, matches[1:], nil
}

func inSet(set map[string]bool, name string) bool {
	if len(set) == 0 {
		return false
	}
	return set[":all:"] || set[name]
}

// hashAllowed reports whether l's declared hashes are consistent with
// allowed. A link that declares no hash for any algorithm the caller
// listed is not rejected here — it falls through to post-download
// verification.
func hashAllowed(l link.Link, allowed map[string][]string) (ok bool, detail string) {
	sawOverlap := false
	for alg, hexes := range allowed {
		declared, present := l.Hashes[strings.ToLower(alg)]
		if !present {
			continue
		}
		sawOverlap = true
		for _, h := range hexes {
			if strings.EqualFold(h, declared) {
				return true, ""
			}
		}
	}
	if !sawOverlap {
		return true, ""
	}
	return false, fmt.Sprintf("declared hash for %s not present in allow-list", l.Basename())
}

// sortCandidates orders candidates best-first by
// (not-yanked, version, binary-preferred, wheel-tag-priority, build-tag),
// with PreferBinary promoting binary-preferred above version,
// RespectSourceOrder inserting configured source order right after
// not-yanked (ahead of version), and a final tie-break by link URL text,
// for determinism.
func sortCandidates(candidates []Candidate, opts Options) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return compare(candidates[i], candidates[j], opts) > 0
	})
}

// compare returns >0 if a ranks better than b, <0 if b ranks better, 0
// for a true tie (which SliceStable then leaves in input order).
func compare(a, b Candidate, opts Options) int {
	if a.Yanked != b.Yanked {
		if a.Yanked {
			return -1
		}
		return 1
	}

	if opts.RespectSourceOrder && a.Link.SourceIndex != b.Link.SourceIndex {
		if a.Link.SourceIndex < b.Link.SourceIndex {
			return 1
		}
		return -1
	}

	if opts.PreferBinary {
		if c := compareBinary(a, b); c != 0 {
			return c
		}
	}
	if c := a.Version.Compare(b.Version); c != 0 {
		return c
	}
	if !opts.PreferBinary {
		if c := compareBinary(a, b); c != 0 {
			return c
		}
	}

	if a.Binary && b.Binary && a.TagPriority != b.TagPriority {
		// Lower TagPriority index is a more specific, better match.
		if a.TagPriority < b.TagPriority {
			return 1
		}
		return -1
	}

	if a.Build != b.Build {
		if a.Build > b.Build {
			return 1
		}
		return -1
	}

	switch {
	case a.Link.URL > b.Link.URL:
		return 1
	case a.Link.URL < b.Link.URL:
		return -1
	default:
		return 0
	}
}

func compareBinary(a, b Candidate) int {
	if a.Binary == b.Binary {
		return 0
	}
	if a.Binary {
		return 1
	}
	return -1
}
