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

package candidate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unearth-go/unearth/candidate"
	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/version"
	"github.com/unearth-go/unearth/wheel"
)

func mustSet(t *testing.T, s string) version.Set {
	t.Helper()
	set, err := version.ParseSet(s)
	require.NoError(t, err)
	return set
}

func defaultOpts() candidate.Options {
	return candidate.Options{Environment: wheel.Current()}
}

func TestFindMatchesPrefersWheelOverSdistAtSameVersion(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0.tar.gz"),
		link.New("https://files.example.com/bar-1.0-py3-none-any.whl"),
	}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, links, defaultOpts())
	require.Empty(t, rejections)
	require.Len(t, matches, 2)
	assert.True(t, matches[0].Binary)
	assert.Equal(t, "bar-1.0-py3-none-any.whl", matches[0].Link.Basename())
}

func TestFindMatchesLaterVersionWins(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0.tar.gz"),
		link.New("https://files.example.com/bar-2.0.tar.gz"),
	}
	best, rest, err := candidate.FindBestMatch("bar", version.Set{}, links, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, "2.0", best.Version.String())
	require.Len(t, rest, 1)
}

func TestFindMatchesRejectsIncompatibleWheelTag(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0-cp27-cp27m-win32.whl"),
	}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, links, defaultOpts())
	assert.Empty(t, matches)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectWheelTagMismatch, rejections[0].Reason)
}

func TestFindMatchesExcludesPrereleaseByDefault(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0.tar.gz"),
		link.New("https://files.example.com/bar-2.0a1.tar.gz"),
	}
	best, _, err := candidate.FindBestMatch("bar", version.Set{}, links, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, "1.0", best.Version.String())
}

func TestFindMatchesPrereleaseFallThroughWhenOnlyPrereleasesExist(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-2.0a1.tar.gz"),
	}
	best, _, err := candidate.FindBestMatch("bar", version.Set{}, links, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, "2.0a1", best.Version.String())
}

func TestFindMatchesYankedSortsLastButIsRetained(t *testing.T) {
	yankReason := "broken build"
	yanked := link.New("https://files.example.com/baz-1.2.tar.gz")
	yanked.YankReason = &yankReason
	notYanked := link.New("https://files.example.com/baz-1.1.tar.gz")

	opts := defaultOpts()
	opts.AllowYanked = true // retained in the match list for inspection
	best, _, err := candidate.FindBestMatch("baz", version.Set{}, []link.Link{yanked, notYanked}, opts)
	require.NoError(t, err)
	assert.Equal(t, "1.1", best.Version.String())
}

func TestFindMatchesYankedIsSelectedWhenPinnedExactly(t *testing.T) {
	yankReason := "broken build"
	yanked := link.New("https://files.example.com/baz-1.2.tar.gz")
	yanked.YankReason = &yankReason
	notYanked := link.New("https://files.example.com/baz-1.1.tar.gz")

	best, _, err := candidate.FindBestMatch("baz", mustSet(t, "==1.2"), []link.Link{yanked, notYanked}, defaultOpts())
	require.NoError(t, err)
	assert.Equal(t, "1.2", best.Version.String())
	assert.True(t, best.Yanked)
}

func TestFindMatchesYankedExcludedByDefaultWhenNotPinned(t *testing.T) {
	yankReason := "broken build"
	yanked := link.New("https://files.example.com/baz-1.2.tar.gz")
	yanked.YankReason = &yankReason

	matches, rejections := candidate.FindMatches("baz", version.Set{}, []link.Link{yanked}, defaultOpts())
	assert.Empty(t, matches)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectYankedExcluded, rejections[0].Reason)
}

func TestFindMatchesOnlyBinaryExcludesSdist(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0.tar.gz"),
		link.New("https://files.example.com/bar-1.0-py3-none-any.whl"),
	}
	opts := defaultOpts()
	opts.OnlyBinary = map[string]bool{"bar": true}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, links, opts)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Binary)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectOnlyBinary, rejections[0].Reason)
}

func TestFindMatchesOnlyBinaryWinsOverNoBinary(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-1.0-py3-none-any.whl"),
	}
	opts := defaultOpts()
	opts.OnlyBinary = map[string]bool{"bar": true}
	opts.NoBinary = map[string]bool{"bar": true}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, links, opts)
	require.Len(t, matches, 1)
	assert.Empty(t, rejections)
}

func TestFindMatchesPreferBinaryBeatsLaterSdistVersion(t *testing.T) {
	links := []link.Link{
		link.New("https://files.example.com/bar-2.0.tar.gz"),
		link.New("https://files.example.com/bar-1.0-py3-none-any.whl"),
	}
	opts := defaultOpts()
	opts.PreferBinary = true
	best, _, err := candidate.FindBestMatch("bar", version.Set{}, links, opts)
	require.NoError(t, err)
	assert.True(t, best.Binary)
	assert.Equal(t, "1.0", best.Version.String())
}

func TestFindMatchesRespectsSourceOrderTieBreak(t *testing.T) {
	first := link.New("https://mirror-a.example.com/bar-1.0.tar.gz")
	first.SourceIndex = 0
	second := link.New("https://mirror-b.example.com/bar-1.0.tar.gz")
	second.SourceIndex = 1

	opts := defaultOpts()
	opts.RespectSourceOrder = true
	best, _, err := candidate.FindBestMatch("bar", version.Set{}, []link.Link{second, first}, opts)
	require.NoError(t, err)
	assert.Equal(t, first.URL, best.Link.URL)
}

func TestFindMatchesPythonRequiresExcludesIncompatibleTarget(t *testing.T) {
	l := link.New("https://files.example.com/bar-1.0-py3-none-any.whl")
	l.RequiresPython = ">=3.99"
	matches, rejections := candidate.FindMatches("bar", version.Set{}, []link.Link{l}, defaultOpts())
	assert.Empty(t, matches)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectPythonRequires, rejections[0].Reason)
}

func TestFindMatchesHashAllowList(t *testing.T) {
	l := link.New("https://files.example.com/bar-1.0.tar.gz#sha256=deadbeef")
	opts := defaultOpts()
	opts.Hashes = map[string][]string{"sha256": {"cafef00d"}}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, []link.Link{l}, opts)
	assert.Empty(t, matches)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectHashNotAllowed, rejections[0].Reason)
}

func TestFindMatchesHashAllowListMissingAlgorithmFallsThrough(t *testing.T) {
	l := link.New("https://files.example.com/bar-1.0.tar.gz#md5=deadbeef")
	opts := defaultOpts()
	opts.Hashes = map[string][]string{"sha256": {"cafef00d"}}
	matches, _ := candidate.FindMatches("bar", version.Set{}, []link.Link{l}, opts)
	assert.Len(t, matches, 1)
}

func TestFindBestMatchReturnsNoMatchesError(t *testing.T) {
	_, _, err := candidate.FindBestMatch("bar", version.Set{}, nil, defaultOpts())
	require.Error(t, err)
	var noMatches *candidate.NoMatchesError
	require.True(t, errors.As(err, &noMatches))
	assert.Equal(t, "bar", noMatches.Name)
}

func TestFindMatchesRejectsNameMismatch(t *testing.T) {
	// A wheel filename carries its own distribution name independent of
	// the query, so a mismatch surfaces as RejectNameMismatch rather
	// than a filename parse failure (unlike sdists, which are parsed
	// against the expected name directly).
	links := []link.Link{link.New("https://files.example.com/other-1.0-py3-none-any.whl")}
	matches, rejections := candidate.FindMatches("bar", version.Set{}, links, defaultOpts())
	assert.Empty(t, matches)
	require.Len(t, rejections, 1)
	assert.Equal(t, candidate.RejectNameMismatch, rejections[0].Reason)
}
