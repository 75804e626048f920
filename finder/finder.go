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

package finder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unearth-go/unearth/candidate"
	"github.com/unearth-go/unearth/clients/datasource"
	"github.com/unearth-go/unearth/fetch"
	"github.com/unearth-go/unearth/link"
	"github.com/unearth-go/unearth/log"
	"github.com/unearth-go/unearth/requirement"
	"github.com/unearth-go/unearth/vcs"
	"github.com/unearth-go/unearth/wheel"
)

// Finder is the top-level entry point: it parses a requirement string,
// collects links from every configured source, ranks candidates, and
// can fetch the winner.
type Finder struct {
	Config  Config
	Session datasource.Session

	collector *datasource.Collector
}

// New builds a Finder over cfg, querying through session. If session is
// nil, a datasource.DefaultSession is built from cfg.TrustedHosts.
func New(cfg Config, session datasource.Session) *Finder {
	if session == nil {
		session = datasource.NewDefaultSession(cfg.TrustedHosts, nil)
	}
	return &Finder{
		Config:    cfg,
		Session:   session,
		collector: datasource.NewCollector(session, buildSources(cfg)),
	}
}

func buildSources(cfg Config) []datasource.Source {
	var sources []datasource.Source
	for _, idx := range cfg.IndexURLs {
		sources = append(sources, datasource.Source{Kind: datasource.IndexSource, Location: idx})
	}
	for _, fl := range cfg.FindLinks {
		if strings.Contains(fl, "://") {
			sources = append(sources, datasource.Source{Kind: datasource.FindLinksSource, Location: fl})
		} else {
			sources = append(sources, datasource.Source{Kind: datasource.LocalDirSource, Location: fl})
		}
	}
	return sources
}

func (f *Finder) environment() wheel.Environment {
	if f.Config.TargetPython != nil {
		return *f.Config.TargetPython
	}
	return wheel.Current()
}

func (f *Finder) evaluatorOptions(hashes map[string][]string) candidate.Options {
	return candidate.Options{
		Environment:         f.environment(),
		AllowPrereleases:    f.Config.AllowPrereleases,
		AllowYanked:         f.Config.AllowYanked,
		NoBinary:            f.Config.NoBinary,
		OnlyBinary:          f.Config.OnlyBinary,
		PreferBinary:        f.Config.PreferBinary,
		RespectSourceOrder:  f.Config.RespectSourceOrder,
		IgnoreCompatibility: f.Config.IgnoreCompatibility,
		Hashes:              hashes,
	}
}

// FindBestMatch resolves reqString to its single best candidate plus the
// runner-up candidates. A URL or VCS requirement bypasses collection and
// evaluation entirely: it resolves to exactly one synthetic candidate
// describing the direct target.
func (f *Finder) FindBestMatch(ctx context.Context, reqString string, hashes map[string][]string) (*candidate.Candidate, []candidate.Candidate, error) {
	q, err := requirement.Parse(reqString)
	if err != nil {
		return nil, nil, err
	}

	switch q.Kind {
	case requirement.URL:
		return directCandidate(q), nil, nil
	case requirement.VCS:
		return vcsCandidate(q), nil, nil
	default:
		return f.findBestNamed(ctx, q, hashes)
	}
}

func (f *Finder) findBestNamed(ctx context.Context, q requirement.Query, hashes map[string][]string) (*candidate.Candidate, []candidate.Candidate, error) {
	links, err := f.collectLinks(ctx, q.Name)
	if err != nil {
		return nil, nil, err
	}

	best, rest, err := candidate.FindBestMatch(q.Name, q.Specifiers, links, f.evaluatorOptions(hashes))
	if err != nil {
		return nil, nil, err
	}
	return best, rest, nil
}

// FindMatches resolves reqString to the full best-first candidate list
// plus every per-link rejection. A URL or VCS requirement resolves to
// its single synthetic candidate with no rejections.
func (f *Finder) FindMatches(ctx context.Context, reqString string, hashes map[string][]string) ([]candidate.Candidate, []candidate.Rejection, error) {
	q, err := requirement.Parse(reqString)
	if err != nil {
		return nil, nil, err
	}

	switch q.Kind {
	case requirement.URL:
		return []candidate.Candidate{*directCandidate(q)}, nil, nil
	case requirement.VCS:
		return []candidate.Candidate{*vcsCandidate(q)}, nil, nil
	}

	links, err := f.collectLinks(ctx, q.Name)
	if err != nil {
		return nil, nil, err
	}
	matches, rejections := candidate.FindMatches(q.Name, q.Specifiers, links, f.evaluatorOptions(hashes))
	return matches, rejections, nil
}

// collectLinks gathers links for name across every configured source,
// downgrading per-source failures to warnings unless every source
// failed.
func (f *Finder) collectLinks(ctx context.Context, name string) ([]link.Link, error) {
	links, errs := f.collector.Collect(ctx, name)
	if len(errs) > 0 && len(errs) == len(f.collector.Sources) {
		return nil, fmt.Errorf("%w: every source failed for %q: %v", ErrNetworkError, name, errs[0])
	}
	for _, e := range errs {
		log.Warnf("finder: source error for %q: %v", name, e)
	}
	return links, nil
}

func directCandidate(q requirement.Query) *candidate.Candidate {
	l := link.New(q.URLValue)
	if len(q.Hashes) > 0 {
		l.Hashes = q.Hashes
	}
	return &candidate.Candidate{Name: q.Name, Link: l, Binary: l.IsWheel, TagPriority: -1, Build: -1}
}

func vcsCandidate(q requirement.Query) *candidate.Candidate {
	u := fmt.Sprintf("%s+%s", q.VCSScheme, q.CloneURL)
	if q.Ref != "" {
		u = fmt.Sprintf("%s@%s", u, q.Ref)
	}
	l := link.New(u)
	return &candidate.Candidate{Name: q.Name, Link: l, TagPriority: -1, Build: -1}
}

// Download fetches c's artifact into destDir (for VCS candidates,
// checking out into destDir instead) and returns the resulting path and
// (for VCS candidates) the resolved revision.
func (f *Finder) Download(ctx context.Context, c *candidate.Candidate, destDir string) (path, revision string, err error) {
	if c.Link.IsVCS {
		scheme, cloneURL, ref, err := parseVCSLink(c.Link.URL)
		if err != nil {
			return "", "", err
		}
		revision, err = vcs.Checkout(ctx, scheme, cloneURL, ref, destDir)
		if err != nil {
			return "", "", err
		}
		return destDir, revision, nil
	}

	path, err = fetch.Download(ctx, f.Session, c.Link, destDir, nil)
	return path, "", err
}

// DownloadAndUnpack downloads c's artifact to downloadDir (a fresh temp
// directory when empty), then unpacks an archive into location, copies a
// wheel into location untouched (installing it is the caller's job), or
// checks a VCS candidate out directly into location.
func (f *Finder) DownloadAndUnpack(ctx context.Context, c *candidate.Candidate, location, downloadDir string) (revision string, err error) {
	if c.Link.IsVCS {
		scheme, cloneURL, ref, err := parseVCSLink(c.Link.URL)
		if err != nil {
			return "", err
		}
		return vcs.Checkout(ctx, scheme, cloneURL, ref, location)
	}

	if downloadDir == "" {
		downloadDir, err = os.MkdirTemp("", "unearth-download-*")
		if err != nil {
			return "", fmt.Errorf("finder: create temp download dir: %w", err)
		}
		defer os.RemoveAll(downloadDir)
	}

	path, err := fetch.Download(ctx, f.Session, c.Link, downloadDir, nil)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(location, 0o755); err != nil {
		return "", fmt.Errorf("finder: create %s: %w", location, err)
	}

	if c.Link.IsWheel {
		return "", copyFile(path, filepath.Join(location, filepath.Base(path)))
	}
	return "", fetch.Unpack(path, location)
}

// parseVCSLink recovers the (scheme, clone URL, ref) triple from a
// vcsCandidate's synthesized "scheme+url@ref" link, by routing back
// through requirement.Parse so the same authority-aware "@" peeling
// rule governs both directions.
func parseVCSLink(u string) (scheme requirement.VCSScheme, cloneURL, ref string, err error) {
	q, err := requirement.Parse("_ @ " + u)
	if err != nil || q.Kind != requirement.VCS {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u)
	}
	return q.VCSScheme, q.CloneURL, q.Ref, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("finder: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("finder: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return fmt.Errorf("finder: copy %s to %s: %w", src, dst, err)
	}
	return nil
}
