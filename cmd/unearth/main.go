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

// Command unearth resolves a single PyPI-style requirement string to its
// best-matching artifact link, and optionally downloads it.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/unearth-go/unearth/clients/datasource"
	"github.com/unearth-go/unearth/finder"
	"github.com/unearth-go/unearth/internal/names"
	"github.com/unearth-go/unearth/log"
)

// stringList accumulates a repeatable flag's values in the order given
// on the command line, e.g. --index-url URL --index-url URL2.
type stringList []string

func (l *stringList) String() string { return fmt.Sprint([]string(*l)) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// linkOutput is the JSON document printed for a successful match.
type linkOutput struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Link    struct {
		URL            string  `json:"url"`
		ComesFrom      string  `json:"comes_from,omitempty"`
		YankReason     *string `json:"yank_reason,omitempty"`
		RequiresPython string  `json:"requires_python,omitempty"`
		Metadata       *string `json:"metadata,omitempty"`
	} `json:"link"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("unearth", flag.ContinueOnError)

	var (
		indexURLs    stringList
		findLinks    stringList
		noBinary     stringList
		onlyBinary   stringList
		trustedHosts stringList
		preferBinary bool
		allowPre     bool
		verbose      bool
		downloadDir  string
	)
	fs.Var(&indexURLs, "index-url", "simple index to query (repeatable)")
	fs.Var(&findLinks, "find-links", "flat page or local directory of links (repeatable)")
	fs.Var(&noBinary, "no-binary", "normalized project name restricted to source distributions (repeatable)")
	fs.Var(&onlyBinary, "only-binary", "normalized project name restricted to wheels (repeatable)")
	fs.Var(&trustedHosts, "trusted-host", "host to skip TLS verification for (repeatable)")
	fs.BoolVar(&preferBinary, "prefer-binary", false, "prefer wheels over source distributions even across versions")
	fs.BoolVar(&allowPre, "pre", false, "admit pre-release versions")
	fs.BoolVar(&verbose, "verbose", false, "log warnings for suppressed per-source failures")
	fs.StringVar(&downloadDir, "download", "", "directory to download the matched artifact into")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: unearth <requirement> [flags]")
		return 2
	}
	reqString := fs.Arg(0)

	if verbose {
		log.SetLogger(&log.DefaultLogger{Verbose: true})
	}

	cfg := finder.DefaultConfig()
	if len(indexURLs) > 0 {
		cfg.IndexURLs = indexURLs
	}
	cfg.FindLinks = findLinks
	cfg.TrustedHosts = trustedHosts
	cfg.PreferBinary = preferBinary
	cfg.AllowPrereleases = allowPre
	cfg.Verbose = verbose
	cfg.NoBinary = toSet(noBinary)
	cfg.OnlyBinary = toSet(onlyBinary)

	f := finder.New(cfg, datasource.NewDefaultSession(cfg.TrustedHosts, nil))

	ctx := context.Background()
	best, _, err := f.FindBestMatch(ctx, reqString, nil)
	if err != nil {
		var noMatches *finder.NoMatchesError
		if errors.As(err, &noMatches) {
			fmt.Fprintf(os.Stderr, "no match: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if downloadDir != "" {
		if _, _, err := f.Download(ctx, best, downloadDir); err != nil {
			fmt.Fprintf(os.Stderr, "error: download failed: %v\n", err)
			return 2
		}
	}

	out := linkOutput{Name: best.Name}
	if !best.Version.IsZero() {
		out.Version = best.Version.String()
	}
	out.Link.URL = best.Link.URL
	out.Link.ComesFrom = best.Link.ComesFrom
	out.Link.YankReason = best.Link.YankReason
	out.Link.RequiresPython = best.Link.RequiresPython
	if best.Link.Metadata != nil {
		out.Link.Metadata = &best.Link.Metadata.URL
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	return 0
}

func toSet(values stringList) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v == ":all:" {
			set[v] = true
			continue
		}
		set[names.Normalize(v)] = true
	}
	return set
}
