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

// Package finder ties the requirement parser, link collector, evaluator,
// and downloader/VCS drivers together into a single entry point, and
// carries its configuration and error taxonomy.
package finder

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/unearth-go/unearth/internal/names"
	"github.com/unearth-go/unearth/wheel"
)

// Config is the finder's full set of recognized options.
type Config struct {
	// IndexURLs are queried, in order, as PEP 503/691 simple indexes.
	IndexURLs []string
	// FindLinks are flat pages or local directories contributing
	// name-agnostic links (a URL containing "://" is treated as a
	// page; anything else is treated as a local directory).
	FindLinks []string
	// TrustedHosts disables TLS certificate verification for these
	// hosts.
	TrustedHosts []string

	// TargetPython overrides the running interpreter's tag
	// environment. Nil means "use wheel.Current()".
	TargetPython *wheel.Environment
	// IgnoreCompatibility admits every wheel tag, for debugging.
	IgnoreCompatibility bool

	// NoBinary and OnlyBinary restrict normalized project names (or
	// the ":all:" sentinel) to source-only or wheel-only
	// participation.
	NoBinary, OnlyBinary map[string]bool
	// PreferBinary makes wheels beat sdists even across versions.
	PreferBinary bool
	// AllowPrereleases admits pre-release versions unconditionally.
	AllowPrereleases bool
	// AllowYanked includes yanked candidates in non-pinned queries.
	AllowYanked bool
	// RespectSourceOrder ranks candidates by configured source order
	// ahead of version (yank status still comes first).
	RespectSourceOrder bool

	// Verbose records the caller's verbosity setting; it never changes
	// selection. The finder itself does not read it: whether warnings
	// are printed is decided by the installed logger (see
	// log.DefaultLogger.Verbose).
	Verbose bool
}

// DefaultConfig returns the configuration unearth uses absent any
// explicit override or config file: the public index, respecting
// source order, everything else off.
func DefaultConfig() Config {
	return Config{
		IndexURLs:          []string{"https://pypi.org/simple/"},
		RespectSourceOrder: true,
	}
}

// LoadConfig loads a Config from an INI file shaped like pip's own
// pip.conf: a [global] section holding scalar options, with
// index-url/find-links/trusted-host/no-binary/only-binary repeatable as
// shadowed keys.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return Config{}, fmt.Errorf("finder: load config %s: %w", path, err)
	}
	sec := raw.Section("global")

	if vs := sec.Key("index-url").ValueWithShadows(); len(vs) > 0 {
		cfg.IndexURLs = vs
	}
	cfg.FindLinks = sec.Key("find-links").ValueWithShadows()
	cfg.TrustedHosts = sec.Key("trusted-host").ValueWithShadows()

	cfg.IgnoreCompatibility = sec.Key("ignore-compatibility").MustBool(false)
	cfg.PreferBinary = sec.Key("prefer-binary").MustBool(false)
	cfg.AllowPrereleases = sec.Key("pre").MustBool(false)
	cfg.AllowYanked = sec.Key("allow-yanked").MustBool(false)
	cfg.RespectSourceOrder = sec.Key("respect-source-order").MustBool(true)
	cfg.Verbose = sec.Key("verbose").MustBool(false)

	cfg.NoBinary = normalizedSet(sec.Key("no-binary").ValueWithShadows())
	cfg.OnlyBinary = normalizedSet(sec.Key("only-binary").ValueWithShadows())

	return cfg, nil
}

func normalizedSet(values []string) map[string]bool {
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
