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

// Package vcs shells out to git, mercurial, subversion, and bazaar
// clients to clone a VCS requirement at a resolved revision.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/unearth-go/unearth/requirement"
)

// ErrBackendMissing reports that the external client for a scheme isn't
// installed (or isn't on PATH).
var ErrBackendMissing = errors.New("vcs: backend client not found")

// ErrCommandFailed reports that a backend client exited non-zero; the
// wrapped error carries its stderr.
var ErrCommandFailed = errors.New("vcs: command failed")

// ErrUnsupportedScheme reports a VCSScheme this package doesn't drive.
var ErrUnsupportedScheme = errors.New("vcs: unsupported scheme")

// Checkout clones cloneURL at ref (branch, tag, revision, or "" for the
// default branch) into destDir using the client for scheme, and returns
// the resolved immutable revision id.
func Checkout(ctx context.Context, scheme requirement.VCSScheme, cloneURL, ref, destDir string) (revision string, err error) {
	switch scheme {
	case requirement.Git:
		return gitCheckout(ctx, cloneURL, ref, destDir)
	case requirement.Hg:
		return hgCheckout(ctx, cloneURL, ref, destDir)
	case requirement.Svn:
		return svnCheckout(ctx, cloneURL, ref, destDir)
	case requirement.Bzr:
		return bzrCheckout(ctx, cloneURL, ref, destDir)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

var fullSHA = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

func gitCheckout(ctx context.Context, cloneURL, ref, destDir string) (string, error) {
	switch {
	case ref == "":
		if _, err := run(ctx, "git", "clone", "--depth", "1", cloneURL, destDir); err != nil {
			return "", err
		}
	case fullSHA.MatchString(ref):
		// A shallow clone can't check out an arbitrary commit on most
		// git servers, so clone in full and then pin to the commit.
		if _, err := run(ctx, "git", "clone", cloneURL, destDir); err != nil {
			return "", err
		}
		if _, err := run(ctx, "git", "-C", destDir, "checkout", ref); err != nil {
			return "", err
		}
	default:
		if _, err := run(ctx, "git", "clone", "--depth", "1", "--branch", ref, cloneURL, destDir); err != nil {
			return "", err
		}
	}
	return run(ctx, "git", "-C", destDir, "rev-parse", "HEAD")
}

func hgCheckout(ctx context.Context, cloneURL, ref, destDir string) (string, error) {
	if _, err := run(ctx, "hg", "clone", cloneURL, destDir); err != nil {
		return "", err
	}
	if ref != "" {
		if _, err := run(ctx, "hg", "-R", destDir, "update", "-r", ref); err != nil {
			return "", err
		}
	}
	return run(ctx, "hg", "-R", destDir, "identify", "--id")
}

func svnCheckout(ctx context.Context, cloneURL, ref, destDir string) (string, error) {
	target := cloneURL
	if ref != "" {
		target = fmt.Sprintf("%s@%s", cloneURL, ref)
	} else {
		target = fmt.Sprintf("%s@HEAD", cloneURL)
	}
	if _, err := run(ctx, "svn", "checkout", target, destDir); err != nil {
		return "", err
	}
	return run(ctx, "svn", "info", "--show-item", "revision", destDir)
}

func bzrCheckout(ctx context.Context, cloneURL, ref, destDir string) (string, error) {
	args := []string{"branch"}
	if ref != "" {
		args = append(args, "-r", ref)
	}
	args = append(args, cloneURL, destDir)
	if _, err := run(ctx, "bzr", args...); err != nil {
		return "", err
	}
	return run(ctx, "bzr", "revno", destDir)
}

func run(ctx context.Context, name string, args ...string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBackendMissing, name)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s %s: %s", ErrCommandFailed, name, strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
