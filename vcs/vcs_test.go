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

package vcs_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unearth-go/unearth/requirement"
	"github.com/unearth-go/unearth/vcs"
)

func TestCheckoutReportsMissingBackend(t *testing.T) {
	if _, err := exec.LookPath("git"); err == nil {
		t.Skip("git is installed; this test only exercises the missing-backend path")
	}
	_, err := vcs.Checkout(context.Background(), requirement.Git, "https://example.com/repo.git", "", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, vcs.ErrBackendMissing))
}

func TestCheckoutRejectsUnsupportedScheme(t *testing.T) {
	_, err := vcs.Checkout(context.Background(), requirement.VCSScheme("fossil"), "https://example.com/repo", "", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, vcs.ErrUnsupportedScheme))
}

func TestGitCheckoutClonesAndResolvesRevision(t *testing.T) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not installed")
	}

	origin := t.TempDir()
	runGit(t, gitPath, origin, "init")
	runGit(t, gitPath, origin, "config", "user.email", "test@example.com")
	runGit(t, gitPath, origin, "config", "user.name", "Test")
	require.NoError(t, os.WriteFile(filepath.Join(origin, "setup.py"), []byte("# setup"), 0o644))
	runGit(t, gitPath, origin, "add", "setup.py")
	runGit(t, gitPath, origin, "commit", "-m", "initial")

	dest := filepath.Join(t.TempDir(), "checkout")
	revision, err := vcs.Checkout(context.Background(), requirement.Git, origin, "", dest)
	require.NoError(t, err)
	assert.Len(t, revision, 40)

	_, err = os.Stat(filepath.Join(dest, "setup.py"))
	require.NoError(t, err)
}

func runGit(t *testing.T, gitPath, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command(gitPath, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "git %v: %s", args, stderr.String())
}
