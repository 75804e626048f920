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
	"errors"

	"github.com/unearth-go/unearth/candidate"
	"github.com/unearth-go/unearth/fetch"
	"github.com/unearth-go/unearth/requirement"
	"github.com/unearth-go/unearth/vcs"
)

// The finder's public error taxonomy. Each sentinel is
// either owned by the leaf package that detects it and re-exported here
// so callers only need to import finder to match against errors.Is, or
// defined locally when no leaf package owns the concept.
var (
	// ErrInvalidRequirement reports an unparsable requirement string.
	ErrInvalidRequirement = requirement.ErrInvalid

	// ErrNetworkError reports that every configured source failed while
	// collecting links; the first source's error is included in the
	// message.
	ErrNetworkError = errors.New("finder: network error")

	// ErrHashMismatch reports a downloaded artifact whose hash matched
	// neither the source's declared hash nor the caller's allow-list.
	ErrHashMismatch = fetch.ErrHashMismatch

	// ErrUnpackError reports an archive-extraction failure, including a
	// rejected path-traversal attempt.
	ErrUnpackError = fetch.ErrUnpack

	// ErrVCSBackendMissing reports that a VCS requirement's client
	// (git, hg, svn, bzr) isn't installed.
	ErrVCSBackendMissing = vcs.ErrBackendMissing

	// ErrVCSCommandFailed reports a non-zero exit from a VCS client.
	ErrVCSCommandFailed = vcs.ErrCommandFailed

	// ErrUnsupportedScheme reports a URL or VCS scheme this finder
	// doesn't recognize.
	ErrUnsupportedScheme = vcs.ErrUnsupportedScheme
)

// NoMatchesError is re-exported so callers only need to import finder to
// type-assert on it via errors.As.
type NoMatchesError = candidate.NoMatchesError
