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

// Package fetch downloads distribution artifacts and unpacks archives.
package fetch

import "errors"

// ErrHashMismatch reports that a downloaded artifact's hash didn't match
// any hash the caller or the source declared acceptable.
var ErrHashMismatch = errors.New("fetch: hash mismatch")

// ErrUnpack reports a failure while extracting an archive, including a
// rejected path-traversal attempt.
var ErrUnpack = errors.New("fetch: unpack failed")

// ErrUnsupportedFormat reports that an archive's extension isn't one
// unpack recognizes.
var ErrUnsupportedFormat = errors.New("fetch: unsupported archive format")
