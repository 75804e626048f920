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

package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unearth-go/unearth/link"
)

func TestNewExtractsHashFragment(t *testing.T) {
	l := link.New("https://example.com/Flask-2.1.2-py3-none-any.whl#sha256=fad54fe")
	assert.Equal(t, "https://example.com/Flask-2.1.2-py3-none-any.whl", l.URL)
	assert.Equal(t, map[string]string{"sha256": "fad54fe"}, l.Hashes)
	assert.True(t, l.IsWheel)
}

func TestNewDetectsVCSAndFileSchemes(t *testing.T) {
	assert.True(t, link.New("git+https://example.com/django.git@3.2.1").IsVCS)
	assert.True(t, link.New("file:///tmp/pkg-1.0.tar.gz").IsFile)
	assert.False(t, link.New("https://example.com/pkg-1.0.tar.gz").IsVCS)
}

func TestNormalizedURLDropsDefaultPortAndLowercasesHost(t *testing.T) {
	a := link.New("HTTPS://Example.com:443/pkg-1.0.tar.gz")
	b := link.New("https://example.com/pkg-1.0.tar.gz")
	assert.True(t, a.Equal(b))
}

func TestBasename(t *testing.T) {
	l := link.New("https://example.com/dist/Flask-2.1.2-py3-none-any.whl")
	assert.Equal(t, "Flask-2.1.2-py3-none-any.whl", l.Basename())
}

func TestYanked(t *testing.T) {
	var l link.Link
	assert.False(t, l.Yanked())
	reason := ""
	l.YankReason = &reason
	assert.True(t, l.Yanked())
}
