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

package datasource_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unearth-go/unearth/clients/clienttest"
	"github.com/unearth-go/unearth/clients/datasource"
)

func TestCollectFromHTMLIndex(t *testing.T) {
	srv := clienttest.NewMockHTTPServer(t)
	srv.SetResponse(t, "flask/", []byte(`<!DOCTYPE html>
<html><body>
<a href="/whl/Flask-2.1.2-py3-none-any.whl#sha256=fad54fe">Flask-2.1.2-py3-none-any.whl</a>
<a href="/whl/Flask-1.1.4-py2.py3-none-any.whl" data-yanked="broken build">Flask-1.1.4-py2.py3-none-any.whl</a>
</body></html>`))

	session := datasource.NewDefaultSession(nil, nil)
	collector := datasource.NewCollector(session, []datasource.Source{
		{Kind: datasource.IndexSource, Location: srv.URL},
	})

	links, errs := collector.Collect(context.Background(), "flask")
	require.Empty(t, errs)
	require.Len(t, links, 2)
	assert.Equal(t, map[string]string{"sha256": "fad54fe"}, links[0].Hashes)
	assert.False(t, links[0].Yanked())
	assert.True(t, links[1].Yanked())
	assert.Equal(t, "broken build", *links[1].YankReason)
}

func TestCollectFromJSONIndex(t *testing.T) {
	srv := clienttest.NewMockHTTPServer(t)
	srv.SetResponse(t, "flask/", []byte(`{
		"name": "flask",
		"versions": ["2.1.2"],
		"files": [
			{
				"filename": "Flask-2.1.2-py3-none-any.whl",
				"url": "https://files.example.com/Flask-2.1.2-py3-none-any.whl",
				"hashes": {"sha256": "abc123"},
				"requires-python": ">=3.7",
				"yanked": false,
				"dist-info-metadata": true
			}
		]
	}`))
	srv.SetResponseContentType(t, "flask/", "application/vnd.pypi.simple.v1+json")

	session := datasource.NewDefaultSession(nil, nil)
	collector := datasource.NewCollector(session, []datasource.Source{
		{Kind: datasource.IndexSource, Location: srv.URL},
	})

	links, errs := collector.Collect(context.Background(), "flask")
	require.Empty(t, errs)
	require.Len(t, links, 1)
	assert.Equal(t, "abc123", links[0].Hashes["sha256"])
	assert.Equal(t, ">=3.7", links[0].RequiresPython)
	require.NotNil(t, links[0].Metadata)
}

func TestCollectDeduplicatesAcrossSources(t *testing.T) {
	srv1 := clienttest.NewMockHTTPServer(t)
	srv1.SetResponse(t, "bar/", []byte(`<a href="https://shared.example.com/bar-1.0.tar.gz">bar-1.0.tar.gz</a>`))
	srv2 := clienttest.NewMockHTTPServer(t)
	srv2.SetResponse(t, "bar/", []byte(`<a href="https://shared.example.com/bar-1.0.tar.gz">bar-1.0.tar.gz</a>`))

	session := datasource.NewDefaultSession(nil, nil)
	collector := datasource.NewCollector(session, []datasource.Source{
		{Kind: datasource.IndexSource, Location: srv1.URL},
		{Kind: datasource.IndexSource, Location: srv2.URL},
	})

	links, errs := collector.Collect(context.Background(), "bar")
	require.Empty(t, errs)
	assert.Len(t, links, 1)
}

func TestCollectLocalDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bar-1.0.tar.gz"), []byte("data"), 0o644))

	collector := datasource.NewCollector(datasource.NewDefaultSession(nil, nil), []datasource.Source{
		{Kind: datasource.LocalDirSource, Location: dir},
	})

	links, errs := collector.Collect(context.Background(), "bar")
	require.Empty(t, errs)
	require.Len(t, links, 1)
	assert.True(t, links[0].IsFile)
}

func TestCollectReportsPerSourceFailureWithoutAbortingOthers(t *testing.T) {
	srv := clienttest.NewMockHTTPServer(t)
	srv.SetResponse(t, "bar/", []byte(`<a href="https://shared.example.com/bar-1.0.tar.gz">bar-1.0.tar.gz</a>`))

	collector := datasource.NewCollector(datasource.NewDefaultSession(nil, nil), []datasource.Source{
		{Kind: datasource.LocalDirSource, Location: "/does/not/exist"},
		{Kind: datasource.IndexSource, Location: srv.URL},
	})

	links, errs := collector.Collect(context.Background(), "bar")
	assert.Len(t, errs, 1)
	assert.Len(t, links, 1)
}
