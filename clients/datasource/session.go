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

// Package datasource collects candidate links from indexes, find-links
// pages, and local directories, and provides the HTTP session contract
// those collectors and the downloader share.
package datasource

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/icholy/digest"

	"github.com/unearth-go/unearth/log"
)

// Response is the result of a Session.Get call: status, headers, final
// (post-redirect) URL, and a streamable body.
type Response struct {
	StatusCode int
	Header     http.Header
	FinalURL   string
	Body       io.ReadCloser
}

// Text reads and closes the response body, returning it as a string.
func (r *Response) Text() (string, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	return string(b), err
}

// Session is the HTTP capability the finder is handed by its caller: an
// interface abstraction, not a concrete client, so auth/cache/proxy/retry
// policy can live outside the core.
type Session interface {
	Get(ctx context.Context, rawURL string, headers http.Header) (*Response, error)
	Close() error
}

// CredentialLookup mimics pip's keyring integration: given a host, it
// returns credentials to try when the URL itself carries no userinfo.
// Returning ok == false means "no credential known for this host".
type CredentialLookup func(host string) (user, pass string, ok bool)

// DefaultSession is the Session implementation unearth uses when the
// caller supplies none of its own. It wraps net/http.Client with
// file:// support, Basic/Digest authentication, per-host TLS-verification
// toggling, and bounded exponential-backoff retries.
type DefaultSession struct {
	Client *http.Client

	// TrustedHosts disables TLS certificate verification for these
	// hosts.
	TrustedHosts map[string]bool

	// CredentialLookup is consulted when a request URL has no embedded
	// userinfo.
	CredentialLookup CredentialLookup

	// MaxRetries bounds the number of retries on connection errors and
	// 5xx responses. Zero disables retrying.
	MaxRetries int
	// BaseBackoff is the initial retry delay; it doubles on every
	// subsequent attempt, with jitter.
	BaseBackoff time.Duration
}

// NewDefaultSession builds a DefaultSession with sane retry defaults and
// TLS verification disabled for trustedHosts.
func NewDefaultSession(trustedHosts []string, credLookup CredentialLookup) *DefaultSession {
	hosts := make(map[string]bool, len(trustedHosts))
	for _, h := range trustedHosts {
		hosts[strings.ToLower(h)] = true
	}
	return &DefaultSession{
		Client:           &http.Client{Timeout: 60 * time.Second},
		TrustedHosts:     hosts,
		CredentialLookup: credLookup,
		MaxRetries:       3,
		BaseBackoff:      250 * time.Millisecond,
	}
}

// Close implements Session. DefaultSession holds no resources that
// outlive individual requests, so Close is a no-op.
func (s *DefaultSession) Close() error { return nil }

// Get implements Session.
func (s *DefaultSession) Get(ctx context.Context, rawURL string, headers http.Header) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("datasource: invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "file" {
		return s.getFile(u)
	}
	return s.getHTTP(ctx, u, headers)
}

func (s *DefaultSession) getFile(u *url.URL) (*Response, error) {
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 2 && path[2] == ':' {
		path = path[1:]
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("datasource: file:// read %q: %w", path, err)
	}
	return &Response{StatusCode: http.StatusOK, Header: make(http.Header), FinalURL: u.String(), Body: f}, nil
}

func (s *DefaultSession) client(u *url.URL) *http.Client {
	user, pass, hasAuth := u.User.Username(), "", false
	if u.User != nil {
		pass, hasAuth = u.User.Password()
	}
	if !hasAuth && s.CredentialLookup != nil {
		if lu, lp, ok := s.CredentialLookup(u.Hostname()); ok {
			user, pass, hasAuth = lu, lp, true
		}
	}

	base := s.Client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if tr, ok := base.(*http.Transport); ok && s.TrustedHosts[strings.ToLower(u.Hostname())] {
		clone := tr.Clone()
		if clone.TLSClientConfig == nil {
			clone.TLSClientConfig = &tls.Config{}
		}
		clone.TLSClientConfig.InsecureSkipVerify = true
		base = clone
	}

	if !hasAuth {
		return &http.Client{Transport: base, Timeout: s.Client.Timeout, CheckRedirect: s.Client.CheckRedirect}
	}

	// Digest auth transparently falls back to plain Basic for servers
	// that never issue a WWW-Authenticate: Digest challenge, so a single
	// transport covers both authentication schemes.
	return &http.Client{
		Transport: &digest.Transport{Username: user, Password: pass, Transport: base},
		Timeout:   s.Client.Timeout,
	}
}

func (s *DefaultSession) getHTTP(ctx context.Context, u *url.URL, headers http.Header) (*Response, error) {
	client := s.client(u)

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.BaseBackoff * time.Duration(1<<uint(attempt-1))
			if s.BaseBackoff > 0 {
				delay += time.Duration(rand.Int63n(int64(s.BaseBackoff)))
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			log.Debugf("datasource: retrying %s (attempt %d)", u, attempt+1)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && attempt < s.MaxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("datasource: %s: server error %s", u, resp.Status)
			continue
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			FinalURL:   resp.Request.URL.String(),
			Body:       resp.Body,
		}, nil
	}
	return nil, fmt.Errorf("datasource: %s: %w", u, lastErr)
}
