// Package errormatcher provides small error-assertion helpers for tests
// that match against the finder's sentinel error taxonomy.
package errormatcher

import (
	"errors"
	"strings"
	"testing"
)

// ExpectErrIs fails the test unless err wraps expected (per errors.Is).
func ExpectErrIs(t testing.TB, err, expected error) {
	t.Helper()

	if err == nil {
		t.Errorf("got nil error, want one wrapping %q", expected)
		return
	}
	if !errors.Is(err, expected) {
		t.Errorf("got error %q, want one wrapping %q", err, expected)
	}
}

// ExpectErrContaining fails the test unless err's message contains str.
func ExpectErrContaining(t testing.TB, err error, str string) {
	t.Helper()

	if err == nil {
		t.Errorf("got nil error, want one containing %q", str)
		return
	}
	if !strings.Contains(err.Error(), str) {
		t.Errorf("got error %q, want one containing %q", err, str)
	}
}
