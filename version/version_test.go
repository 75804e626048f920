package version_test

import (
	"testing"

	"github.com/unearth-go/unearth/version"
)

func TestParseRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"1.0", "1.0.0", "2.1.2", "1.0a1", "1.0b2", "1.0rc1",
		"1.0.post1", "1.0.dev1", "1!1.0", "1.0+local.1",
	} {
		v, err := version.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		v2, err := version.Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(String(%q)=%q): %v", raw, v.String(), err)
		}
		if !v.Equal(v2) {
			t.Errorf("round trip mismatch for %q: %v != %v", raw, v, v2)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	ordered := []string{
		"1.0.dev0", "1.0a1", "1.0a2", "1.0b1", "1.0rc1", "1.0", "1.0.post1", "1.1",
	}
	for i := 0; i < len(ordered)-1; i++ {
		a := version.MustParse(ordered[i])
		b := version.MustParse(ordered[i+1])
		if !a.Less(b) {
			t.Errorf("expected %s < %s", ordered[i], ordered[i+1])
		}
	}
}

func TestIsPrerelease(t *testing.T) {
	if !version.MustParse("1.0a1").IsPrerelease() {
		t.Error("1.0a1 should be a prerelease")
	}
	if !version.MustParse("1.0.dev1").IsPrerelease() {
		t.Error("1.0.dev1 should be a prerelease")
	}
	if version.MustParse("1.0").IsPrerelease() {
		t.Error("1.0 should not be a prerelease")
	}
}

func TestInvalidVersion(t *testing.T) {
	if _, err := version.Parse("not-a-version!!!"); err == nil {
		t.Error("expected an error for a malformed version")
	}
}
