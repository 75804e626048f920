package version_test

import (
	"testing"

	"github.com/unearth-go/unearth/version"
)

func TestSetContains(t *testing.T) {
	tests := []struct {
		spec string
		ver  string
		want bool
	}{
		{">=2", "2.1.2", true},
		{">=2", "1.9", false},
		{">=2,<3", "2.9", true},
		{">=2,<3", "3.0", false},
		{"==2.1.2", "2.1.2", true},
		{"==2.1.2", "2.1.3", false},
		{"!=2.1.2", "2.1.3", true},
		{"==2.1.*", "2.1.9", true},
		{"==2.1.*", "2.2.0", false},
		{"~=2.2", "2.3", true},
		{"~=2.2", "3.0", false},
		{"~=1.4.5", "1.4.9", true},
		{"~=1.4.5", "1.5.0", false},
		{"===2.1.2", "2.1.2", true},
		{"===2.1.2", "2.1.2.0", false},
	}
	for _, tt := range tests {
		s, err := version.ParseSet(tt.spec)
		if err != nil {
			t.Fatalf("ParseSet(%q): %v", tt.spec, err)
		}
		v := version.MustParse(tt.ver)
		if got := s.Contains(v, true); got != tt.want {
			t.Errorf("Set(%q).Contains(%q) = %v, want %v", tt.spec, tt.ver, got, tt.want)
		}
	}
}

func TestSetExcludesPrereleaseByDefault(t *testing.T) {
	s, err := version.ParseSet(">=1.0")
	if err != nil {
		t.Fatal(err)
	}
	pre := version.MustParse("2.0a1")
	if s.Contains(pre, false) {
		t.Error("expected a plain specifier set to exclude pre-releases by default")
	}
	if !s.Contains(pre, true) {
		t.Error("expected allowPrereleases=true to admit a pre-release")
	}
}

func TestSetMentioningPrereleaseAllowsIt(t *testing.T) {
	s, err := version.ParseSet(">=2.0a1")
	if err != nil {
		t.Fatal(err)
	}
	if !s.AllowsPrereleases() {
		t.Error("a specifier mentioning a pre-release should allow pre-releases")
	}
	if !s.Contains(version.MustParse("2.0a2"), false) {
		t.Error("expected the pre-release to be admitted without explicit opt-in")
	}
}

func TestEmptySetAcceptsEverything(t *testing.T) {
	s, err := version.ParseSet("")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Empty() {
		t.Error("expected empty specifier string to produce an empty set")
	}
	if !s.Contains(version.MustParse("0.0.1"), false) {
		t.Error("expected empty set to accept any non-prerelease version")
	}
}

func TestInvalidClause(t *testing.T) {
	if _, err := version.ParseSet("not a clause"); err == nil {
		t.Error("expected an error for a malformed clause")
	}
}
