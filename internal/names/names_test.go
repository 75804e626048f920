package names_test

import (
	"testing"

	"github.com/unearth-go/unearth/internal/names"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Flask", "flask"},
		{"flask-SQLAlchemy", "flask-sqlalchemy"},
		{"flask_sqlalchemy", "flask-sqlalchemy"},
		{"flask.sqlalchemy", "flask-sqlalchemy"},
		{"flask--sqlalchemy", "flask-sqlalchemy"},
		{"flask__.-sqlalchemy", "flask-sqlalchemy"},
		{"A", "a"},
	}
	for _, tt := range tests {
		if got := names.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Flask", "A.B_C-D", "already-normal", ""}
	for _, in := range inputs {
		once := names.Normalize(in)
		twice := names.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestEqual(t *testing.T) {
	if !names.Equal("Flask-SQLAlchemy", "flask_sqlalchemy") {
		t.Error("expected names to be equal after normalization")
	}
	if names.Equal("flask", "django") {
		t.Error("expected different names to not be equal")
	}
}
