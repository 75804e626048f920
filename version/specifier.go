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

package version

import (
	"fmt"
	"regexp"
	"strings"
)

// Operator is a PEP 440 comparison operator.
type Operator string

// The operators a specifier clause may use.
const (
	OpEqual          Operator = "=="
	OpNotEqual       Operator = "!="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpCompatible     Operator = "~="
	OpArbitraryEqual Operator = "==="
)

// Clause is a single (operator, version) constraint.
type Clause struct {
	Op       Operator
	raw      string // the operand exactly as written, trimmed
	version  Version
	wildcard bool
	prefix   []int64
}

var clauseFinder = regexp.MustCompile(`^\s*(~=|===|==|!=|<=|>=|<|>)\s*(\S+)\s*$`)

// ParseClause parses a single "OP version" clause, e.g. ">=2.1".
func ParseClause(s string) (Clause, error) {
	m := clauseFinder.FindStringSubmatch(s)
	if m == nil {
		return Clause{}, fmt.Errorf("version: invalid specifier clause %q", s)
	}
	op, operand := Operator(m[1]), m[2]

	c := Clause{Op: op, raw: operand}

	if op == OpArbitraryEqual {
		return c, nil
	}

	if (op == OpEqual || op == OpNotEqual) && strings.HasSuffix(operand, ".*") {
		c.wildcard = true
		c.prefix = releaseSegments(strings.TrimSuffix(operand, ".*"))
		if c.prefix == nil {
			return Clause{}, fmt.Errorf("version: invalid wildcard specifier %q", s)
		}
		return c, nil
	}

	v, err := Parse(operand)
	if err != nil {
		return Clause{}, fmt.Errorf("version: invalid specifier %q: %w", s, err)
	}
	c.version = v

	if op == OpCompatible {
		rel := releaseSegments(operand)
		if len(rel) < 2 {
			return Clause{}, fmt.Errorf("version: ~= requires at least two release segments, got %q", s)
		}
		c.prefix = rel[:len(rel)-1]
	}

	return c, nil
}

// Contains reports whether v satisfies the clause.
func (c Clause) Contains(v Version) bool {
	switch c.Op {
	case OpArbitraryEqual:
		return v.raw == c.raw
	case OpEqual:
		if c.wildcard {
			return releaseHasPrefix(releaseSegments(v.raw), c.prefix)
		}
		return v.Equal(c.version)
	case OpNotEqual:
		if c.wildcard {
			return !releaseHasPrefix(releaseSegments(v.raw), c.prefix)
		}
		return !v.Equal(c.version)
	case OpLessThan:
		return v.Compare(c.version) < 0
	case OpLessOrEqual:
		return v.Compare(c.version) <= 0
	case OpGreaterThan:
		return v.Compare(c.version) > 0
	case OpGreaterOrEqual:
		return v.Compare(c.version) >= 0
	case OpCompatible:
		return v.Compare(c.version) >= 0 && releaseHasPrefix(releaseSegments(v.raw), c.prefix)
	default:
		return false
	}
}

// mentionsPrerelease reports whether the clause's own version is itself
// a pre-release, which per PEP 440 opts the whole specifier set into
// admitting pre-releases.
func (c Clause) mentionsPrerelease() bool {
	return !c.version.IsZero() && c.version.IsPrerelease()
}

// Set is a PEP 440 specifier set: a conjunction of clauses.
type Set struct {
	clauses []Clause
}

// ParseSet parses a comma-separated list of clauses, e.g. ">=2,<3".
// An empty string is a valid Set that accepts every version.
func ParseSet(s string) (Set, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Set{}, nil
	}
	var clauses []Clause
	for _, part := range strings.Split(s, ",") {
		c, err := ParseClause(part)
		if err != nil {
			return Set{}, err
		}
		clauses = append(clauses, c)
	}
	return Set{clauses: clauses}, nil
}

// String renders the set back to its comma-joined clause form.
func (s Set) String() string {
	parts := make([]string, len(s.clauses))
	for i, c := range s.clauses {
		parts[i] = string(c.Op) + c.operand()
	}
	return strings.Join(parts, ",")
}

func (c Clause) operand() string {
	if c.Op == OpArbitraryEqual || c.wildcard {
		return c.raw
	}
	return c.version.String()
}

// AllowsPrereleases reports whether the set explicitly opts into
// pre-release versions (one of its clauses pins a pre-release).
func (s Set) AllowsPrereleases() bool {
	for _, c := range s.clauses {
		if c.mentionsPrerelease() {
			return true
		}
	}
	return false
}

// Contains reports whether v satisfies every clause in the set.
//
// Pre-releases are excluded unless the set itself mentions a
// pre-release or allowPrereleases is true (the caller decides the
// latter: explicit opt-in via config, or every candidate under
// consideration being a pre-release — see candidate.FindMatches,
// which applies that fall-through rule).
func (s Set) Contains(v Version, allowPrereleases bool) bool {
	if v.IsPrerelease() && !allowPrereleases && !s.AllowsPrereleases() {
		return false
	}
	for _, c := range s.clauses {
		if !c.Contains(v) {
			return false
		}
	}
	return true
}

// Empty reports whether the set has no clauses (matches everything).
func (s Set) Empty() bool { return len(s.clauses) == 0 }

// PinnedVersion reports the exact version the set pins to and true, when
// the set consists of exactly one non-wildcard "==" clause. Used by the
// evaluator to detect a requirement that explicitly pins one version,
// which is the one case where a yanked release may still be selected.
func (s Set) PinnedVersion() (Version, bool) {
	if len(s.clauses) != 1 {
		return Version{}, false
	}
	c := s.clauses[0]
	if c.Op != OpEqual || c.wildcard {
		return Version{}, false
	}
	return c.version, true
}
