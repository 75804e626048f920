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

package wheel

import "fmt"

// Environment describes the target interpreter a finder evaluates
// candidates against.
type Environment struct {
	// Major and Minor are the interpreter's version, e.g. 3, 10.
	Major, Minor int
	// Implementation is "cp", "pp", "jy", "ip", or "" if unknown.
	Implementation string
	// ABI is the interpreter's ABI tag, e.g. "cp310".
	ABI string
	// Platforms is ordered most-specific first, e.g.
	// ["manylinux_2_28_x86_64", "manylinux2014_x86_64", "linux_x86_64"].
	Platforms []string
}

// Current approximates the environment unearth itself is running under.
// Callers normally override this via finder configuration's
// target-python option rather than relying on it, since the finder must
// be able to query for an environment other than its own.
func Current() Environment {
	return Environment{
		Major:          3,
		Minor:          12,
		Implementation: "cp",
		ABI:            "cp312",
		Platforms:      []string{"any"},
	}
}

func (e Environment) impl() string {
	if e.Implementation == "" {
		return "cp"
	}
	return e.Implementation
}

// CompatibleTags enumerates e's compatible tag set in priority order,
// most specific first:
//
//	cp{XY}-{abi}-{plat}
//	cp{XY}-abi3-{plat}            (X >= 3 only)
//	cp{XY}-none-{plat}
//	py{X}{Y}-none-any ... py{X}0-none-any
//	py{X}-none-any
//
// for every platform in e.Platforms, most-specific platform first.
func (e Environment) CompatibleTags() []Tag {
	var tags []Tag
	impl := e.impl()
	cpTag := fmt.Sprintf("%s%d%d", impl, e.Major, e.Minor)

	for _, plat := range e.Platforms {
		if e.ABI != "" {
			tags = append(tags, Tag{Python: cpTag, ABI: e.ABI, Platform: plat})
		}
		if impl == "cp" && e.Major >= 3 {
			tags = append(tags, Tag{Python: cpTag, ABI: "abi3", Platform: plat})
		}
		tags = append(tags, Tag{Python: cpTag, ABI: "none", Platform: plat})
	}

	for minor := e.Minor; minor >= 0; minor-- {
		pyTag := fmt.Sprintf("py%d%d", e.Major, minor)
		for _, plat := range e.Platforms {
			tags = append(tags, Tag{Python: pyTag, ABI: "none", Platform: plat})
		}
		tags = append(tags, Tag{Python: pyTag, ABI: "none", Platform: "any"})
	}

	pyMajorTag := fmt.Sprintf("py%d", e.Major)
	for _, plat := range e.Platforms {
		tags = append(tags, Tag{Python: pyMajorTag, ABI: "none", Platform: plat})
	}
	tags = append(tags, Tag{Python: pyMajorTag, ABI: "none", Platform: "any"})

	return tags
}

// BestMatch reports whether any tag in candidateTags intersects e's
// compatible tag set, and if so the lowest (best) priority index of the
// match. The index is kept non-negated here; the evaluator folds it
// into its own sort key.
func (e Environment) BestMatch(candidateTags []Tag) (priority int, ok bool) {
	compatible := e.CompatibleTags()
	index := make(map[Tag]int, len(compatible))
	for i, t := range compatible {
		if _, exists := index[t]; !exists {
			index[t] = i
		}
	}

	best := -1
	for _, t := range candidateTags {
		if i, found := index[t]; found {
			if best == -1 || i < best {
				best = i
			}
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
