// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolvecore

import (
	"fmt"

	"deps.dev/util/semver"
)

// Specifiers is a conjunction of PEP 440 version constraints. It wraps
// semver.Constraint rather than reimplementing range arithmetic: semver's
// Set/span types are unexported, so matching is delegated to
// Constraint.MatchVersion, the same way the teacher's own resolver (and
// match.go) never constructs explicit ranges either, it filters enumerated
// candidate versions through the parsed constraint.
type Specifiers struct {
	raw        string
	constraint *semver.Constraint
}

// ParseSpecifiers parses a PEP 440 specifier conjunction, e.g. ">=1.0,<2.0".
// An empty string is the specifier that matches everything (except dev
// releases, per PyPI's own empty-constraint rule).
func ParseSpecifiers(raw string) (Specifiers, error) {
	c, err := semver.PyPI.ParseConstraint(raw)
	if err != nil {
		return Specifiers{}, fmt.Errorf("resolvecore: invalid specifier %q: %w", raw, err)
	}
	return Specifiers{raw: raw, constraint: c}, nil
}

// String returns the original specifier text.
func (s Specifiers) String() string { return s.raw }

// Match reports whether version satisfies the specifiers.
func (s Specifiers) Match(version string) bool {
	if s.constraint == nil {
		return true
	}
	return s.constraint.Match(version)
}

// MatchVersion is like Match but takes an already-parsed version.
func (s Specifiers) MatchVersion(v *semver.Version) bool {
	if s.constraint == nil {
		return true
	}
	return s.constraint.MatchVersion(v)
}

// HasPrerelease reports whether the specifier conjunction itself mentions a
// prerelease version (e.g. ">=1.0.0rc1"), which PyPI's matching rules treat
// as implicit permission to match prereleases.
func (s Specifiers) HasPrerelease() bool {
	if s.constraint == nil {
		return false
	}
	return s.constraint.HasPrerelease()
}

// ParseVersion parses a single PEP 440 version string.
func ParseVersion(version string) (*semver.Version, error) {
	return semver.PyPI.Parse(version)
}

// CompareVersions compares two PEP 440 version strings, returning -1, 0, or
// 1. Malformed versions sort before well-formed ones.
func CompareVersions(a, b string) int {
	av, aerr := semver.PyPI.Parse(a)
	bv, berr := semver.PyPI.Parse(b)
	switch {
	case aerr != nil && berr != nil:
		if a == b {
			return 0
		}
		if a < b {
			return -1
		}
		return 1
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	default:
		return av.Compare(bv)
	}
}
