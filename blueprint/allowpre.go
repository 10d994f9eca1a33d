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

package blueprint

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/posy-go/envplan/resolvecore"
)

// allowPreAllSentinel is the magic string a Brief's JSON encoding uses in
// place of an explicit package list to mean "allow prereleases for
// everything".
const allowPreAllSentinel = ":all:"

// AllowPre is a Brief's prerelease policy: either an explicit set of
// packages allowed to resolve to a prerelease version, or "all packages
// may". It implements resolvecore.AllowPre directly.
type AllowPre struct {
	all   bool
	names map[resolvecore.PackageName]bool
}

// AllowPreNone is the default policy: no package may resolve to a
// prerelease version unless its own specifiers demand one.
func AllowPreNone() AllowPre {
	return AllowPre{names: map[resolvecore.PackageName]bool{}}
}

// AllowPreAll allows prereleases for every package.
func AllowPreAll() AllowPre {
	return AllowPre{all: true}
}

// AllowPreFor allows prereleases only for the named packages.
func AllowPreFor(names ...resolvecore.PackageName) AllowPre {
	set := make(map[resolvecore.PackageName]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return AllowPre{names: set}
}

// Allows reports whether name may resolve to a prerelease version under
// this policy.
func (a AllowPre) Allows(name resolvecore.PackageName) bool {
	if a.all {
		return true
	}
	return a.names[name]
}

// MarshalJSON renders the policy the way the original tool's Brief does:
// the sentinel string ":all:", or a plain list of package names.
func (a AllowPre) MarshalJSON() ([]byte, error) {
	if a.all {
		return json.Marshal(allowPreAllSentinel)
	}
	names := make([]resolvecore.PackageName, 0, len(a.names))
	for n := range a.names {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return json.Marshal(names)
}

// UnmarshalJSON accepts either form: the sentinel string, or a list of
// package names. Any other string is a malformed Brief.
func (a *AllowPre) UnmarshalJSON(data []byte) error {
	var sentinel string
	if err := json.Unmarshal(data, &sentinel); err == nil {
		if sentinel != allowPreAllSentinel {
			return fmt.Errorf("blueprint: allow_pre: expected a list of packages or %q, got %q", allowPreAllSentinel, sentinel)
		}
		*a = AllowPreAll()
		return nil
	}
	var names []resolvecore.PackageName
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("blueprint: allow_pre: %w", err)
	}
	*a = AllowPreFor(names...)
	return nil
}
