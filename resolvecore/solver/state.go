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

package solver

import (
	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/resolvecore/dep"
)

// criterion captures one package's accumulated requirements: every
// specifier discovered so far and which version pinned them (for
// diagnostics), the candidate versions that still satisfy all of them, and
// the versions already ruled out by backtracking.
type criterion struct {
	specifiers        []resolvecore.Specifiers
	parents           []dep.PackageID
	incompatibilities map[string]bool
	candidates        []string
}

// copy returns a criterion sharing the specifiers/parents slices (append-only,
// never mutated in place) but with its own incompatibilities map.
func (c criterion) copy() criterion {
	incompat := make(map[string]bool, len(c.incompatibilities))
	for k, v := range c.incompatibilities {
		incompat[k] = v
	}
	return criterion{
		specifiers:        c.specifiers,
		parents:           c.parents,
		incompatibilities: incompat,
		candidates:        c.candidates,
	}
}

// state is one point in the backtracking search: the versions pinned so
// far and the full set of criteria discovered.
type state struct {
	mapping  map[dep.PackageID]string
	criteria map[dep.PackageID]criterion
}

func newState() *state {
	return &state{
		mapping:  make(map[dep.PackageID]string),
		criteria: make(map[dep.PackageID]criterion),
	}
}

func (s *state) clone() *state {
	mapping := make(map[dep.PackageID]string, len(s.mapping))
	for k, v := range s.mapping {
		mapping[k] = v
	}
	criteria := make(map[dep.PackageID]criterion, len(s.criteria))
	for k, v := range s.criteria {
		criteria[k] = v
	}
	return &state{mapping: mapping, criteria: criteria}
}

// isSatisfying reports whether pkg's current pin (if any) is still among
// its criterion's candidates.
func (s *state) isSatisfying(pkg dep.PackageID) bool {
	pin, ok := s.mapping[pkg]
	if !ok {
		return false
	}
	for _, c := range s.criteria[pkg].candidates {
		if c == pin {
			return true
		}
	}
	return false
}
