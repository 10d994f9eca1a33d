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
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/resolvecore/dep"
)

// MissingExtraError is returned when a requirement asks for an extra a
// package's metadata does not advertise.
type MissingExtraError struct {
	Name  resolvecore.PackageName
	Extra string
}

func (e MissingExtraError) Error() string {
	return fmt.Sprintf("package %s has no extra [%s]", e.Name, e.Extra)
}

// RequiresPythonIntegrityError is returned when a version that
// FetchAndSortVersions already filtered for requires_python compatibility
// turns out, once its metadata is actually read, to declare a
// requires_python that rejects the resolve's python_full_version. This
// should never happen if a PackageDB implementation is consistent; it is
// surfaced as a typed error rather than a panic so callers can report it
// as a corrupted-index condition.
type RequiresPythonIntegrityError struct {
	Name    resolvecore.PackageName
	Version string
}

func (e RequiresPythonIntegrityError) Error() string {
	return fmt.Sprintf("%s %s: declares an incompatible requires-python, but was not filtered out earlier", e.Name, e.Version)
}

// conflictError records that a package's accumulated requirements have no
// remaining candidate version. It is used internally to drive
// backtracking and, when backtracking is exhausted, becomes one of the
// leaves of the derivation tree NoSolutionError reports.
type conflictError struct {
	pkg          dep.PackageID
	noCandidates bool
	specifiers   []resolvecore.Specifiers
	parents      []dep.PackageID
}

func (e conflictError) Error() string {
	return e.toNode().Error()
}

func (e conflictError) toNode() DerivationNode {
	return DerivationNode{Package: e.pkg, NoVersions: e.noCandidates, Specifiers: e.specifiers, Parents: e.parents}
}

// DerivationNode is one leaf of the solver's failure derivation tree: a
// package whose accumulated criterion ran out of candidates, the
// specifiers responsible, and the packages that required it. NoVersions
// distinguishes "nothing was ever published that matches" from "some
// version exists, but the specifiers collected from pkg's parents rule
// out every one of them".
type DerivationNode struct {
	Package    dep.PackageID
	NoVersions bool
	Specifiers []resolvecore.Specifiers
	Parents    []dep.PackageID
}

func (n DerivationNode) Error() string {
	var specs []string
	for _, s := range n.Specifiers {
		if s.String() != "" {
			specs = append(specs, s.String())
		}
	}
	if n.NoVersions {
		return fmt.Sprintf("no candidates at all for %s %q", n.Package, strings.Join(specs, ","))
	}
	return fmt.Sprintf("requirements conflict for %s: %q", n.Package, strings.Join(specs, ","))
}

// Incompatibility is one collapsed, reportable failure. Several
// DerivationNode leaves for the same package with NoVersions set collapse
// into a single Incompatibility carrying the union of their specifiers and
// parents, the way the original resolver's collapse_no_versions step keeps
// a backtracking search's report from repeating "no versions of X" once
// per abandoned attempt that happened to revisit X.
type Incompatibility struct {
	Package    dep.PackageID
	NoVersions bool
	Specifiers []resolvecore.Specifiers
	Parents    []dep.PackageID
}

func (i Incompatibility) Error() string {
	return DerivationNode(i).Error()
}

// CollapseNoVersions merges repeated no-candidate derivation leaves for
// the same package into a single Incompatibility. Leaves that are not a
// "no versions at all" leaf are passed through unmerged, since a
// requirements-conflict leaf is already specific to the single pin
// attempt that produced it.
func CollapseNoVersions(nodes []DerivationNode) []Incompatibility {
	var out []Incompatibility
	merged := make(map[dep.PackageID]int)
	for _, n := range nodes {
		if !n.NoVersions {
			out = append(out, Incompatibility(n))
			continue
		}
		if idx, ok := merged[n.Package]; ok {
			out[idx].Specifiers = append(out[idx].Specifiers, n.Specifiers...)
			out[idx].Parents = append(out[idx].Parents, n.Parents...)
			continue
		}
		merged[n.Package] = len(out)
		out = append(out, Incompatibility(n))
	}
	return out
}

// NoSolutionError is returned when backtracking has exhausted every
// alternative and no Blueprint can satisfy the Brief's requirements.
type NoSolutionError struct {
	causes []conflictError
}

func (e NoSolutionError) Error() string {
	merr := &multierror.Error{
		ErrorFormat: func(errs []error) string {
			lines := make([]string, len(errs))
			for i, err := range errs {
				lines[i] = "  " + err.Error()
			}
			return "no set of versions satisfies the requirements:\n" + strings.Join(lines, "\n")
		},
	}
	for _, inc := range e.Causes() {
		merr = multierror.Append(merr, inc)
	}
	return merr.Error()
}

// Causes returns the derivation tree's no-candidate leaves collapsed by
// package, in the order they were first discovered.
func (e NoSolutionError) Causes() []Incompatibility {
	nodes := make([]DerivationNode, len(e.causes))
	for i, c := range e.causes {
		nodes[i] = c.toNode()
	}
	return CollapseNoVersions(nodes)
}

// tooDeepError is returned when a resolve exceeds its round budget, which in
// practice means the search space is pathological rather than merely
// unsatisfiable.
type tooDeepError struct{}

func (tooDeepError) Error() string { return "resolve aborted after too many rounds" }
