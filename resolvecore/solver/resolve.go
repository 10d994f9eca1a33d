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
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/resolvecore/dep"
)

// maxRounds bounds the search the same way pip bounds its own resolver:
// https://github.com/pypa/pip/blob/main/src/pip/_internal/resolution/resolvelib/resolver.py
const maxRounds = 200000

// Solution maps every resolved base package to its pinned version. Virtual
// extra packages and the synthetic root are never present: a requirement
// on "foo[bar]" is reflected only by "foo" appearing here, with [bar]'s
// requirements folded into the same resolve.
type Solution map[resolvecore.PackageName]string

// Resolve runs component C5 against requirements (the Brief's top-level
// requirements), evaluating environment markers against env and choosing
// versions via db and metadata. hints puts a prior Blueprint's pinned
// version of a package ahead of that package's other candidate versions.
func Resolve(db resolvecore.PackageDB, metadata *resolvecore.MetadataCache, env map[string]string, requirements []resolvecore.Requirement, allowPre resolvecore.AllowPre, pythonFullVersion string, hints resolvecore.VersionHints, log *zap.Logger) (Solution, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := newProvider(db, metadata, env, allowPre, hints, pythonFullVersion, requirements, log)

	root := dep.Root()
	rootEdges, err := p.dependenciesFor(root, "")
	if err != nil {
		return nil, err
	}

	direct := make(map[dep.PackageID]int, len(rootEdges))
	for i, e := range rootEdges {
		direct[e.pkg] = i
	}

	r := &resolution{p: p, direct: direct, log: log}
	final, err := r.run(rootEdges)
	if err != nil {
		return nil, err
	}

	sol := make(Solution)
	for pkg, version := range final.mapping {
		if pkg.IsRoot() || pkg.HasExtra() {
			continue
		}
		sol[pkg.Name()] = version
	}
	return sol, nil
}

// resolution drives the backtracking search: a stack of states, with the
// most recent state being the one currently under consideration.
type resolution struct {
	p      *provider
	direct map[dep.PackageID]int
	log    *zap.Logger
	states []*state
}

func (r *resolution) current() *state { return r.states[len(r.states)-1] }

func (r *resolution) pushClone() {
	r.states = append(r.states, r.current().clone())
}

// mergeIntoCriterion folds a newly discovered edge into the running
// criterion for edge.pkg, recomputing its candidate list.
func (r *resolution) mergeIntoCriterion(edge requirementEdge, parent dep.PackageID) (criterion, error) {
	s := r.current()
	crit := s.criteria[edge.pkg]
	specifiers := append(append([]resolvecore.Specifiers{}, crit.specifiers...), edge.specifiers)
	parents := append(append([]dep.PackageID{}, crit.parents...), parent)

	versions, err := r.p.versionsFor(edge.pkg.Name())
	if err != nil {
		return criterion{}, err
	}
	var candidates []string
	for _, vc := range versions {
		if crit.incompatibilities[vc.Version] {
			continue
		}
		ok := true
		for _, spec := range specifiers {
			if !spec.Match(vc.Version) {
				ok = false
				break
			}
		}
		if ok {
			candidates = append(candidates, vc.Version)
		}
	}
	if len(candidates) == 0 {
		return criterion{}, conflictError{pkg: edge.pkg, noCandidates: len(crit.specifiers) == 0, specifiers: specifiers, parents: parents}
	}

	incompat := make(map[string]bool, len(crit.incompatibilities))
	for k, v := range crit.incompatibilities {
		incompat[k] = v
	}
	return criterion{
		specifiers:        specifiers,
		parents:           parents,
		incompatibilities: incompat,
		candidates:        candidates,
	}, nil
}

type preferenceKey struct {
	restrictive int
	order       int
	name        string
}

func (a preferenceKey) less(b preferenceKey) bool {
	if a.restrictive != b.restrictive {
		return a.restrictive < b.restrictive
	}
	if a.order != b.order {
		return a.order < b.order
	}
	return a.name < b.name
}

// preference mirrors the teacher's getPreference: packages with an
// exact-version ("==") specifier are addressed first, then packages with
// any other non-empty specifier, then unconstrained ones; within each of
// those tiers direct requirements come first (in the order they were
// written), and remaining ties are broken by name.
func (r *resolution) preference(pkg dep.PackageID) preferenceKey {
	key := preferenceKey{restrictive: 3, order: math.MaxInt32, name: pkg.String()}
	crit := r.current().criteria[pkg]
	for _, spec := range crit.specifiers {
		raw := spec.String()
		if strings.Contains(raw, "==") {
			key.restrictive = 1
			break
		}
		if raw != "" {
			key.restrictive = 2
		}
	}
	if order, ok := r.direct[pkg]; ok {
		key.order = order
	}
	return key
}

// attemptToPin tries each of pkg's candidates, most preferred first, and
// pins the first one whose dependencies do not conflict with the rest of
// the current state.
func (r *resolution) attemptToPin(pkg dep.PackageID) ([]conflictError, error) {
	crit := r.current().criteria[pkg]
	var causes []conflictError
	for _, candidate := range crit.candidates {
		updates, err := r.criteriaFor(pkg, candidate)
		if err != nil {
			if ce, ok := err.(conflictError); ok {
				causes = append(causes, ce)
				continue
			}
			return nil, err
		}
		s := r.current()
		s.mapping[pkg] = candidate
		for p, c := range updates {
			s.criteria[p] = c
		}
		return nil, nil
	}
	return causes, nil
}

// criteriaFor lowers pkg's dependencies at candidate and merges each into
// the running criteria, returning the updated criterion for every affected
// package without yet mutating the state.
func (r *resolution) criteriaFor(pkg dep.PackageID, candidate string) (map[dep.PackageID]criterion, error) {
	edges, err := r.p.dependenciesFor(pkg, candidate)
	if err != nil {
		return nil, err
	}
	updates := make(map[dep.PackageID]criterion, len(edges))
	for _, edge := range edges {
		crit, err := r.mergeIntoCriterion(edge, pkg)
		if err != nil {
			return nil, err
		}
		updates[edge.pkg] = crit
	}
	return updates, nil
}

// backtrack unwinds the state stack looking for a point where the newly
// discovered incompatibility can be absorbed without immediately
// reproducing the same conflict.
func (r *resolution) backtrack() bool {
	for len(r.states) >= 3 {
		r.states = r.states[:len(r.states)-1]
		broken := r.current()
		r.states = r.states[:len(r.states)-1]

		var brokenPkg dep.PackageID
		var brokenVersion string
		for pkg, version := range broken.mapping {
			if _, ok := r.current().mapping[pkg]; !ok {
				brokenPkg, brokenVersion = pkg, version
				break
			}
		}

		crit := r.current().criteria[brokenPkg].copy()
		if crit.incompatibilities == nil {
			crit.incompatibilities = make(map[string]bool)
		}
		crit.incompatibilities[brokenVersion] = true
		var remaining []string
		for _, c := range crit.candidates {
			if !crit.incompatibilities[c] {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) == 0 {
			// Even with the new incompatibility recorded, this state
			// has nothing left to try; keep winding down the stack.
			continue
		}
		crit.candidates = remaining
		r.pushClone()
		r.current().criteria[brokenPkg] = crit
		return true
	}
	return false
}

// run executes the main resolution loop seeded by rootEdges, the lowered
// direct requirements.
func (r *resolution) run(rootEdges []requirementEdge) (*state, error) {
	r.states = []*state{newState()}
	s := r.current()
	for _, edge := range rootEdges {
		crit, err := r.mergeIntoCriterion(edge, dep.Root())
		if err != nil {
			if ce, ok := err.(conflictError); ok {
				return nil, NoSolutionError{causes: []conflictError{ce}}
			}
			return nil, err
		}
		s.criteria[edge.pkg] = crit
	}
	r.pushClone()

	for round := 0; round < maxRounds; round++ {
		s := r.current()
		var unsatisfied []dep.PackageID
		for pkg := range s.criteria {
			if !s.isSatisfying(pkg) {
				unsatisfied = append(unsatisfied, pkg)
			}
		}
		if len(unsatisfied) == 0 {
			return s, nil
		}
		sort.Slice(unsatisfied, func(i, j int) bool {
			return r.preference(unsatisfied[i]).less(r.preference(unsatisfied[j]))
		})
		target := unsatisfied[0]

		causes, err := r.attemptToPin(target)
		if err != nil {
			return nil, err
		}
		if len(causes) != 0 {
			if !r.backtrack() {
				return nil, NoSolutionError{causes: causes}
			}
			continue
		}
		r.pushClone()
	}
	return nil, tooDeepError{}
}
