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

/*
Package solver implements component C5: the conflict-driven resolver that
turns a Brief's requirements into a pinned set of wheel versions.

It is translated from the teacher's own pip-resolvelib-style engine
(deps.dev/util/resolve/pypi), generalized the way the original Rust
implementation generalizes it: requirements are lowered into edges between
virtual packages (resolvecore/dep.PackageID), so that "foo[bar]" becomes a
dependency on a virtual "foo[bar]" package which in turn depends on "foo"
at the exact same version plus whatever "bar" adds. Discarding the virtual
extra packages at the end recovers the real solution.

Unlike the teacher, which intersects several independently-fetched
per-requirement version lists (because its multi-ecosystem resolve.Client
can expose different lookups for the same package), this module has a
single source of truth for a package's version list --
resolvecore.FetchAndSortVersions -- so a criterion's candidates are simply
that list filtered by every specifier seen so far.
*/
package solver

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/posy-go/envplan/internal/lru"
	"github.com/posy-go/envplan/markerenv"
	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/resolvecore/dep"
)

// requirementEdge is one lowered dependency: a virtual package and the
// specifiers that must hold for the version pinned to it.
type requirementEdge struct {
	pkg        dep.PackageID
	specifiers resolvecore.Specifiers
}

// provider adapts a PackageDB plus an environment into the primitives the
// resolution loop needs: ordered candidate versions per package and
// lowered dependency edges per (package, version) pin.
type provider struct {
	db       resolvecore.PackageDB
	metadata *resolvecore.MetadataCache
	env      map[string]string
	allowPre resolvecore.AllowPre
	hints    resolvecore.VersionHints
	log      *zap.Logger

	pythonFullVersion string

	rootRequirements []resolvecore.Requirement

	markerCache *lru.Cache[string, markerenv.Marker]
	versions    map[resolvecore.PackageName][]resolvecore.VersionCandidate
}

func newProvider(db resolvecore.PackageDB, metadata *resolvecore.MetadataCache, env map[string]string, allowPre resolvecore.AllowPre, hints resolvecore.VersionHints, pythonFullVersion string, rootRequirements []resolvecore.Requirement, log *zap.Logger) *provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &provider{
		db:                db,
		metadata:          metadata,
		env:               env,
		allowPre:          allowPre,
		hints:             hints,
		log:               log,
		pythonFullVersion: pythonFullVersion,
		rootRequirements:  rootRequirements,
		markerCache:       lru.New[string, markerenv.Marker](10000),
		versions:          make(map[resolvecore.PackageName][]resolvecore.VersionCandidate),
	}
}

// versionsFor returns name's candidate versions, most preferred first,
// fetching and caching them on first use. Extra packages for the same name
// share this list: a "foo[bar]" pin always lands on a version of "foo"
// itself.
func (p *provider) versionsFor(name resolvecore.PackageName) ([]resolvecore.VersionCandidate, error) {
	if vs, ok := p.versions[name]; ok {
		return vs, nil
	}
	pythonVersion, err := resolvecore.ParseVersion(p.pythonFullVersion)
	if err != nil {
		return nil, fmt.Errorf("solver: parsing python_full_version %q: %w", p.pythonFullVersion, err)
	}
	vs, err := resolvecore.FetchAndSortVersions(p.db, name, resolvecore.Wheel, p.allowPreFor(name), pythonVersion, p.hints)
	if err != nil {
		return nil, err
	}
	p.versions[name] = vs
	return vs, nil
}

// allowPreFor widens p.allowPre's policy for name when one of the root
// requirements on name itself mentions a prerelease (e.g. "==2.0.0rc1"):
// per PEP 440, a specifier that names a prerelease is implicit permission
// to match prereleases for that package, regardless of the caller's
// general policy.
func (p *provider) allowPreFor(name resolvecore.PackageName) resolvecore.AllowPre {
	for _, req := range p.rootRequirements {
		if req.Name == name && req.Specifiers.HasPrerelease() {
			return resolvecore.AllowPreFunc(func(resolvecore.PackageName) bool { return true })
		}
	}
	return p.allowPre
}

// parseMarker parses and caches a raw PEP 508 marker expression.
func (p *provider) parseMarker(raw string) (markerenv.Marker, error) {
	if m, ok := p.markerCache.Get(raw); ok {
		return m, nil
	}
	m, err := markerenv.Parse(raw)
	if err != nil {
		return nil, err
	}
	p.markerCache.Add(raw, m)
	return m, nil
}

// lower turns a list of requirements into dependency edges, evaluating
// each requirement's marker (if any) with extra bound to the identity of
// the package the requirements belong to.
func (p *provider) lower(reqs []resolvecore.Requirement, extra string) ([]requirementEdge, error) {
	var out []requirementEdge
	for _, req := range reqs {
		if req.MarkerExpr != "" {
			m, err := p.parseMarker(req.MarkerExpr)
			if err != nil {
				return nil, fmt.Errorf("solver: parsing marker %q for %s: %w", req.MarkerExpr, req.Name, err)
			}
			if !m.Eval(p.env, extra) {
				continue
			}
		}
		if len(req.Extras) == 0 {
			out = append(out, requirementEdge{pkg: dep.Base(req.Name), specifiers: req.Specifiers})
			continue
		}
		for _, e := range req.Extras {
			out = append(out, requirementEdge{pkg: dep.WithExtra(req.Name, e), specifiers: req.Specifiers})
		}
	}
	return out, nil
}

// dependenciesFor lowers the dependency edges of pkg pinned at version.
// version is ignored for the root package.
func (p *provider) dependenciesFor(pkg dep.PackageID, version string) ([]requirementEdge, error) {
	if pkg.IsRoot() {
		return p.lower(p.rootRequirements, "")
	}

	meta, err := p.metadata.WheelMetadata(pkg.Name(), version)
	if err != nil {
		return nil, fmt.Errorf("solver: fetching metadata for %s %s: %w", pkg.Name(), version, err)
	}

	// FetchAndSortVersions already filtered candidates against
	// requires_python, but that filter runs on the index-level
	// ArtifactInfo.RequiresPython of whichever artifact happened to be
	// enumerated, while GetWheelMetadata is free to choose a different
	// artifact for the same version. Re-check the frozen metadata's own
	// requires_python here, where it is actually read, so a version that
	// only survived because of that mismatch cannot be pinned.
	if meta.Inner.RequiresPython != "" {
		spec, err := resolvecore.ParseSpecifiers(meta.Inner.RequiresPython)
		if err != nil {
			return nil, fmt.Errorf("solver: parsing requires_python %q for %s %s: %w", meta.Inner.RequiresPython, pkg.Name(), version, err)
		}
		if !spec.Match(p.pythonFullVersion) {
			return nil, RequiresPythonIntegrityError{Name: pkg.Name(), Version: version}
		}
	}

	edges, err := p.lower(meta.Inner.RequiresDist, pkg.Extra())
	if err != nil {
		return nil, err
	}

	if pkg.HasExtra() {
		if !containsExtra(meta.Inner.Extras, pkg.Extra()) {
			return nil, MissingExtraError{Name: pkg.Name(), Extra: pkg.Extra()}
		}
		exact, err := resolvecore.ParseSpecifiers("==" + version)
		if err != nil {
			return nil, fmt.Errorf("solver: building self-edge for %s: %w", pkg, err)
		}
		edges = append(edges, requirementEdge{pkg: dep.Base(pkg.Name()), specifiers: exact})
	}

	return edges, nil
}

func containsExtra(extras []string, want string) bool {
	for _, e := range extras {
		if e == want {
			return true
		}
	}
	return false
}
