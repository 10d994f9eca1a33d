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
Package blueprint implements components C6 and C7: turning a Brief (an
interpreter requirement, a set of top-level requirements, and a
prerelease policy) into a fully pinned Blueprint (one PYBI plus a set of
wheels, each with its frozen resolve-relevant metadata), and surfacing
whatever goes wrong along the way through a single typed Error.
*/
package blueprint

import (
	"fmt"

	"github.com/posy-go/envplan/resolvecore"
)

// PythonRequirement names the interpreter distribution a Brief wants
// (e.g. "cpython") and the version specifiers it must satisfy.
type PythonRequirement struct {
	Name       resolvecore.PackageName
	Specifiers resolvecore.Specifiers
}

// Brief is a high-level description of an environment a caller wants
// built, independent of any particular package index: enough to resolve
// against any PackageDB that can answer for the named packages.
type Brief struct {
	Python       PythonRequirement
	Requirements []resolvecore.Requirement
	AllowPre     AllowPre
	// Constraints is a reserved extension point, mirroring the original
	// tool's commented-out "XX TODO" field: version constraints that
	// narrow the solution space without themselves requesting that a
	// package be installed. Not yet implemented; a non-empty value fails
	// fast with an InputError rather than being silently ignored.
	Constraints []resolvecore.Requirement
}

// WheelPin is one resolved wheel: its pin (version and known hashes) and
// the frozen metadata the resolve actually used, so a later install can
// detect drift if a different wheel for the same version disagrees.
type WheelPin struct {
	Pinned   resolvecore.PinnedPackage
	Metadata resolvecore.WheelResolveMetadata
}

// Blueprint is a fully pinned environment: one PYBI and the wheels
// resolved against it.
type Blueprint struct {
	Pybi   resolvecore.PinnedPackage
	Wheels []WheelPin
}

func (b *Blueprint) String() string {
	s := fmt.Sprintf("pybi: %s\n", b.Pybi)
	for _, w := range b.Wheels {
		s += fmt.Sprintf("wheel: %s (metadata from %s)\n", w.Pinned, w.Metadata.Provenance)
	}
	return s
}

func buildVersionHints(like *Blueprint) resolvecore.VersionHints {
	hints := resolvecore.NewVersionHints()
	if like == nil {
		return hints
	}
	hints.AddPinned(like.Pybi)
	for _, w := range like.Wheels {
		hints.AddPinned(w.Pinned)
	}
	return hints
}

func pinnedPackage(db resolvecore.PackageDB, name resolvecore.PackageName, version string, kind resolvecore.Kind) (resolvecore.PinnedPackage, error) {
	artifacts, err := db.ArtifactsForVersion(name, version, kind)
	if err != nil {
		return resolvecore.PinnedPackage{}, err
	}
	var hashes []string
	for _, a := range artifacts {
		if a.Hash != "" {
			hashes = append(hashes, a.Hash)
		}
	}
	return resolvecore.PinnedPackage{Name: name, Version: version, Hashes: hashes}, nil
}
