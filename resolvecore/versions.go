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
	"sort"

	"deps.dev/util/semver"
)

// VersionCandidate is one accepted version and the artifacts published
// under it, after the version selector's filters have run.
type VersionCandidate struct {
	Version   string
	Artifacts []ArtifactInfo
}

// AllowPre decides whether prerelease versions of name may be offered.
type AllowPre interface {
	Allows(name PackageName) bool
}

// AllowPreFunc adapts a function to AllowPre.
type AllowPreFunc func(name PackageName) bool

func (f AllowPreFunc) Allows(name PackageName) bool { return f(name) }

// FetchAndSortVersions implements the version selector (component C3):
// it asks db for every (version, artifacts) pair published for name, keeps
// the versions that survive the prerelease/yank/requires_python filters,
// and orders them so a hinted version floats to the top and the rest
// descend by version.
//
// pythonVersion is the resolve-wide interpreter version to filter wheel
// requires_python against; it is nil when selecting the PYBI itself (a
// PYBI's own requires_python, if any, does not apply to itself).
func FetchAndSortVersions(db PackageDB, name PackageName, kind Kind, allowPre AllowPre, pythonVersion *semver.Version, hints VersionHints) ([]VersionCandidate, error) {
	all, err := db.AvailableArtifacts(name, kind)
	if err != nil {
		return nil, &DBError{Op: "AvailableArtifacts", Err: err}
	}

	hint, hasHint := hints.Get(name)

	var out []VersionCandidate
	for _, va := range all {
		version, artifacts := va.Version, va.Artifacts

		isPre, err := isPrerelease(version)
		if err != nil {
			// Unparsable versions are skipped rather than treated as
			// fatal: the index may contain stray entries.
			continue
		}
		if isPre && !allowPre.Allows(name) {
			continue
		}

		var survivors []ArtifactInfo
		for _, a := range artifacts {
			if a.Yanked && !rescuedByHint(hasHint, hint, version, a) {
				continue
			}
			if pythonVersion != nil && a.RequiresPython != "" {
				spec, err := ParseSpecifiers(a.RequiresPython)
				if err != nil || !spec.MatchVersion(pythonVersion) {
					continue
				}
			}
			survivors = append(survivors, a)
		}
		if len(survivors) == 0 {
			continue
		}
		out = append(out, VersionCandidate{Version: version, Artifacts: survivors})
	}

	sort.SliceStable(out, func(i, j int) bool {
		iMismatch := !(hasHint && out[i].Version == hint.Version)
		jMismatch := !(hasHint && out[j].Version == hint.Version)
		if iMismatch != jMismatch {
			return !iMismatch // the hinted version (mismatch == false) sorts first
		}
		return CompareVersions(out[i].Version, out[j].Version) > 0 // descending
	})
	return out, nil
}

func rescuedByHint(hasHint bool, hint VersionHint, version string, a ArtifactInfo) bool {
	if !hasHint || hint.Version != version || a.Hash == "" {
		return false
	}
	return hint.Hashes[a.Hash]
}

func isPrerelease(version string) (bool, error) {
	v, err := semver.PyPI.Parse(version)
	if err != nil {
		return false, err
	}
	return v.IsPrerelease(), nil
}
