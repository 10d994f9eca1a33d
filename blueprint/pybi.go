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
	"fmt"

	"github.com/posy-go/envplan/platform"
	"github.com/posy-go/envplan/resolvecore"
)

// pickedPybi is the PYBI artifact a resolve settled on: its package name,
// the version it belongs to, and the specific artifact chosen for its
// compatibility score.
type pickedPybi struct {
	name     resolvecore.PackageName
	version  string
	artifact resolvecore.ArtifactInfo
}

// pickBestPybi finds the platform-compatible PYBI artifact with the
// highest platform compatibility score among all versions that satisfy
// brief's interpreter requirement. Versions are walked in the version
// selector's order (hinted version first, then descending), and that
// order, then the artifact order within a version, only breaks ties
// between equal scores.
//
// This does not yet apply brief.python's own prerelease/yank/
// requires_python filters beyond what FetchAndSortVersions already does
// for every package; a PYBI's own requires_python, if any, is not
// meaningful against itself and is intentionally not consulted here,
// matching resolvecore.FetchAndSortVersions's pythonVersion == nil
// convention for the interpreter's own resolve.
func pickBestPybi(db resolvecore.PackageDB, brief *Brief, host *platform.PybiPlatform, hints resolvecore.VersionHints) (pickedPybi, error) {
	candidates, err := resolvecore.FetchAndSortVersions(db, brief.Python.Name, resolvecore.Pybi, brief.AllowPre, nil, hints)
	if err != nil {
		return pickedPybi{}, fmt.Errorf("fetching %s versions: %w", brief.Python.Name, err)
	}

	// Score every compatible artifact across every candidate version and
	// keep the single highest-scoring one, rather than settling for the
	// first version (in selector order) that has any compatible build at
	// all: a later, lower-preference version can still advertise a
	// strictly better-matching architecture build. Ties (including ties
	// against a version earlier in selector order) favor whichever
	// candidate was seen first, since candidates is already ordered
	// hinted-then-descending.
	var best *pickedPybi
	var bestScore int
	for _, vc := range candidates {
		if !brief.Python.Specifiers.Match(vc.Version) {
			continue
		}
		for i := range vc.Artifacts {
			a := vc.Artifacts[i]
			score, ok := host.MaxCompatibility(a.ArchTags)
			if !ok {
				continue
			}
			if best == nil || score > bestScore {
				picked := pickedPybi{name: brief.Python.Name, version: vc.Version, artifact: a}
				best, bestScore = &picked, score
			}
		}
	}
	if best == nil {
		return pickedPybi{}, fmt.Errorf("no %s build compatible with this platform satisfies %q", brief.Python.Name, brief.Python.Specifiers)
	}
	return *best, nil
}
