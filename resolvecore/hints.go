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

// VersionHint records the version and hash set a prior Blueprint pinned for
// one package, so a new resolve can prefer reproducing it.
type VersionHint struct {
	Version string
	Hashes  map[string]bool
}

// VersionHints maps package name to the hint built from a prior Blueprint,
// per PinnedPackage. It has no notion of PYBI vs wheel: both contribute a
// (version, hash set) pair keyed by name.
type VersionHints struct {
	byName map[PackageName]VersionHint
}

// NewVersionHints returns an empty set of hints.
func NewVersionHints() VersionHints {
	return VersionHints{byName: make(map[PackageName]VersionHint)}
}

// AddPinned records the version and hashes of a previously pinned package.
func (h *VersionHints) AddPinned(pin PinnedPackage) {
	if h.byName == nil {
		h.byName = make(map[PackageName]VersionHint)
	}
	hashes := make(map[string]bool, len(pin.Hashes))
	for _, hash := range pin.Hashes {
		hashes[hash] = true
	}
	h.byName[pin.Name] = VersionHint{Version: pin.Version, Hashes: hashes}
}

// Get returns the hint for name, if any.
func (h VersionHints) Get(name PackageName) (VersionHint, bool) {
	hint, ok := h.byName[name]
	return hint, ok
}
