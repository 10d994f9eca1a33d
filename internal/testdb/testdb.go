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
Package testdb is an in-memory, fully in-process resolvecore.PackageDB
used by the rest of this module's test suites. It plays the same role the
teacher's own local test client (a fixture-backed stand-in for a real
package index) plays for its tests: every fixture is supplied by the
caller up front, so a test can assert on exactly the versions, markers,
and hashes it set up rather than against live network state.

It deliberately implements nothing about fetching, hashing, or parsing
real archives: those are the concerns a production PackageDB has to
handle and this module considers out of scope.
*/
package testdb

import (
	"fmt"
	"sort"

	"github.com/posy-go/envplan/resolvecore"
)

// WheelFixture describes one wheel release to serve from the DB.
type WheelFixture struct {
	Version        string
	RequiresDist   []resolvecore.Requirement
	RequiresPython string
	Extras         []string
	Hash           string
	Yanked         bool
}

// PybiFixture describes one PYBI release to serve from the DB.
type PybiFixture struct {
	Version                    string
	ArchTags                   []string
	EnvironmentMarkerVariables map[string]string
	WheelTagTemplates          []string
	Hash                       string
	RequiresPython             string
	Yanked                     bool
}

type releaseKey struct {
	name    resolvecore.PackageName
	version string
	kind    resolvecore.Kind
}

// DB is an in-memory PackageDB built from fixtures added before a test
// runs. It is not safe for concurrent writes.
type DB struct {
	corePlatformTags []string
	wheels           map[resolvecore.PackageName][]WheelFixture
	pybis            map[resolvecore.PackageName][]PybiFixture
	filenames        map[string]releaseKey
}

// New returns an empty DB reporting corePlatformTags as the host's native
// core tags.
func New(corePlatformTags ...string) *DB {
	return &DB{
		corePlatformTags: corePlatformTags,
		wheels:           make(map[resolvecore.PackageName][]WheelFixture),
		pybis:            make(map[resolvecore.PackageName][]PybiFixture),
		filenames:        make(map[string]releaseKey),
	}
}

func wheelFilename(name resolvecore.PackageName, version string) string {
	return fmt.Sprintf("%s-%s-py3-none-any.whl", name, version)
}

func pybiFilename(name resolvecore.PackageName, version string) string {
	return fmt.Sprintf("%s-%s.pybi", name, version)
}

// AddWheel registers a wheel fixture for name.
func (db *DB) AddWheel(name resolvecore.PackageName, f WheelFixture) {
	db.wheels[name] = append(db.wheels[name], f)
	db.filenames[wheelFilename(name, f.Version)] = releaseKey{name: name, version: f.Version, kind: resolvecore.Wheel}
}

// AddPybi registers a PYBI fixture for name.
func (db *DB) AddPybi(name resolvecore.PackageName, f PybiFixture) {
	db.pybis[name] = append(db.pybis[name], f)
	db.filenames[pybiFilename(name, f.Version)] = releaseKey{name: name, version: f.Version, kind: resolvecore.Pybi}
}

func (db *DB) AvailableArtifacts(name resolvecore.PackageName, kind resolvecore.Kind) ([]resolvecore.VersionArtifacts, error) {
	var out []resolvecore.VersionArtifacts
	switch kind {
	case resolvecore.Wheel:
		for _, f := range db.wheels[name] {
			out = append(out, resolvecore.VersionArtifacts{
				Version:   f.Version,
				Artifacts: []resolvecore.ArtifactInfo{db.wheelArtifact(name, f)},
			})
		}
	case resolvecore.Pybi:
		for _, f := range db.pybis[name] {
			out = append(out, resolvecore.VersionArtifacts{
				Version:   f.Version,
				Artifacts: []resolvecore.ArtifactInfo{db.pybiArtifact(name, f)},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return resolvecore.CompareVersions(out[i].Version, out[j].Version) < 0 })
	return out, nil
}

func (db *DB) wheelArtifact(name resolvecore.PackageName, f WheelFixture) resolvecore.ArtifactInfo {
	return resolvecore.ArtifactInfo{
		Kind:           resolvecore.Wheel,
		Name:           wheelFilename(name, f.Version),
		URL:            "file:///" + wheelFilename(name, f.Version),
		Hash:           f.Hash,
		RequiresPython: f.RequiresPython,
		Yanked:         f.Yanked,
	}
}

func (db *DB) pybiArtifact(name resolvecore.PackageName, f PybiFixture) resolvecore.ArtifactInfo {
	return resolvecore.ArtifactInfo{
		Kind:           resolvecore.Pybi,
		Name:           pybiFilename(name, f.Version),
		URL:            "file:///" + pybiFilename(name, f.Version),
		Hash:           f.Hash,
		RequiresPython: f.RequiresPython,
		Yanked:         f.Yanked,
		ArchTags:       f.ArchTags,
	}
}

func (db *DB) ArtifactsForVersion(name resolvecore.PackageName, version string, kind resolvecore.Kind) ([]resolvecore.ArtifactInfo, error) {
	switch kind {
	case resolvecore.Wheel:
		for _, f := range db.wheels[name] {
			if f.Version == version {
				return []resolvecore.ArtifactInfo{db.wheelArtifact(name, f)}, nil
			}
		}
	case resolvecore.Pybi:
		for _, f := range db.pybis[name] {
			if f.Version == version {
				return []resolvecore.ArtifactInfo{db.pybiArtifact(name, f)}, nil
			}
		}
	}
	return nil, fmt.Errorf("testdb: no %s release %s %s", kind, name, version)
}

func (db *DB) GetWheelMetadata(artifacts []resolvecore.ArtifactInfo) (resolvecore.ArtifactInfo, resolvecore.WheelResolveMetadataInner, error) {
	if len(artifacts) == 0 {
		return resolvecore.ArtifactInfo{}, resolvecore.WheelResolveMetadataInner{}, fmt.Errorf("testdb: no artifacts to read metadata from")
	}
	chosen := artifacts[0]
	key, ok := db.filenames[chosen.Name]
	if !ok || key.kind != resolvecore.Wheel {
		return resolvecore.ArtifactInfo{}, resolvecore.WheelResolveMetadataInner{}, fmt.Errorf("testdb: unknown wheel artifact %q", chosen.Name)
	}
	for _, f := range db.wheels[key.name] {
		if f.Version == key.version {
			return chosen, resolvecore.WheelResolveMetadataInner{
				RequiresDist:   f.RequiresDist,
				RequiresPython: f.RequiresPython,
				Extras:         f.Extras,
			}, nil
		}
	}
	return resolvecore.ArtifactInfo{}, resolvecore.WheelResolveMetadataInner{}, fmt.Errorf("testdb: release disappeared for %q", chosen.Name)
}

func (db *DB) GetPybiMetadata(artifacts []resolvecore.ArtifactInfo) (resolvecore.ArtifactInfo, resolvecore.PybiResolveMetadata, error) {
	if len(artifacts) == 0 {
		return resolvecore.ArtifactInfo{}, resolvecore.PybiResolveMetadata{}, fmt.Errorf("testdb: no artifacts to read metadata from")
	}
	chosen := artifacts[0]
	key, ok := db.filenames[chosen.Name]
	if !ok || key.kind != resolvecore.Pybi {
		return resolvecore.ArtifactInfo{}, resolvecore.PybiResolveMetadata{}, fmt.Errorf("testdb: unknown pybi artifact %q", chosen.Name)
	}
	for _, f := range db.pybis[key.name] {
		if f.Version == key.version {
			return chosen, resolvecore.PybiResolveMetadata{
				EnvironmentMarkerVariables: f.EnvironmentMarkerVariables,
				WheelTagTemplates:          f.WheelTagTemplates,
			}, nil
		}
	}
	return resolvecore.ArtifactInfo{}, resolvecore.PybiResolveMetadata{}, fmt.Errorf("testdb: release disappeared for %q", chosen.Name)
}

func (db *DB) CorePlatformTags() ([]string, error) {
	return db.corePlatformTags, nil
}
