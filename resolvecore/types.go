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
Package resolvecore holds the data model shared by the resolver adapter and
the blueprint builder: package and version identity, requirements,
artifact records, and the PackageDB contract the core relies on for all
I/O.
*/
package resolvecore

import "fmt"

// Kind distinguishes the two artifact shapes the core understands.
type Kind byte

const (
	// Pybi is a packaged interpreter distribution.
	Pybi Kind = iota
	// Wheel is a pre-built installable archive.
	Wheel
)

func (k Kind) String() string {
	switch k {
	case Pybi:
		return "pybi"
	case Wheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// PackageName identifies a distribution, e.g. "numpy" or "cpython".
type PackageName string

// VersionKey names a specific version of a package.
type VersionKey struct {
	Name    PackageName
	Version string
}

func (k VersionKey) String() string {
	return fmt.Sprintf("%s==%s", k.Name, k.Version)
}

// Requirement is a single dependency: a package name, a conjunction of
// version specifiers, an optional set of requested extras, and an optional
// environment-marker expression gating whether the requirement applies at
// all.
type Requirement struct {
	Name        PackageName
	Specifiers  Specifiers
	Extras      []string
	MarkerExpr  string // raw PEP 508 marker text; empty means "always applies"
}

// ArtifactInfo is a per-artifact record as exposed by the PackageDB: enough
// to decide whether the artifact is usable and to fetch its metadata, but
// nothing about how it is fetched or stored (that is a PackageDB concern).
type ArtifactInfo struct {
	Kind           Kind
	Name           string // filename, e.g. "numpy-1.26.0-cp311-cp311-manylinux_2_17_x86_64.whl"
	URL            string
	Hash           string // empty if unknown
	RequiresPython string // raw specifier text, empty if unset
	Yanked         bool
	// ArchTags is meaningful only for Kind == Pybi: the ordered platform
	// tags this PYBI build advertises (its own "arch_tags"), used to
	// score it against the host's PybiPlatform when several builds share
	// a version but target different architectures.
	ArchTags []string
}

// WheelResolveMetadataInner is the minimum subset of a wheel's metadata the
// solver needs, and the only part of it the Blueprint freezes.
type WheelResolveMetadataInner struct {
	RequiresDist   []Requirement
	RequiresPython string
	Extras         []string
}

// WheelResolveMetadata pairs the frozen inner metadata with the stable
// identifier of the artifact it was read from.
type WheelResolveMetadata struct {
	Provenance string
	Inner      WheelResolveMetadataInner
}

// PybiResolveMetadata is the PYBI analogue: the environment marker
// variables and wheel tag templates a chosen PYBI advertises, captured at
// resolve time.
type PybiResolveMetadata struct {
	Provenance                 string
	EnvironmentMarkerVariables map[string]string
	WheelTagTemplates          []string
}

// PinnedPackage is a fully pinned package: the chosen version plus every
// hash recorded across that version's artifacts (not just the one artifact
// whose metadata was read).
type PinnedPackage struct {
	Name   PackageName
	Version string
	Hashes []string
}

func (p PinnedPackage) String() string {
	return fmt.Sprintf("%s==%s", p.Name, p.Version)
}

// PackageDB is the external collaborator the core uses for all I/O:
// listing versions, listing artifacts, and extracting metadata. Fetching,
// hashing, archive parsing, and caching-on-disk are the implementation's
// concern, not the core's.
type PackageDB interface {
	// AvailableArtifacts returns (version, artifacts) pairs for name,
	// ordered by version; that order is preserved by the version
	// selector.
	AvailableArtifacts(name PackageName, kind Kind) ([]VersionArtifacts, error)
	// ArtifactsForVersion returns the artifacts published for a single
	// version.
	ArtifactsForVersion(name PackageName, version string, kind Kind) ([]ArtifactInfo, error)
	// GetWheelMetadata chooses one of the supplied artifacts and reads
	// its metadata, returning which artifact was chosen alongside it.
	GetWheelMetadata(artifacts []ArtifactInfo) (ArtifactInfo, WheelResolveMetadataInner, error)
	// GetPybiMetadata is the PYBI analogue of GetWheelMetadata.
	GetPybiMetadata(artifacts []ArtifactInfo) (ArtifactInfo, PybiResolveMetadata, error)
	// CorePlatformTags returns the host's native core tags, most
	// preferred first.
	CorePlatformTags() ([]string, error)
}

// VersionArtifacts pairs a version with the artifacts published under it.
type VersionArtifacts struct {
	Version   string
	Artifacts []ArtifactInfo
}

// DBError wraps an error returned directly by a PackageDB method call, so
// callers several layers up (the solver, the blueprint builder) can tell
// "the index itself failed" apart from an error the core's own resolution
// logic produced, without needing every intermediate layer to know which
// db.-prefixed things are PackageDB calls.
type DBError struct {
	Op  string
	Err error
}

func (e *DBError) Error() string { return fmt.Sprintf("packagedb: %s: %v", e.Op, e.Err) }
func (e *DBError) Unwrap() error { return e.Err }
