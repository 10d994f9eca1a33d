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

import "github.com/posy-go/envplan/internal/lru"

// unboundedCacheSize is large enough that a MetadataCache never evicts
// within the lifetime of a single resolve; the cache is supposed to grow
// monotonically and be discarded with the resolve, never to page entries
// out under memory pressure mid-resolve.
const unboundedCacheSize = 1 << 20

type metadataKey struct {
	name    PackageName
	version string
}

// MetadataCache implements component C4: a lazy, per-resolve memoization
// of (package, version) to WheelResolveMetadata/PybiResolveMetadata,
// computed at most once per entry by asking the PackageDB for the winning
// artifact's metadata.
type MetadataCache struct {
	db    PackageDB
	wheel *lru.Cache[metadataKey, WheelResolveMetadata]
	pybi  *lru.Cache[metadataKey, PybiResolveMetadata]
}

// NewMetadataCache returns a cache backed by db, valid for one resolve.
func NewMetadataCache(db PackageDB) *MetadataCache {
	return &MetadataCache{
		db:    db,
		wheel: lru.New[metadataKey, WheelResolveMetadata](unboundedCacheSize),
		pybi:  lru.New[metadataKey, PybiResolveMetadata](unboundedCacheSize),
	}
}

// WheelMetadata returns the (memoized) metadata for name at version.
func (c *MetadataCache) WheelMetadata(name PackageName, version string) (WheelResolveMetadata, error) {
	key := metadataKey{name: name, version: version}
	return c.wheel.GetOrCompute(key, func() (WheelResolveMetadata, error) {
		artifacts, err := c.db.ArtifactsForVersion(name, version, Wheel)
		if err != nil {
			return WheelResolveMetadata{}, &DBError{Op: "ArtifactsForVersion", Err: err}
		}
		chosen, inner, err := c.db.GetWheelMetadata(artifacts)
		if err != nil {
			return WheelResolveMetadata{}, &DBError{Op: "GetWheelMetadata", Err: err}
		}
		return WheelResolveMetadata{Provenance: provenance(chosen), Inner: inner}, nil
	})
}

// PybiMetadata returns the (memoized) metadata for name at version.
func (c *MetadataCache) PybiMetadata(name PackageName, version string) (PybiResolveMetadata, error) {
	key := metadataKey{name: name, version: version}
	return c.pybi.GetOrCompute(key, func() (PybiResolveMetadata, error) {
		artifacts, err := c.db.ArtifactsForVersion(name, version, Pybi)
		if err != nil {
			return PybiResolveMetadata{}, &DBError{Op: "ArtifactsForVersion", Err: err}
		}
		chosen, meta, err := c.db.GetPybiMetadata(artifacts)
		if err != nil {
			return PybiResolveMetadata{}, &DBError{Op: "GetPybiMetadata", Err: err}
		}
		meta.Provenance = provenance(chosen)
		return meta, nil
	})
}

// provenance picks a stable identifier for an artifact: its URL if known,
// falling back to its filename.
func provenance(a ArtifactInfo) string {
	if a.URL != "" {
		return a.URL
	}
	return a.Name
}
