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
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/posy-go/envplan/platform"
	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/resolvecore/solver"
)

// Resolve turns a Brief into a Blueprint: it picks a PYBI compatible with
// host, then resolves the Brief's requirements against it, preferring
// like's pins where they still satisfy the new requirements. like may be
// nil for a first-time resolve. host may also be nil, in which case it is
// learned from db.CorePlatformTags() via platform.CurrentPlatform.
func (b *Brief) Resolve(db resolvecore.PackageDB, host *platform.PybiPlatform, like *Blueprint, log *zap.Logger) (*Blueprint, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(b.Constraints) != 0 {
		return nil, wrap(InputError, fmt.Errorf("constraints are not yet supported, got %d", len(b.Constraints)))
	}
	if host == nil {
		var err error
		host, err = platform.CurrentPlatform(db)
		if err != nil {
			return nil, wrap(classifyCoreError(err), err)
		}
	}

	hints := buildVersionHints(like)

	picked, err := pickBestPybi(db, b, host, hints)
	if err != nil {
		return nil, wrap(classifyCoreError(err), err)
	}
	log.Debug("picked pybi", zap.String("name", string(picked.name)), zap.String("version", picked.version))

	metadataCache := resolvecore.NewMetadataCache(db)
	pybiMeta, err := metadataCache.PybiMetadata(picked.name, picked.version)
	if err != nil {
		return nil, wrap(IOError, fmt.Errorf("fetching metadata for %s %s: %w", picked.name, picked.version, err))
	}

	envVars := make(map[string]string, len(pybiMeta.EnvironmentMarkerVariables)+1)
	for k, v := range pybiMeta.EnvironmentMarkerVariables {
		envVars[k] = v
	}
	if _, ok := envVars["platform_machine"]; !ok {
		wheelPlatform, err := host.WheelPlatformForPybi(
			platform.PybiName{Distribution: string(picked.name), Version: picked.version, ArchTags: picked.artifact.ArchTags},
			platform.PybiCoreMetadata{EnvironmentMarkerVariables: pybiMeta.EnvironmentMarkerVariables, WheelTagTemplates: pybiMeta.WheelTagTemplates},
		)
		if err != nil {
			return nil, wrap(IntegrityError, err)
		}
		machine, err := wheelPlatform.InferPlatformMachine()
		if err != nil {
			return nil, wrap(IntegrityError, err)
		}
		envVars["platform_machine"] = machine
	}

	pythonFullVersion, ok := envVars["python_full_version"]
	if !ok {
		return nil, wrap(IntegrityError, fmt.Errorf("pybi %s %s is missing the python_full_version environment marker variable", picked.name, picked.version))
	}

	solution, err := solver.Resolve(db, metadataCache, envVars, b.Requirements, b.AllowPre, pythonFullVersion, hints, log)
	if err != nil {
		return nil, wrap(classifyCoreError(err), err)
	}

	names := make([]resolvecore.PackageName, 0, len(solution))
	for name := range solution {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	wheels := make([]WheelPin, 0, len(names))
	for _, name := range names {
		version := solution[name]
		pin, err := pinnedPackage(db, name, version, resolvecore.Wheel)
		if err != nil {
			return nil, wrap(IOError, fmt.Errorf("pinning %s %s: %w", name, version, err))
		}
		meta, err := metadataCache.WheelMetadata(name, version)
		if err != nil {
			return nil, wrap(IOError, fmt.Errorf("fetching metadata for %s %s: %w", name, version, err))
		}
		wheels = append(wheels, WheelPin{Pinned: pin, Metadata: meta})
	}

	pybiPin, err := pinnedPackage(db, picked.name, picked.version, resolvecore.Pybi)
	if err != nil {
		return nil, wrap(IOError, fmt.Errorf("pinning %s %s: %w", picked.name, picked.version, err))
	}

	return &Blueprint{Pybi: pybiPin, Wheels: wheels}, nil
}

// classifyCoreError maps an error surfaced by the solver or the PYBI
// picker to the taxonomy callers see. A resolvecore.DBError anywhere in
// err's chain means the failure originated in the caller's PackageDB, not
// in resolution logic, and is reported as IOError regardless of which
// core step was in progress when it surfaced.
func classifyCoreError(err error) ErrorKind {
	var dbErr *resolvecore.DBError
	if errors.As(err, &dbErr) {
		return IOError
	}
	switch err.(type) {
	case solver.MissingExtraError:
		return MissingExtra
	case solver.RequiresPythonIntegrityError:
		return IntegrityError
	case solver.NoSolutionError:
		return ResolutionError
	default:
		return ResolutionError
	}
}
