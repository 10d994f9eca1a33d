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
	"sort"
	"testing"

	"github.com/posy-go/envplan/internal/testdb"
	"github.com/posy-go/envplan/platform"
	"github.com/posy-go/envplan/resolvecore"
)

func specs(t *testing.T, s string) resolvecore.Specifiers {
	t.Helper()
	sp, err := resolvecore.ParseSpecifiers(s)
	if err != nil {
		t.Fatalf("ParseSpecifiers(%q): %v", s, err)
	}
	return sp
}

func req(t *testing.T, name resolvecore.PackageName, s string, extras []string, marker string) resolvecore.Requirement {
	return resolvecore.Requirement{Name: name, Specifiers: specs(t, s), Extras: extras, MarkerExpr: marker}
}

func pinnedNames(bp *Blueprint) []string {
	var out []string
	for _, w := range bp.Wheels {
		out = append(out, string(w.Pinned.Name))
	}
	sort.Strings(out)
	return out
}

func basicFixtures(t *testing.T) *testdb.DB {
	db := testdb.New("macosx_11_0_arm64")
	db.AddPybi("cpython", testdb.PybiFixture{
		Version:  "3.11.0",
		ArchTags: []string{"macosx_11_0_arm64"},
		EnvironmentMarkerVariables: map[string]string{
			"python_full_version": "3.11.0",
			"python_version":      "3.11",
			"sys_platform":        "darwin",
		},
		WheelTagTemplates: []string{"cp311-cp311-PLATFORM"},
		Hash:              "sha256:cpython-3.11.0",
	})
	db.AddWheel("a", testdb.WheelFixture{
		Version:      "1.0.0",
		RequiresDist: []resolvecore.Requirement{req(t, "b", "", nil, "")},
		Hash:         "sha256:a-1.0.0",
	})
	db.AddWheel("b", testdb.WheelFixture{Version: "2.0.0", Hash: "sha256:b-2.0.0"})
	return db
}

func TestBriefResolveEndToEnd(t *testing.T) {
	db := basicFixtures(t)
	host := platform.FromCoreTag("macosx_11_0_arm64")
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", ">=1.0.0", nil, "")},
		AllowPre:     AllowPreNone(),
	}

	bp, err := brief.Resolve(db, host, nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bp.Pybi.Name != "cpython" || bp.Pybi.Version != "3.11.0" {
		t.Errorf("Pybi = %+v, want cpython 3.11.0", bp.Pybi)
	}
	if len(bp.Pybi.Hashes) == 0 {
		t.Error("Pybi has no recorded hashes")
	}

	got := pinnedNames(bp)
	want := []string{"a", "b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("pinned wheels = %v, want %v", got, want)
	}
	for _, w := range bp.Wheels {
		if w.Pinned.Version == "" {
			t.Errorf("%s has no pinned version", w.Pinned.Name)
		}
		if len(w.Pinned.Hashes) == 0 {
			t.Errorf("%s has no recorded hashes", w.Pinned.Name)
		}
	}
}

func TestBriefResolveInfersPlatformMachine(t *testing.T) {
	db := basicFixtures(t)
	host := platform.FromCoreTag("macosx_11_0_arm64")
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", "", nil, "")},
		AllowPre:     AllowPreNone(),
	}
	// The PYBI fixture's environment marker variables deliberately omit
	// platform_machine, so a successful resolve proves Brief.Resolve
	// filled it in from the narrowed wheel platform.
	bp, err := brief.Resolve(db, host, nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if bp.Pybi.Version != "3.11.0" {
		t.Errorf("Pybi.Version = %q, want 3.11.0", bp.Pybi.Version)
	}
}

func TestBriefResolveNoCompatiblePybi(t *testing.T) {
	db := basicFixtures(t)
	host := platform.FromCoreTag("manylinux2014_x86_64") // host is Linux, pybi is macOS-only
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", "", nil, "")},
		AllowPre:     AllowPreNone(),
	}
	_, err := brief.Resolve(db, host, nil, nil)
	if err == nil {
		t.Fatal("Resolve() succeeded, want an error")
	}
	be, ok := err.(*Error)
	if !ok {
		t.Fatalf("Resolve() error type = %T, want *Error", err)
	}
	if be.Kind != ResolutionError {
		t.Errorf("Resolve() error kind = %v, want ResolutionError", be.Kind)
	}
}

func TestBriefResolveRejectsConstraints(t *testing.T) {
	db := basicFixtures(t)
	host := platform.FromCoreTag("macosx_11_0_arm64")
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", "", nil, "")},
		AllowPre:     AllowPreNone(),
		Constraints:  []resolvecore.Requirement{req(t, "c", "", nil, "")},
	}
	_, err := brief.Resolve(db, host, nil, nil)
	be, ok := err.(*Error)
	if !ok {
		t.Fatalf("Resolve() error type = %T, want *Error", err)
	}
	if be.Kind != InputError {
		t.Errorf("Resolve() error kind = %v, want InputError", be.Kind)
	}
}

func TestBriefResolveMissingExtra(t *testing.T) {
	db := basicFixtures(t)
	host := platform.FromCoreTag("macosx_11_0_arm64")
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", "", []string{"nope"}, "")},
		AllowPre:     AllowPreNone(),
	}
	_, err := brief.Resolve(db, host, nil, nil)
	be, ok := err.(*Error)
	if !ok {
		t.Fatalf("Resolve() error type = %T, want *Error", err)
	}
	if be.Kind != MissingExtra {
		t.Errorf("Resolve() error kind = %v, want MissingExtra", be.Kind)
	}
}

func TestBriefResolveHonorsPreviousPins(t *testing.T) {
	db := basicFixtures(t)
	db.AddWheel("a", testdb.WheelFixture{Version: "1.1.0", Hash: "sha256:a-1.1.0"})
	host := platform.FromCoreTag("macosx_11_0_arm64")
	brief := &Brief{
		Python:       PythonRequirement{Name: "cpython", Specifiers: specs(t, ">=3.11,<3.12")},
		Requirements: []resolvecore.Requirement{req(t, "a", ">=1.0.0", nil, "")},
		AllowPre:     AllowPreNone(),
	}

	like := &Blueprint{
		Pybi: resolvecore.PinnedPackage{Name: "cpython", Version: "3.11.0"},
		Wheels: []WheelPin{
			{Pinned: resolvecore.PinnedPackage{Name: "a", Version: "1.0.0"}},
		},
	}
	bp, err := brief.Resolve(db, host, like, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, w := range bp.Wheels {
		if w.Pinned.Name == "a" && w.Pinned.Version != "1.0.0" {
			t.Errorf("a pinned to %s, want the hinted 1.0.0 even though 1.1.0 also satisfies", w.Pinned.Version)
		}
	}
}
