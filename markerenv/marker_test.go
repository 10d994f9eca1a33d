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

package markerenv

import "testing"

func mustParse(t *testing.T, raw string) Marker {
	t.Helper()
	m, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", raw, err)
	}
	return m
}

func TestVersionComparison(t *testing.T) {
	m := mustParse(t, `python_version >= "3.8"`)
	env := map[string]string{"python_version": "3.11"}
	if !m.Eval(env, "") {
		t.Error("expected 3.11 >= 3.8")
	}
	env["python_version"] = "3.6"
	if m.Eval(env, "") {
		t.Error("expected 3.6 >= 3.8 to be false")
	}
}

func TestStringComparison(t *testing.T) {
	m := mustParse(t, `sys_platform == "linux"`)
	if !m.Eval(map[string]string{"sys_platform": "linux"}, "") {
		t.Error("expected match")
	}
	if m.Eval(map[string]string{"sys_platform": "darwin"}, "") {
		t.Error("expected mismatch")
	}
}

func TestAndOr(t *testing.T) {
	m := mustParse(t, `sys_platform == "linux" and python_version >= "3.8"`)
	env := map[string]string{"sys_platform": "linux", "python_version": "3.9"}
	if !m.Eval(env, "") {
		t.Error("expected true")
	}
	env["python_version"] = "3.6"
	if m.Eval(env, "") {
		t.Error("expected false")
	}

	m2 := mustParse(t, `sys_platform == "win32" or sys_platform == "linux"`)
	if !m2.Eval(map[string]string{"sys_platform": "linux"}, "") {
		t.Error("expected true via or")
	}
}

func TestParentheses(t *testing.T) {
	m := mustParse(t, `(sys_platform == "linux" or sys_platform == "darwin") and python_version >= "3.8"`)
	env := map[string]string{"sys_platform": "darwin", "python_version": "3.10"}
	if !m.Eval(env, "") {
		t.Error("expected true")
	}
}

func TestExtraOverridesEnvAndNeverFailsLookup(t *testing.T) {
	m := mustParse(t, `extra == "plot"`)
	if !m.Eval(nil, "plot") {
		t.Error("expected extra == plot to match when extra is plot")
	}
	if m.Eval(map[string]string{"extra": "plot"}, "") {
		t.Error("expected extra resolution to use the override, not the env map, when no extra is active")
	}
	if m.Eval(nil, "") {
		t.Error("expected no match when no extra is requested")
	}
}

func TestExtraOnlySupportsEquality(t *testing.T) {
	if _, err := Parse(`extra >= "plot"`); err == nil {
		t.Error("expected error: extra only supports ==")
	}
}

func TestInOperator(t *testing.T) {
	m := mustParse(t, `platform_machine in "x86_64 amd64"`)
	if !m.Eval(map[string]string{"platform_machine": "x86_64"}, "") {
		t.Error("expected x86_64 in the list")
	}
	if m.Eval(map[string]string{"platform_machine": "arm64"}, "") {
		t.Error("expected arm64 to not be in the list")
	}
}

func TestNotInOperator(t *testing.T) {
	m := mustParse(t, `platform_machine not in "x86_64 amd64"`)
	if m.Eval(map[string]string{"platform_machine": "x86_64"}, "") {
		t.Error("expected false")
	}
	if !m.Eval(map[string]string{"platform_machine": "arm64"}, "") {
		t.Error("expected true")
	}
}

func TestUnknownVariableFailsToParse(t *testing.T) {
	if _, err := Parse(`not_a_real_var == "x"`); err == nil {
		t.Error("expected parse error for unknown variable")
	}
}

func TestTrailingGarbageFailsToParse(t *testing.T) {
	if _, err := Parse(`python_version >= "3.8" ]`); err == nil {
		t.Error("expected parse error for trailing garbage")
	}
}
