// Copyright 2023 Google LLC
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

package tagset

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompatGroupsWindows(t *testing.T) {
	got, err := CompatGroups("win_amd64")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"win_amd64"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCompatGroupsMacosUniversal2(t *testing.T) {
	got, err := CompatGroups("macosx_11_0_universal2")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"macos-x86_64", "macos-arm64"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCompatGroupsManylinuxMusllinuxDisjoint(t *testing.T) {
	many, err := CompatGroups("manylinux_2_17_x86_64")
	if err != nil {
		t.Fatal(err)
	}
	musl, err := CompatGroups("musllinux_1_2_x86_64")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range many {
		for _, s := range musl {
			if m == s {
				t.Errorf("manylinux and musllinux share group %q", m)
			}
		}
	}
}

func TestCompatGroupsLegacyManylinux(t *testing.T) {
	got, err := CompatGroups("manylinux1_x86_64")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"manylinux-x86_64"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCompatGroupsUnrecognizedMacosArch(t *testing.T) {
	if _, err := CompatGroups("macosx_10_10_ppc64"); err == nil {
		t.Error("expected error for unrecognized macOS arch")
	}
}

func TestCompatGroupsUnsupportedTag(t *testing.T) {
	if _, err := CompatGroups("some_weird_tag"); err == nil {
		t.Error("expected error for unsupported tag")
	}
}
