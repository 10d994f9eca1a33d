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

import "testing"

func buildFromCoreTags(tags ...string) *PlatformSet {
	p := &PlatformSet{}
	for _, tag := range tags {
		for _, expansion := range Expand(tag) {
			p.Push(expansion)
		}
	}
	return p
}

func TestPlatformSetManylinux2014(t *testing.T) {
	p := buildFromCoreTags("manylinux2014_x86_64")

	score17, ok17 := p.Compatibility("manylinux_2_17_x86_64")
	if !ok17 {
		t.Fatal("expected manylinux_2_17_x86_64 to be compatible")
	}
	score10, ok10 := p.Compatibility("manylinux_2_10_x86_64")
	if !ok10 {
		t.Fatal("expected manylinux_2_10_x86_64 to be compatible")
	}
	if score17 <= score10 {
		t.Errorf("expected manylinux_2_17 to score higher than manylinux_2_10, got %d <= %d", score17, score10)
	}

	if _, ok := p.Compatibility("manylinux_2_30_x86_64"); ok {
		t.Error("manylinux_2_30_x86_64 should not be compatible")
	}
	if _, ok := p.Compatibility("manylinux_2_17_aarch64"); ok {
		t.Error("manylinux_2_17_aarch64 should not be compatible")
	}
}

func TestPlatformSetMultipleCoreTagsPreferFirst(t *testing.T) {
	p := buildFromCoreTags("manylinux2014_x86_64", "musllinux_1_3_x86_64")

	many, ok := p.Compatibility("manylinux_2_17_x86_64")
	if !ok {
		t.Fatal("expected manylinux_2_17_x86_64 present")
	}
	musl, ok := p.Compatibility("musllinux_1_2_x86_64")
	if !ok {
		t.Fatal("expected musllinux_1_2_x86_64 present")
	}
	if many <= musl {
		t.Errorf("expected core tag listed first to score higher: %d <= %d", many, musl)
	}
}

// TestMonotonePreference is property 2 from the spec.
func TestMonotonePreference(t *testing.T) {
	p := &PlatformSet{}
	tags := []string{"a", "b", "c", "d"}
	for _, tag := range tags {
		p.Push(tag)
	}
	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			si, _ := p.Compatibility(tags[i])
			sj, _ := p.Compatibility(tags[j])
			if si <= sj {
				t.Errorf("tag %q inserted before %q should score higher: %d <= %d", tags[i], tags[j], si, sj)
			}
		}
	}
}

func TestPushIsIdempotent(t *testing.T) {
	p := &PlatformSet{}
	p.Push("x")
	before, _ := p.Compatibility("x")
	p.Push("x")
	after, _ := p.Compatibility("x")
	if before != after {
		t.Errorf("re-pushing an existing tag changed its score: %d -> %d", before, after)
	}
	if len(p.Tags()) != 1 {
		t.Errorf("expected exactly one tag, got %d", len(p.Tags()))
	}
}

func TestMaxCompatibility(t *testing.T) {
	p := buildFromCoreTags("manylinux2014_x86_64")
	best, ok := p.MaxCompatibility([]string{"manylinux_2_30_x86_64", "manylinux_2_10_x86_64", "manylinux_2_17_x86_64"})
	if !ok {
		t.Fatal("expected at least one match")
	}
	want, _ := p.Compatibility("manylinux_2_17_x86_64")
	if best != want {
		t.Errorf("MaxCompatibility = %d, want %d", best, want)
	}

	if _, ok := p.MaxCompatibility([]string{"manylinux_2_99_x86_64"}); ok {
		t.Error("expected no match")
	}
}
