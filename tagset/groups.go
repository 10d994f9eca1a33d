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
	"fmt"
	"strings"
)

// CompatGroups returns the set of compat groups a platform tag belongs to:
// the ad hoc equivalence classes of tags that may coexist within a single
// process. A tag can belong to more than one group (macOS universal2
// belongs to both macos-x86_64 and macos-arm64).
func CompatGroups(tag string) ([]string, error) {
	if strings.HasPrefix(tag, "win") {
		return []string{tag}, nil
	}
	if m := macosxRE.FindStringSubmatch(tag); m != nil {
		arch := m[3]
		var arches []string
		switch arch {
		case "x86_64", "intel", "fat64", "fat3", "universal":
			arches = []string{"x86_64"}
		case "arm64":
			arches = []string{"arm64"}
		case "universal2":
			arches = []string{"x86_64", "arm64"}
		default:
			return nil, fmt.Errorf("tagset: unrecognized macOS architecture %q", arch)
		}
		groups := make([]string, len(arches))
		for i, a := range arches {
			groups[i] = "macos-" + a
		}
		return groups, nil
	}
	if m := linuxRE.FindStringSubmatch(tag); m != nil {
		variant, arch := m[1], m[4]
		return []string{variant + "linux-" + arch}, nil
	}
	if m := legacyManylinuxRE.FindStringSubmatch(tag); m != nil {
		return []string{"manylinux-" + m[2]}, nil
	}
	return nil, fmt.Errorf("tagset: unsupported platform tag %q", tag)
}
