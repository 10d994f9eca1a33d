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

/*
Package tagset implements the platform-tag algebra: expansion of a single
platform tag into the ordered set of tags it is guaranteed compatible with,
and computation of the compat-groups used to decide which tags may coexist
within one process.
*/
package tagset

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	linuxRE          = regexp.MustCompile(`^(many|musl)linux_([0-9]+)_([0-9]+)_([a-zA-Z0-9_]*)$`)
	legacyManylinuxRE = regexp.MustCompile(`^manylinux(2014|2010|1)_([a-zA-Z0-9_]*)$`)
	macosxRE         = regexp.MustCompile(`^macosx_([0-9]+)_([0-9]+)_([a-zA-Z0-9_]*)$`)
)

var legacyManylinuxPrefix = map[string]string{
	"2014": "manylinux_2_17",
	"2010": "manylinux_2_12",
	"1":    "manylinux_2_5",
}

// legacyAliasAtMinor maps a manylinux minor number to the legacy alias that
// should be emitted immediately after the canonical tag at that minor.
var legacyAliasAtMinor = map[int]string{
	17: "manylinux2014",
	12: "manylinux2010",
	5:  "manylinux1",
}

var x86Family = []string{"x86_64", "universal2", "intel", "fat64", "fat3", "universal"}
var arm64Family = []string{"arm64", "universal2"}

// Expand returns the platform tags guaranteed to be supported by any host
// that supports tag, most-preferred first. Unrecognized tags pass through
// unchanged.
func Expand(tag string) []string {
	if m := legacyManylinuxRE.FindStringSubmatch(tag); m != nil {
		tag = legacyManylinuxPrefix[m[1]] + "_" + m[2]
	}

	if m := linuxRE.FindStringSubmatch(tag); m != nil {
		variant := m[1]
		major, _ := strconv.Atoi(m[2])
		maxMinor, _ := strconv.Atoi(m[3])
		arch := m[4]

		var tags []string
		for minor := maxMinor; minor >= 0; minor-- {
			tags = append(tags, fmt.Sprintf("%slinux_%d_%d_%s", variant, major, minor, arch))
			if variant == "many" {
				if alias, ok := legacyAliasAtMinor[minor]; ok && major == 2 {
					tags = append(tags, fmt.Sprintf("%s_%s", alias, arch))
				}
			}
		}
		return tags
	}

	if m := macosxRE.FindStringSubmatch(tag); m != nil {
		major, _ := strconv.Atoi(m[1])
		minor, _ := strconv.Atoi(m[2])
		arch := m[3]

		if major >= 10 {
			var arches []string
			switch arch {
			case "x86_64":
				arches = x86Family
			case "arm64":
				arches = arm64Family
			default:
				arches = []string{arch}
			}

			max10Minor := 15
			if major == 10 {
				max10Minor = minor
			}

			var versions [][2]int
			for m := major; m >= 11; m-- {
				versions = append(versions, [2]int{m, 0})
			}
			for m := max10Minor; m >= 0; m-- {
				versions = append(versions, [2]int{10, m})
			}

			var tags []string
			for _, v := range versions {
				for _, a := range arches {
					tags = append(tags, fmt.Sprintf("macosx_%d_%d_%s", v[0], v[1], a))
				}
			}
			return tags
		}
	}

	return []string{tag}
}
