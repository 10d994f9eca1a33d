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
Package platform builds PYBI and wheel platform tag sets: the ordered,
scored tag families a given host (or a given PYBI) can satisfy, and the
narrowing of a host's PybiPlatform down to the single wheel-tag family a
concrete PYBI can actually host.
*/
package platform

import (
	"fmt"
	"strings"

	"github.com/posy-go/envplan/resolvecore"
	"github.com/posy-go/envplan/tagset"
)

// PybiName identifies a PYBI artifact: its distribution (interpreter
// implementation, e.g. "cpython"), its version, and the ordered list of its
// own platform tags (the PYBI's own "arch_tags", most-preferred first).
type PybiName struct {
	Distribution string
	Version      string
	ArchTags     []string
}

// PybiCoreMetadata carries the subset of a PYBI's core metadata the
// resolver needs: the environment marker variables it exposes, and the
// ordered wheel tag templates it advertises (literal tags, or templates
// ending in the sentinel "-PLATFORM").
type PybiCoreMetadata struct {
	EnvironmentMarkerVariables map[string]string
	WheelTagTemplates          []string
}

// PybiPlatform is the ordered, scored set of platform tags a host can
// satisfy, after expanding each of its core tags.
type PybiPlatform struct {
	set tagset.PlatformSet
}

// WheelPlatform is the ordered, scored set of wheel tags usable against a
// specific PYBI once its arch has been narrowed to a single compat group.
type WheelPlatform struct {
	set tagset.PlatformSet
}

// FromCoreTag builds a PybiPlatform from a single core tag.
func FromCoreTag(tag string) *PybiPlatform {
	return FromCoreTags([]string{tag})
}

// FromCoreTags builds a PybiPlatform from a host's core tags, assumed
// already ordered most-preferred to least-preferred.
func FromCoreTags(tags []string) *PybiPlatform {
	p := &PybiPlatform{}
	for _, tag := range tags {
		for _, expansion := range tagset.Expand(tag) {
			p.set.Push(expansion)
		}
	}
	return p
}

// CurrentPlatform builds the PybiPlatform for the host a PackageDB
// reports itself as running on, the Go counterpart of the original's
// PybiPlatform::current_platform()/current_platform_tags(): rather than
// the original's own OS/arch introspection, this module learns the
// host's core tags from db.CorePlatformTags(), since detecting the
// running platform is itself a PackageDB-side concern this core stays
// out of.
func CurrentPlatform(db resolvecore.PackageDB) (*PybiPlatform, error) {
	tags, err := db.CorePlatformTags()
	if err != nil {
		return nil, &resolvecore.DBError{Op: "CorePlatformTags", Err: err}
	}
	return FromCoreTags(tags), nil
}

// Tags returns the platform's tags, most-preferred first.
func (p *PybiPlatform) Tags() []string { return p.set.Tags() }

// Compatibility returns the score for tag, and whether it is present.
func (p *PybiPlatform) Compatibility(tag string) (int, bool) { return p.set.Compatibility(tag) }

// MaxCompatibility returns the highest score among tags, or false if none match.
func (p *PybiPlatform) MaxCompatibility(tags []string) (int, bool) {
	return p.set.MaxCompatibility(tags)
}

// WheelPlatformForPybi narrows this PybiPlatform down to the single
// compat-group consistent with both the host and the named PYBI, then
// materializes the PYBI's wheel tag templates against it.
func (p *PybiPlatform) WheelPlatformForPybi(name PybiName, metadata PybiCoreMetadata) (*WheelPlatform, error) {
	groups := map[string]bool{}
	for _, tag := range name.ArchTags {
		gs, err := tagset.CompatGroups(tag)
		if err != nil {
			return nil, fmt.Errorf("platform: pybi %s: %w", name.Distribution, err)
		}
		for _, g := range gs {
			groups[g] = true
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("platform: pybi %s has no compat groups", name.Distribution)
	}

	for _, tag := range p.set.Tags() {
		if len(groups) == 1 {
			break
		}
		tagGroups, err := tagset.CompatGroups(tag)
		if err != nil {
			continue
		}
		present := map[string]bool{}
		for _, g := range tagGroups {
			present[g] = true
		}
		for g := range groups {
			if !present[g] {
				delete(groups, g)
			}
		}
	}
	if len(groups) != 1 {
		return nil, fmt.Errorf("platform: could not narrow %s to a single compat group, have %d candidates", name.Distribution, len(groups))
	}
	var theGroup string
	for g := range groups {
		theGroup = g
	}

	var platformTags []string
	for _, tag := range p.set.Tags() {
		gs, err := tagset.CompatGroups(tag)
		if err != nil {
			continue
		}
		for _, g := range gs {
			if g == theGroup {
				platformTags = append(platformTags, tag)
				break
			}
		}
	}

	wp := &WheelPlatform{}
	for _, template := range metadata.WheelTagTemplates {
		prefix, isTemplate := strings.CutSuffix(template, "-PLATFORM")
		if isTemplate {
			for _, pt := range platformTags {
				wp.set.Push(prefix + "-" + pt)
			}
		} else {
			wp.set.Push(template)
		}
	}
	return wp, nil
}

// Tags returns the wheel platform's tags, most-preferred first.
func (w *WheelPlatform) Tags() []string { return w.set.Tags() }

// Compatibility returns the score for tag, and whether it is present.
func (w *WheelPlatform) Compatibility(tag string) (int, bool) { return w.set.Compatibility(tag) }

// MaxCompatibility returns the highest score among tags, or false if none match.
func (w *WheelPlatform) MaxCompatibility(tags []string) (int, bool) {
	return w.set.MaxCompatibility(tags)
}

// InferPlatformMachine scans the wheel platform's tags for the first one
// whose compat groups identify a macOS architecture, returning "x86_64" or
// "arm64". It fails if neither appears, which is the case for Linux and
// Windows platforms (those supply platform_machine directly from PYBI
// metadata instead).
func (w *WheelPlatform) InferPlatformMachine() (string, error) {
	for _, tag := range w.set.Tags() {
		// Wheel tags carry the platform tag as their last '-'-separated part.
		platformTag := tag
		if i := strings.LastIndex(tag, "-"); i >= 0 {
			platformTag = tag[i+1:]
		}
		groups, err := tagset.CompatGroups(platformTag)
		if err != nil {
			continue
		}
		for _, g := range groups {
			switch g {
			case "macos-x86_64":
				return "x86_64", nil
			case "macos-arm64":
				return "arm64", nil
			}
		}
	}
	return "", fmt.Errorf("platform: can't infer platform_machine for this platform/pybi")
}
