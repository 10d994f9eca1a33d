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

// PlatformSet is an ordered sequence of platform tags plus a mapping from
// tag to an integer compatibility score. Scores strictly decrease in
// insertion order: the first tag pushed has the highest score.
//
// The zero value is ready to use.
type PlatformSet struct {
	scores  map[string]int
	tags    []string
	counter int
}

// Push inserts tag at the next (strictly decreasing) score if it is not
// already present. Repeated pushes of the same tag are no-ops.
func (p *PlatformSet) Push(tag string) {
	if p.scores == nil {
		p.scores = make(map[string]int)
	}
	if _, ok := p.scores[tag]; ok {
		return
	}
	p.scores[tag] = p.counter
	p.tags = append(p.tags, tag)
	p.counter--
}

// Tags returns the tags in the set, most-preferred first.
func (p *PlatformSet) Tags() []string {
	return p.tags
}

// Compatibility returns the score for tag and whether it is present.
func (p *PlatformSet) Compatibility(tag string) (int, bool) {
	score, ok := p.scores[tag]
	return score, ok
}

// MaxCompatibility returns the maximum score among tags, or false if none
// of them are present in the set.
func (p *PlatformSet) MaxCompatibility(tags []string) (int, bool) {
	best, any := 0, false
	for _, t := range tags {
		if score, ok := p.Compatibility(t); ok {
			if !any || score > best {
				best = score
				any = true
			}
		}
	}
	return best, any
}
