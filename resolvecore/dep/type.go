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

/*
Package dep names the solver's virtual-package identities: Root, a base
package, and a package's "extra" siblings.

The teacher's own dependency-type package (deps.dev/util/resolve/dep)
represents a dependency edge as a bit-packed attr.Set, because it has to
span several ecosystems (npm's dev/optional/peer flags, Maven classifiers
and scopes, and so on). This module resolves exactly one ecosystem, whose
entire edge-typing vocabulary is "which extra (if any) is active", so a
bit-packed set would carry generality this domain never uses. PackageID is
the same concept, reduced to the two fields the PyPI resolver actually
needs.
*/
package dep

import (
	"fmt"

	"github.com/posy-go/envplan/resolvecore"
)

// PackageID identifies one of the solver's virtual packages: the
// synthetic Root, a base package, or a package's extra sibling
// (Package(name, Some(extra)) in the terms of spec.md §4.5).
type PackageID struct {
	root  bool
	name  resolvecore.PackageName
	extra string // "" for the base package; ignored when root is true
}

// Root returns the synthetic root package identity.
func Root() PackageID { return PackageID{root: true} }

// Base returns the identity of name's base package (no extra active).
func Base(name resolvecore.PackageName) PackageID {
	return PackageID{name: name}
}

// WithExtra returns the identity of name's virtual sibling for extra.
// An empty extra is equivalent to Base.
func WithExtra(name resolvecore.PackageName, extra string) PackageID {
	return PackageID{name: name, extra: extra}
}

// IsRoot reports whether this is the synthetic root package.
func (p PackageID) IsRoot() bool { return p.root }

// Name returns the underlying package name. It is meaningless for Root.
func (p PackageID) Name() resolvecore.PackageName { return p.name }

// Extra returns the active extra, or "" if this identifies the base
// package.
func (p PackageID) Extra() string { return p.extra }

// HasExtra reports whether this identity is an extra sibling rather than
// the base package.
func (p PackageID) HasExtra() bool { return !p.root && p.extra != "" }

func (p PackageID) String() string {
	switch {
	case p.root:
		return "<root>"
	case p.extra != "":
		return fmt.Sprintf("%s[%s]", p.name, p.extra)
	default:
		return string(p.name)
	}
}
