package ast

import "strings"

// Atom is one of the seven frozen effect atoms. The set is closed by
// spec.md §3 — this is deliberately not an extensible registry (REDESIGN
// from the teacher's open `internal/types/effects.go` effect-row design,
// see DESIGN.md).
type Atom uint8

const (
	AtomIO Atom = iota
	AtomFS
	AtomNet
	AtomProc
	AtomRand
	AtomTime
	AtomState
	numAtoms
)

// canonicalOrder is exactly the sequence spec.md §3 mandates.
var canonicalOrder = [numAtoms]Atom{AtomIO, AtomFS, AtomNet, AtomProc, AtomRand, AtomTime, AtomState}

var names = [numAtoms]string{"io", "fs", "net", "proc", "rand", "time", "st"}
var aliases = [numAtoms]string{"I", "F", "N", "P", "R", "T", "S"}

// AtomByName resolves a canonical or aliased spelling to an Atom.
func AtomByName(s string) (Atom, bool) {
	for a, n := range names {
		if n == s || aliases[a] == s {
			return Atom(a), true
		}
	}
	return 0, false
}

func (a Atom) String() string { return names[a] }

// EffectSet is a bitmask over the seven atoms, giving O(1) union, subset
// checks, and trivially canonical iteration order (§9 "Effect set
// representation").
type EffectSet uint8

// Empty is the pure effect set.
var Empty = EffectSet(0)

// With returns the set with a added.
func (s EffectSet) With(a Atom) EffectSet {
	return s | (1 << a)
}

// Has reports whether the set contains a.
func (s EffectSet) Has(a Atom) bool {
	return s&(1<<a) != 0
}

// Union returns the set union.
func (s EffectSet) Union(other EffectSet) EffectSet {
	return s | other
}

// IsSubsetOf reports whether every atom in s is also in other.
func (s EffectSet) IsSubsetOf(other EffectSet) bool {
	return s&^other == 0
}

// IsEmpty reports whether the set is pure.
func (s EffectSet) IsEmpty() bool {
	return s == 0
}

// Atoms returns the set's members in canonical order.
func (s EffectSet) Atoms() []Atom {
	var out []Atom
	for _, a := range canonicalOrder {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// String renders the canonical readable-mode spelling: empty is invisible,
// non-empty is `!{a,b,c}` in canonical order.
func (s EffectSet) String() string {
	if s.IsEmpty() {
		return ""
	}
	var parts []string
	for _, a := range s.Atoms() {
		parts = append(parts, a.String())
	}
	return "!{" + strings.Join(parts, ",") + "}"
}

// StringCompressed renders the compressed-mode spelling using single-letter
// aliases, e.g. `!{I,N}`.
func (s EffectSet) StringCompressed() string {
	if s.IsEmpty() {
		return ""
	}
	var parts []string
	for _, a := range s.Atoms() {
		parts = append(parts, aliases[a])
	}
	return "!{" + strings.Join(parts, ",") + "}"
}
