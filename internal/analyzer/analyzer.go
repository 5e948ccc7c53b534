// Package analyzer walks pairs of value trees and explains how they differ,
// either from each other or from a template.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/mcncl/llsdtool/internal/llsd"
)

// Kind classifies a Difference.
type Kind string

const (
	// KindType means both sides hold values with different tags.
	KindType Kind = "type"
	// KindValue means both sides hold scalars of the same tag with different payloads.
	KindValue Kind = "value"
	// KindMissingLeft means the key or index exists only on the right.
	KindMissingLeft Kind = "missing-left"
	// KindMissingRight means the key or index exists only on the left.
	KindMissingRight Kind = "missing-right"
	// KindLength means two arrays have different lengths.
	KindLength Kind = "length"
)

// Difference is one point where two trees disagree.
type Difference struct {
	Path  string
	Kind  Kind
	Left  llsd.Value
	Right llsd.Value
}

func (d Difference) String() string {
	path := llsd.DisplayPath(d.Path)
	switch d.Kind {
	case KindType:
		return fmt.Sprintf("%s: %s vs %s", path, llsd.TypeOf(d.Left), llsd.TypeOf(d.Right))
	case KindValue:
		return fmt.Sprintf("%s: %q vs %q", path, llsd.AsString(d.Left), llsd.AsString(d.Right))
	case KindMissingLeft:
		return fmt.Sprintf("%s: only on right (%s)", path, llsd.TypeOf(d.Right))
	case KindMissingRight:
		return fmt.Sprintf("%s: only on left (%s)", path, llsd.TypeOf(d.Left))
	case KindLength:
		return fmt.Sprintf("%s: array length %d vs %d", path, llsd.Size(d.Left), llsd.Size(d.Right))
	default:
		return path
	}
}

// Mismatch is a place where a test tree cannot be merged with its template.
type Mismatch struct {
	Path string
	Want llsd.Type
	Got  llsd.Type
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected %s, found %s", llsd.DisplayPath(m.Path), m.Want, m.Got)
}

// Analyzer collects differences between value trees
type Analyzer struct {
	// differences accumulated by the current walk
	differences []Difference
	// mismatches accumulated by the current Explain walk
	mismatches []Mismatch
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Diff lists every difference between a and b. Map keys are visited in a's
// order followed by keys only present in b, sorted. The result is empty exactly
// when llsd.Equal(a, b) holds, with the exception of NaN reals.
func Diff(a, b llsd.Value) []Difference {
	return NewAnalyzer().Diff(a, b)
}

// Explain lists every structural mismatch between test and template. Conform
// stops at the first of these; Explain keeps walking so all of them can be
// reported at once.
func Explain(test, template llsd.Value) []Mismatch {
	return NewAnalyzer().Explain(test, template)
}

// Diff lists every difference between a and b.
func (a *Analyzer) Diff(left, right llsd.Value) []Difference {
	a.differences = nil
	a.diffNode(left, right, "")
	return a.differences
}

// Explain lists every structural mismatch between test and template.
func (a *Analyzer) Explain(test, template llsd.Value) []Mismatch {
	a.mismatches = nil
	a.explainNode(test, template, "")
	return a.mismatches
}

func (a *Analyzer) add(path string, kind Kind, left, right llsd.Value) {
	a.differences = append(a.differences, Difference{Path: path, Kind: kind, Left: left, Right: right})
}

// diffNode is the recursive step of Diff.
func (a *Analyzer) diffNode(left, right llsd.Value, path string) {
	if llsd.TypeOf(left) != llsd.TypeOf(right) {
		a.add(path, KindType, left, right)
		return
	}

	switch l := left.(type) {
	case llsd.Array:
		r := right.(llsd.Array)
		n := min(len(l), len(r))
		for i := 0; i < n; i++ {
			a.diffNode(l[i], r[i], llsd.PathIndex(path, i))
		}
		if len(l) != len(r) {
			a.add(path, KindLength, l, r)
		}
		for i := n; i < len(l); i++ {
			a.add(llsd.PathIndex(path, i), KindMissingRight, l[i], nil)
		}
		for i := n; i < len(r); i++ {
			a.add(llsd.PathIndex(path, i), KindMissingLeft, nil, r[i])
		}
	case *llsd.Map:
		r := right.(*llsd.Map)
		l.Range(func(key string, lv llsd.Value) bool {
			rv, ok := r.Get(key)
			if !ok {
				a.add(llsd.PathKey(path, key), KindMissingRight, lv, nil)
				return true
			}
			a.diffNode(lv, rv, llsd.PathKey(path, key))
			return true
		})
		var onlyRight []string
		for _, key := range r.Keys() {
			if !l.Has(key) {
				onlyRight = append(onlyRight, key)
			}
		}
		sort.Strings(onlyRight)
		for _, key := range onlyRight {
			a.add(llsd.PathKey(path, key), KindMissingLeft, nil, r.At(key))
		}
	default:
		if !llsd.Equal(left, right) {
			a.add(path, KindValue, left, right)
		}
	}
}

// explainNode mirrors the merge rules of llsd.Conform without stopping at the
// first failure.
func (a *Analyzer) explainNode(test, template llsd.Value, path string) {
	if !llsd.IsDefined(test) && llsd.IsDefined(template) {
		return
	}
	if llsd.TypeOf(test) != llsd.TypeOf(template) {
		a.mismatches = append(a.mismatches, Mismatch{Path: path, Want: llsd.TypeOf(template), Got: llsd.TypeOf(test)})
		return
	}

	switch t := test.(type) {
	case llsd.Array:
		tmpl := template.(llsd.Array)
		for i := 0; i < len(t) && i < len(tmpl); i++ {
			a.explainNode(t[i], tmpl[i], llsd.PathIndex(path, i))
		}
	case *llsd.Map:
		template.(*llsd.Map).Range(func(key string, tv llsd.Value) bool {
			if got, ok := t.Get(key); ok {
				a.explainNode(got, tv, llsd.PathKey(path, key))
			}
			return true
		})
	}
}
