package diag

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Bag accumulates diagnostics across an entire phase (or an entire pipeline
// run) instead of failing on the first error. Every phase — lexer, parser,
// resolver, checker — takes a *Bag and appends to it; callers decide when
// to stop based on Bag.HasErrors(), never on a returned error value.
type Bag struct {
	items []Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends one diagnostic.
func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Errorf is a convenience that builds and appends a Diagnostic.
func (b *Bag) Errorf(code string, phase Phase, span Span, format string, args ...any) {
	b.Add(Diagnostic{
		Code:    code,
		Phase:   phase,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	})
}

// Items returns the diagnostics in source order (stable sort by span).
func (b *Bag) Items() []Diagnostic {
	sorted := make([]Diagnostic, len(b.items))
	copy(sorted, b.items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, c := sorted[i].Span, sorted[j].Span
		if a.File != c.File {
			return a.File < c.File
		}
		if a.StartLine != c.StartLine {
			return a.StartLine < c.StartLine
		}
		return a.StartColumn < c.StartColumn
	})
	return sorted
}

// HasErrors reports whether any non-warning diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if !IsWarning(d.Code) {
			return true
		}
	}
	return false
}

// Len returns the total diagnostic count (errors and warnings).
func (b *Bag) Len() int {
	return len(b.items)
}

// Merge folds another bag's diagnostics into this one, preserving order of
// addition (used when a phase fans out over several declarations and
// collects per-declaration bags).
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}

// Render writes human-readable, source-ordered lines, one per diagnostic.
// Colorization is applied by the CLI layer (internal/diag intentionally
// has no dependency on fatih/color so it stays usable from tests).
func (b *Bag) Render() string {
	var sb strings.Builder
	for _, d := range b.Items() {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// EncodeJSON renders the bag as newline-delimited JSON, one Encoded object
// per line, matching --json-diagnostics.
func (b *Bag) EncodeJSON() ([]byte, error) {
	var sb strings.Builder
	for _, d := range b.Items() {
		line, err := json.Marshal(d.Encode())
		if err != nil {
			return nil, err
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
