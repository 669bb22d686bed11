package diag

import "fmt"

// Span is a byte range in a single source file, carried by every token and
// AST node so diagnostics can always point at exact source text.
type Span struct {
	File        string
	StartLine   int
	StartColumn int
	StartOffset int
	EndLine     int
	EndColumn   int
	EndOffset   int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartColumn)
}

// Diagnostic is a single-line, code-carrying, span-carrying error or
// warning. It never carries a stack trace or a cause chain — every phase
// reports the same flat shape so the CLI can render or JSON-encode it
// uniformly.
type Diagnostic struct {
	Code       string
	Phase      Phase
	Span       Span
	Message    string
	Suggestion string // optional "did you mean X?" populated by internal/resolve
}

func (d Diagnostic) String() string {
	if d.Suggestion != "" {
		return fmt.Sprintf("%s: %s: %s (did you mean %q?)", d.Span, d.Code, d.Message, d.Suggestion)
	}
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Code, d.Message)
}

// Encoded is the JSON-serializable form of a Diagnostic, emitted by
// --json-diagnostics. Field names mirror the teacher's Encoded struct
// (schema/sid/phase/code/message/fix) adapted to µScript's flat taxonomy.
type Encoded struct {
	Schema     string `json:"schema"`
	Phase      string `json:"phase"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Span       string `json:"span"`
	Suggestion string `json:"suggestion,omitempty"`
}

const SchemaV1 = "uscript.diagnostic/v1"

// Encode converts a Diagnostic into its wire form.
func (d Diagnostic) Encode() Encoded {
	return Encoded{
		Schema:     SchemaV1,
		Phase:      string(d.Phase),
		Code:       d.Code,
		Message:    d.Message,
		Span:       d.Span.String(),
		Suggestion: d.Suggestion,
	}
}
