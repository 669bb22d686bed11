// Command uscript is the µScript reference toolchain: fmt, check, build,
// run and an interactive REPL, wired through the lexer -> parser ->
// resolve -> types -> lower -> bytecode -> vm pipeline. Adapted from the
// teacher's flag-based cmd/ailang/main.go to spf13/cobra per the command
// surface spec.md §6.1 describes, keeping the teacher's fatih/color
// diagnostic-rendering idiom.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sunholo/uscript/internal/ast"
	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/lower"
	"github.com/sunholo/uscript/internal/parser"
	"github.com/sunholo/uscript/internal/resolve"
	"github.com/sunholo/uscript/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// frontend runs lex -> parse -> resolve -> check against source, stopping
// at the first phase that reports an error (spec.md §4 "each phase is
// total: it always produces either a next-phase input or a non-empty
// diagnostic bag"). Every phase's diagnostics are still merged into bag so
// --json-diagnostics and fmt --check see the full picture even when later
// phases are skipped.
func frontend(src, file string, bag *diag.Bag) (*ast.Module, *resolve.Resolved) {
	m := parser.Parse(src, file, bag)
	if bag.HasErrors() {
		return m, nil
	}
	resolved := resolve.Resolve(m, bag)
	if bag.HasErrors() {
		return m, nil
	}
	types.Check(m, resolved, bag)
	return m, resolved
}

// compile runs the full pipeline through to a lowered bytecode.Program.
func compile(src, file string, bag *diag.Bag) *bytecode.Program {
	m, resolved := frontend(src, file, bag)
	if bag.HasErrors() || resolved == nil {
		return nil
	}
	return lower.Lower(m, resolved, bag)
}

// renderDiagnostics prints bag's contents to stderr, colorized unless
// jsonMode is set (in which case each line is an Encoded JSON object,
// matching --json-diagnostics).
func renderDiagnostics(bag *diag.Bag, jsonMode bool) {
	if bag.Len() == 0 {
		return
	}
	if jsonMode {
		out, err := bag.EncodeJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: encoding diagnostics: %v\n", red("Error"), err)
			return
		}
		os.Stderr.Write(out)
		return
	}
	for _, d := range bag.Items() {
		label := red(string(d.Code))
		if diag.IsWarning(d.Code) {
			label = yellow(string(d.Code))
		}
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", cyan(d.Span.String()), label, d.Message)
		if d.Suggestion != "" {
			fmt.Fprintf(os.Stderr, "  %s did you mean %q?\n", bold("hint:"), d.Suggestion)
		}
	}
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
