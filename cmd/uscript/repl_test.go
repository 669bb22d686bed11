package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunholo/uscript/internal/host"
)

func newTestRepl() *repl {
	return &repl{
		fuel: 1_000_000,
		os:   host.NewOSHost(),
		caps: map[string]bool{"io": true, "fs": false, "net": false, "proc": false, "rand": true, "time": true, "state": true},
	}
}

func TestHandleCommandQuitSignalsExit(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	assert.True(t, r.handleCommand(":quit", &out))
	assert.Contains(t, out.String(), "Goodbye")
}

func TestHandleCommandResetClearsBuffer(t *testing.T) {
	r := newTestRepl()
	r.buf = []string{"V a:i64=1;"}
	var out bytes.Buffer
	assert.False(t, r.handleCommand(":reset", &out))
	assert.Empty(t, r.buf)
}

func TestHandleCommandShowPrintsBuffer(t *testing.T) {
	r := newTestRepl()
	r.buf = []string{"line one", "line two"}
	var out bytes.Buffer
	r.handleCommand(":show", &out)
	assert.Equal(t, "line one\nline two\n", out.String())
}

func TestHandleCommandUnknownReportsError(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	r.handleCommand(":bogus", &out)
	assert.Contains(t, out.String(), "unknown command")
}

func TestSetCapGrantsKnownCapability(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	r.setCap("fs", true, &out)
	assert.True(t, r.caps["fs"])
	assert.Contains(t, out.String(), "granted")
}

func TestSetCapRevokesKnownCapability(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	r.setCap("io", false, &out)
	assert.False(t, r.caps["io"])
	assert.Contains(t, out.String(), "revoked")
}

func TestSetCapUnknownNameReportsError(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	r.setCap("bogus", true, &out)
	assert.Contains(t, out.String(), "unknown capability")
}

func TestHandleCommandGrantPrefixDispatchesToSetCap(t *testing.T) {
	r := newTestRepl()
	var out bytes.Buffer
	r.handleCommand(":grant net", &out)
	assert.True(t, r.caps["net"])
}

func TestReplRunCompilesAndExecutesBuffer(t *testing.T) {
	r := newTestRepl()
	r.buf = []string{`@demo { F main:()->i64=l():i64 5; }`}
	var out bytes.Buffer
	r.run(&out)
	assert.Contains(t, out.String(), "exit 5")
}

func TestReplRunPrintsDiagnosticsOnFailure(t *testing.T) {
	r := newTestRepl()
	r.buf = []string{`@demo { F main:()->i64=l():i64 undefinedName; }`}
	var out bytes.Buffer
	r.run(&out)
	assert.True(t, strings.Contains(out.String(), "E3001") || out.String() != "")
}

func TestReplRunBufferWithoutMainReportsDiagnostics(t *testing.T) {
	r := newTestRepl()
	r.buf = []string{`@demo { V a:i64=1; }`}
	var out bytes.Buffer
	r.run(&out)
	assert.NotEmpty(t, out.String())
}
