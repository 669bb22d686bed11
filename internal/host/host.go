// Package host defines the capability interfaces the VM calls through
// for every effectful builtin, one interface per effect atom, grounded on
// the teacher's internal/effects/{capability.go,io.go,fs.go,net.go}
// Capability-token-plus-per-effect-interface pattern. Generalized from
// AILANG's 8 open, string-named effects to µScript's seven frozen atoms
// (`io, fs, net, proc, rand, time, st`); the checker has already proved a
// caller's declared effect set covers every builtin it invokes (spec.md
// §4.I), so these interfaces carry no capability-token checks of their
// own — they are pure dispatch targets the VM calls into.
package host

// HostError is a recoverable host failure, surfaced to the running
// program as an `Er` value of `Res[T,E]` rather than a VM trap (spec.md
// §7 "Recoverable host errors ... are Er values of Res").
type HostError struct {
	Code    string
	Message string
}

func (e *HostError) Error() string { return e.Code + ": " + e.Message }

// Host aggregates one capability interface per effect atom. An embedder
// supplies a Host when constructing a VM; any nil field means the
// corresponding effect atom is entirely unavailable and any attempted
// call traps E4006 (type confusion / missing capability at the host
// boundary) rather than panicking.
type Host struct {
	IO    IOHost
	FS    FSHost
	Net   NetHost
	Proc  ProcHost
	Rand  RandHost
	Time  TimeHost
	State StateHost
}

// IOHost gates the `io` effect atom.
type IOHost interface {
	Print(s string) error
	Println(s string) error
	Eprintln(s string) error
}

// FSHost gates the `fs` effect atom.
type FSHost interface {
	ReadFile(path string) (string, *HostError)
	WriteFile(path, contents string) *HostError
}

// NetHost gates the `net` effect atom.
type NetHost interface {
	HTTPGet(url string) (string, *HostError)
}

// ProcHost gates the `proc` effect atom.
type ProcHost interface {
	Spawn(cmd string) (exitCode int64, err *HostError)
}

// RandHost gates the `rand` effect atom.
type RandHost interface {
	RandInt() int64
}

// TimeHost gates the `time` effect atom.
type TimeHost interface {
	NowUnix() int64
}

// StateHost gates the `st` effect atom: an abstract capability for
// mutable heap cells with no aliasing invariant beyond per-instance
// ownership (spec.md §5).
type StateHost interface {
	NewCell(initial int64) int64
	GetCell(handle int64) (int64, *HostError)
	SetCell(handle, value int64) *HostError
}
