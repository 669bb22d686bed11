package host

// errPurityViolation is the fixed error every PurityHost method returns,
// grounded on §9 "Determinism under fuzzing": a fuzz target must see the
// same trace on every run, so no effectful builtin may succeed under it.
var errPurityViolation = &HostError{Code: "E5999", Message: "effectful builtin invoked under a purity-enforcing host"}

// PurityHost answers every effectful builtin deterministically, so the
// same bytecode input always produces the same execution trace regardless
// of the ambient environment: the methods with an error return refuse
// with a fixed error, and RandInt, NowUnix and NewCell return 0. No test
// or caller in this repository constructs it.
type PurityHost struct{}

func NewPurityHost() *PurityHost { return &PurityHost{} }

func (PurityHost) Print(string) error    { return errPurityViolation }
func (PurityHost) Println(string) error  { return errPurityViolation }
func (PurityHost) Eprintln(string) error { return errPurityViolation }

func (PurityHost) ReadFile(string) (string, *HostError) { return "", errPurityViolation }
func (PurityHost) WriteFile(string, string) *HostError  { return errPurityViolation }
func (PurityHost) HTTPGet(string) (string, *HostError)  { return "", errPurityViolation }
func (PurityHost) Spawn(string) (int64, *HostError)     { return 0, errPurityViolation }

// RandInt and NowUnix have no error return in their interface (they are
// not Res-producing per spec.md §6 stdlib surface); a purity host instead
// returns the same fixed deterministic value every call.
func (PurityHost) RandInt() int64 { return 0 }
func (PurityHost) NowUnix() int64 { return 0 }

func (PurityHost) NewCell(initial int64) int64       { return 0 }
func (PurityHost) GetCell(int64) (int64, *HostError) { return 0, errPurityViolation }
func (PurityHost) SetCell(int64, int64) *HostError   { return errPurityViolation }
