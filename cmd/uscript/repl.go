package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/config"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/host"
	"github.com/sunholo/uscript/internal/vm"
)

// repl is an optional, ambient convenience on top of the four required
// commands: µScript has no incremental top-level (every program is one
// module with its own `module_id`), so unlike a true expression REPL this
// one accumulates lines into a buffer and compiles+runs the whole thing
// on `:run`, the way a scratch file would be edited and rerun. Loop
// structure grounded on the teacher's internal/repl/repl.go Start method
// (liner history file, multi-line continuation, `:`-prefixed commands).
type repl struct {
	buf  []string
	fuel int64
	caps map[string]bool
	os   *host.OSHost
}

func newReplCmd() *cobra.Command {
	var fuel int64
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive scratch buffer: accumulate a module, then compile and run it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fuel <= 0 {
				fuel = config.DefaultFuel
			}
			r := &repl{
				fuel: fuel,
				os:   host.NewOSHost(),
				caps: map[string]bool{"io": true, "fs": false, "net": false, "proc": false, "rand": true, "time": true, "state": true},
			}
			r.start(os.Stdout)
			return nil
		},
	}
	cmd.Flags().Int64Var(&fuel, "fuel", 0, "instruction budget for :run")
	return cmd
}

func (r *repl) start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".uscript_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("uscript"), green(Version))
	fmt.Fprintln(out, "Type :run to compile+execute the buffer, :show to print it, :reset to clear, :quit to exit.")
	fmt.Fprintln(out, "IO/Rand/Time/State capabilities are granted by default; FS/Net/Proc are not.")
	fmt.Fprintln(out, "Use :grant <io|fs|net|proc|rand|time|state> or :revoke <...> to change that.")

	for {
		input, err := line.Prompt("uscript> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if r.handleCommand(strings.TrimSpace(input), out) {
				break
			}
			continue
		}
		r.buf = append(r.buf, input)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand runs one :-prefixed command, returning true if the REPL
// should exit.
func (r *repl) handleCommand(input string, out io.Writer) bool {
	switch {
	case input == ":quit" || input == ":q" || input == ":exit":
		fmt.Fprintln(out, green("Goodbye!"))
		return true
	case input == ":reset":
		r.buf = nil
		fmt.Fprintln(out, dim("buffer cleared"))
	case input == ":show":
		fmt.Fprintln(out, strings.Join(r.buf, "\n"))
	case input == ":run":
		r.run(out)
	case strings.HasPrefix(input, ":grant "):
		r.setCap(strings.TrimPrefix(input, ":grant "), true, out)
	case strings.HasPrefix(input, ":revoke "):
		r.setCap(strings.TrimPrefix(input, ":revoke "), false, out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", red("Error"), input)
	}
	return false
}

func (r *repl) setCap(name string, grant bool, out io.Writer) {
	name = strings.TrimSpace(name)
	if _, ok := r.caps[name]; !ok {
		fmt.Fprintf(out, "%s: unknown capability %q\n", red("Error"), name)
		return
	}
	r.caps[name] = grant
	verb := "granted"
	if !grant {
		verb = "revoked"
	}
	fmt.Fprintf(out, "%s %s\n", dim(verb), yellow(name))
}

func (r *repl) grantedHost() *host.Host {
	return host.Grant(r.os, r.caps["io"], r.caps["fs"], r.caps["net"], r.caps["proc"], r.caps["rand"], r.caps["time"], r.caps["state"])
}

func (r *repl) run(out io.Writer) {
	src := strings.Join(r.buf, "\n")
	bag := diag.NewBag()
	prog := compile(src, "<repl>", bag)
	if bag.Len() > 0 {
		for _, d := range bag.Items() {
			fmt.Fprintln(out, d.String())
		}
	}
	if bag.HasErrors() || prog == nil {
		return
	}
	r.exec(prog, out)
}

func (r *repl) exec(prog *bytecode.Program, out io.Writer) {
	m := vm.New(prog, r.grantedHost(), r.fuel)
	outcome := m.Run(nil)
	switch outcome.Kind {
	case vm.OutcomeReturn:
		fmt.Fprintf(out, "%s exit %d (%d instructions)\n", green("=>"), outcome.ExitCode, outcome.FuelUsed)
	case vm.OutcomeFuelExhausted:
		fmt.Fprintf(out, "%s fuel exhausted after %d instructions\n", red("trap"), outcome.FuelUsed)
	default:
		fmt.Fprintf(out, "%s %s: %s (%d instructions)\n", red("trap"), outcome.TrapCode, outcome.TrapMsg, outcome.FuelUsed)
	}
}
