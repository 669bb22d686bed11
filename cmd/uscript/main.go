package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sunholo/uscript/internal/bytecode"
	"github.com/sunholo/uscript/internal/config"
	"github.com/sunholo/uscript/internal/diag"
	"github.com/sunholo/uscript/internal/host"
	"github.com/sunholo/uscript/internal/lower"
	"github.com/sunholo/uscript/internal/printer"
	"github.com/sunholo/uscript/internal/vm"
)

// Version, Commit and BuildTime are set by ldflags during release builds
// (-X main.Version=..., as the teacher's Makefile does for cmd/ailang).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var jsonDiagnostics bool

func main() {
	root := &cobra.Command{
		Use:   "uscript",
		Short: "The µScript toolchain: format, check, build and run hermetic scripts",
	}
	root.PersistentFlags().BoolVar(&jsonDiagnostics, "json-diagnostics", false, "emit diagnostics as newline-delimited JSON")
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.AddCommand(newVersionCmd())
	root.AddCommand(newFmtCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())

	if err := root.Execute(); err != nil {
		if err.Error() != "" {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		}
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s %s (%s, built %s)\n", bold("uscript"), green(Version), Commit, BuildTime)
			return nil
		},
	}
}

func newFmtCmd() *cobra.Command {
	var compressed bool
	var check bool
	cmd := &cobra.Command{
		Use:   "fmt <path>",
		Short: "Print a module in canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(path)
			if err != nil {
				return err
			}
			bag := diag.NewBag()
			m, _ := frontend(src, path, bag)
			if bag.HasErrors() {
				renderDiagnostics(bag, jsonDiagnostics)
				return errExit
			}
			mode := printer.Readable
			if compressed {
				mode = printer.Compressed
			}
			out := printer.Print(m, mode)
			if check {
				if out != src {
					fmt.Fprintf(os.Stderr, "%s: %s is not in canonical form\n", red("fmt --check"), path)
					return errExit
				}
				return nil
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&compressed, "compressed", false, "emit the compressed, symbol-table-backed form")
	cmd.Flags().BoolVar(&check, "check", false, "exit nonzero if the file is not already in canonical form, without printing it")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Lex, parse, resolve and type/effect-check a module without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(path)
			if err != nil {
				return err
			}
			bag := diag.NewBag()
			frontend(src, path, bag)
			renderDiagnostics(bag, jsonDiagnostics)
			if bag.HasErrors() {
				return errExit
			}
			fmt.Println(green("ok"))
			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build <file.mu>",
		Short: "Compile a module to a .mub bytecode container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			src, err := readSource(path)
			if err != nil {
				return err
			}
			bag := diag.NewBag()
			prog := compile(src, path, bag)
			renderDiagnostics(bag, jsonDiagnostics)
			if bag.HasErrors() || prog == nil {
				return errExit
			}
			if out == "" {
				out = trimExt(path) + ".mub"
			}
			if err := os.WriteFile(out, bytecode.Encode(prog), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s %s\n", green("wrote"), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default: <input without extension>.mub)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var fuel int64
	var manifestPath string
	cmd := &cobra.Command{
		Use:   "run <file.mu|file.mub> [-- args...]",
		Short: "Run a µScript module or bytecode container to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg, err := resolveManifest(manifestPath, filepath.Dir(path))
			if err != nil {
				return err
			}
			if fuel <= 0 {
				fuel = cfg.Fuel
			}

			prog, err := loadProgram(path)
			if err != nil {
				return err
			}

			osHost := host.NewOSHost()
			h := host.Grant(osHost, cfg.Capabilities.IO, cfg.Capabilities.FS, cfg.Capabilities.Net,
				cfg.Capabilities.Proc, cfg.Capabilities.Rand, cfg.Capabilities.Time, cfg.Capabilities.State)

			m := vm.New(prog, h, fuel)
			outcome := m.Run(nil)
			return reportOutcome(outcome)
		},
	}
	cmd.Flags().Int64Var(&fuel, "fuel", 0, "instruction budget (default from uscript.yaml, itself 1_000_000)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to uscript.yaml (default: search alongside the input file)")
	return cmd
}

// loadProgram loads either a source module (compiling it first) or an
// already-built .mub container, dispatching on extension the way the
// teacher's ailang run dispatches .ail vs a precompiled artifact.
func loadProgram(path string) (*bytecode.Program, error) {
	if filepath.Ext(path) == ".mub" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		prog, err := bytecode.Decode(data, lower.KnownBuiltinCount())
		if err != nil {
			return nil, err
		}
		return prog, nil
	}
	src, err := readSource(path)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag()
	prog := compile(src, path, bag)
	renderDiagnostics(bag, jsonDiagnostics)
	if bag.HasErrors() || prog == nil {
		return nil, errExit
	}
	return prog, nil
}

func resolveManifest(explicit, dir string) (*config.Config, error) {
	if explicit != "" {
		return config.Load(explicit)
	}
	return config.Find(dir)
}

func reportOutcome(o vm.Outcome) error {
	switch o.Kind {
	case vm.OutcomeReturn:
		os.Exit(int(o.ExitCode))
		return nil
	case vm.OutcomeFuelExhausted:
		fmt.Fprintf(os.Stderr, "%s: fuel exhausted after %d instructions\n", red("trap"), o.FuelUsed)
		os.Exit(1)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "%s %s: %s (%d instructions)\n", red("trap"), o.TrapCode, o.TrapMsg, o.FuelUsed)
		os.Exit(1)
		return nil
	}
}

func trimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}

// errExit is returned by RunE to signal "already reported, exit nonzero
// silently" so cobra doesn't print a redundant "Error: ..." line on top
// of diagnostics already rendered.
var errExit = &silentError{}

type silentError struct{}

func (*silentError) Error() string { return "" }
