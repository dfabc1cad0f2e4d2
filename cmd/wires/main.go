// Command wires evaluates wire circuits.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"nickandperla.net/wires/pkg/wires"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("wires", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		file        = fs.String("f", "", "Circuit source file, one assignment per line")
		evalStr     = fs.String("e", "", "Inline assignments separated by ';'")
		wire        = fs.String("wire", "a", "Wire to evaluate")
		override    = fs.String("override", "", "Wire to rewire with the first signal before evaluating again")
		dbPath      = fs.String("db", "", "SQLite database path (empty for no persistence)")
		persistMode = fs.String("persist-mode", "on_demand", "Persistence mode: on_demand, always, or never")
		restore     = fs.Bool("restore", false, "Restore the stored circuit before loading sources")
		persist     = fs.Bool("persist", false, "Persist the circuit after evaluation")
		dump        = fs.Bool("dump", false, "Print the signal on every wire")
		verbose     = fs.Bool("v", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	mode, ok := wires.ParsePersistMode(*persistMode)
	if !ok {
		fmt.Fprintf(stderr, "Unknown persist mode: %s (use on_demand, always, or never)\n", *persistMode)
		return 1
	}

	// Build options
	opts := []wires.Option{
		wires.WithLogger(log),
		wires.WithPersistMode(mode),
	}
	if *dbPath != "" {
		opts = append(opts, wires.WithSQLiteStore(*dbPath))
	}

	runtime, err := wires.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer runtime.Close()

	if *restore {
		if err := runtime.Restore(); err != nil {
			fmt.Fprintf(stderr, "Error restoring circuit: %v\n", err)
			return 1
		}
	}

	// Step 1: load sources
	if *file != "" {
		if err := runtime.LoadFile(*file); err != nil {
			fmt.Fprintf(stderr, "Error loading file: %v\n", err)
			return 1
		}
	}
	if *evalStr != "" {
		src := strings.ReplaceAll(*evalStr, ";", "\n")
		if err := runtime.Load(strings.NewReader(src)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	// Step 2: with no source at all, read stdin or go interactive
	if *file == "" && *evalStr == "" && !*restore {
		if isTerminal(stdin) {
			runREPL(runtime, stdin, stdout)
			return 0
		}
		if err := runtime.Load(stdin); err != nil {
			fmt.Fprintf(stderr, "Error reading stdin: %v\n", err)
			return 1
		}
	}

	// Step 3: evaluate
	if *dump {
		if err := runtime.Dump(stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else if code := evaluate(runtime, *wire, *override, stdout, stderr); code != 0 {
		return code
	}

	if *persist {
		if err := runtime.Persist(); err != nil {
			fmt.Fprintf(stderr, "Error persisting circuit: %v\n", err)
			return 1
		}
	}
	return 0
}

// evaluate prints the signal on wire and, if override is set, rewires
// override to that signal and prints the re-evaluated wire.
func evaluate(runtime *wires.Runtime, wire, override string, stdout, stderr io.Writer) int {
	first, err := runtime.Eval(wire)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %d\n", wire, first)

	if override == "" {
		return 0
	}
	if err := runtime.Override(override, first); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	second, err := runtime.Eval(wire)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: %d\n", wire, second)
	return 0
}
