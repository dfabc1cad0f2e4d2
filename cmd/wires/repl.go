package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"nickandperla.net/wires/pkg/wires"
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "wires REPL (Ctrl+D to exit)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  123 -> x           bind a wire")
	fmt.Fprintln(w, "  ?x                 evaluate a wire")
	fmt.Fprintln(w, "  :override b 123    rewire b to a signal and flush")
	fmt.Fprintln(w, "  :flush :dump :wires :check :persist :restore :quit")
	fmt.Fprintln(w)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runREPL(runtime *wires.Runtime, stdin io.Reader, stdout io.Writer) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		runBasicREPL(runtime, stdin, stdout)
		return
	}
	runTermREPL(runtime, f, stdout)
}

// runBasicREPL reads plain lines without line editing. main only starts a
// REPL on a terminal, so this runs when raw mode cannot be enabled.
func runBasicREPL(runtime *wires.Runtime, stdin io.Reader, stdout io.Writer) {
	printBanner(stdout)
	reader := bufio.NewReader(stdin)
	for {
		fmt.Fprint(stdout, ">>> ")
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			fmt.Fprintln(stdout)
			return
		}
		if !handle(runtime, strings.TrimRight(line, "\r\n"), stdout) {
			return
		}
	}
}

// runTermREPL uses a raw-mode terminal for line editing and history.
func runTermREPL(runtime *wires.Runtime, f *os.File, stdout io.Writer) {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		runBasicREPL(runtime, f, stdout)
		return
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, stdout}, ">>> ")
	printBanner(t)
	for {
		line, err := t.ReadLine()
		if err != nil {
			return
		}
		if !handle(runtime, line, t) {
			return
		}
	}
}

// handle runs one REPL line and reports whether the session continues.
func handle(runtime *wires.Runtime, line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true

	case strings.HasPrefix(line, "?"):
		name := strings.TrimSpace(line[1:])
		v, err := runtime.Eval(name)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return true
		}
		fmt.Fprintf(w, "%s: %d\n", name, v)

	case strings.HasPrefix(line, ":"):
		return command(runtime, strings.Fields(line[1:]), w)

	default:
		if err := runtime.Assign(line); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}
	return true
}

func command(runtime *wires.Runtime, fields []string, w io.Writer) bool {
	if len(fields) == 0 {
		fmt.Fprintln(w, "Error: empty command")
		return true
	}
	var err error
	switch fields[0] {
	case "quit", "q":
		return false
	case "flush":
		runtime.Flush()
	case "dump":
		err = runtime.Dump(w)
	case "wires":
		for _, name := range runtime.Wires() {
			def, _ := runtime.Definition(name)
			fmt.Fprintf(w, "%s -> %s\n", def, name)
		}
	case "check":
		missing := runtime.Unbound()
		if len(missing) == 0 {
			fmt.Fprintln(w, "all referenced wires are driven")
			break
		}
		err = fmt.Errorf("undriven wires: %s", strings.Join(missing, ", "))
	case "persist":
		err = runtime.Persist()
	case "restore":
		err = runtime.Restore()
	case "override":
		if len(fields) != 3 {
			err = fmt.Errorf("usage: :override <wire> <signal>")
			break
		}
		var v uint64
		v, err = strconv.ParseUint(fields[2], 10, 16)
		if err == nil {
			err = runtime.Override(fields[1], uint16(v))
		}
	default:
		err = fmt.Errorf("unknown command :%s", fields[0])
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return true
}
