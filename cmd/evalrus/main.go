// Command evalrus is the CLI/REPL front end for the register-VM Lisp
// core, grounded on original_source/src/main.rs and repl.rs, with the
// flag-free os.Args-adjacent CLI register borrowed from
// j5.nz/rtg/std/compiler/main.go (here using the stdlib flag package,
// since the teacher's hand-rolled os.Args loop is overkill for a single
// optional positional argument).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/evalrus/internal/compiler"
	"github.com/xyproto/evalrus/internal/heap"
	"github.com/xyproto/evalrus/internal/lexer"
	"github.com/xyproto/evalrus/internal/parser"
	"github.com/xyproto/evalrus/internal/printer"
	"github.com/xyproto/evalrus/internal/rerr"
	"github.com/xyproto/evalrus/internal/vm"
)

func main() {
	verbose := flag.Bool("v", false, "print the compiled ByteCode's BuildID alongside each result")
	historyPath := flag.String("history", "", "history file path (defaults to the config file's historyFile, or .evalrus_history)")
	configPath := flag.String("config", ".evalrus.yaml", "optional config file path")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("evalrus: failed to load config %s: %v", *configPath, err)
	}
	if *historyPath != "" {
		cfg.HistoryFile = *historyPath
	}

	mem := heap.NewMemory(cfg.HeapBlockSize)
	defer mem.Close()

	if args := flag.Args(); len(args) > 0 {
		readFile(mem, args[0])
		return
	}
	readPrintLoop(mem, cfg, *verbose)
}

// readFile implements spec.md §6's file mode: parse the file's forms
// and print their AST (debug form), exiting nonzero on a read failure.
func readFile(mem *heap.Memory, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("evalrus: cannot read %s: %v", path, err)
		os.Exit(1)
	}
	err = mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New(string(data)).Tokenize()
		if err != nil {
			return err
		}
		forms, err := parser.New(scope, toks).ParseAll()
		if err != nil {
			return err
		}
		for _, form := range forms {
			fmt.Println(printer.Debug(scope.Heap(), form))
		}
		return nil
	})
	if err != nil {
		log.Printf("evalrus: %v", err)
		os.Exit(1)
	}
}

func readPrintLoop(mem *heap.Memory, cfg Config, verbose bool) {
	history := loadHistory(cfg.HistoryFile)
	machine := vm.New(mem)
	counter := 1
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("evalrus:%03d> ", counter)
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		history = append(history, line)
		counter++

		result, recovered := runLine(mem, machine, line, verbose)
		if recovered != nil {
			printRecovered(line, recovered)
			continue
		}
		fmt.Println(result)
	}

	if err := saveHistory(cfg.HistoryFile, history); err != nil {
		// Non-fatal, per main.rs: a history save failure shouldn't
		// crash a REPL session that otherwise ran fine.
		log.Printf("evalrus: could not save history: %v", err)
	}
}

// runLine parses, compiles, and evaluates one line inside a single
// Mutate scope, returning either the printed result or a recoverable
// *rerr.Error. Non-recoverable errors (OOM, bounds, key, unhashable)
// are fatal, per spec.md §7's error-handling design.
func runLine(mem *heap.Memory, machine *vm.VM, line string, verbose bool) (string, *rerr.Error) {
	var result string
	err := mem.Mutate(func(scope *heap.Scope) error {
		toks, err := lexer.New(line).Tokenize()
		if err != nil {
			return err
		}
		form, err := parser.New(scope, toks).ParseOne()
		if err != nil {
			return err
		}
		fn, _, err := compiler.Compile(scope, form)
		if err != nil {
			return err
		}
		val, err := machine.QuickEval(scope, fn)
		if err != nil {
			return err
		}
		result = printer.Print(scope.Heap(), val)
		if verbose {
			result = fmt.Sprintf("%s  ; build %s", result, fn.Code.BuildID)
		}
		return nil
	})
	if err == nil {
		return result, nil
	}
	rerror, ok := err.(*rerr.Error)
	if !ok {
		log.Fatalf("evalrus: %v", err)
	}
	switch rerror.Kind {
	case rerr.LexerError, rerr.ParseError, rerr.EvalError:
		return "", rerror
	default:
		log.Fatalf("evalrus: %v", rerror)
	}
	return "", rerror
}

// printRecovered renders a recoverable error the way repl.rs's
// print_with_source does: "error: <reason>", the source line, and a
// caret under the offending column.
func printRecovered(src string, err *rerr.Error) {
	fmt.Printf("error: %s\n", err.Reason)
	if err.Pos == nil {
		return
	}
	fmt.Printf("%5s|%s\n", "", src)
	fmt.Printf("%5s|%s^\n", "", strings.Repeat(" ", err.Pos.Col))
}

// resolveHistoryPath resolves a relative HistoryFile against $HOME, so
// load and save always agree on the same absolute path.
func resolveHistoryPath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

func loadHistory(path string) []string {
	data, err := os.ReadFile(resolveHistoryPath(path))
	if err != nil {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func saveHistory(path string, history []string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(resolveHistoryPath(path), []byte(strings.Join(history, "\n")+"\n"), 0o644)
}
