// cmd/combc/main.go
package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"combc/internal/blueprint"
	"combc/internal/builder"
	"combc/internal/colors"
	"combc/internal/diagnostics"
	"combc/internal/errors"
	"combc/internal/ir"
	"combc/internal/layout"
	"combc/internal/lexer"
	"combc/internal/parser"
	"combc/internal/romgen"
	"combc/internal/symbols"
)

const version = "0.1.0"

var gitCommit = "unknown"

//go:embed assets/symbols.json
var symbolsAsset []byte

//go:embed assets/std/prelude.cdl
var preludeAsset []byte

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "combc: %v\n", err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(diagnostics.Banner(version, gitCommit, time.Now()))
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "combc: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	filename    string
	modName     string
	noFold      bool
	noPrune     bool
	dumpIR      bool
	verbose     bool
	showVersion bool
	romFile     string
	romOffset   int
}

func parseArgs(args []string) (options, error) {
	opts := options{modName: "main"}
	var positional []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--no-opt":
			opts.noFold, opts.noPrune = true, true
		case "--no-fold":
			opts.noFold = true
		case "--no-prune":
			opts.noPrune = true
		case "--dump-ir":
			opts.dumpIR = true
		case "--verbose":
			opts.verbose = true
		case "--version":
			opts.showVersion = true
		case "--gen-rom":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--gen-rom requires a file path")
			}
			opts.romFile = args[i]
		case "--rom-offset":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--rom-offset requires a value")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return opts, fmt.Errorf("--rom-offset: %v", err)
			}
			opts.romOffset = n
		default:
			positional = append(positional, a)
		}
	}

	if opts.showVersion || opts.romFile != "" {
		return opts, nil
	}
	if len(positional) < 1 {
		return opts, fmt.Errorf("usage: combc <filename> [mod_name] [--no-opt] [--no-fold] [--no-prune] [--dump-ir] [--verbose] [--gen-rom <file>] [--rom-offset <n>]")
	}
	opts.filename = positional[0]
	if len(positional) > 1 {
		opts.modName = positional[1]
	}
	return opts, nil
}

func run(opts options) error {
	if opts.romFile != "" {
		return runGenRom(opts)
	}

	source, err := os.ReadFile(opts.filename)
	if err != nil {
		return errors.Wrap(err, errors.ParseLink, "", "reading %s", opts.filename)
	}

	settings := ir.Settings{Fold: !opts.noFold, Prune: !opts.noPrune}

	table, err := symbols.Load(symbolsAsset)
	if err != nil {
		return err
	}

	b := builder.New(table, settings)

	preludeItems, err := parseSource(string(preludeAsset), "std/prelude.cdl")
	if err != nil {
		return err
	}
	userItems, err := parseSource(string(source), opts.filename)
	if err != nil {
		return err
	}

	irTable, _, err := b.Build(append(preludeItems, userItems...))
	if err != nil {
		return err
	}

	mod, ok := irTable.Modules[opts.modName]
	if !ok {
		return errors.New(errors.Undefined, "", opts.modName, "module %q not found", opts.modName)
	}

	if opts.dumpIR {
		fmt.Fprintln(os.Stderr, ir.DumpNodes(mod))
		if opts.verbose {
			fmt.Fprintln(os.Stderr, ir.DumpVerbose(mod))
		}
	}

	if err := symbols.Select(mod); err != nil {
		return err
	}
	if err := colors.Select(mod); err != nil {
		return err
	}
	if err := layout.Run(mod, 1); err != nil {
		return err
	}

	entities, err := blueprint.Emit(mod, table)
	if err != nil {
		return err
	}
	out, err := blueprint.Envelope(entities)
	if err != nil {
		return err
	}

	if opts.verbose {
		log.Printf("combc %s: %d entities, %s", diagnostics.BuildID, len(entities), humanize.Bytes(uint64(len(out))))
		if isatty.IsTerminal(os.Stdout.Fd()) {
			log.Printf("writing to a terminal")
		}
	}

	fmt.Println()
	fmt.Println(out)
	return nil
}

// runGenRom reads a raw byte file and prints a combc module that maps
// an address input to that file's bytes via a match expression, one
// arm per byte, for pasting into a source file as a lookup table.
func runGenRom(opts options) error {
	data, err := os.ReadFile(opts.romFile)
	if err != nil {
		return errors.Wrap(err, errors.ParseLink, "", "reading %s", opts.romFile)
	}
	fmt.Println(romgen.Generate("main", data, opts.romOffset))
	return nil
}

func parseSource(src, file string) (items []parser.Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*parser.ParseError); ok {
				err = errors.New(errors.ParseLink, "", "", "%v", pe)
				return
			}
			panic(r)
		}
	}()
	toks := lexer.NewScannerWithFile(src, file).ScanTokens()
	p := parser.NewParserWithFile(toks, file)
	items = p.Parse()
	return items, nil
}
