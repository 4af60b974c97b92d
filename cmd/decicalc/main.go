// Command decicalc loads a sheet, recalculates it once, and prints the
// result -- the batch half of §6's CLI surface. The interactive half lives
// in the same binary: after the initial recalc, when stdin and stdout are a
// terminal, it drops into a line-edited REPL over the loaded sheet, so a
// user can keep entering formulas (each followed by a full recalc) and
// write the sheet with :save.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"decicalc/interpreter"
	"decicalc/persistence"
	"decicalc/replline"
	"decicalc/sheet"
	"decicalc/stdlib"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return 2
	}
	if opts.help {
		usage()
		return 0
	}

	builtins := stdlib.New()
	s, err := persistence.LoadFile(opts.sheetfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decicalc: loading %s: %v\n", opts.sheetfile, err)
		return 1
	}
	s.CMajor = opts.cMajor
	s.TopDown = opts.topDown
	s.LeftRight = opts.leftRight

	ctx := interpreter.NewCallingContext(s, builtins, stderrLogger{}, 0)

	if err := stdlib.LoadLibraries(ctx, opts.libraries); err != nil {
		fmt.Fprintf(os.Stderr, "decicalc: %v\n", err)
		return 1
	}

	sheet.Recalc(ctx, s)
	printSheet(os.Stdout, s)

	if err := runREPL(ctx, s, opts.sheetfile); err != nil {
		fmt.Fprintf(os.Stderr, "decicalc: %v\n", err)
		return 1
	}
	return 0
}

type stderrLogger struct{}

func (stderrLogger) Log(text string) { log.Println(text) }

type options struct {
	libraries []string
	cMajor    bool
	topDown   bool
	leftRight bool
	sheetfile string
	help      bool
}

// parseArgs implements "decicalc [-l libfile]* [-c c_major] [-t top_down]
// [-r left_right] [sheetfile]" (§6). The three traversal flags take an
// explicit bool argument ("true"/"false") rather than being bare switches,
// since all eight combinations are meaningful and the defaults (true, true,
// true) already cover the common case.
func parseArgs(args []string) (options, error) {
	opts := options{cMajor: true, topDown: true, leftRight: true, sheetfile: "untitled.html"}
	positional := []string{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			opts.help = true
			return opts, nil
		case arg == "-l":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("-l requires a library path")
			}
			opts.libraries = append(opts.libraries, args[i+1])
			i++
		case strings.HasPrefix(arg, "-l="):
			opts.libraries = append(opts.libraries, strings.TrimPrefix(arg, "-l="))
		case arg == "-c":
			b, err := nextBool(args, &i)
			if err != nil {
				return opts, fmt.Errorf("-c: %w", err)
			}
			opts.cMajor = b
		case arg == "-t":
			b, err := nextBool(args, &i)
			if err != nil {
				return opts, fmt.Errorf("-t: %w", err)
			}
			opts.topDown = b
		case arg == "-r":
			b, err := nextBool(args, &i)
			if err != nil {
				return opts, fmt.Errorf("-r: %w", err)
			}
			opts.leftRight = b
		case strings.HasPrefix(arg, "-"):
			return opts, fmt.Errorf("unknown flag: %s", arg)
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) > 1 {
		return opts, fmt.Errorf("expected at most one sheetfile, got %d", len(positional))
	}
	if len(positional) == 1 {
		opts.sheetfile = positional[0]
	}
	return opts, nil
}

func nextBool(args []string, i *int) (bool, error) {
	if *i+1 >= len(args) {
		return false, fmt.Errorf("requires a value")
	}
	*i++
	switch args[*i] {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q, want true or false", args[*i])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  decicalc [-l libfile]... [-c true|false] [-t true|false] [-r true|false] [sheetfile]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Loads sheetfile (default untitled.html), recalculates it once, prints")
	fmt.Fprintln(os.Stderr, "every occupied cell's value, then drops into an interactive prompt.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  -l libfile   load an additional Backwards library file (repeatable)")
	fmt.Fprintln(os.Stderr, "  -c bool      column-major traversal when true (default true)")
	fmt.Fprintln(os.Stderr, "  -t bool      top-down traversal when true (default true)")
	fmt.Fprintln(os.Stderr, "  -r bool      left-right traversal when true (default true)")
}

// printSheet renders every occupied cell as "A1: value" in the sheet's
// current traversal order, with "***" standing in for a cell whose last
// evaluation recorded an error (§7).
func printSheet(w io.Writer, s *sheet.SpreadSheet) {
	s.Each(func(col, row int64, cell *sheet.Cell) bool {
		addr := sheet.ColumnToString(col) + itoa(row+1)
		if cell.FirstErrorLine != "" {
			fmt.Fprintf(w, "%s: ***\n", addr)
			return true
		}
		if cell.PreviousValue != nil {
			fmt.Fprintf(w, "%s: %s\n", addr, cell.PreviousValue.Inspect())
		}
		return true
	})
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// runREPL drives an interactive "A1 = 2*B1" / "B1" session against the
// loaded sheet: each accepted line is split on the first "=" into an
// address and a formula (or, with no "=", treated as a bare address to
// print); every accepted edit triggers one full Recalc, and ":save" and
// ":quit" are the only two colon-commands. When stdin or stdout is not a
// terminal -- e.g. when piped from a script -- it returns at once without
// reading any input.
func runREPL(ctx *interpreter.CallingContext, s *sheet.SpreadSheet, sheetfile string) error {
	reader, ok := replline.New(os.Stdin, os.Stdout)
	if !ok {
		return nil
	}
	defer reader.Close()
	out := replline.NewLineWriter(os.Stdout)

	fmt.Fprintln(out, "decicalc interactive mode -- :save, :quit, or an empty line to exit")
	for {
		line, ok := reader.ReadLine("> ")
		if !ok {
			return nil
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			return nil
		case line == ":quit":
			return nil
		case line == ":save":
			if err := persistence.SaveFile(sheetfile, s); err != nil {
				fmt.Fprintf(out, "save failed: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "saved %s\n", sheetfile)
		default:
			evalLine(ctx, s, out, line)
		}
	}
}

func evalLine(ctx *interpreter.CallingContext, s *sheet.SpreadSheet, out io.Writer, line string) {
	addrText, formula, hasFormula := strings.Cut(line, "=")
	addrText = strings.TrimSpace(addrText)
	col, row, ok := parseAddress(addrText)
	if !ok {
		fmt.Fprintf(out, "not a cell address: %q\n", addrText)
		return
	}
	if hasFormula {
		s.SetValueCell(col, row, strings.TrimSpace(formula))
		sheet.Recalc(ctx, s)
	}
	cell := s.GetCell(col, row)
	if cell == nil {
		fmt.Fprintln(out, "(empty)")
		return
	}
	if cell.FirstErrorLine != "" {
		fmt.Fprintf(out, "*** %s\n", cell.FirstErrorLine)
		return
	}
	if cell.PreviousValue != nil {
		fmt.Fprintln(out, cell.PreviousValue.Inspect())
		return
	}
	fmt.Fprintln(out, "(empty)")
}

// parseAddress parses spreadsheet notation ("B12") into 0-based (col, row),
// ignoring any "$" absolute markers -- they only matter inside formulas.
func parseAddress(s string) (col, row int64, ok bool) {
	s = strings.ReplaceAll(s, "$", "")
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, false
	}
	col, ok = sheet.ParseColumn(s[:i])
	if !ok {
		return 0, 0, false
	}
	n := int64(0)
	for _, ch := range s[i:] {
		if ch < '0' || ch > '9' {
			return 0, 0, false
		}
		n = n*10 + int64(ch-'0')
	}
	if n == 0 {
		return 0, 0, false
	}
	return col, n - 1, true
}
