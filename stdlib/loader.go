package stdlib

import (
	_ "embed"
	"fmt"
	"os"

	"decicalc/interpreter"
	"decicalc/lexer"
	"decicalc/parser"
)

// librarySource is the embedded Backwards standard library (§6 "the stdlib
// source text is embedded as a string constant; on startup it is parsed and
// executed against the global scope, defining library functions").
//
//go:embed library.bw
var librarySource string

// LoadSource parses source and executes every top-level statement directly
// against ctx.GlobalScope -- almost always a sequence of FunctionDefStatement
// nodes, though any Backwards statement is legal at library scope. A parse
// error or a Fatal raised while a top-level statement runs is caught here,
// per §7 ("Fatal... is caught at library-load and at the top of recalc").
func LoadSource(ctx *interpreter.CallingContext, name, source string) error {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.ErrorsDetailed(); len(errs) > 0 {
		return fmt.Errorf("%s", parser.FormatParseErrors(errs, source, name))
	}
	for _, stmt := range program.Statements {
		if _, err := interpreter.ExecStmt(ctx, stmt, ctx.GlobalScope); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// LoadLibraries installs the embedded standard library and then, in order,
// every library file named by the CLI's repeated -l flag (§6 CLI surface).
func LoadLibraries(ctx *interpreter.CallingContext, paths []string) error {
	if err := LoadSource(ctx, "<stdlib>", librarySource); err != nil {
		return err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading library %s: %w", path, err)
		}
		if err := LoadSource(ctx, path, string(data)); err != nil {
			return err
		}
	}
	return nil
}
