package interpreter

import (
	"fmt"
	"strings"

	"decicalc/token"
)

// TypedOperationError reports a data-level mistake: a type mismatch, an
// out-of-range index, a missing dictionary key, division by a non-numeric
// operand. It is a normal Value-producing outcome of evaluation, not a
// control-flow signal -- a cell formula that raises one simply shows an
// error value in its place (§4.4), rather than aborting the whole
// recalculation.
type TypedOperationError struct {
	Message string
	Token   *token.Token
}

func (e *TypedOperationError) Error() string { return e.Message }

// FatalError aborts the recalculation pass currently in progress. It is
// raised by the scripting Fatal builtin: computeCell passes it up whatever
// its rethrow flag, Recalc ends the sweep on it, and library loading returns
// it. Cycles and external-source failures are reported as
// TypedOperationError instead.
type FatalError struct {
	Message string
	Token   *token.Token
}

func (e *FatalError) Error() string { return e.Message }

// ProgrammingError marks an invariant the evaluator itself is supposed to
// maintain (an AST node of a kind the dispatcher doesn't know, a Scope
// popped more times than it was pushed). Seeing one means a bug in this
// package, not in the sheet or script being evaluated.
type ProgrammingError struct {
	Message string
}

func (e *ProgrammingError) Error() string { return "internal error: " + e.Message }

// FormatRuntimeError renders err against source for display in the REPL and
// CLI error stream, producing a caret diagram under the offending token
// when position information is available.
func FormatRuntimeError(err error, source string, filename string) string {
	var msg string
	var tok *token.Token
	switch e := err.(type) {
	case *TypedOperationError:
		msg, tok = e.Message, e.Token
	case *FatalError:
		msg, tok = e.Message, e.Token
	default:
		return err.Error()
	}
	return formatWithCaret(msg, tok, source, filename)
}

func formatWithCaret(message string, tok *token.Token, source string, filename string) string {
	if tok == nil || tok.Line == 0 || source == "" {
		return "runtime error: " + message
	}
	lines := strings.Split(source, "\n")
	line := tok.Line
	col := tok.Column
	if line < 1 || line > len(lines) {
		return "runtime error: " + message
	}
	lineText := strings.TrimRight(lines[line-1], "\r")
	if col < 1 {
		col = 1
	}
	if col > len(lineText)+1 {
		col = len(lineText) + 1
	}
	caret := strings.Repeat(" ", col-1) + "^"
	location := fmt.Sprintf("%d:%d", line, tok.Column)
	if filename != "" {
		location = fmt.Sprintf("%s:%s", filename, location)
	}
	return fmt.Sprintf(
		"runtime error: %s\n  at %s\n  %d | %s\n    | %s",
		message, location, line, lineText, caret,
	)
}
