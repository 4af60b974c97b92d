package interpreter

// SheetAccessor is the narrow surface the evaluator needs from the sheet
// package in order to evaluate cell-reference and range expressions. It is
// declared here, in interpreter, and implemented by sheet.SpreadSheet, so
// that interpreter never imports sheet: sheet already needs to import
// interpreter for Value and CallingContext, and Go forbids the cycle that
// an interpreter -> sheet import would complete.
type SheetAccessor interface {
	// EvalCell returns the current value of the cell at (col, row),
	// recomputing it first if its generation is stale (§7).
	EvalCell(ctx *CallingContext, col, row int64) (Value, error)
	// ExpandRange returns a CellRef for every coordinate in the rectangle
	// the range denotes, in row-major order, without evaluating any of
	// them; range-consuming functions like Sum and Average pass each ref
	// to EvalCell (§4.2, §4.7).
	ExpandRange(ctx *CallingContext, r *CellRange) ([]Value, error)
}

// GetterMap resolves a bare identifier used in call position to a callable
// Value: a NativeFunction for built-ins, a Function for names the host has
// registered from a Backwards library definition. Declared here for the
// same reason as SheetAccessor -- the concrete map lives in the stdlib
// package, which imports interpreter, not the other way around.
type GetterMap interface {
	Lookup(name string) (Value, bool)
}

// CellFrame is one entry of the cycle-detection stack a CallingContext
// carries through a single cell's evaluation: every cell currently being
// computed, in call order, so that a formula referencing a cell already on
// the stack can be reported as a cycle (§4.2, §7) instead of recursing
// forever.
type CellFrame struct {
	Col, Row int64
}

// Logger is the synchronous text sink every evaluation logs through:
// parse errors, runtime error first-lines, and the scripting Error/Warn/
// Info/DebugPrint builtins (§6 "Host<->engine").
type Logger interface {
	Log(text string)
}

// CallingContext threads everything a single top-level evaluation -- of one
// cell's formula, or one REPL expression -- needs through the whole call
// tree: the sheet accessor for cell/range lookups, the active generation
// number for recalculation memoization, the builtin/library function
// table, the logger, the scripting runtime's global scope, and the
// in-progress cycle-detection stack (§3 "CallingContext").
type CallingContext struct {
	Sheet       SheetAccessor
	Builtins    GetterMap
	Logger      Logger
	GlobalScope *Scope
	Generation  int64

	// InUserInput suppresses mutation of cell.value/previousValue during
	// one-off UI preview evaluations (§4.4); recalc always runs with this
	// false.
	InUserInput bool

	stack []CellFrame

	// Debugger, when non-nil, is notified before and after every expression
	// evaluation (§8); statement execution is not reported. It is nil in
	// normal recalculation.
	Debugger Debugger
}

func NewCallingContext(sheet SheetAccessor, builtins GetterMap, logger Logger, generation int64) *CallingContext {
	return &CallingContext{
		Sheet:       sheet,
		Builtins:    builtins,
		Logger:      logger,
		GlobalScope: NewScope(),
		Generation:  generation,
	}
}

// EnterCell pushes (col, row) onto the cycle-detection stack, returning a
// TypedOperationError if that cell is already being evaluated further up
// the stack (§4.2, §8), and a pop function the caller must defer so the
// frame is removed on every exit path, including an error return.
func (c *CallingContext) EnterCell(col, row int64) (func(), error) {
	for _, f := range c.stack {
		if f.Col == col && f.Row == row {
			return func() {}, &TypedOperationError{Message: "cycle detected evaluating cell"}
		}
	}
	c.stack = append(c.stack, CellFrame{Col: col, Row: row})
	depth := len(c.stack)
	return func() {
		if len(c.stack) >= depth {
			c.stack = c.stack[:depth-1]
		}
	}, nil
}

// Stack exposes the current cycle-detection frames for diagnostics and the
// debugger's call-stack display (§8).
func (c *CallingContext) Stack() []CellFrame {
	out := make([]CellFrame, len(c.stack))
	copy(out, c.stack)
	return out
}

// CurrentCell reports the (col, row) of the cell at the top of the
// cycle-detection stack -- the cell whose formula is presently being
// evaluated -- used to resolve relative CellRef/CellRange offsets (§4.2).
// ok is false when evaluation is not occurring inside any cell (e.g. a bare
// REPL expression).
func (c *CallingContext) CurrentCell() (col, row int64, ok bool) {
	if len(c.stack) == 0 {
		return 0, 0, false
	}
	top := c.stack[len(c.stack)-1]
	return top.Col, top.Row, true
}
