package sheet

import (
	"strings"

	"decicalc/ast"
	"decicalc/interpreter"
	"decicalc/lexer"
	"decicalc/parser"
	"decicalc/token"
)

// EvalCell implements interpreter.SheetAccessor: the host function cell
// formulas call (indirectly, through the stdlib EvalCell builtin) to
// dereference a resolved (col, row) coordinate (§4.2, §4.3).
func (s *SpreadSheet) EvalCell(ctx *interpreter.CallingContext, col, row int64) (interpreter.Value, error) {
	cell := s.GetCell(col, row)
	if cell == nil {
		return interpreter.NIL_VALUE, nil
	}
	if cell.PreviousValue != nil && cell.PreviousGeneration == ctx.Generation {
		return cell.PreviousValue, nil
	}
	if cell.InEvaluation {
		return nil, &interpreter.TypedOperationError{Message: "cycle detected evaluating cell"}
	}
	return s.computeCell(ctx, col, row, true)
}

// ExpandRange implements interpreter.SheetAccessor: it resolves r against
// the currently evaluating cell and returns a CellRef for every coordinate
// in the resulting rectangle, in row-major order (§4.3, §8 example 4).
// Dereferencing those refs, if wanted, is a separate EvalCell call per
// element -- ExpandRange itself never evaluates anything.
func (s *SpreadSheet) ExpandRange(ctx *interpreter.CallingContext, r *interpreter.CellRange) ([]interpreter.Value, error) {
	atCol, atRow, _ := ctx.CurrentCell()
	left := &interpreter.CellRef{ColAbs: r.LeftAbs, ColOff: r.Left, RowAbs: r.TopAbs, RowOff: r.Top}
	right := &interpreter.CellRef{ColAbs: r.RightAbs, ColOff: r.Right, RowAbs: r.BottomAbs, RowOff: r.Bottom}
	lc, lr := left.Resolve(atCol, atRow)
	rc, rr := right.Resolve(atCol, atRow)
	c1, c2 := minI64(lc, rc), maxI64(lc, rc)
	r1, r2 := minI64(lr, rr), maxI64(lr, rr)

	out := make([]interpreter.Value, 0, (c2-c1+1)*(r2-r1+1))
	for row := r1; row <= r2; row++ {
		for col := c1; col <= c2; col++ {
			out = append(out, &interpreter.CellRef{ColAbs: true, ColOff: col, RowAbs: true, RowOff: row})
		}
	}
	return out, nil
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// computeCell is the algorithm of §4.4: determine (or parse) the cell's
// expression, commit it unless a user-input preview is in progress,
// evaluate with cycle detection, and cache the result under the current
// generation.
func (s *SpreadSheet) computeCell(ctx *interpreter.CallingContext, col, row int64, rethrow bool) (interpreter.Value, error) {
	cell := s.GetCell(col, row)
	if cell == nil {
		return nil, nil
	}

	expr, parseErr := s.resolveExpr(cell)
	if parseErr != nil {
		return nil, s.recordCellError(ctx, cell, parseErr, rethrow, true)
	}
	if expr == nil {
		// No expression and no parse error: an empty cell with nothing to
		// evaluate (§4.4 step 4).
		return nil, nil
	}

	if !ctx.InUserInput {
		cell.CurrentInput = ""
		cell.Expr = expr
	}

	pop, err := ctx.EnterCell(col, row)
	if err != nil {
		return nil, s.recordCellError(ctx, cell, err, rethrow, false)
	}
	cell.InEvaluation = true
	result, evalErr := interpreter.EvalExpr(ctx, expr, ctx.GlobalScope)
	cell.InEvaluation = false
	pop()

	if evalErr != nil {
		return nil, s.recordCellError(ctx, cell, evalErr, rethrow, true)
	}

	if !ctx.InUserInput {
		cell.PreviousGeneration = ctx.Generation
		cell.PreviousValue = result
		cell.FirstErrorLine = ""
	}
	return result, nil
}

// resolveExpr determines the expression a cell evaluates, per §4.4 step 3:
// the already-parsed Expr if present, a synthetic string constant for an
// unparsed LABEL, or a fresh parse of CurrentInput otherwise.
func (s *SpreadSheet) resolveExpr(cell *Cell) (ast.Expression, error) {
	if cell.Expr != nil {
		return cell.Expr, nil
	}
	if cell.Kind == KindLabel {
		return labelConstant(cell.CurrentInput), nil
	}
	if cell.CurrentInput == "" {
		return nil, nil
	}
	l := lexer.New(cell.CurrentInput)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, &interpreter.TypedOperationError{Message: errs[0]}
	}
	if len(prog.Statements) == 0 {
		return nil, nil
	}
	stmt, ok := prog.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, &interpreter.TypedOperationError{Message: "cell text is not an expression"}
	}
	return stmt.Expression, nil
}

func labelConstant(text string) ast.Expression {
	return &ast.Constant{Token: token.Token{Type: token.STRING, Literal: text}, Text: text}
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

func logFirstLine(ctx *interpreter.CallingContext, msg string) {
	if ctx.Logger != nil {
		ctx.Logger.Log(msg)
	}
}

// recordCellError stores err's first line on cell (unless a UI preview is
// in progress) and logs it, then decides whether computeCell should return
// the error to its caller. A Fatal error always propagates -- per §7 it
// unwinds past per-cell catching and is only caught at the top of Recalc
// or at library load -- regardless of rethrow.
func (s *SpreadSheet) recordCellError(ctx *interpreter.CallingContext, cell *Cell, err error, rethrow, markErrorKind bool) error {
	msg := firstLine(err.Error())
	if !ctx.InUserInput {
		cell.FirstErrorLine = msg
		if markErrorKind {
			cell.Kind = KindError
		}
	}
	logFirstLine(ctx, msg)
	if rethrow || isFatal(err) {
		return err
	}
	return nil
}

func isFatal(err error) bool {
	_, ok := err.(*interpreter.FatalError)
	return ok
}

// Recalc performs one full-sweep recalculation (§4.5): it bumps the
// generation, clears InUserInput, and visits every non-nil cell in the
// sheet's configured traversal order, installing a synthetic constant for
// unparsed LABEL cells and otherwise calling computeCell with rethrow=false
// so one cell's TypedOperation error never aborts the sweep. A Fatal error,
// per §7, is the one kind computeCell always propagates; Recalc is where it
// gets caught, ending the sweep early.
func Recalc(ctx *interpreter.CallingContext, s *SpreadSheet) {
	ctx.InUserInput = false
	ctx.Generation++
	s.Each(func(col, row int64, cell *Cell) bool {
		if cell.Kind == KindLabel && cell.Expr == nil && cell.CurrentInput != "" {
			cell.Expr = labelConstant(cell.CurrentInput)
			cell.CurrentInput = ""
		}
		_, err := s.computeCell(ctx, col, row, false)
		return !isFatal(err)
	})
}
