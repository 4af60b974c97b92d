package liveserver

import (
	"testing"

	"decicalc/interpreter"
	"decicalc/sheet"
)

func TestRenderCellValue(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetValueCell(0, 0, "1")
	ctx := interpreter.NewCallingContext(s, nil, nil, 0)
	sheet.Recalc(ctx, s)

	cell := s.GetCell(0, 0)
	update := renderCell(0, 0, cell)
	if update.Error {
		t.Fatalf("cell should not be in error: %+v", update)
	}
	if update.Value != "1" {
		t.Errorf("got value %q, want \"1\"", update.Value)
	}
	if update.Type != "cell" {
		t.Errorf("got type %q, want \"cell\"", update.Type)
	}
}

func TestRenderCellError(t *testing.T) {
	s := sheet.NewSpreadSheet()
	s.SetValueCell(0, 0, "EvalCell(B1)")
	s.SetValueCell(1, 0, "EvalCell(A1)")
	ctx := interpreter.NewCallingContext(s, stubBuiltins{}, nil, 0)
	sheet.Recalc(ctx, s)

	cell := s.GetCell(0, 0)
	update := renderCell(0, 0, cell)
	if !update.Error {
		t.Fatalf("expected a cycle error to be recorded: %+v", update)
	}
	if update.Value != "***" {
		t.Errorf("errored cells should render as \"***\", got %q", update.Value)
	}
}

func TestRenderCellEmpty(t *testing.T) {
	update := renderCell(3, 4, &sheet.Cell{})
	if update.Error || update.Value != "" {
		t.Errorf("an unevaluated cell should render blank, got %+v", update)
	}
	if update.Col != 3 || update.Row != 4 {
		t.Errorf("got col=%d row=%d, want 3,4", update.Col, update.Row)
	}
}

// stubBuiltins resolves EvalCell the same way stdlib.Builtins does, without
// pulling in the full stdlib package -- enough to drive the cycle-detection
// path through sheet.EvalCell.
type stubBuiltins struct{}

func (stubBuiltins) Lookup(name string) (interpreter.Value, bool) {
	if name != "EvalCell" {
		return nil, false
	}
	return &interpreter.NativeFunction{Name: "EvalCell", Fn: func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		ref := args[0].(*interpreter.CellRef)
		atCol, atRow, _ := ctx.CurrentCell()
		col, row := ref.Resolve(atCol, atRow)
		return ctx.Sheet.EvalCell(ctx, col, row)
	}}, true
}
