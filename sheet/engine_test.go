package sheet

import (
	"testing"

	"decicalc/interpreter"
	"decicalc/stdlib"
)

func newTestContext(s *SpreadSheet) *interpreter.CallingContext {
	return interpreter.NewCallingContext(s, stdlib.New(), nil, 0)
}

func floatOf(t *testing.T, v interpreter.Value) float64 {
	t.Helper()
	f, ok := v.(*interpreter.Float)
	if !ok {
		t.Fatalf("expected *interpreter.Float, got %T (%v)", v, v)
	}
	return f.Value.Float64()
}

func TestSimpleArithmetic(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "10")
	ctx := newTestContext(s)
	Recalc(ctx, s)

	cell := s.GetCell(0, 0)
	if cell.FirstErrorLine != "" {
		t.Fatalf("A1 errored: %s", cell.FirstErrorLine)
	}
	if got := floatOf(t, cell.PreviousValue); got != 10 {
		t.Errorf("A1: got %v, want 10", got)
	}
}

func TestCellReferenceAndRecalc(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "10")             // A1
	s.SetValueCell(1, 0, "EvalCell(A1)*2") // B1
	ctx := newTestContext(s)
	Recalc(ctx, s)

	b1 := s.GetCell(1, 0)
	if b1.FirstErrorLine != "" {
		t.Fatalf("B1 errored: %s", b1.FirstErrorLine)
	}
	if got := floatOf(t, b1.PreviousValue); got != 20 {
		t.Errorf("B1: got %v, want 20", got)
	}

	s.SetValueCell(0, 0, "5")
	Recalc(ctx, s)
	b1 = s.GetCell(1, 0)
	if got := floatOf(t, b1.PreviousValue); got != 10 {
		t.Errorf("B1 after update: got %v, want 10", got)
	}
}

func TestChainedDependencies(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "1")                   // A1
	s.SetValueCell(1, 0, "EvalCell(A1)+1")       // B1
	s.SetValueCell(2, 0, "EvalCell(B1)*2")       // C1
	ctx := newTestContext(s)
	Recalc(ctx, s)

	c1 := s.GetCell(2, 0)
	if c1.FirstErrorLine != "" {
		t.Fatalf("C1 errored: %s", c1.FirstErrorLine)
	}
	if got := floatOf(t, c1.PreviousValue); got != 4 {
		t.Errorf("C1: got %v, want 4", got)
	}
}

func TestCycleDetection(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "EvalCell(B1)")
	s.SetValueCell(1, 0, "EvalCell(A1)")
	ctx := newTestContext(s)
	Recalc(ctx, s)

	a1 := s.GetCell(0, 0)
	if a1.FirstErrorLine == "" {
		t.Fatal("expected A1 to record a cycle error")
	}
}

func TestLabelCell(t *testing.T) {
	s := NewSpreadSheet()
	s.SetLabelCell(0, 0, "Revenue")
	ctx := newTestContext(s)
	Recalc(ctx, s)

	cell := s.GetCell(0, 0)
	if cell.FirstErrorLine != "" {
		t.Fatalf("label cell errored: %s", cell.FirstErrorLine)
	}
	str, ok := cell.PreviousValue.(*interpreter.String)
	if !ok || str.Value != "Revenue" {
		t.Errorf("label cell: got %v, want String(Revenue)", cell.PreviousValue)
	}
}

func TestEmptyCellReferenceIsNil(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "EvalCell(B5)")
	ctx := newTestContext(s)
	Recalc(ctx, s)

	a1 := s.GetCell(0, 0)
	if a1.FirstErrorLine != "" {
		t.Fatalf("A1 errored: %s", a1.FirstErrorLine)
	}
	if _, ok := a1.PreviousValue.(*interpreter.Nil); !ok {
		t.Errorf("expected Nil for a reference to an empty cell, got %v", a1.PreviousValue)
	}
}

func TestGenerationMemoization(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "1")
	ctx := newTestContext(s)
	Recalc(ctx, s)

	a1 := s.GetCell(0, 0)
	firstGen := a1.PreviousGeneration
	val, err := s.EvalCell(ctx, 0, 0)
	if err != nil {
		t.Fatalf("EvalCell: %v", err)
	}
	if floatOf(t, val) != 1 {
		t.Errorf("memoized EvalCell: got %v, want 1", val)
	}
	if a1.PreviousGeneration != firstGen {
		t.Error("EvalCell should not bump the generation on a cache hit")
	}
}

func TestSumRangeLibraryFunction(t *testing.T) {
	s := NewSpreadSheet()
	s.SetValueCell(0, 0, "1") // A1
	s.SetValueCell(0, 1, "2") // A2
	s.SetValueCell(0, 2, "3") // A3
	s.SetValueCell(1, 0, "Sum(A1:A3)")
	ctx := newTestContext(s)
	if err := stdlib.LoadLibraries(ctx, nil); err != nil {
		t.Fatalf("LoadLibraries: %v", err)
	}

	Recalc(ctx, s)
	sum := s.GetCell(1, 0)
	if sum.FirstErrorLine != "" {
		t.Fatalf("Sum(A1:A3) errored: %s", sum.FirstErrorLine)
	}
	if got := floatOf(t, sum.PreviousValue); got != 6 {
		t.Errorf("Sum(A1:A3): got %v, want 6", got)
	}
}
