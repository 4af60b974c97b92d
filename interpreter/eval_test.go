package interpreter

import (
	"testing"

	"decicalc/ast"
	"decicalc/lexer"
	"decicalc/parser"
)

func parseExpr(t *testing.T, input string) ast.Expression {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) != 0 {
		t.Fatalf("parse errors for %q: %v", input, errs)
	}
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected an ExpressionStatement, got %T", program.Statements[0])
	}
	return stmt.Expression
}

type stubGetterMap struct {
	vals map[string]Value
}

func (s stubGetterMap) Lookup(name string) (Value, bool) {
	v, ok := s.vals[name]
	return v, ok
}

func evalString(t *testing.T, input string) Value {
	t.Helper()
	expr := parseExpr(t, input)
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{}}, nil, 0)
	v, err := EvalExpr(ctx, expr, NewScope())
	if err != nil {
		t.Fatalf("EvalExpr(%q): %v", input, err)
	}
	return v
}

func floatVal(t *testing.T, v Value) float64 {
	t.Helper()
	f, ok := v.(*Float)
	if !ok {
		t.Fatalf("expected *Float, got %T (%v)", v, v)
	}
	return f.Value.Float64()
}

func TestEvalArithmetic(t *testing.T) {
	cases := map[string]float64{
		"1 + 2 * 3":  7,
		"(1 + 2) * 3": 9,
		"10 / 4":     2.5,
		"-5 + 10":    5,
	}
	for input, want := range cases {
		if got := floatVal(t, evalString(t, input)); got != want {
			t.Errorf("%q: got %v, want %v", input, got, want)
		}
	}
}

func TestEvalStringConcat(t *testing.T) {
	v := evalString(t, `"foo" + "bar"`)
	s, ok := v.(*String)
	if !ok || s.Value != "foobar" {
		t.Errorf(`"foo"+"bar": got %v, want foobar`, v)
	}
}

func TestEvalComparison(t *testing.T) {
	if !isTruthy(evalString(t, "1 < 2")) {
		t.Error("1 < 2 should be truthy")
	}
	if isTruthy(evalString(t, "2 < 1")) {
		t.Error("2 < 1 should be falsy")
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	// Right side references an undefined name; && must not evaluate it once
	// the left side is already falsy.
	v := evalString(t, "0 && undefinedName")
	if isTruthy(v) {
		t.Error("0 && x should be falsy without evaluating x")
	}
}

func TestEvalTypeMismatchIsTypedOperationError(t *testing.T) {
	expr := parseExpr(t, `1 + "a"`)
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{}}, nil, 0)
	_, err := EvalExpr(ctx, expr, NewScope())
	if err == nil {
		t.Fatal("expected an error mixing number and string")
	}
	if _, ok := err.(*TypedOperationError); !ok {
		t.Errorf("expected *TypedOperationError, got %T", err)
	}
}

func TestEvalUndefinedVariable(t *testing.T) {
	expr := parseExpr(t, "missing")
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{}}, nil, 0)
	_, err := EvalExpr(ctx, expr, NewScope())
	if err == nil {
		t.Fatal("expected an error for an undefined name")
	}
}

func TestEvalVariableResolvesScopeBeforeBuiltins(t *testing.T) {
	expr := parseExpr(t, "x")
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{"x": &Float{Value: FLOAT_ONE.Value}}}, nil, 0)
	scope := NewScope()
	scope.Define("x", &String{Value: "shadowed"})
	v, err := EvalExpr(ctx, expr, scope)
	if err != nil {
		t.Fatalf("EvalExpr: %v", err)
	}
	if s, ok := v.(*String); !ok || s.Value != "shadowed" {
		t.Errorf("expected scope to shadow builtins, got %v", v)
	}
}

func TestEvalFunctionCallClosure(t *testing.T) {
	expr := parseExpr(t, "adder(1)")
	fnExpr := parseExpr(t, "function(x) return x + 41 end function")
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{}}, nil, 0)
	scope := NewScope()
	fnVal, err := EvalExpr(ctx, fnExpr, scope)
	if err != nil {
		t.Fatalf("evaluating function literal: %v", err)
	}
	scope.Define("adder", fnVal)

	v, err := EvalExpr(ctx, expr, scope)
	if err != nil {
		t.Fatalf("calling adder: %v", err)
	}
	if got := floatVal(t, v); got != 42 {
		t.Errorf("adder(1): got %v, want 42", got)
	}
}

func TestEvalFunctionCallArityMismatch(t *testing.T) {
	fnExpr := parseExpr(t, "function(a, b) return a + b end function")
	ctx := NewCallingContext(nil, stubGetterMap{vals: map[string]Value{}}, nil, 0)
	scope := NewScope()
	fnVal, err := EvalExpr(ctx, fnExpr, scope)
	if err != nil {
		t.Fatalf("evaluating function literal: %v", err)
	}
	scope.Define("addTwo", fnVal)

	tooFew := parseExpr(t, "addTwo(1)")
	if _, err := EvalExpr(ctx, tooFew, scope); err == nil {
		t.Error("calling a 2-param function with 1 arg should error")
	} else if _, ok := err.(*TypedOperationError); !ok {
		t.Errorf("got error type %T, want *TypedOperationError", err)
	}

	tooMany := parseExpr(t, "addTwo(1, 2, 3)")
	if _, err := EvalExpr(ctx, tooMany, scope); err == nil {
		t.Error("calling a 2-param function with 3 args should error")
	}
}

func TestEvalCellRefDoesNotDereference(t *testing.T) {
	v := evalString(t, "A1")
	if _, ok := v.(*CellRef); !ok {
		t.Errorf("bare cell reference should evaluate to a *CellRef, got %T", v)
	}
}
