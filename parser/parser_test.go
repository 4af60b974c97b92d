package parser

import (
	"testing"

	"decicalc/ast"
	"decicalc/lexer"
	"decicalc/token"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errors := p.Errors()
	if len(errors) == 0 {
		return
	}
	for _, msg := range errors {
		t.Errorf("parser error: %s", msg)
	}
	t.FailNow()
}

func TestBinaryExpressionPrecedence(t *testing.T) {
	program := parseProgram(t, "1 + 2 * 3")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	bin, ok := stmt.Expression.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("expression not BinaryOp. got=%T", stmt.Expression)
	}
	if bin.Operator != "+" {
		t.Fatalf("top-level operator: got %q, want +", bin.Operator)
	}
	if _, ok := bin.Right.(*ast.BinaryOp); !ok {
		t.Fatalf("right operand not BinaryOp (2*3 should bind tighter). got=%T", bin.Right)
	}
}

func TestCellRefLiteral(t *testing.T) {
	program := parseProgram(t, "$A$1")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	ref, ok := stmt.Expression.(*ast.CellRefNode)
	if !ok {
		t.Fatalf("expression not CellRefNode. got=%T", stmt.Expression)
	}
	if !ref.ColAbs || !ref.RowAbs {
		t.Errorf("expected both axes absolute for $A$1")
	}
	if ref.ColOff != 0 || ref.RowOff != 0 {
		t.Errorf("got col=%d row=%d, want 0,0", ref.ColOff, ref.RowOff)
	}
}

func TestCellRangeLiteral(t *testing.T) {
	program := parseProgram(t, "A1:A3")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	rng, ok := stmt.Expression.(*ast.CellRangeNode)
	if !ok {
		t.Fatalf("expression not CellRangeNode. got=%T", stmt.Expression)
	}
	if rng.Left.RowOff != 0 || rng.Right.RowOff != 2 {
		t.Errorf("got left row=%d right row=%d, want 0,2", rng.Left.RowOff, rng.Right.RowOff)
	}
}

func TestFunctionCall(t *testing.T) {
	program := parseProgram(t, "Sum(A1:A3, 2)")
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	call, ok := stmt.Expression.(*ast.FunctionCall)
	if !ok {
		t.Fatalf("expression not FunctionCall. got=%T", stmt.Expression)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
}

func TestAssignStatement(t *testing.T) {
	program := parseProgram(t, "total = 1 + 1")
	stmt, ok := program.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("statement not AssignStatement. got=%T", program.Statements[0])
	}
	if stmt.Name != "total" {
		t.Errorf("got name %q, want total", stmt.Name)
	}
}

func TestFunctionDefStatement(t *testing.T) {
	input := `function double(x)
return x * 2
end function`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.FunctionDefStatement)
	if !ok {
		t.Fatalf("statement not FunctionDefStatement. got=%T", program.Statements[0])
	}
	if stmt.Name != "double" {
		t.Errorf("got name %q, want double", stmt.Name)
	}
	if len(stmt.Params) != 1 || stmt.Params[0] != "x" {
		t.Errorf("got params %v, want [x]", stmt.Params)
	}
	if len(stmt.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(stmt.Body.Statements))
	}
}

func TestIfElseifElseChain(t *testing.T) {
	input := `if x == 1
y = 1
elseif x == 2
y = 2
else
y = 3
end if`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement not IfStatement. got=%T", program.Statements[0])
	}
	elseif, ok := stmt.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("alternative not IfStatement (elseif). got=%T", stmt.Alternative)
	}
	if _, ok := elseif.Alternative.(*ast.BlockStatement); !ok {
		t.Fatalf("elseif alternative not BlockStatement (else). got=%T", elseif.Alternative)
	}
}

func TestWhileStatement(t *testing.T) {
	input := `while x < 10
x = x + 1
end while`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.WhileStatement)
	if !ok {
		t.Fatalf("statement not WhileStatement. got=%T", program.Statements[0])
	}
	if len(stmt.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(stmt.Body.Statements))
	}
}

func TestForStatement(t *testing.T) {
	input := `for r in A1:A3
total = total + 1
end for`
	program := parseProgram(t, input)
	stmt, ok := program.Statements[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("statement not ForStatement. got=%T", program.Statements[0])
	}
	if stmt.Name != "r" {
		t.Errorf("got binding name %q, want r", stmt.Name)
	}
	if _, ok := stmt.Iterable.(*ast.CellRangeNode); !ok {
		t.Fatalf("iterable not CellRangeNode. got=%T", stmt.Iterable)
	}
}

func TestArrayLiteral(t *testing.T) {
	program := parseProgram(t, `[1, 2, "three"]`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	arr, ok := stmt.Expression.(*ast.ArrayLiteral)
	if !ok {
		t.Fatalf("expression not ArrayLiteral. got=%T", stmt.Expression)
	}
	if len(arr.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(arr.Elements))
	}
}

func TestFunctionLiteral(t *testing.T) {
	program := parseProgram(t, `function(x) return x end function`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	if _, ok := stmt.Expression.(*ast.FunctionLiteral); !ok {
		t.Fatalf("expression not FunctionLiteral. got=%T", stmt.Expression)
	}
}

func TestMalformedCellRefRecordsError(t *testing.T) {
	p := New(lexer.New("A1"))
	p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors for a valid ref: %v", p.Errors())
	}

	colAbs, colOff, rowAbs, rowOff, ok := decodeCellRef("ZZ100")
	if !ok {
		t.Fatal("decodeCellRef(ZZ100) should succeed")
	}
	if colAbs || rowAbs {
		t.Error("ZZ100 has no $ markers, expected both axes relative")
	}
	if colOff != 701 {
		t.Errorf("got colOff %d, want 701", colOff)
	}
	if rowOff != 99 {
		t.Errorf("got rowOff %d, want 99", rowOff)
	}
	if _, _, _, _, ok := decodeCellRef("1A"); ok {
		t.Error("decodeCellRef(1A) should fail: digits before letters")
	}

	p = New(lexer.New(""))
	p.parseOneCellRef(token.Token{Type: token.CELLREF, Literal: "1A"})
	if len(p.Errors()) != 1 {
		t.Errorf("malformed ref: got %d parse errors, want 1", len(p.Errors()))
	}
}
