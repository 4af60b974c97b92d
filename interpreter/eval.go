package interpreter

import (
	"fmt"

	"decicalc/ast"
	"decicalc/decimal"
)

// EvalExpr evaluates a single expression node in scope, within ctx. It is
// the entry point both a cell formula's parsed expression (§4.3) and any
// expression nested inside a Backwards statement go through.
func EvalExpr(ctx *CallingContext, node ast.Expression, scope *Scope) (Value, error) {
	if ctx.Debugger != nil {
		event := debugEventFor(node, "", len(ctx.Stack()))
		if err := ctx.Debugger.BeforeNode(event); err != nil {
			return nil, err
		}
		result, err := evalExpr(ctx, node, scope)
		if afterErr := ctx.Debugger.AfterNode(event, result, nil, err); afterErr != nil {
			return result, afterErr
		}
		return result, err
	}
	return evalExpr(ctx, node, scope)
}

func evalExpr(ctx *CallingContext, node ast.Expression, scope *Scope) (Value, error) {
	switch n := node.(type) {
	case *ast.Constant:
		return evalConstant(n)
	case *ast.Variable:
		return evalVariable(ctx, n, scope)
	case *ast.UnaryOp:
		operand, err := EvalExpr(ctx, n.Operand, scope)
		if err != nil {
			return nil, err
		}
		return evalUnary(n.Operator, operand)
	case *ast.BinaryOp:
		return evalBinaryOp(ctx, n, scope)
	case *ast.FunctionCall:
		return evalFunctionCall(ctx, n, scope)
	case *ast.CellRefNode:
		return &CellRef{ColAbs: n.ColAbs, ColOff: n.ColOff, RowAbs: n.RowAbs, RowOff: n.RowOff}, nil
	case *ast.CellRangeNode:
		return evalCellRange(n), nil
	case *ast.ArrayLiteral:
		return evalArrayLiteral(ctx, n, scope)
	case *ast.FunctionLiteral:
		return &Function{Params: n.Params, Body: n.Body, Env: scope}, nil
	default:
		return nil, &ProgrammingError{Message: "unhandled expression node in evaluator"}
	}
}

func evalConstant(n *ast.Constant) (Value, error) {
	switch n.Token.Type {
	case "NUMBER":
		num, ok := decimal.ParseString(n.Text)
		if !ok {
			return nil, &TypedOperationError{Message: "invalid numeric literal: " + n.Text}
		}
		return &Float{Value: num}, nil
	case "STRING":
		return &String{Value: n.Text}, nil
	case "TRUE":
		return FLOAT_ONE, nil
	case "FALSE":
		return FLOAT_ZERO, nil
	case "NIL":
		return NIL_VALUE, nil
	default:
		return nil, &ProgrammingError{Message: "unrecognized constant token type: " + string(n.Token.Type)}
	}
}

func evalVariable(ctx *CallingContext, n *ast.Variable, scope *Scope) (Value, error) {
	if scope != nil {
		if v, ok := scope.Get(n.Name); ok {
			return v, nil
		}
	}
	if ctx.Builtins != nil {
		if v, ok := ctx.Builtins.Lookup(n.Name); ok {
			return v, nil
		}
	}
	return nil, &TypedOperationError{Message: "undefined name: " + n.Name}
}

func evalBinaryOp(ctx *CallingContext, n *ast.BinaryOp, scope *Scope) (Value, error) {
	left, err := EvalExpr(ctx, n.Left, scope)
	if err != nil {
		return nil, err
	}
	if n.Operator == "&&" {
		if !isTruthy(left) {
			return FLOAT_ZERO, nil
		}
		right, err := EvalExpr(ctx, n.Right, scope)
		if err != nil {
			return nil, err
		}
		return boolValue(isTruthy(right)), nil
	}
	if n.Operator == "||" {
		if isTruthy(left) {
			return FLOAT_ONE, nil
		}
		right, err := EvalExpr(ctx, n.Right, scope)
		if err != nil {
			return nil, err
		}
		return boolValue(isTruthy(right)), nil
	}
	right, err := EvalExpr(ctx, n.Right, scope)
	if err != nil {
		return nil, err
	}
	return evalBinary(n.Operator, left, right)
}

func evalCellRange(n *ast.CellRangeNode) Value {
	return &CellRange{
		Left: n.Left.ColOff, LeftAbs: n.Left.ColAbs,
		Top: n.Left.RowOff, TopAbs: n.Left.RowAbs,
		Right: n.Right.ColOff, RightAbs: n.Right.ColAbs,
		Bottom: n.Right.RowOff, BottomAbs: n.Right.RowAbs,
	}
}

func evalArrayLiteral(ctx *CallingContext, n *ast.ArrayLiteral, scope *Scope) (Value, error) {
	elems := make([]Value, len(n.Elements))
	for i, e := range n.Elements {
		v, err := EvalExpr(ctx, e, scope)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return &Array{Elements: elems}, nil
}

func evalFunctionCall(ctx *CallingContext, n *ast.FunctionCall, scope *Scope) (Value, error) {
	callee, err := EvalExpr(ctx, n.Callee, scope)
	if err != nil {
		return nil, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := EvalExpr(ctx, a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return CallFunction(ctx, callee, args)
}

// CallFunction invokes a Value known to be callable -- a NativeFunction
// bridging to Go, or a Function defined in Backwards -- with already
// evaluated args. Used for expression-language calls, and exported so host
// code holding a callable Value can invoke it directly.
func CallFunction(ctx *CallingContext, callee Value, args []Value) (Value, error) {
	switch fn := callee.(type) {
	case *NativeFunction:
		return fn.Fn(ctx, args)
	case *Function:
		return callBackwardsFunction(ctx, fn, args)
	default:
		return nil, &TypedOperationError{Message: "value is not callable: " + callee.Inspect()}
	}
}

func callBackwardsFunction(ctx *CallingContext, fn *Function, args []Value) (Value, error) {
	if len(args) != len(fn.Params) {
		return nil, &TypedOperationError{Message: fmt.Sprintf(
			"function expects %d argument(s), got %d", len(fn.Params), len(args))}
	}
	callScope := NewEnclosedScope(fn.Env)
	for i, p := range fn.Params {
		callScope.Define(p, args[i])
	}
	sig, err := ExecBlock(ctx, fn.Body, callScope)
	if err != nil {
		return nil, err
	}
	if sig != nil && sig.Type == SignalReturn {
		if sig.Value == nil {
			return NIL_VALUE, nil
		}
		return sig.Value, nil
	}
	return NIL_VALUE, nil
}
