package interpreter

import (
	"decicalc/ast"
	"decicalc/decimal"
)

// ExecBlock runs every statement in block in its own enclosed scope and
// returns the first non-nil Signal (Break, Continue, or Return) that
// propagates out of it, stopping early when one occurs (§4.6).
func ExecBlock(ctx *CallingContext, block *ast.BlockStatement, outer *Scope) (*Signal, error) {
	scope := NewEnclosedScope(outer)
	for _, stmt := range block.Statements {
		sig, err := ExecStmt(ctx, stmt, scope)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

// ExecStmt executes a single Backwards statement, dispatching over the
// closed statement-node set (§4.6).
func ExecStmt(ctx *CallingContext, stmt ast.Statement, scope *Scope) (*Signal, error) {
	switch s := stmt.(type) {
	case *ast.NopStatement:
		return nil, nil
	case *ast.ExpressionStatement:
		_, err := EvalExpr(ctx, s.Expression, scope)
		return nil, err
	case *ast.AssignStatement:
		val, err := EvalExpr(ctx, s.Value, scope)
		if err != nil {
			return nil, err
		}
		if !scope.Set(s.Name, val) {
			scope.Define(s.Name, val)
		}
		return nil, nil
	case *ast.FunctionDefStatement:
		scope.Define(s.Name, &Function{Params: s.Params, Body: s.Body, Env: scope})
		return nil, nil
	case *ast.IfStatement:
		return execIf(ctx, s, scope)
	case *ast.WhileStatement:
		return execWhile(ctx, s, scope)
	case *ast.ForStatement:
		return execFor(ctx, s, scope)
	case *ast.ReturnStatement:
		if s.Value == nil {
			return &Signal{Type: SignalReturn, Value: NIL_VALUE}, nil
		}
		val, err := EvalExpr(ctx, s.Value, scope)
		if err != nil {
			return nil, err
		}
		return &Signal{Type: SignalReturn, Value: val}, nil
	case *ast.BreakStatement:
		return &Signal{Type: SignalBreak}, nil
	case *ast.ContinueStatement:
		return &Signal{Type: SignalContinue}, nil
	case *ast.BlockStatement:
		return ExecBlock(ctx, s, scope)
	default:
		return nil, &ProgrammingError{Message: "unhandled statement node in executor"}
	}
}

func execIf(ctx *CallingContext, s *ast.IfStatement, scope *Scope) (*Signal, error) {
	cond, err := EvalExpr(ctx, s.Condition, scope)
	if err != nil {
		return nil, err
	}
	if isTruthy(cond) {
		return ExecBlock(ctx, s.Consequence, scope)
	}
	if s.Alternative != nil {
		return ExecStmt(ctx, s.Alternative, scope)
	}
	return nil, nil
}

func execWhile(ctx *CallingContext, s *ast.WhileStatement, scope *Scope) (*Signal, error) {
	for {
		cond, err := EvalExpr(ctx, s.Condition, scope)
		if err != nil {
			return nil, err
		}
		if !isTruthy(cond) {
			return nil, nil
		}
		sig, err := ExecBlock(ctx, s.Body, scope)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			switch sig.Type {
			case SignalBreak:
				return nil, nil
			case SignalContinue:
				continue
			default: // SignalReturn
				return sig, nil
			}
		}
	}
}

// execFor iterates Name over Iterable: an Array in element order, a
// Dictionary in key order, a Float as the half-open range [0, floor(n))
// (§4.6).
func execFor(ctx *CallingContext, s *ast.ForStatement, outer *Scope) (*Signal, error) {
	iterable, err := EvalExpr(ctx, s.Iterable, outer)
	if err != nil {
		return nil, err
	}
	items, err := forItems(iterable)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		scope := NewEnclosedScope(outer)
		scope.Define(s.Name, item)
		sig, err := ExecBlock(ctx, s.Body, scope)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			switch sig.Type {
			case SignalBreak:
				return nil, nil
			case SignalContinue:
				continue
			default: // SignalReturn
				return sig, nil
			}
		}
	}
	return nil, nil
}

func forItems(iterable Value) ([]Value, error) {
	switch v := iterable.(type) {
	case *Array:
		return v.Elements, nil
	case *Dictionary:
		return v.GetKeys().Elements, nil
	case *Float:
		n := int64(v.Value.Float64())
		if n < 0 {
			return nil, &TypedOperationError{Message: "for-loop range must be non-negative"}
		}
		out := make([]Value, n)
		for i := int64(0); i < n; i++ {
			out[i] = &Float{Value: decimal.FromInt(i)}
		}
		return out, nil
	default:
		return nil, &TypedOperationError{Message: "value is not iterable: " + iterable.Inspect()}
	}
}
