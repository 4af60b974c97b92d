package interpreter

// evalUnary implements the expression language's unary operators (§4.1,
// §4.3): numeric negation and logical not. Applying either to a mismatched
// type yields a TypedOperationError rather than panicking, so a cell
// formula reports an error value instead of crashing the engine.
func evalUnary(op string, operand Value) (Value, error) {
	switch op {
	case "-":
		f, ok := operand.(*Float)
		if !ok {
			return nil, &TypedOperationError{Message: "unary - requires a number"}
		}
		return &Float{Value: f.Value.Neg()}, nil
	case "!":
		return boolValue(!isTruthy(operand)), nil
	default:
		return nil, &ProgrammingError{Message: "unrecognized unary operator: " + op}
	}
}

// evalBinary dispatches a binary operator to the pair of operand types it
// applies to (§4.1). Arithmetic and ordering on Float, concatenation and
// ordering on String, and structural/strict equality across every type.
func evalBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return boolValue(StrictEqual(left, right)), nil
	case "!=":
		return boolValue(!StrictEqual(left, right)), nil
	case "&&":
		return boolValue(isTruthy(left) && isTruthy(right)), nil
	case "||":
		return boolValue(isTruthy(left) || isTruthy(right)), nil
	}

	switch l := left.(type) {
	case *Float:
		r, ok := right.(*Float)
		if !ok {
			return nil, &TypedOperationError{Message: "type mismatch: number " + op + " " + string(right.Type())}
		}
		return evalFloatBinary(op, l, r)
	case *String:
		r, ok := right.(*String)
		if !ok {
			return nil, &TypedOperationError{Message: "type mismatch: string " + op + " " + string(right.Type())}
		}
		return evalStringBinary(op, l, r)
	default:
		return nil, &TypedOperationError{Message: "operator " + op + " not supported for " + string(left.Type())}
	}
}

func evalFloatBinary(op string, l, r *Float) (Value, error) {
	switch op {
	case "+":
		return &Float{Value: l.Value.Add(r.Value)}, nil
	case "-":
		return &Float{Value: l.Value.Sub(r.Value)}, nil
	case "*":
		return &Float{Value: l.Value.Mul(r.Value)}, nil
	case "/":
		return &Float{Value: l.Value.Div(r.Value)}, nil
	case "<":
		return boolValue(!l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) < 0), nil
	case "<=":
		return boolValue(!l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) <= 0), nil
	case ">":
		return boolValue(!l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) > 0), nil
	case ">=":
		return boolValue(!l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) >= 0), nil
	default:
		return nil, &ProgrammingError{Message: "unrecognized numeric operator: " + op}
	}
}

func evalStringBinary(op string, l, r *String) (Value, error) {
	switch op {
	case "+":
		return &String{Value: l.Value + r.Value}, nil
	case "<":
		return boolValue(l.Value < r.Value), nil
	case "<=":
		return boolValue(l.Value <= r.Value), nil
	case ">":
		return boolValue(l.Value > r.Value), nil
	case ">=":
		return boolValue(l.Value >= r.Value), nil
	default:
		return nil, &ProgrammingError{Message: "unrecognized string operator: " + op}
	}
}

func boolValue(b bool) Value {
	if b {
		return FLOAT_ONE
	}
	return FLOAT_ZERO
}

// isTruthy follows the expression language's truthy/falsy rule (§4.1): nil,
// 0, NaN, and empty string/array/dictionary are falsy; everything else,
// including non-empty containers and every function, is truthy.
func isTruthy(val Value) bool {
	switch v := val.(type) {
	case *Nil:
		return false
	case *Float:
		return v.Value.Float64() != 0 && !v.Value.IsNaN()
	case *String:
		return v.Value != ""
	case *Array:
		return len(v.Elements) > 0
	case *Dictionary:
		return len(v.entries) > 0
	default:
		return true
	}
}
