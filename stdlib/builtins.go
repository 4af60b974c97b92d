// Package stdlib is the bridge between Backwards-visible names and Go: it
// implements interpreter.GetterMap, binding every name in the standard
// library surface (§4.7) to a NativeFunction wrapping this package's Go
// code. Functions a library file defines in a "function name(...) ... end
// function" block are not entered here: they live in the CallingContext's
// GlobalScope, which the evaluator searches before this map.
//
// Grounded on the teacher's interpreter/builtins.go: a name->NativeFunction
// table built once in an init-style constructor, each entry doing its own
// arity/type checking before delegating to the typed Value API.
package stdlib

import (
	"context"
	"fmt"
	"math"

	"decicalc/decimal"
	"decicalc/eventbus"
	"decicalc/extsource"
	"decicalc/interpreter"
)

// Builtins is the concrete GetterMap the engine is wired to: the native host
// functions registered at construction time (§4.7, §6 "Host<->engine").
// Library-defined Backwards functions are defined in ctx.GlobalScope instead.
type Builtins struct {
	fns map[string]interpreter.Value

	source *extsource.Source
	bus    *eventbus.Bus
}

func New() *Builtins {
	b := &Builtins{fns: make(map[string]interpreter.Value)}
	b.registerContainers()
	b.registerNumeric()
	b.registerPredicates()
	b.registerConversions()
	b.registerDiagnostics()
	b.registerSheet()
	b.registerDomain()
	return b
}

// AttachSource wires a Postgres source into the DbLookup builtin. Until
// called, DbLookup returns a TypedOperationError instead of attempting a
// connection.
func (b *Builtins) AttachSource(s *extsource.Source) { b.source = s }

// AttachBus wires an event bus into the Publish builtin. Until called,
// Publish is a documented no-op (SPEC_FULL.md §4.7).
func (b *Builtins) AttachBus(bus *eventbus.Bus) { b.bus = bus }

func (b *Builtins) Lookup(name string) (interpreter.Value, bool) {
	v, ok := b.fns[name]
	return v, ok
}

// Define installs a Backwards-defined function (or any other callable Value)
// under name, overwriting a native builtin of the same name if one exists.
// The library loader does not call it; it defines library functions in
// ctx.GlobalScope.
func (b *Builtins) Define(name string, v interpreter.Value) {
	b.fns[name] = v
}

func (b *Builtins) native(name string, fn func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error)) {
	b.fns[name] = &interpreter.NativeFunction{Name: name, Fn: fn}
}

func typedErr(format string, a ...any) error {
	return &interpreter.TypedOperationError{Message: fmt.Sprintf(format, a...)}
}

func arity(name string, args []interpreter.Value, n int) error {
	if len(args) != n {
		return typedErr("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func asFloat(name string, v interpreter.Value) (decimal.Number, error) {
	f, ok := v.(*interpreter.Float)
	if !ok {
		return decimal.Number{}, typedErr("%s: expected a Float, got %s", name, v.Type())
	}
	return f.Value, nil
}

func asInt(name string, v interpreter.Value) (int64, error) {
	f, ok := v.(*interpreter.Float)
	if !ok {
		return 0, typedErr("%s: expected a Float, got %s", name, v.Type())
	}
	return int64(f.Value.Float64()), nil
}

func asString(name string, v interpreter.Value) (string, error) {
	s, ok := v.(*interpreter.String)
	if !ok {
		return "", typedErr("%s: expected a String, got %s", name, v.Type())
	}
	return s.Value, nil
}

func asArray(name string, v interpreter.Value) (*interpreter.Array, error) {
	a, ok := v.(*interpreter.Array)
	if !ok {
		return nil, typedErr("%s: expected an Array, got %s", name, v.Type())
	}
	return a, nil
}

func asDictionary(name string, v interpreter.Value) (*interpreter.Dictionary, error) {
	d, ok := v.(*interpreter.Dictionary)
	if !ok {
		return nil, typedErr("%s: expected a Dictionary, got %s", name, v.Type())
	}
	return d, nil
}

func asCellRef(name string, v interpreter.Value) (*interpreter.CellRef, error) {
	r, ok := v.(*interpreter.CellRef)
	if !ok {
		return nil, typedErr("%s: expected a CellRef, got %s", name, v.Type())
	}
	return r, nil
}

func asCellRange(name string, v interpreter.Value) (*interpreter.CellRange, error) {
	r, ok := v.(*interpreter.CellRange)
	if !ok {
		return nil, typedErr("%s: expected a CellRange, got %s", name, v.Type())
	}
	return r, nil
}

func boolOf(b bool) interpreter.Value {
	if b {
		return interpreter.FLOAT_ONE
	}
	return interpreter.FLOAT_ZERO
}

// ---- Containers: Array, Dictionary (§3, §4.7) --------------------------

func (b *Builtins) registerContainers() {
	b.native("NewArray", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		out := make([]interpreter.Value, len(args))
		copy(out, args)
		return &interpreter.Array{Elements: out}, nil
	})

	b.native("NewArrayDefault", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("NewArrayDefault", args, 2); err != nil {
			return nil, err
		}
		n, err := asInt("NewArrayDefault", args[0])
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, typedErr("NewArrayDefault: size must be non-negative")
		}
		out := make([]interpreter.Value, n)
		for i := range out {
			out[i] = args[1]
		}
		return &interpreter.Array{Elements: out}, nil
	})

	b.native("NewDictionary", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if len(args)%2 != 0 {
			return nil, typedErr("NewDictionary: expected an even number of key/value arguments")
		}
		keys := make([]interpreter.Value, 0, len(args)/2)
		vals := make([]interpreter.Value, 0, len(args)/2)
		for i := 0; i < len(args); i += 2 {
			keys = append(keys, args[i])
			vals = append(vals, args[i+1])
		}
		return interpreter.NewDictionary(keys, vals)
	})

	b.native("PushBack", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("PushBack", args, 2); err != nil {
			return nil, err
		}
		a, err := asArray("PushBack", args[0])
		if err != nil {
			return nil, err
		}
		return a.PushBack(args[1]), nil
	})

	b.native("PushFront", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("PushFront", args, 2); err != nil {
			return nil, err
		}
		a, err := asArray("PushFront", args[0])
		if err != nil {
			return nil, err
		}
		return a.PushFront(args[1]), nil
	})

	// PopBack/PopFront return a new Array and the removed element; there is
	// no multi-return in the expression language, so the pair surfaces as a
	// 2-element Array: [remainingArray, poppedValue].
	b.native("PopBack", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("PopBack", args, 1); err != nil {
			return nil, err
		}
		a, err := asArray("PopBack", args[0])
		if err != nil {
			return nil, err
		}
		rest, popped, err := a.PopBack()
		if err != nil {
			return nil, err
		}
		return &interpreter.Array{Elements: []interpreter.Value{rest, popped}}, nil
	})

	b.native("PopFront", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("PopFront", args, 1); err != nil {
			return nil, err
		}
		a, err := asArray("PopFront", args[0])
		if err != nil {
			return nil, err
		}
		rest, popped, err := a.PopFront()
		if err != nil {
			return nil, err
		}
		return &interpreter.Array{Elements: []interpreter.Value{rest, popped}}, nil
	})

	b.native("Insert", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("Insert", args, 3); err != nil {
			return nil, err
		}
		switch c := args[0].(type) {
		case *interpreter.Array:
			idx, err := asInt("Insert", args[1])
			if err != nil {
				return nil, err
			}
			return c.Insert(idx, args[2])
		case *interpreter.Dictionary:
			return c.Insert(args[1], args[2]), nil
		default:
			return nil, typedErr("Insert: expected an Array or Dictionary, got %s", args[0].Type())
		}
	})

	b.native("GetValue", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("GetValue", args, 2); err != nil {
			return nil, err
		}
		d, err := asDictionary("GetValue", args[0])
		if err != nil {
			return nil, err
		}
		return d.GetValue(args[1])
	})

	b.native("ContainsKey", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("ContainsKey", args, 2); err != nil {
			return nil, err
		}
		d, err := asDictionary("ContainsKey", args[0])
		if err != nil {
			return nil, err
		}
		return boolOf(d.ContainsKey(args[1])), nil
	})

	b.native("RemoveKey", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("RemoveKey", args, 2); err != nil {
			return nil, err
		}
		d, err := asDictionary("RemoveKey", args[0])
		if err != nil {
			return nil, err
		}
		return d.RemoveKey(args[1])
	})

	b.native("GetKeys", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("GetKeys", args, 1); err != nil {
			return nil, err
		}
		d, err := asDictionary("GetKeys", args[0])
		if err != nil {
			return nil, err
		}
		return d.GetKeys(), nil
	})

	b.native("GetIndex", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("GetIndex", args, 2); err != nil {
			return nil, err
		}
		a, err := asArray("GetIndex", args[0])
		if err != nil {
			return nil, err
		}
		idx, err := asInt("GetIndex", args[1])
		if err != nil {
			return nil, err
		}
		return a.GetIndex(idx)
	})

	b.native("SetIndex", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("SetIndex", args, 3); err != nil {
			return nil, err
		}
		a, err := asArray("SetIndex", args[0])
		if err != nil {
			return nil, err
		}
		idx, err := asInt("SetIndex", args[1])
		if err != nil {
			return nil, err
		}
		return a.SetIndex(idx, args[2])
	})

	b.native("Size", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("Size", args, 1); err != nil {
			return nil, err
		}
		switch c := args[0].(type) {
		case *interpreter.Array:
			return &interpreter.Float{Value: decimal.FromInt(c.Size())}, nil
		case *interpreter.Dictionary:
			return &interpreter.Float{Value: decimal.FromInt(c.Size())}, nil
		default:
			return nil, typedErr("Size: expected an Array or Dictionary, got %s", args[0].Type())
		}
	})

	b.native("Length", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("Length", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("Length", args[0])
		if err != nil {
			return nil, err
		}
		return &interpreter.Float{Value: decimal.FromInt(int64(len(s)))}, nil
	})

	b.native("SubString", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("SubString", args, 3); err != nil {
			return nil, err
		}
		s, err := asString("SubString", args[0])
		if err != nil {
			return nil, err
		}
		start, err := asInt("SubString", args[1])
		if err != nil {
			return nil, err
		}
		length, err := asInt("SubString", args[2])
		if err != nil {
			return nil, err
		}
		if start < 0 || length < 0 || start+length > int64(len(s)) {
			return nil, typedErr("SubString: range [%d,%d) out of bounds for length %d", start, start+length, len(s))
		}
		return &interpreter.String{Value: s[start : start+length]}, nil
	})
}

// ---- Numeric (§4.1, §4.7) -----------------------------------------------

func (b *Builtins) registerNumeric() {
	unary := func(name string, fn func(decimal.Number) decimal.Number) {
		b.native(name, func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
			if err := arity(name, args, 1); err != nil {
				return nil, err
			}
			n, err := asFloat(name, args[0])
			if err != nil {
				return nil, err
			}
			return &interpreter.Float{Value: fn(n)}, nil
		})
	}

	unary("Abs", decimal.Abs)
	unary("Round", decimal.Round)
	unary("Floor", decimal.Floor)
	unary("Ceil", decimal.Ceil)
	unary("Sqr", func(n decimal.Number) decimal.Number {
		return n.Mul(n)
	})

	b.native("NaN", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("NaN", args, 0); err != nil {
			return nil, err
		}
		return &interpreter.Float{Value: decimal.NaN()}, nil
	})

	b.native("Min", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if len(args) == 0 {
			return nil, typedErr("Min: expected at least one argument")
		}
		best, err := asFloat("Min", args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := asFloat("Min", a)
			if err != nil {
				return nil, err
			}
			if best.IsNaN() {
				continue
			}
			if n.IsNaN() || n.Cmp(best) < 0 {
				best = n
			}
		}
		return &interpreter.Float{Value: best}, nil
	})

	b.native("Max", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if len(args) == 0 {
			return nil, typedErr("Max: expected at least one argument")
		}
		best, err := asFloat("Max", args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := asFloat("Max", a)
			if err != nil {
				return nil, err
			}
			if best.IsNaN() {
				continue
			}
			if n.IsNaN() || n.Cmp(best) > 0 {
				best = n
			}
		}
		return &interpreter.Float{Value: best}, nil
	})

	b.native("GetRoundMode", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("GetRoundMode", args, 0); err != nil {
			return nil, err
		}
		return &interpreter.String{Value: string(decimal.GetRoundMode())}, nil
	})

	b.native("SetRoundMode", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("SetRoundMode", args, 1); err != nil {
			return nil, err
		}
		mode, err := asString("SetRoundMode", args[0])
		if err != nil {
			return nil, err
		}
		if err := decimal.SetRoundMode(decimal.RoundMode(mode)); err != nil {
			return nil, typedErr("SetRoundMode: %s", err)
		}
		return interpreter.NIL_VALUE, nil
	})
}

// ---- Type predicates (§4.7) ----------------------------------------------

func (b *Builtins) registerPredicates() {
	is := func(name string, t interpreter.ValueType) {
		b.native(name, func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
			if err := arity(name, args, 1); err != nil {
				return nil, err
			}
			return boolOf(args[0].Type() == t), nil
		})
	}
	is("IsFloat", interpreter.TFloat)
	is("IsString", interpreter.TString)
	is("IsArray", interpreter.TArray)
	is("IsDictionary", interpreter.TDictionary)
	is("IsFunction", interpreter.TFunction)
	is("IsNil", interpreter.TNil)
	is("IsCellRef", interpreter.TCellRef)
	is("IsCellRange", interpreter.TCellRange)

	b.native("IsNaN", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("IsNaN", args, 1); err != nil {
			return nil, err
		}
		n, err := asFloat("IsNaN", args[0])
		if err != nil {
			return nil, err
		}
		return boolOf(n.IsNaN()), nil
	})

	b.native("IsInfinity", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("IsInfinity", args, 1); err != nil {
			return nil, err
		}
		n, err := asFloat("IsInfinity", args[0])
		if err != nil {
			return nil, err
		}
		return boolOf(n.IsInf()), nil
	})
}

// ---- Conversions (§4.7) ---------------------------------------------------

func (b *Builtins) registerConversions() {
	b.native("ValueOf", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("ValueOf", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("ValueOf", args[0])
		if err != nil {
			return nil, err
		}
		n, ok := decimal.ParseString(s)
		if !ok {
			return nil, typedErr("ValueOf: %q is not a valid number", s)
		}
		return &interpreter.Float{Value: n}, nil
	})

	b.native("ToString", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("ToString", args, 1); err != nil {
			return nil, err
		}
		return &interpreter.String{Value: args[0].Inspect()}, nil
	})

	b.native("FromCharacter", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("FromCharacter", args, 1); err != nil {
			return nil, err
		}
		s, err := asString("FromCharacter", args[0])
		if err != nil {
			return nil, err
		}
		r := []rune(s)
		if len(r) != 1 {
			return nil, typedErr("FromCharacter: expected a single character")
		}
		return &interpreter.Float{Value: decimal.FromInt(int64(r[0]))}, nil
	})

	b.native("ToCharacter", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("ToCharacter", args, 1); err != nil {
			return nil, err
		}
		n, err := asInt("ToCharacter", args[0])
		if err != nil {
			return nil, err
		}
		if n <= math.MinInt8 || n >= math.MaxInt8 {
			return nil, typedErr("ToCharacter: %d is not a valid character code point", n)
		}
		return &interpreter.String{Value: string(rune(n))}, nil
	})
}

// ---- Diagnostics: logging, Fatal, debugger hook (§4.7, §7) ---------------

func (b *Builtins) registerDiagnostics() {
	level := func(name, prefix string) {
		b.native(name, func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
			msg := formatArgs(args)
			if ctx.Logger != nil {
				ctx.Logger.Log(prefix + msg)
			}
			return interpreter.NIL_VALUE, nil
		})
	}
	level("Error", "ERROR: ")
	level("Warn", "WARN: ")
	level("Info", "INFO: ")
	level("DebugPrint", "")

	b.native("Fatal", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		return nil, &interpreter.FatalError{Message: formatArgs(args)}
	})

	b.native("EnterDebugger", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if ctx.Debugger == nil {
			return interpreter.NIL_VALUE, nil
		}
		col, row, _ := ctx.CurrentCell()
		event := interpreter.DebugEvent{
			Cell:     fmt.Sprintf("(%d,%d)", col, row),
			NodeType: "EnterDebugger",
		}
		if err := ctx.Debugger.BeforeNode(event); err != nil {
			return nil, err
		}
		return interpreter.NIL_VALUE, nil
	})
}

func formatArgs(args []interpreter.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Inspect()
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

// ---- Domain stack: external database lookup, recalc event bus -----------
//
// Neither is part of spec.md's required surface; both extend it per
// SPEC_FULL.md §4.7 without touching the required host functions above.

func (b *Builtins) registerDomain() {
	b.native("DbLookup", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("DbLookup", args, 1); err != nil {
			return nil, err
		}
		query, err := asString("DbLookup", args[0])
		if err != nil {
			return nil, err
		}
		if b.source == nil {
			return nil, typedErr("DbLookup: no external source configured")
		}
		return b.source.Lookup(context.Background(), query)
	})

	b.native("Publish", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("Publish", args, 2); err != nil {
			return nil, err
		}
		channel, err := asString("Publish", args[0])
		if err != nil {
			return nil, err
		}
		if b.bus == nil {
			return interpreter.NIL_VALUE, nil
		}
		if err := b.bus.Publish(channel, args[1].Inspect()); err != nil {
			return nil, typedErr("Publish: %s", err)
		}
		return interpreter.NIL_VALUE, nil
	})
}

// ---- Sheet access: EvalCell, ExpandRange (§4.2, §4.3, §4.7) --------------

func (b *Builtins) registerSheet() {
	b.native("EvalCell", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("EvalCell", args, 1); err != nil {
			return nil, err
		}
		ref, err := asCellRef("EvalCell", args[0])
		if err != nil {
			return nil, err
		}
		atCol, atRow, _ := ctx.CurrentCell()
		col, row := ref.Resolve(atCol, atRow)
		return ctx.Sheet.EvalCell(ctx, col, row)
	})

	b.native("ExpandRange", func(ctx *interpreter.CallingContext, args []interpreter.Value) (interpreter.Value, error) {
		if err := arity("ExpandRange", args, 1); err != nil {
			return nil, err
		}
		rng, err := asCellRange("ExpandRange", args[0])
		if err != nil {
			return nil, err
		}
		refs, err := ctx.Sheet.ExpandRange(ctx, rng)
		if err != nil {
			return nil, err
		}
		return &interpreter.Array{Elements: refs}, nil
	})
}
