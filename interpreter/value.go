// Package interpreter implements DeciCalc's typed value system, expression
// evaluator, and Backwards -- the small embedded scripting language used to
// define library functions. It is grounded on the teacher's evaluator
// package: the same split of (Value, error) returns for expressions and
// (*Signal, error) returns for statements, the same
// Environment-as-flat-map-with-outer-link scoping, and the same
// RuntimeError/Signal split between data errors and control flow.
package interpreter

import (
	"fmt"
	"sort"
	"strings"

	"decicalc/ast"
	"decicalc/decimal"
)

type ValueType string

const (
	TFloat      ValueType = "FLOAT"
	TString     ValueType = "STRING"
	TNil        ValueType = "NIL"
	TArray      ValueType = "ARRAY"
	TDictionary ValueType = "DICTIONARY"
	TFunction   ValueType = "FUNCTION"
	TCellRef    ValueType = "CELLREF"
	TCellRange  ValueType = "CELLRANGE"
)

// Value is the sum type every expression and statement ultimately produces.
// Values are immutable: containers return fresh copies from every mutating
// operation (§3), so sharing sub-structure between old and new values is
// always safe.
type Value interface {
	Type() ValueType
	Inspect() string
}

type Float struct {
	Value decimal.Number
}

func (f *Float) Type() ValueType { return TFloat }
func (f *Float) Inspect() string { return f.Value.String() }

type String struct {
	Value string
}

func (s *String) Type() ValueType { return TString }
func (s *String) Inspect() string { return s.Value }

type Nil struct{}

func (n *Nil) Type() ValueType { return TNil }
func (n *Nil) Inspect() string { return "" }

// Singletons reused throughout the engine for efficiency, per §4.1.
var (
	FLOAT_NAN        = &Float{Value: decimal.NaN()}
	FLOAT_ZERO       = &Float{Value: decimal.FromInt(0)}
	FLOAT_ONE        = &Float{Value: decimal.FromInt(1)}
	EMPTY_ARRAY      = &Array{Elements: nil}
	EMPTY_DICTIONARY = &Dictionary{entries: nil}
	NIL_VALUE        = &Nil{}
)

type Array struct {
	Elements []Value
}

func (a *Array) Type() ValueType { return TArray }
func (a *Array) Inspect() string {
	var b strings.Builder
	b.WriteString("[")
	for i, el := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(el.Inspect())
	}
	b.WriteString("]")
	return b.String()
}

// PushBack, PushFront, etc. return a new Array; the receiver is untouched.
func (a *Array) PushBack(v Value) *Array {
	out := make([]Value, len(a.Elements)+1)
	copy(out, a.Elements)
	out[len(a.Elements)] = v
	return &Array{Elements: out}
}

func (a *Array) PushFront(v Value) *Array {
	out := make([]Value, len(a.Elements)+1)
	out[0] = v
	copy(out[1:], a.Elements)
	return &Array{Elements: out}
}

func (a *Array) PopBack() (*Array, Value, error) {
	if len(a.Elements) == 0 {
		return nil, nil, &TypedOperationError{Message: "PopBack: array is empty"}
	}
	last := a.Elements[len(a.Elements)-1]
	out := make([]Value, len(a.Elements)-1)
	copy(out, a.Elements[:len(a.Elements)-1])
	return &Array{Elements: out}, last, nil
}

func (a *Array) PopFront() (*Array, Value, error) {
	if len(a.Elements) == 0 {
		return nil, nil, &TypedOperationError{Message: "PopFront: array is empty"}
	}
	first := a.Elements[0]
	out := make([]Value, len(a.Elements)-1)
	copy(out, a.Elements[1:])
	return &Array{Elements: out}, first, nil
}

func (a *Array) Insert(index int64, v Value) (*Array, error) {
	if index < 0 || index > int64(len(a.Elements)) {
		return nil, &TypedOperationError{Message: fmt.Sprintf("Insert: index %d out of range", index)}
	}
	out := make([]Value, 0, len(a.Elements)+1)
	out = append(out, a.Elements[:index]...)
	out = append(out, v)
	out = append(out, a.Elements[index:]...)
	return &Array{Elements: out}, nil
}

func (a *Array) GetIndex(index int64) (Value, error) {
	if index < 0 || index >= int64(len(a.Elements)) {
		return nil, &TypedOperationError{Message: fmt.Sprintf("GetIndex: index %d out of range", index)}
	}
	return a.Elements[index], nil
}

func (a *Array) SetIndex(index int64, v Value) (*Array, error) {
	if index < 0 || index >= int64(len(a.Elements)) {
		return nil, &TypedOperationError{Message: fmt.Sprintf("SetIndex: index %d out of range", index)}
	}
	out := make([]Value, len(a.Elements))
	copy(out, a.Elements)
	out[index] = v
	return &Array{Elements: out}, nil
}

func (a *Array) Size() int64 { return int64(len(a.Elements)) }

// Dictionary maps Values to Values under a total order across variants
// (type tag first, then value comparison), so key iteration order is
// deterministic and equality of two dictionaries is well-defined (§3).
type Dictionary struct {
	entries []dictEntry
}

type dictEntry struct {
	key   Value
	value Value
}

func NewDictionary(keys, values []Value) (*Dictionary, error) {
	if len(keys) != len(values) {
		return nil, &TypedOperationError{Message: "NewDictionary: key/value count mismatch"}
	}
	d := &Dictionary{}
	for i := range keys {
		d = d.set(keys[i], values[i])
	}
	return d, nil
}

func (d *Dictionary) Type() ValueType { return TDictionary }
func (d *Dictionary) Inspect() string {
	var b strings.Builder
	b.WriteString("{")
	for i, e := range d.entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.key.Inspect())
		b.WriteString(": ")
		b.WriteString(e.value.Inspect())
	}
	b.WriteString("}")
	return b.String()
}

func (d *Dictionary) find(key Value) int {
	return sort.Search(len(d.entries), func(i int) bool {
		return CompareValues(d.entries[i].key, key) >= 0
	})
}

func (d *Dictionary) GetValue(key Value) (Value, error) {
	i := d.find(key)
	if i < len(d.entries) && CompareValues(d.entries[i].key, key) == 0 {
		return d.entries[i].value, nil
	}
	return nil, &TypedOperationError{Message: "GetValue: key not found: " + key.Inspect()}
}

func (d *Dictionary) ContainsKey(key Value) bool {
	i := d.find(key)
	return i < len(d.entries) && CompareValues(d.entries[i].key, key) == 0
}

// set returns a new Dictionary with key bound to value, inserted in
// key-sorted order so GetKeys()/iteration visit entries in total order.
func (d *Dictionary) set(key, value Value) *Dictionary {
	i := d.find(key)
	out := make([]dictEntry, 0, len(d.entries)+1)
	out = append(out, d.entries[:i]...)
	if i < len(d.entries) && CompareValues(d.entries[i].key, key) == 0 {
		out = append(out, dictEntry{key, value})
		out = append(out, d.entries[i+1:]...)
	} else {
		out = append(out, dictEntry{key, value})
		out = append(out, d.entries[i:]...)
	}
	return &Dictionary{entries: out}
}

func (d *Dictionary) Insert(key, value Value) *Dictionary { return d.set(key, value) }

func (d *Dictionary) RemoveKey(key Value) (*Dictionary, error) {
	i := d.find(key)
	if i >= len(d.entries) || CompareValues(d.entries[i].key, key) != 0 {
		return nil, &TypedOperationError{Message: "RemoveKey: key not found: " + key.Inspect()}
	}
	out := make([]dictEntry, 0, len(d.entries)-1)
	out = append(out, d.entries[:i]...)
	out = append(out, d.entries[i+1:]...)
	return &Dictionary{entries: out}, nil
}

func (d *Dictionary) GetKeys() *Array {
	out := make([]Value, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.key
	}
	return &Array{Elements: out}
}

func (d *Dictionary) Size() int64 { return int64(len(d.entries)) }

// Function is a Backwards closure: its captured scope is shared by
// reference, so mutations from inner calls are visible to outer callers
// (§5's lexical mutable closure).
type Function struct {
	Params []string
	Body   *ast.BlockStatement
	Env    *Scope
}

func (f *Function) Type() ValueType { return TFunction }
func (f *Function) Inspect() string { return "<function>" }

// NativeFunction is a Go-implemented host function exposed through the
// GetterMap bridge (§4.7). It shares the Function value tag so expressions
// treat built-ins and user-defined functions identically.
type NativeFunction struct {
	Name string
	Fn   func(ctx *CallingContext, args []Value) (Value, error)
}

func (n *NativeFunction) Type() ValueType { return TFunction }
func (n *NativeFunction) Inspect() string { return "<builtin " + n.Name + ">" }

// CellRef is an unresolved reference to another cell, relative to whatever
// cell it is evaluated at (§4.2). It is a plain data Value until the host
// EvalCell function dereferences it.
type CellRef struct {
	ColAbs bool
	ColOff int64
	RowAbs bool
	RowOff int64
}

func (c *CellRef) Type() ValueType { return TCellRef }

// Inspect renders a context-free debug form. Spreadsheet notation ("A1",
// "$A$1") requires the cell the reference is relative to and is rendered by
// sheet.FormatCellRef instead (§4.2).
func (c *CellRef) Inspect() string {
	return fmt.Sprintf("CellRef(col=%v%d,row=%v%d)", c.ColAbs, c.ColOff, c.RowAbs, c.RowOff)
}

// Resolve yields the absolute (col,row) this reference denotes when
// evaluated at cell (atCol,atRow).
func (c *CellRef) Resolve(atCol, atRow int64) (int64, int64) {
	col := c.ColOff
	if !c.ColAbs {
		col = atCol + c.ColOff
	}
	row := c.RowOff
	if !c.RowAbs {
		row = atRow + c.RowOff
	}
	return col, row
}

// CellRange is a rectangular, unordered pair of cell references (§4.2); it
// is displayed exactly as given, without normalizing left<=right.
type CellRange struct {
	Left, Top, Right, Bottom int64
	LeftAbs, TopAbs, RightAbs, BottomAbs bool
}

func (c *CellRange) Type() ValueType { return TCellRange }
func (c *CellRange) Inspect() string {
	return fmt.Sprintf("CellRange(%d,%d:%d,%d)", c.Left, c.Top, c.Right, c.Bottom)
}
