package interpreter

// typeRank fixes the total order across Value variants that CompareValues
// and Dictionary key ordering rely on: Nil sorts first, then Float, then
// String, then Array, Dictionary, CellRef, CellRange and Function in that
// order. Two values of different rank never compare equal.
func typeRank(v Value) int {
	switch v.Type() {
	case TNil:
		return 0
	case TFloat:
		return 1
	case TString:
		return 2
	case TArray:
		return 3
	case TDictionary:
		return 4
	case TCellRef:
		return 5
	case TCellRange:
		return 6
	case TFunction:
		return 7
	default:
		return 8
	}
}

// CompareValues imposes a total order over Values so Dictionary keys sort
// deterministically regardless of which variant is used as a key (§3).
// NaN floats are ordered after all other floats but still compare equal to
// each other, so a NaN key is usable at all (IEEE's NaN != NaN would
// otherwise make it unfindable once inserted).
func CompareValues(a, b Value) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case *Nil:
		return 0
	case *Float:
		bv := b.(*Float)
		aNaN, bNaN := av.Value.IsNaN(), bv.Value.IsNaN()
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		}
		return av.Value.Cmp(bv.Value)
	case *String:
		bv := b.(*String)
		switch {
		case av.Value < bv.Value:
			return -1
		case av.Value > bv.Value:
			return 1
		default:
			return 0
		}
	case *Array:
		bv := b.(*Array)
		for i := 0; i < len(av.Elements) && i < len(bv.Elements); i++ {
			if c := CompareValues(av.Elements[i], bv.Elements[i]); c != 0 {
				return c
			}
		}
		return compareInt(len(av.Elements), len(bv.Elements))
	case *Dictionary:
		bv := b.(*Dictionary)
		for i := 0; i < len(av.entries) && i < len(bv.entries); i++ {
			if c := CompareValues(av.entries[i].key, bv.entries[i].key); c != 0 {
				return c
			}
			if c := CompareValues(av.entries[i].value, bv.entries[i].value); c != 0 {
				return c
			}
		}
		return compareInt(len(av.entries), len(bv.entries))
	case *CellRef:
		bv := b.(*CellRef)
		return compareCellRef(av, bv)
	case *CellRange:
		bv := b.(*CellRange)
		if c := compareInt64(av.Left, bv.Left); c != 0 {
			return c
		}
		if c := compareInt64(av.Top, bv.Top); c != 0 {
			return c
		}
		if c := compareInt64(av.Right, bv.Right); c != 0 {
			return c
		}
		return compareInt64(av.Bottom, bv.Bottom)
	default:
		// Functions have no natural order and are not meaningful Dictionary
		// keys in Backwards programs; treating them as equal-rank keeps
		// CompareValues total without needing identity-based ordering.
		return 0
	}
}

func compareCellRef(a, b *CellRef) int {
	if c := compareInt64(a.ColOff, b.ColOff); c != 0 {
		return c
	}
	return compareInt64(a.RowOff, b.RowOff)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// StrictEqual implements Backwards' "==" for scalar types and identity
// comparison for containers and functions: two distinct arrays with equal
// contents are StrictEqual-false but Equivalent-true (§4.1).
func StrictEqual(left, right Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case *Nil:
		return true
	case *Float:
		r := right.(*Float)
		return !l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) == 0
	case *String:
		return l.Value == right.(*String).Value
	default:
		return left == right
	}
}

// Equivalent is structural equality: containers compare element-by-element
// rather than by identity. Dictionary lookups do not use it; they match keys
// with CompareValues.
func Equivalent(left, right Value) bool {
	if left.Type() != right.Type() {
		return false
	}
	switch l := left.(type) {
	case *Nil:
		return true
	case *Float:
		r := right.(*Float)
		return !l.Value.IsNaN() && !r.Value.IsNaN() && l.Value.Cmp(r.Value) == 0
	case *String:
		return l.Value == right.(*String).Value
	case *Array:
		r := right.(*Array)
		if len(l.Elements) != len(r.Elements) {
			return false
		}
		for i := range l.Elements {
			if !Equivalent(l.Elements[i], r.Elements[i]) {
				return false
			}
		}
		return true
	case *Dictionary:
		r := right.(*Dictionary)
		if len(l.entries) != len(r.entries) {
			return false
		}
		for i := range l.entries {
			if CompareValues(l.entries[i].key, r.entries[i].key) != 0 {
				return false
			}
			if !Equivalent(l.entries[i].value, r.entries[i].value) {
				return false
			}
		}
		return true
	case *CellRef:
		r := right.(*CellRef)
		return l.ColAbs == r.ColAbs && l.ColOff == r.ColOff && l.RowAbs == r.RowAbs && l.RowOff == r.RowOff
	default:
		return left == right
	}
}
