package sheet

import (
	"strconv"
	"strings"

	"decicalc/interpreter"
)

// MaxColumn and MaxRowBound are the addressable coordinate bounds stated in
// §4.2: column "ZZZ" (18277) and row 999,999,998. MaxRowBound is distinct
// from the (*SpreadSheet).MaxRow method, which reports the highest row a
// cell actually occupies rather than the addressable ceiling.
const (
	MaxColumn   = 18277
	MaxRowBound = 999_999_998
)

// ColumnToString renders a 0-based column index in spreadsheet notation:
// A..Z for 0..25, AA..ZZ for 26..701, AAA..ZZZ for 702..18277, using the
// same carry encoding a bijective base-26 numbering system uses (there is
// no digit for zero, so each digit's value is shifted by one before the
// division/modulo step).
func ColumnToString(col int64) string {
	n := col + 1 // shift into the 1-based bijective base-26 domain
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// ParseColumn is ColumnToString's inverse: it maps spreadsheet column
// notation back to a 0-based index. ColumnToString ∘ ParseColumn is the
// identity for 0 <= col <= MaxColumn (§8).
func ParseColumn(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var n int64
	for _, ch := range s {
		if ch < 'A' || ch > 'Z' {
			return 0, false
		}
		n = n*26 + int64(ch-'A'+1)
	}
	return n - 1, true
}

// FormatCellRef renders ref in spreadsheet notation relative to the cell at
// (atCol, atRow): e.g. "A1", "$A1", "A$1", "$A$1" (§4.2).
func FormatCellRef(ref *interpreter.CellRef, atCol, atRow int64) string {
	col, row := ref.Resolve(atCol, atRow)
	var b strings.Builder
	if ref.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(ColumnToString(col))
	if ref.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.FormatInt(row+1, 10))
	return b.String()
}

// FormatCellRange renders a range as "ref(L,T):ref(R,B)" with no
// reordering -- degenerate ranges (left>right or top>bottom) render
// exactly as given (§4.2).
func FormatCellRange(r *interpreter.CellRange, atCol, atRow int64) string {
	left := &interpreter.CellRef{ColAbs: r.LeftAbs, ColOff: r.Left, RowAbs: r.TopAbs, RowOff: r.Top}
	right := &interpreter.CellRef{ColAbs: r.RightAbs, ColOff: r.Right, RowAbs: r.BottomAbs, RowOff: r.Bottom}
	return FormatCellRef(left, atCol, atRow) + ":" + FormatCellRef(right, atCol, atRow)
}
