package sheet

// SpreadSheet is a column-major sparse matrix of cells (§3). Columns and
// rows are both 0-based internally; columns up to 18277 ("ZZZ") and rows up
// to 999,999,998 are addressable per §4.2's stated maximum coordinates.
type SpreadSheet struct {
	columns []column
	maxRow  int64

	// Traversal flags consumed by Recalc (§4.5): CMajor selects column- vs
	// row-major order, TopDown and LeftRight select the two sweep
	// directions within that order. All eight combinations are valid.
	CMajor    bool
	TopDown   bool
	LeftRight bool
}

type column struct {
	rows []*Cell
}

func NewSpreadSheet() *SpreadSheet {
	return &SpreadSheet{CMajor: true, TopDown: true, LeftRight: true}
}

// MaxRow reports the highest row index any cell has ever occupied.
func (s *SpreadSheet) MaxRow() int64 { return s.maxRow }

// MaxCol reports the highest column index any cell has ever occupied.
func (s *SpreadSheet) MaxCol() int64 { return int64(len(s.columns)) - 1 }

// GetCell returns the cell at (col, row), or nil if that slot is empty.
func (s *SpreadSheet) GetCell(col, row int64) *Cell {
	if col < 0 || row < 0 || col >= int64(len(s.columns)) {
		return nil
	}
	c := &s.columns[col]
	if row >= int64(len(c.rows)) {
		return nil
	}
	return c.rows[row]
}

// PutCell installs cell at (col, row), growing the sparse matrix as needed.
// Passing a nil cell clears the slot.
func (s *SpreadSheet) PutCell(col, row int64, cell *Cell) {
	s.ensureColumn(col)
	s.ensureRow(col, row)
	s.columns[col].rows[row] = cell
	if row > s.maxRow {
		s.maxRow = row
	}
}

func (s *SpreadSheet) ensureColumn(col int64) {
	for int64(len(s.columns)) <= col {
		s.columns = append(s.columns, column{})
	}
}

func (s *SpreadSheet) ensureRow(col, row int64) {
	c := &s.columns[col]
	for int64(len(c.rows)) <= row {
		c.rows = append(c.rows, nil)
	}
}

// SetValueCell installs a VALUE cell at (col, row) with the given unparsed
// source text, overwriting whatever was there.
func (s *SpreadSheet) SetValueCell(col, row int64, source string) {
	s.PutCell(col, row, NewValueCell(source))
}

// SetLabelCell installs a LABEL cell at (col, row) with literal text.
func (s *SpreadSheet) SetLabelCell(col, row int64, text string) {
	s.PutCell(col, row, NewLabelCell(text))
}

// Clear empties the entire sheet.
func (s *SpreadSheet) Clear() {
	s.columns = nil
	s.maxRow = 0
}

// Each invokes fn once for every non-nil cell in the traversal order
// currently configured on the sheet (CMajor/TopDown/LeftRight), passing its
// (col, row) coordinates. fn returns false to stop the sweep early (used by
// Recalc when a Fatal error aborts the rest of the pass). Used by Recalc
// and by diagnostics/dump tooling that wants the same ordering recalc uses.
func (s *SpreadSheet) Each(fn func(col, row int64, cell *Cell) bool) {
	maxCol := s.MaxCol()
	for _, coord := range traversalOrder(s.CMajor, s.TopDown, s.LeftRight, maxCol, s.maxRow) {
		if cell := s.GetCell(coord.col, coord.row); cell != nil {
			if !fn(coord.col, coord.row, cell) {
				return
			}
		}
	}
}

type coord struct{ col, row int64 }

// traversalOrder enumerates every (col, row) pair in [0,maxCol]x[0,maxRow]
// in one of the eight orders selected by (cMajor, topDown, leftRight)
// (§4.5, §9 REDESIGN FLAG: all eight, not just column-major, are
// implemented).
func traversalOrder(cMajor, topDown, leftRight bool, maxCol, maxRow int64) []coord {
	cols := axisRange(maxCol, leftRight)
	rows := axisRange(maxRow, topDown)

	out := make([]coord, 0, (maxCol+1)*(maxRow+1))
	if cMajor {
		for _, c := range cols {
			for _, r := range rows {
				out = append(out, coord{c, r})
			}
		}
	} else {
		for _, r := range rows {
			for _, c := range cols {
				out = append(out, coord{c, r})
			}
		}
	}
	return out
}

// axisRange returns 0..n in increasing order if ascending, n..0 descending
// otherwise.
func axisRange(n int64, ascending bool) []int64 {
	if n < 0 {
		return nil
	}
	out := make([]int64, n+1)
	if ascending {
		for i := int64(0); i <= n; i++ {
			out[i] = i
		}
	} else {
		for i := int64(0); i <= n; i++ {
			out[i] = n - i
		}
	}
	return out
}
