// Package sheet implements the Cell/SpreadSheet model and the recalculation
// driver: a column-major sparse matrix of cells, generation-memoized
// on-demand cell evaluation, and a full-sweep recalc that walks the sheet
// in one of eight traversal orders. Grounded on the teacher's
// spreadsheet/sheet.go and engine.go, replacing their reactive
// Dependencies/Dependents graph with the spec's full-sweep, no-dependency-
// tracking model.
package sheet

import (
	"decicalc/ast"
	"decicalc/interpreter"
)

type CellKind int

const (
	KindValue CellKind = iota
	KindLabel
	KindError
)

// Cell holds one slot of the sheet at a (column, row). Exactly one of
// CurrentInput (unparsed source text) or Expr (a parsed expression) is the
// live representation at any moment; computeCell moves text to tree and
// then (outside user-input mode) clears CurrentInput.
type Cell struct {
	Kind CellKind

	// CurrentInput is the raw source text awaiting parse, or empty once
	// the expression has been parsed and committed (§3 Cell invariants).
	CurrentInput string

	// Expr is the parsed expression, present once CurrentInput has been
	// committed.
	Expr ast.Expression

	// SourceText is the formula or label text the cell was last set from. It
	// survives the CurrentInput->Expr commit, unlike CurrentInput, so
	// persistence.Save can round-trip a cell's original text without
	// unparsing Expr back into source form.
	SourceText string

	PreviousValue      interpreter.Value
	PreviousGeneration int64

	// InEvaluation is true only while a CellFrame for this cell is live on
	// the evaluation stack; used to detect cycles (§3, §8).
	InEvaluation bool

	// FirstErrorLine holds the first line of the most recent evaluation
	// error's message, or empty if the cell last evaluated cleanly (§7
	// "the status area shows the latest first-line message").
	FirstErrorLine string
}

func NewLabelCell(text string) *Cell {
	return &Cell{Kind: KindLabel, CurrentInput: text, SourceText: text}
}

func NewValueCell(source string) *Cell {
	return &Cell{Kind: KindValue, CurrentInput: source, SourceText: source}
}
